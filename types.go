package pushbullet

// PushTarget selects the recipient of a push. The zero value targets the
// authenticated user's own stream; use the Target constructors for anything
// else.
type PushTarget struct {
	deviceIden string
	email      string
	channelTag string
	clientIden string
}

// TargetSelf pushes to the authenticated user's own stream.
func TargetSelf() PushTarget {
	return PushTarget{}
}

// TargetDevice pushes to a specific device by iden (see ListDevices).
func TargetDevice(iden string) PushTarget {
	return PushTarget{deviceIden: iden}
}

// TargetEmail pushes to a user by email address. If the address does not
// belong to a PushBullet user, the push is delivered as an email instead.
func TargetEmail(email string) PushTarget {
	return PushTarget{email: email}
}

// TargetChannel pushes to all subscribers of a channel by tag.
func TargetChannel(tag string) PushTarget {
	return PushTarget{channelTag: tag}
}

// TargetClient pushes to all users who have granted access to an OAuth
// client by iden.
func TargetClient(iden string) PushTarget {
	return PushTarget{clientIden: iden}
}

func (t PushTarget) apply(payload map[string]any) {
	switch {
	case t.deviceIden != "":
		payload["device_iden"] = t.deviceIden
	case t.email != "":
		payload["email"] = t.email
	case t.channelTag != "":
		payload["channel_tag"] = t.channelTag
	case t.clientIden != "":
		payload["client_iden"] = t.clientIden
	}
}

// PushData is the content of a push. Note, Link and File implement it.
type PushData interface {
	apply(payload map[string]any)
}

// Note is a plain text push. An empty title is allowed.
type Note struct {
	Title string
	Body  string
}

func (n Note) apply(payload map[string]any) {
	payload["type"] = "note"
	payload["title"] = n.Title
	payload["body"] = n.Body
}

// Link is a push carrying a URL to open.
type Link struct {
	Title string
	Body  string
	URL   string
}

func (l Link) apply(payload map[string]any) {
	payload["type"] = "link"
	payload["title"] = l.Title
	payload["body"] = l.Body
	payload["url"] = l.URL
}

// File is a push referencing a previously uploaded file. Populate it from
// the Upload returned by UploadRequest.
type File struct {
	Body     string
	FileName string
	FileType string
	FileURL  string
}

func (f File) apply(payload map[string]any) {
	payload["type"] = "file"
	payload["body"] = f.Body
	payload["file_name"] = f.FileName
	payload["file_type"] = f.FileType
	payload["file_url"] = f.FileURL
}

// User represents the authenticated PushBullet account.
type User struct {
	Iden            string  `json:"iden"`
	Email           string  `json:"email"`
	EmailNormalized string  `json:"email_normalized"`
	Name            string  `json:"name"`
	ImageURL        string  `json:"image_url"`
	MaxUploadSize   float64 `json:"max_upload_size"`
	Created         float64 `json:"created"`
	Modified        float64 `json:"modified"`
}

// Device represents a device registered with the account. Deleted devices
// are returned by the API with Active set to false.
type Device struct {
	Iden     string  `json:"iden"`
	Active   bool    `json:"active"`
	Nickname string  `json:"nickname"`
	Created  float64 `json:"created"`
	Modified float64 `json:"modified"`
}

// Upload is the result of a completed upload request. FileName and FileType
// may differ from the requested values (the server can truncate or correct
// them); FileURL is where the file is served from once uploaded.
type Upload struct {
	FileName string `json:"file_name"`
	FileType string `json:"file_type"`
	FileURL  string `json:"file_url"`
}

// uploadSlot is the raw upload-request response; upload_url is consumed by
// the multipart leg and not exposed.
type uploadSlot struct {
	FileName  string `json:"file_name"`
	FileType  string `json:"file_type"`
	FileURL   string `json:"file_url"`
	UploadURL string `json:"upload_url"`
}

// listDevicesResponse wraps the device list as returned by the API.
type listDevicesResponse struct {
	Devices []Device `json:"devices"`
}
