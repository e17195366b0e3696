package pushbullet

import (
	"context"
	"io"
)

// ClientAPI defines the methods required to interact with PushBullet.
// It mirrors the concrete client so it can be mocked in tests.
type ClientAPI interface {
	GetUser(ctx context.Context) (*User, error)
	ListDevices(ctx context.Context) ([]Device, error)
	Push(ctx context.Context, target PushTarget, data PushData) error
	UploadRequest(ctx context.Context, fileName, fileType string, r io.Reader) (*Upload, error)
	PushFile(ctx context.Context, target PushTarget, body, fileName, fileType string, r io.Reader) error
}
