package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	pushbullet "github.com/ochronus/gopushbullet"
	"github.com/ochronus/gopushbullet/internal/app"
	"github.com/ochronus/gopushbullet/internal/config"
	"github.com/ochronus/gopushbullet/internal/relay"
	"github.com/sirupsen/logrus"
)

// PushRequest is the relay's push submission body. At most one of Device,
// Email and Channel may be set; none of them targets the user's own stream.
type PushRequest struct {
	Device  string `json:"device,omitempty"`
	Email   string `json:"email,omitempty"`
	Channel string `json:"channel,omitempty"`
	Type    string `json:"type"`
	Title   string `json:"title,omitempty"`
	Body    string `json:"body,omitempty"`
	URL     string `json:"url,omitempty"`
}

// Handler contains the HTTP handlers for the relay API.
type Handler struct {
	container  *app.Container
	config     *config.Config
	client     pushbullet.ClientAPI
	dispatcher *relay.Dispatcher
	logger     *logrus.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(container *app.Container, dispatcher *relay.Dispatcher) *Handler {
	return &Handler{
		container:  container,
		config:     container.Config,
		client:     container.Client,
		dispatcher: dispatcher,
		logger:     container.Logger,
	}
}

// PushPost accepts a push and queues it for delivery.
func (h *Handler) PushPost(c *gin.Context) {
	var req PushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target, err := req.target()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, err := req.data()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.dispatcher.Enqueue(relay.Job{Target: target, Data: data}); err != nil {
		if errors.Is(err, relay.ErrQueueFull) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "push queue is full"})
			return
		}
		h.logger.Errorf("enqueue error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

// DevicesGet lists the account's devices.
func (h *Handler) DevicesGet(c *gin.Context) {
	devices, err := h.client.ListDevices(c.Request.Context())
	if err != nil {
		h.logger.Errorf("list devices error: %v", err)
		c.JSON(h.upstreamStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"devices": devices})
}

// UserGet returns the authenticated account.
func (h *Handler) UserGet(c *gin.Context) {
	user, err := h.client.GetUser(c.Request.Context())
	if err != nil {
		h.logger.Errorf("get user error: %v", err)
		c.JSON(h.upstreamStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, user)
}

// Healthz is the liveness probe. It does not require authentication.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// upstreamStatus maps a client error to the relay's response status. Token
// problems are the relay operator's fault, not the caller's.
func (h *Handler) upstreamStatus(err error) int {
	if pushbullet.IsAuthError(err) {
		return http.StatusInternalServerError
	}
	return http.StatusBadGateway
}

// requireAuth validates the Basic Auth credentials against the config.
func (h *Handler) requireAuth(c *gin.Context) {
	username, password, ok := c.Request.BasicAuth()
	if !ok || username != h.config.Username || password != h.config.Password {
		c.Header("WWW-Authenticate", `Basic realm="gopushbullet"`)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Next()
}

func (r *PushRequest) target() (pushbullet.PushTarget, error) {
	set := 0
	target := pushbullet.TargetSelf()

	if r.Device != "" {
		set++
		target = pushbullet.TargetDevice(r.Device)
	}
	if r.Email != "" {
		set++
		target = pushbullet.TargetEmail(r.Email)
	}
	if r.Channel != "" {
		set++
		target = pushbullet.TargetChannel(r.Channel)
	}

	if set > 1 {
		return pushbullet.PushTarget{}, errors.New("at most one of device, email and channel may be set")
	}
	return target, nil
}

func (r *PushRequest) data() (pushbullet.PushData, error) {
	switch r.Type {
	case "note":
		return pushbullet.Note{Title: r.Title, Body: r.Body}, nil
	case "link":
		if r.URL == "" {
			return nil, errors.New("url is required for link pushes")
		}
		return pushbullet.Link{Title: r.Title, Body: r.Body, URL: r.URL}, nil
	case "":
		return nil, errors.New("type is required")
	default:
		return nil, errors.New("type must be note or link")
	}
}
