package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/connecta/collabo-backend/internal/auth"
	"github.com/connecta/collabo-backend/internal/collabo/service"
	"github.com/connecta/collabo-backend/internal/realtime"
	"github.com/connecta/collabo-backend/internal/storage"
)

const defaultMaxUpload = 25 << 20

// Subscriber opens a real-time subscription to one workspace.
type Subscriber interface {
	Subscribe(ctx context.Context, workspaceID string) (*realtime.Subscription, error)
}

type Deps struct {
	Projects   *service.ProjectService
	Matcher    *service.Matcher
	Workspaces *service.WorkspaceService
	Files      storage.FileStore
	Realtime   Subscriber
	// MaxUploadBytes caps multipart uploads; zero means 25 MiB.
	MaxUploadBytes int64
}

type Handler struct {
	projects   *service.ProjectService
	matcher    *service.Matcher
	workspaces *service.WorkspaceService
	files      storage.FileStore
	realtime   Subscriber
	maxUpload  int64
	keepAlive  time.Duration
}

func New(d Deps) *Handler {
	maxUpload := d.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUpload
	}
	return &Handler{
		projects:   d.Projects,
		matcher:    d.Matcher,
		workspaces: d.Workspaces,
		files:      d.Files,
		realtime:   d.Realtime,
		maxUpload:  maxUpload,
		keepAlive:  15 * time.Second,
	}
}

// currentUser aborts with 401 when no authenticated user is attached.
func currentUser(c *gin.Context) (string, bool) {
	uid := auth.UserID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "user not authenticated"})
		return "", false
	}
	return uid, true
}
