package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/connecta/collabo-backend/internal/logging"
)

// StreamWorkspace streams workspace mutations using Server-Sent Events (SSE).
// Every envelope published on the workspace topic becomes one SSE event named
// after its kind.
func (h *Handler) StreamWorkspace(c *gin.Context) {
	wsID := c.Param("id")
	ctx := c.Request.Context()

	ws, err := h.workspaces.GetWorkspace(ctx, wsID)
	if err != nil {
		writeError(c, err)
		return
	}
	if h.realtime == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "real-time updates unavailable"})
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "streaming unsupported"})
		return
	}

	sub, err := h.realtime.Subscribe(ctx, ws.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	defer sub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering
	c.Status(http.StatusOK)

	ready, _ := json.Marshal(gin.H{"workspace_id": ws.ID})
	fmt.Fprintf(c.Writer, "event: ready\ndata: %s\n\n", ready)
	flusher.Flush()

	log := logging.FromContext(ctx).With(zap.String("workspace_id", ws.ID))
	log.Debug("workspace stream opened")

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug("workspace stream closed")
			return

		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case env, open := <-sub.Events():
			if !open {
				return
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", env.Event, env.Data)
			flusher.Flush()
		}
	}
}
