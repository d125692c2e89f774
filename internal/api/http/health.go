package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/connecta/collabo-backend/internal/events"
)

type HealthResponse struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Service   string           `json:"service"`
	Version   string           `json:"version"`
	DB        string           `json:"db,omitempty"`
	Redis     string           `json:"redis,omitempty"`
	Events    *events.Snapshot `json:"events,omitempty"`
	Queue     *events.Depth    `json:"queue,omitempty"`
}

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	serviceName string
	version     string
	db          Pinger
	redis       *redis.Client
	dispatcher  *events.Dispatcher
	queue       *events.Queue
}

type HealthOption func(*HealthHandler)

func WithDB(db Pinger) HealthOption {
	return func(h *HealthHandler) { h.db = db }
}

func WithRedis(client *redis.Client) HealthOption {
	return func(h *HealthHandler) { h.redis = client }
}

// WithEvents adds dispatcher counters and queue depth to the response.
func WithEvents(d *events.Dispatcher, q *events.Queue) HealthOption {
	return func(h *HealthHandler) {
		h.dispatcher = d
		h.queue = q
	}
}

func NewHealthHandler(serviceName, version string, opts ...HealthOption) *HealthHandler {
	h := &HealthHandler{serviceName: serviceName, version: version}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HealthCheck reports "degraded" when a configured dependency is down.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	pingCtx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
	}

	if h.db != nil {
		resp.DB = "up"
		if err := h.db.Ping(pingCtx); err != nil {
			resp.DB = "down"
			resp.Status = "degraded"
		}
	}

	if h.redis != nil {
		resp.Redis = "up"
		if err := h.redis.Ping(pingCtx).Err(); err != nil {
			resp.Redis = "down"
			resp.Status = "degraded"
		}
	}

	if h.dispatcher != nil {
		snap := h.dispatcher.Metrics()
		resp.Events = &snap
	}
	if h.queue != nil && resp.Redis != "down" {
		if depth, err := h.queue.Depth(pingCtx); err == nil {
			resp.Queue = &depth
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
