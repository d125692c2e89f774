package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	httpapi "github.com/connecta/collabo-backend/internal/api/http"
	"github.com/connecta/collabo-backend/internal/api/http/middleware"
	"github.com/connecta/collabo-backend/internal/auth"
	collabohttp "github.com/connecta/collabo-backend/internal/collabo/http"
	"github.com/connecta/collabo-backend/internal/events"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	CORSOrigins []string
	Logger      *zap.Logger

	DB         *pgxpool.Pool
	Redis      *redis.Client
	Dispatcher *events.Dispatcher
	Queue      *events.Queue

	// Authenticate sets the Firebase UID; either the Firebase middleware or auth.DevUser.
	Authenticate gin.HandlerFunc
	Users        auth.UserEnsurer
	Collabo      *collabohttp.Handler

	// UploadDir is served at /uploads when files are stored on local disk.
	UploadDir string
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	log := dep.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     dep.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-Id", "X-User-Id", "X-User-Email", "X-User-Name", "X-User-Photo"},
		ExposeHeaders:    []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	var healthOpts []httpapi.HealthOption
	if dep.DB != nil {
		healthOpts = append(healthOpts, httpapi.WithDB(dep.DB))
	}
	if dep.Redis != nil {
		healthOpts = append(healthOpts, httpapi.WithRedis(dep.Redis))
	}
	if dep.Dispatcher != nil || dep.Queue != nil {
		healthOpts = append(healthOpts, httpapi.WithEvents(dep.Dispatcher, dep.Queue))
	}
	httpapi.NewHealthHandler(dep.ServiceName, dep.Version, healthOpts...).RegisterRoutes(r)

	if dep.UploadDir != "" {
		r.Static("/uploads", dep.UploadDir)
	}

	api := r.Group("/api/v1")
	if dep.Authenticate != nil {
		api.Use(dep.Authenticate)
	}
	api.Use(auth.WithUser(dep.Users))

	dep.Collabo.Register(api.Group("/collabo"))
	dep.Collabo.RegisterPayments(api.Group("/payments"))

	return r
}
