package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/connecta/collabo-backend/config"
	"github.com/connecta/collabo-backend/internal/auth"
	"github.com/connecta/collabo-backend/internal/auth/middleware"
	"github.com/connecta/collabo-backend/internal/bootstrap"
	collabohttp "github.com/connecta/collabo-backend/internal/collabo/http"
	"github.com/connecta/collabo-backend/internal/collabo/repository"
	"github.com/connecta/collabo-backend/internal/collabo/service"
	"github.com/connecta/collabo-backend/internal/events"
	"github.com/connecta/collabo-backend/internal/llm"
	"github.com/connecta/collabo-backend/internal/logging"
	"github.com/connecta/collabo-backend/internal/payments"
	"github.com/connecta/collabo-backend/internal/realtime"
	"github.com/connecta/collabo-backend/internal/scheduler"
	"github.com/connecta/collabo-backend/internal/storage"
	"github.com/connecta/collabo-backend/internal/users"
)

const serviceName = "collabo-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.App.LogLevel, cfg.App.Environment)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{
		DSN:      cfg.Database.DSN,
		MaxConns: int32(cfg.Database.MaxConns),
		MinConns: int32(cfg.Database.MinConns),
	})
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer pool.Close()

	if err := repository.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := bootstrap.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal("open redis", zap.Error(err))
	}
	defer func() { _ = rdb.Close() }()

	store := repository.NewStore(pool, cfg.Collabo.DurabilityMode)
	queue := events.NewQueue(rdb)
	publisher := realtime.NewPublisher(rdb)

	var scoper llm.Scoper
	if cfg.LLM.APIKey != "" {
		client := llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.RequestsPerSec, cfg.LLM.Timeout)
		scoper = llm.NewCachedScoper(client, rdb, cfg.LLM.CacheTTL, logger.Named("llm"))
	} else {
		logger.Warn("LLM_API_KEY not set, scoping always returns the fallback proposal")
	}

	gateway := payments.NewFlutterwave(cfg.Payment.BaseURL, cfg.Payment.SecretKey, cfg.Payment.RedirectURL)

	files, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal("file storage", zap.Error(err))
	}

	projects := service.NewProjectService(store, scoper, gateway, queue, cfg.Collabo, cfg.Payment.Currency)
	matcher := service.NewMatcher(store, cfg.Collabo.InviteLimit)
	workspaces := service.NewWorkspaceService(store, queue, cfg.Collabo.EnforceChannelMembership)
	reconciler := service.NewReconciler(store, cfg.Collabo.ReconcileGrace)

	dispatcher := events.NewDispatcher(queue, cfg.Events.MaxAttempts, cfg.Events.PollInterval, logger.Named("events"))
	service.RegisterEventHandlers(dispatcher, matcher, publisher)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := dispatcher.Run(ctx); err != nil {
			logger.Error("event dispatcher stopped", zap.Error(err))
		}
	}()

	sched := scheduler.New(logger.Named("cron"))
	if cfg.Collabo.DurabilityMode == config.DurabilityBestEffort {
		if err := sched.AddReconcile(cfg.Collabo.ReconcileSchedule, reconciler); err != nil {
			logger.Fatal("schedule reconcile", zap.String("spec", cfg.Collabo.ReconcileSchedule), zap.Error(err))
		}
	}
	if err := sched.AddDeadLetterReport("0 */5 * * * *", queue); err != nil {
		logger.Fatal("schedule dead letter report", zap.Error(err))
	}
	sched.Start()

	var authenticate gin.HandlerFunc
	if cfg.Firebase.Enabled() {
		fb, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
		if err != nil {
			logger.Fatal("firebase", zap.Error(err))
		}
		authenticate = middleware.FirebaseAuthMiddleware(fb)
	} else {
		logger.Warn("FIREBASE_CREDENTIALS_PATH not set, trusting X-User-Id headers")
		authenticate = auth.DevUser()
	}

	uploadDir := ""
	if cfg.Storage.Backend == config.FileStorageLocal {
		uploadDir = cfg.Storage.UploadDir
	}

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:  serviceName,
		Version:      cfg.App.Version,
		CORSOrigins:  cfg.Server.CORSOrigins,
		Logger:       logger,
		DB:           pool,
		Redis:        rdb,
		Dispatcher:   dispatcher,
		Queue:        queue,
		Authenticate: authenticate,
		Users:        users.NewRepo(pool),
		Collabo: collabohttp.New(collabohttp.Deps{
			Projects:   projects,
			Matcher:    matcher,
			Workspaces: workspaces,
			Files:      files,
			Realtime:   publisher,
		}),
		UploadDir: uploadDir,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Environment),
			zap.String("durability", string(cfg.Collabo.DurabilityMode)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	sched.Stop(shutdownCtx)
	wg.Wait()
}
