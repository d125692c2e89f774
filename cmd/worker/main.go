package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/connecta/collabo-backend/config"
	"github.com/connecta/collabo-backend/internal/bootstrap"
	"github.com/connecta/collabo-backend/internal/collabo/repository"
	"github.com/connecta/collabo-backend/internal/collabo/service"
	"github.com/connecta/collabo-backend/internal/events"
	"github.com/connecta/collabo-backend/internal/logging"
)

func main() {
	root := newRootCmd(defaultBackends())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// backends opens the stores a command needs. The returned func releases them.
type backends struct {
	queue      func(ctx context.Context) (*events.Queue, func(), error)
	reconciler func(ctx context.Context) (scheduleReconciler, func(), error)
}

type scheduleReconciler interface {
	Reconcile(ctx context.Context) ([]string, error)
}

func defaultBackends() backends {
	return backends{
		queue: func(ctx context.Context) (*events.Queue, func(), error) {
			cfg, err := config.Load()
			if err != nil {
				return nil, nil, err
			}
			rdb, err := bootstrap.OpenRedis(ctx, cfg.Redis)
			if err != nil {
				return nil, nil, err
			}
			return events.NewQueue(rdb), func() { _ = rdb.Close() }, nil
		},
		reconciler: func(ctx context.Context) (scheduleReconciler, func(), error) {
			cfg, err := config.Load()
			if err != nil {
				return nil, nil, err
			}
			logger, err := logging.New(cfg.App.LogLevel, cfg.App.Environment)
			if err == nil {
				zap.ReplaceGlobals(logger)
			}
			pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{
				DSN:      cfg.Database.DSN,
				MaxConns: 2,
			})
			if err != nil {
				return nil, nil, err
			}
			store := repository.NewStore(pool, cfg.Collabo.DurabilityMode)
			return service.NewReconciler(store, cfg.Collabo.ReconcileGrace), pool.Close, nil
		},
	}
}

func newRootCmd(b backends) *cobra.Command {
	root := &cobra.Command{
		Use:           "worker",
		Short:         "Collabo maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Bool("json", false, "output JSON")

	root.AddCommand(reconcileCmd(b))
	root.AddCommand(queueCmd(b))
	root.AddCommand(deadLettersCmd(b))
	return root
}
