// Package scheduler runs the periodic maintenance jobs of the API process.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/connecta/collabo-backend/internal/events"
)

const jobTimeout = 2 * time.Minute

// Reconciler repairs projects that were left without a workspace.
type Reconciler interface {
	Reconcile(ctx context.Context) ([]string, error)
}

// QueueInspector reports the outbound event queue.
type QueueInspector interface {
	Depth(ctx context.Context) (events.Depth, error)
}

type Scheduler struct {
	c   *cron.Cron
	log *zap.Logger
}

// New uses six-field cron specs (with seconds).
func New(log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		c:   cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		log: log,
	}
}

// AddReconcile schedules workspace reconciliation.
func (s *Scheduler) AddReconcile(spec string, r Reconciler) error {
	_, err := s.c.AddFunc(spec, func() { s.runReconcile(r) })
	return err
}

// AddDeadLetterReport logs the queue depth and warns while dead letters exist.
func (s *Scheduler) AddDeadLetterReport(spec string, q QueueInspector) error {
	_, err := s.c.AddFunc(spec, func() { s.reportQueue(q) })
	return err
}

func (s *Scheduler) Start() {
	s.log.Info("cron scheduler started", zap.Int("jobs", len(s.c.Entries())))
	s.c.Start()
}

// Stop waits for running jobs to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.c.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) runReconcile(r Reconciler) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	repaired, err := r.Reconcile(ctx)
	if err != nil {
		s.log.Error("reconcile job failed", zap.Strings("repaired", repaired), zap.Error(err))
		return
	}
	s.log.Info("reconcile job finished", zap.Int("repaired", len(repaired)), zap.Duration("took", time.Since(start)))
}

func (s *Scheduler) reportQueue(q QueueInspector) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	depth, err := q.Depth(ctx)
	if err != nil {
		s.log.Error("read event queue depth", zap.Error(err))
		return
	}

	fields := []zap.Field{
		zap.Int64("pending", depth.Pending),
		zap.Int64("processing", depth.Processing),
		zap.Int64("dead", depth.Dead),
	}
	if depth.Dead > 0 {
		s.log.Warn("dead-lettered events waiting for replay", fields...)
		return
	}
	s.log.Debug("event queue depth", fields...)
}
