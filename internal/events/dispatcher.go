package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// HandlerFunc runs the side effect of one event. A returned error causes a retry.
type HandlerFunc func(ctx context.Context, ev Event) error

type Dispatcher struct {
	queue       *Queue
	handlers    map[string]HandlerFunc
	maxAttempts int
	interval    time.Duration
	log         *zap.Logger
	metrics     Metrics
}

func NewDispatcher(queue *Queue, maxAttempts int, interval time.Duration, log *zap.Logger) *Dispatcher {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		queue:       queue,
		handlers:    map[string]HandlerFunc{},
		maxAttempts: maxAttempts,
		interval:    interval,
		log:         log,
	}
}

// Handle registers fn for eventType. It must be called before Run.
func (d *Dispatcher) Handle(eventType string, fn HandlerFunc) {
	d.handlers[eventType] = fn
}

func (d *Dispatcher) Metrics() Snapshot {
	return d.metrics.Snapshot()
}

// ProcessNext claims and handles one event. It returns false when the queue was empty.
func (d *Dispatcher) ProcessNext(ctx context.Context) (bool, error) {
	ev, raw, err := d.queue.claim(ctx)
	if errors.Is(err, ErrEmpty) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	handler, ok := d.handlers[ev.Type]
	if !ok {
		dead, nerr := d.queue.nack(ctx, raw, *ev, fmt.Errorf("no handler for %q", ev.Type), 0)
		d.metrics.recordFailure(dead)
		return true, nerr
	}

	herr := d.run(ctx, handler, *ev)
	if herr == nil {
		d.metrics.recordProcessed()
		return true, d.queue.ack(ctx, raw)
	}

	dead, nerr := d.queue.nack(ctx, raw, *ev, herr, d.maxAttempts)
	d.metrics.recordFailure(dead)

	fields := []zap.Field{
		zap.String("event_id", ev.ID),
		zap.String("event_type", ev.Type),
		zap.Int("attempt", ev.Attempts+1),
		zap.Error(herr),
	}
	if dead {
		d.log.Error("event dead-lettered", fields...)
	} else {
		d.log.Warn("event handler failed, will retry", fields...)
	}
	return true, nerr
}

func (d *Dispatcher) run(ctx context.Context, handler HandlerFunc, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return handler(ctx, ev)
}

// Run requeues events abandoned by a previous process and then drains the
// queue until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	n, err := d.queue.Recover(ctx)
	if err != nil {
		d.log.Error("recover events", zap.Error(err))
	} else if n > 0 {
		d.log.Info("requeued in-flight events", zap.Int("count", n))
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		for {
			if ctx.Err() != nil {
				return nil
			}
			processed, err := d.ProcessNext(ctx)
			if err != nil {
				d.log.Error("dispatch event", zap.Error(err))
				break
			}
			if !processed {
				break
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
