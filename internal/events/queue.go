package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	pendingKey    = "collabo:events:pending"    // FIFO of events waiting for a handler
	processingKey = "collabo:events:processing" // events claimed by a dispatcher
	deadKey       = "collabo:events:dead"       // events that exhausted their attempts
)

// ErrEmpty is returned by claim when no event is pending.
var ErrEmpty = errors.New("no pending events")

// Event is one outbound side effect. Payload is handler specific JSON.
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	Attempts   int             `json:"attempts"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
	LastError  string          `json:"last_error,omitempty"`
}

// Decode unmarshals the payload into v.
func (e Event) Decode(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}

// Queue stores events in Redis lists. An event stays in the processing list
// until its handler acknowledges it, so a crash between claim and ack leads to
// redelivery after Recover.
type Queue struct {
	client *redis.Client
}

func NewQueue(client *redis.Client) *Queue {
	return &Queue{client: client}
}

func (q *Queue) Enqueue(ctx context.Context, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	ev := Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		Payload:    data,
		EnqueuedAt: time.Now().UTC(),
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := q.client.RPush(ctx, pendingKey, raw).Err(); err != nil {
		return fmt.Errorf("enqueue %s: %w", eventType, err)
	}
	return nil
}

// claim moves the oldest pending event into the processing list. The raw
// string is needed to remove exactly that entry later.
func (q *Queue) claim(ctx context.Context) (*Event, string, error) {
	raw, err := q.client.LMove(ctx, pendingKey, processingKey, "LEFT", "RIGHT").Result()
	if err == redis.Nil {
		return nil, "", ErrEmpty
	}
	if err != nil {
		return nil, "", fmt.Errorf("claim event: %w", err)
	}

	var ev Event
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		// Unreadable entries go straight to the dead list untouched.
		pipe := q.client.TxPipeline()
		pipe.LRem(ctx, processingKey, 1, raw)
		pipe.RPush(ctx, deadKey, raw)
		if _, perr := pipe.Exec(ctx); perr != nil {
			return nil, "", fmt.Errorf("dead-letter malformed event: %w", perr)
		}
		return nil, "", fmt.Errorf("decode event: %w", err)
	}
	return &ev, raw, nil
}

func (q *Queue) ack(ctx context.Context, raw string) error {
	if err := q.client.LRem(ctx, processingKey, 1, raw).Err(); err != nil {
		return fmt.Errorf("ack event: %w", err)
	}
	return nil
}

// nack records the failure and either requeues the event or dead-letters it.
// It reports whether the event was dead-lettered.
func (q *Queue) nack(ctx context.Context, raw string, ev Event, cause error, maxAttempts int) (bool, error) {
	ev.Attempts++
	ev.LastError = cause.Error()
	updated, err := json.Marshal(ev)
	if err != nil {
		return false, fmt.Errorf("marshal event: %w", err)
	}

	dead := ev.Attempts >= maxAttempts
	target := pendingKey
	if dead {
		target = deadKey
	}

	pipe := q.client.TxPipeline()
	pipe.LRem(ctx, processingKey, 1, raw)
	pipe.RPush(ctx, target, updated)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("requeue event: %w", err)
	}
	return dead, nil
}

// Recover puts events left in the processing list by a previous run back at
// the head of the pending list, preserving their order.
func (q *Queue) Recover(ctx context.Context) (int, error) {
	n := 0
	for {
		err := q.client.LMove(ctx, processingKey, pendingKey, "RIGHT", "LEFT").Err()
		if err == redis.Nil {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("recover events: %w", err)
		}
		n++
	}
}

// DeadLetters returns up to limit dead-lettered events, oldest first.
func (q *Queue) DeadLetters(ctx context.Context, limit int64) ([]Event, error) {
	raws, err := q.client.LRange(ctx, deadKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("list dead letters: %w", err)
	}

	out := make([]Event, 0, len(raws))
	for _, raw := range raws {
		var ev Event
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			ev = Event{Type: "unknown", LastError: "malformed entry"}
		}
		out = append(out, ev)
	}
	return out, nil
}

// ReplayDeadLetters moves every dead-lettered event back to pending with a
// fresh attempt budget. Malformed entries are dropped.
func (q *Queue) ReplayDeadLetters(ctx context.Context) (int, error) {
	n := 0
	for {
		raw, err := q.client.LPop(ctx, deadKey).Result()
		if err == redis.Nil {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("replay dead letters: %w", err)
		}

		var ev Event
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			continue
		}
		ev.Attempts = 0
		ev.LastError = ""
		data, err := json.Marshal(ev)
		if err != nil {
			return n, fmt.Errorf("marshal event: %w", err)
		}
		if err := q.client.RPush(ctx, pendingKey, data).Err(); err != nil {
			return n, fmt.Errorf("replay dead letters: %w", err)
		}
		n++
	}
}

// Depth is the size of each list.
type Depth struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Dead       int64 `json:"dead"`
}

func (q *Queue) Depth(ctx context.Context) (Depth, error) {
	pipe := q.client.Pipeline()
	pending := pipe.LLen(ctx, pendingKey)
	processing := pipe.LLen(ctx, processingKey)
	dead := pipe.LLen(ctx, deadKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return Depth{}, fmt.Errorf("queue depth: %w", err)
	}
	return Depth{Pending: pending.Val(), Processing: processing.Val(), Dead: dead.Val()}, nil
}
