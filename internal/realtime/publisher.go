package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Pub/Sub channel for workspace events: collabo:workspace:{workspace_id}
const topicPrefix = "collabo:workspace:"

func TopicFor(workspaceID string) string {
	return topicPrefix + workspaceID
}

// Envelope is the JSON published for every workspace mutation.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Publisher fans workspace mutations out to every subscriber of the workspace topic.
type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) Publish(ctx context.Context, workspaceID, kind string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", kind, err)
	}
	msg, err := json.Marshal(Envelope{Event: kind, Data: raw})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if err := p.client.Publish(ctx, TopicFor(workspaceID), msg).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", kind, err)
	}
	return nil
}

// Subscription delivers envelopes published to one workspace topic.
type Subscription struct {
	pubsub *redis.PubSub
	ch     chan Envelope
	done   chan struct{}
	once   sync.Once
}

// Subscribe waits for the subscription to be confirmed so no message
// published after it returns is missed.
func (p *Publisher) Subscribe(ctx context.Context, workspaceID string) (*Subscription, error) {
	pubsub := p.client.Subscribe(ctx, TopicFor(workspaceID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", workspaceID, err)
	}

	sub := &Subscription{pubsub: pubsub, ch: make(chan Envelope, 16), done: make(chan struct{})}
	go sub.pump()
	return sub, nil
}

func (s *Subscription) pump() {
	defer close(s.ch)
	for msg := range s.pubsub.Channel() {
		var env Envelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			continue
		}
		select {
		case s.ch <- env:
		case <-s.done:
			return
		}
	}
}

// Events is closed after Close.
func (s *Subscription) Events() <-chan Envelope {
	return s.ch
}

func (s *Subscription) Close() error {
	s.once.Do(func() { close(s.done) })
	return s.pubsub.Close()
}
