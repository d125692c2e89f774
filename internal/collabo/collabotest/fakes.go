package collabotest

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/connecta/collabo-backend/internal/collabo/domain"
)

// RecordedEvent is one call to Events.Enqueue.
type RecordedEvent struct {
	Type    string
	Payload json.RawMessage
}

// Events records enqueued events. Err makes Enqueue fail.
type Events struct {
	mu     sync.Mutex
	Err    error
	events []RecordedEvent
}

func (e *Events) Enqueue(ctx context.Context, eventType string, payload any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Err != nil {
		return e.Err
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	e.events = append(e.events, RecordedEvent{Type: eventType, Payload: raw})
	return nil
}

func (e *Events) Recorded() []RecordedEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]RecordedEvent(nil), e.events...)
}

// OfType returns the recorded events with the given type.
func (e *Events) OfType(eventType string) []RecordedEvent {
	var out []RecordedEvent
	for _, ev := range e.Recorded() {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}

// Scoper returns Reply or Err for every description.
type Scoper struct {
	Reply string
	Err   error
	Calls int
}

func (s *Scoper) ScopeProject(ctx context.Context, description string) (string, error) {
	s.Calls++
	return s.Reply, s.Err
}

// Gateway is a scripted payment gateway.
type Gateway struct {
	mu sync.Mutex

	CheckoutURL string
	InitErr     error
	Verify      *domain.PaymentVerification
	VerifyErr   error

	Requests []domain.CheckoutRequest
}

func (g *Gateway) InitializePayment(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Requests = append(g.Requests, req)
	if g.InitErr != nil {
		return nil, g.InitErr
	}
	url := g.CheckoutURL
	if url == "" {
		url = "https://checkout.example/" + req.Reference
	}
	return &domain.CheckoutSession{URL: url, GatewayReference: req.Reference}, nil
}

func (g *Gateway) VerifyPayment(ctx context.Context, reference string) (*domain.PaymentVerification, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.VerifyErr != nil {
		return nil, g.VerifyErr
	}
	if g.Verify == nil {
		return &domain.PaymentVerification{Reference: reference, Status: domain.PaymentPending}, nil
	}
	v := *g.Verify
	v.Reference = reference
	return &v, nil
}

// Published is one call to Publisher.Publish.
type Published struct {
	WorkspaceID string
	Kind        string
	Data        any
}

// Publisher records real-time publishes. Err makes Publish fail.
type Publisher struct {
	mu        sync.Mutex
	Err       error
	published []Published
}

func (p *Publisher) Publish(ctx context.Context, workspaceID, kind string, data any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.published = append(p.published, Published{WorkspaceID: workspaceID, Kind: kind, Data: data})
	return nil
}

func (p *Publisher) Published() []Published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Published(nil), p.published...)
}
