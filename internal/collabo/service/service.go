package service

import (
	"context"
	"time"

	"github.com/connecta/collabo-backend/internal/collabo/domain"
)

// PaymentGateway opens hosted checkout sessions and reports their outcome.
type PaymentGateway interface {
	InitializePayment(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutSession, error)
	VerifyPayment(ctx context.Context, reference string) (*domain.PaymentVerification, error)
}

// EventPublisher queues side effects that must not block the caller.
type EventPublisher interface {
	Enqueue(ctx context.Context, eventType string, payload any) error
}

// RealtimePublisher pushes a workspace mutation to connected clients.
type RealtimePublisher interface {
	Publish(ctx context.Context, workspaceID, kind string, data any) error
}

type clock func() time.Time

func utcNow() time.Time {
	return time.Now().UTC()
}
