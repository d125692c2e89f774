package service

import (
	"context"

	"github.com/connecta/collabo-backend/internal/collabo/domain"
	"github.com/connecta/collabo-backend/internal/events"
)

// RegisterEventHandlers wires the collabo side effects into the dispatcher.
func RegisterEventHandlers(d *events.Dispatcher, matcher *Matcher, publisher RealtimePublisher) {
	d.Handle(domain.EventProjectActivated, func(ctx context.Context, ev events.Event) error {
		var p domain.ProjectActivatedPayload
		if err := ev.Decode(&p); err != nil {
			return err
		}
		_, err := matcher.AutoInvite(ctx, p.ProjectID)
		return err
	})

	d.Handle(domain.EventMessageCreated, func(ctx context.Context, ev events.Event) error {
		var m domain.Message
		if err := ev.Decode(&m); err != nil {
			return err
		}
		return publisher.Publish(ctx, m.WorkspaceID, domain.RealtimeMessage, m)
	})

	d.Handle(domain.EventTaskUpdated, func(ctx context.Context, ev events.Event) error {
		var t domain.Task
		if err := ev.Decode(&t); err != nil {
			return err
		}
		return publisher.Publish(ctx, t.WorkspaceID, domain.RealtimeTaskUpdate, t)
	})

	d.Handle(domain.EventFileUploaded, func(ctx context.Context, ev events.Event) error {
		var f domain.File
		if err := ev.Decode(&f); err != nil {
			return err
		}
		return publisher.Publish(ctx, f.WorkspaceID, domain.RealtimeFileUpload, f)
	})
}
