package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/connecta/collabo-backend/internal/collabo/domain"
	"github.com/connecta/collabo-backend/internal/logging"
)

// Reconciler repairs projects that a best-effort create left without a
// workspace. Roles already filled are placed in the new General channel.
// Projects younger than grace are left alone so a create still in flight
// keeps ownership of its workspace.
type Reconciler struct {
	store domain.Store
	grace time.Duration
	now   clock
}

func NewReconciler(store domain.Store, grace time.Duration) *Reconciler {
	return &Reconciler{store: store, grace: grace, now: utcNow}
}

// Reconcile returns the ids of the repaired projects.
func (r *Reconciler) Reconcile(ctx context.Context) ([]string, error) {
	log := logging.FromContext(ctx)

	ids, err := r.store.ListProjectsWithoutWorkspace(ctx, r.now().Add(-r.grace))
	if err != nil {
		return nil, fmt.Errorf("list projects without workspace: %w", err)
	}

	var repaired []string
	var errs []error
	for _, id := range ids {
		err := r.repair(ctx, id)
		if errors.Is(err, domain.ErrWorkspaceExists) {
			continue
		}
		if err != nil {
			log.Error("repair project workspace", zap.String("project_id", id), zap.Error(err))
			errs = append(errs, fmt.Errorf("project %s: %w", id, err))
			continue
		}
		repaired = append(repaired, id)
	}

	if len(repaired) > 0 {
		log.Info("repaired projects without workspace", zap.Strings("project_ids", repaired))
	}
	return repaired, errors.Join(errs...)
}

func (r *Reconciler) repair(ctx context.Context, projectID string) error {
	roles, err := r.store.ListRoles(ctx, projectID, domain.RoleFilled)
	if err != nil {
		return err
	}

	ws := newWorkspace(projectID, r.now())
	for _, role := range roles {
		ws.Channels[0].RoleIDs = append(ws.Channels[0].RoleIDs, role.ID)
	}
	return r.store.InsertWorkspace(ctx, ws)
}
