package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connecta/collabo-backend/config"
	"github.com/connecta/collabo-backend/internal/collabo/collabotest"
	"github.com/connecta/collabo-backend/internal/collabo/domain"
)

var createdAt = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) clock { return func() time.Time { return t } }

// interleavedStore runs the reconciler between the role and workspace writes
// of a best-effort create, the window a scheduled job can hit.
type interleavedStore struct {
	*collabotest.Store
	reconciler *Reconciler
	repaired   []string
	reconErr   error
}

func (s *interleavedStore) Atomic(ctx context.Context, fn func(tx domain.Repository) error) error {
	return fn(s)
}

func (s *interleavedStore) InsertRoles(ctx context.Context, roles []domain.Role) error {
	if err := s.Store.InsertRoles(ctx, roles); err != nil {
		return err
	}
	s.repaired, s.reconErr = s.reconciler.Reconcile(ctx)
	return nil
}

func newInterleaved(grace time.Duration, reconcileAt time.Time) (*interleavedStore, *ProjectService) {
	inner := collabotest.NewStore(false)
	inner.AddUser(domain.UserSummary{ID: "client-1", Email: "client@example.com"})

	r := NewReconciler(inner, grace)
	r.now = fixedClock(reconcileAt)
	store := &interleavedStore{Store: inner, reconciler: r}

	svc := NewProjectService(store, nil, &collabotest.Gateway{}, &collabotest.Events{},
		config.CollaboConfig{DurabilityMode: config.DurabilityBestEffort}, "NGN")
	svc.now = fixedClock(createdAt)
	return store, svc
}

func TestReconciler_LeavesInFlightCreateAlone(t *testing.T) {
	store, svc := newInterleaved(5*time.Minute, createdAt.Add(time.Second))

	created, err := svc.Create(context.Background(), "client-1", teamProjectRequest())
	require.NoError(t, err)
	require.NoError(t, store.reconErr)
	assert.Empty(t, store.repaired)

	ws := store.Workspaces()
	require.Len(t, ws, 1)
	assert.Equal(t, created.Workspace.ID, ws[0].ID)
	assert.Equal(t, ws[0].ID, created.Project.WorkspaceID)
}

func TestProjectService_CreateAdoptsReconciledWorkspace(t *testing.T) {
	// grace zero and a late clock make the reconciler claim the fresh project
	store, svc := newInterleaved(0, createdAt.Add(time.Hour))

	created, err := svc.Create(context.Background(), "client-1", teamProjectRequest())
	require.NoError(t, err)
	require.NoError(t, store.reconErr)
	assert.Equal(t, []string{created.Project.ID}, store.repaired)

	ws := store.Workspaces()
	require.Len(t, ws, 1, "a project owns exactly one workspace")
	assert.Equal(t, ws[0].ID, created.Workspace.ID)
	assert.Equal(t, ws[0].ID, created.Project.WorkspaceID)

	got, err := store.GetProject(context.Background(), created.Project.ID)
	require.NoError(t, err)
	assert.Equal(t, ws[0].ID, got.WorkspaceID)
}

func TestReconciler_GraceWindow(t *testing.T) {
	f := newProjectFixture(t, false, config.CollaboConfig{})
	f.svc.now = fixedClock(createdAt)
	f.store.FailOn("InsertWorkspace", errors.New("connection reset"))

	_, err := f.svc.Create(context.Background(), "client-1", teamProjectRequest())
	require.Error(t, err)
	f.store.ClearFailures()

	r := NewReconciler(f.store, 5*time.Minute)

	r.now = fixedClock(createdAt.Add(time.Minute))
	repaired, err := r.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Empty(t, repaired)
	assert.Empty(t, f.store.Workspaces())

	r.now = fixedClock(createdAt.Add(10 * time.Minute))
	repaired, err = r.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Len(t, repaired, 1)
	assert.Len(t, f.store.Workspaces(), 1)

	repaired, err = r.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Empty(t, repaired)
}

func TestMemoryStore_OneWorkspacePerProject(t *testing.T) {
	store := collabotest.NewStore(false)
	ctx := context.Background()

	require.NoError(t, store.InsertWorkspace(ctx, newWorkspace("p1", createdAt)))
	err := store.InsertWorkspace(ctx, newWorkspace("p1", createdAt))
	assert.ErrorIs(t, err, domain.ErrWorkspaceExists)
	assert.Len(t, store.Workspaces(), 1)
}
