package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connecta/collabo-backend/config"
	"github.com/connecta/collabo-backend/internal/collabo/collabotest"
	"github.com/connecta/collabo-backend/internal/collabo/domain"
)

func createdProject(t *testing.T, store *collabotest.Store) *domain.CreatedProject {
	t.Helper()
	store.AddUser(domain.UserSummary{ID: "client-1", Email: "client@example.com"})
	svc := NewProjectService(store, nil, &collabotest.Gateway{}, &collabotest.Events{}, config.CollaboConfig{}, "NGN")
	created, err := svc.Create(context.Background(), "client-1", teamProjectRequest())
	require.NoError(t, err)
	return created
}

func TestMatcher_AcceptRole(t *testing.T) {
	store := collabotest.NewStore(true)
	created := createdProject(t, store)
	m := NewMatcher(store, 5)
	ctx := context.Background()

	roleID := created.Roles[0].ID
	role, err := m.AcceptRole(ctx, roleID, "freelancer-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleFilled, role.Status)
	require.NotNil(t, role.FreelancerID)
	assert.Equal(t, "freelancer-1", *role.FreelancerID)

	ws, err := store.GetWorkspaceByProject(ctx, created.Project.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{roleID}, ws.Channel(domain.DefaultChannel).RoleIDs)

	_, err = m.AcceptRole(ctx, roleID, "freelancer-2")
	assert.ErrorIs(t, err, domain.ErrRoleUnavailable)

	_, err = m.AcceptRole(ctx, "no-such-role", "freelancer-2")
	assert.ErrorIs(t, err, domain.ErrRoleUnavailable)
}

func TestMatcher_ConcurrentAcceptHasOneWinner(t *testing.T) {
	for _, strict := range []bool{true, false} {
		t.Run(fmt.Sprintf("strict=%v", strict), func(t *testing.T) {
			store := collabotest.NewStore(strict)
			created := createdProject(t, store)
			m := NewMatcher(store, 5)
			roleID := created.Roles[1].ID

			const contenders = 16
			var wg sync.WaitGroup
			results := make([]error, contenders)
			for i := 0; i < contenders; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, results[i] = m.AcceptRole(context.Background(), roleID, fmt.Sprintf("freelancer-%d", i))
				}(i)
			}
			wg.Wait()

			winner := -1
			for i, err := range results {
				if err == nil {
					require.Equal(t, -1, winner, "more than one contender won")
					winner = i
					continue
				}
				assert.ErrorIs(t, err, domain.ErrRoleUnavailable)
			}
			require.NotEqual(t, -1, winner)

			role, err := store.GetRole(context.Background(), roleID)
			require.NoError(t, err)
			assert.Equal(t, fmt.Sprintf("freelancer-%d", winner), *role.FreelancerID)

			ws := store.Workspaces()[0]
			assert.Equal(t, []string{roleID}, ws.Channel(domain.DefaultChannel).RoleIDs)
		})
	}
}

func TestMatcher_AcceptRoleRollsBackInStrictMode(t *testing.T) {
	store := collabotest.NewStore(true)
	created := createdProject(t, store)
	m := NewMatcher(store, 5)

	store.FailOn("AddRoleToChannel", errors.New("deadlock detected"))
	_, err := m.AcceptRole(context.Background(), created.Roles[0].ID, "freelancer-1")
	require.Error(t, err)

	role, err := store.GetRole(context.Background(), created.Roles[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOpen, role.Status)
	assert.Nil(t, role.FreelancerID)
}

func TestMatcher_AutoInvite(t *testing.T) {
	store := collabotest.NewStore(true)
	created := createdProject(t, store)
	store.AddProfile("gopher", "Go", "Kubernetes")
	store.AddProfile("generalist", "Go", "Figma")
	store.AddProfile("painter", "Oil")

	m := NewMatcher(store, 5)
	sent, err := m.AutoInvite(context.Background(), created.Project.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, sent)

	byUser := map[string][]string{}
	for _, n := range store.Notifications() {
		assert.Equal(t, domain.NotificationCollaboInvite, n.Type)
		assert.Equal(t, "project", n.RelatedType)
		assert.Equal(t, "/collabo/invite/"+n.RelatedID, n.Link)
		assert.False(t, n.IsRead)
		byUser[n.UserID] = append(byUser[n.UserID], n.RelatedID)
	}

	backend, designer := created.Roles[0], created.Roles[2]
	assert.Equal(t, []string{backend.ID}, byUser["gopher"])
	assert.ElementsMatch(t, []string{backend.ID, designer.ID}, byUser["generalist"], "one invite per matching role")
	assert.NotContains(t, byUser, "painter")
}

func TestMatcher_AutoInviteMessage(t *testing.T) {
	n := inviteNotification(domain.Role{ID: "r1", Title: "Backend Engineer", Budget: 3000}, "u1", utcNow())
	assert.Equal(t, "Team Invite: Backend Engineer", n.Title)
	assert.Equal(t, "You've been matched for a team project role: Backend Engineer ($3000).", n.Message)
}

func TestMatcher_AutoInviteRespectsLimit(t *testing.T) {
	store := collabotest.NewStore(true)
	created := createdProject(t, store)
	for i := 0; i < 8; i++ {
		store.AddProfile(fmt.Sprintf("flutter-%d", i), "Flutter")
	}

	sent, err := NewMatcher(store, 3).AutoInvite(context.Background(), created.Project.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, sent)
}

func TestMatcher_AutoInviteSkipsFilledRoles(t *testing.T) {
	store := collabotest.NewStore(true)
	created := createdProject(t, store)
	store.AddProfile("gopher", "Go")
	m := NewMatcher(store, 5)

	_, err := m.AcceptRole(context.Background(), created.Roles[0].ID, "someone")
	require.NoError(t, err)

	sent, err := m.AutoInvite(context.Background(), created.Project.ID)
	require.NoError(t, err)
	assert.Zero(t, sent)
}

func TestMatcher_AutoInviteReportsFailures(t *testing.T) {
	store := collabotest.NewStore(true)
	created := createdProject(t, store)
	store.AddProfile("gopher", "Go")
	store.FailOn("InsertNotification", errors.New("disk full"))

	sent, err := NewMatcher(store, 5).AutoInvite(context.Background(), created.Project.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Zero(t, sent)
}

func TestMatcher_AutoInviteRerunAddsNothing(t *testing.T) {
	store := collabotest.NewStore(true)
	created := createdProject(t, store)
	store.AddProfile("gopher", "Go")
	store.AddProfile("generalist", "Go", "Figma")
	m := NewMatcher(store, 5)

	_, err := m.AutoInvite(context.Background(), created.Project.ID)
	require.NoError(t, err)
	first := store.Notifications()
	require.Len(t, first, 3)

	_, err = m.AutoInvite(context.Background(), created.Project.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, first, store.Notifications())
}

func TestMatcher_AutoInviteFillsInAfterPartialFailure(t *testing.T) {
	store := collabotest.NewStore(true)
	created := createdProject(t, store)
	store.AddProfile("gopher", "Go")
	store.AddProfile("rustacean", "Go")
	store.FailNotificationsFor("rustacean", errors.New("connection reset"))
	m := NewMatcher(store, 5)

	sent, err := m.AutoInvite(context.Background(), created.Project.ID)
	require.Error(t, err)
	assert.Equal(t, 1, sent)

	store.ClearFailures()
	_, err = m.AutoInvite(context.Background(), created.Project.ID)
	require.NoError(t, err)

	count := map[string]int{}
	for _, n := range store.Notifications() {
		count[n.UserID]++
	}
	assert.Equal(t, map[string]int{"gopher": 1, "rustacean": 1}, count)
}

func TestMatcher_InviteIDIsPerRoleAndUser(t *testing.T) {
	assert.Equal(t, inviteID("r1", "u1"), inviteID("r1", "u1"))
	assert.NotEqual(t, inviteID("r1", "u1"), inviteID("r2", "u1"))
	assert.NotEqual(t, inviteID("r1", "u1"), inviteID("r1", "u2"))
}

func TestMatcher_GetRole(t *testing.T) {
	store := collabotest.NewStore(true)
	created := createdProject(t, store)
	m := NewMatcher(store, 0)

	details, err := m.GetRole(context.Background(), created.Roles[3].ID)
	require.NoError(t, err)
	assert.Equal(t, "QA Engineer", details.Role.Title)
	assert.Equal(t, created.Project.ID, details.Project.ID)

	_, err = m.GetRole(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrRoleNotFound)
}
