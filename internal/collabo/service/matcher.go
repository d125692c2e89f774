package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/connecta/collabo-backend/internal/collabo/domain"
	"github.com/connecta/collabo-backend/internal/logging"
)

// Matcher invites freelancers to open roles and binds accepted roles to the workspace.
type Matcher struct {
	store domain.Store
	limit int
	now   clock
}

func NewMatcher(store domain.Store, inviteLimit int) *Matcher {
	if inviteLimit <= 0 {
		inviteLimit = 5
	}
	return &Matcher{store: store, limit: inviteLimit, now: utcNow}
}

// AutoInvite notifies up to the invite limit of freelancers per open role
// whose skills overlap the role's. Invites are not deduplicated across roles.
// Each invite has a stable id per (role, freelancer), so rerunning AutoInvite
// after a partial failure only fills in the invites that are missing.
// Failures are logged and joined into the returned error.
func (m *Matcher) AutoInvite(ctx context.Context, projectID string) (int, error) {
	log := logging.FromContext(ctx).With(zap.String("project_id", projectID))

	roles, err := m.store.ListRoles(ctx, projectID, domain.RoleOpen)
	if err != nil {
		return 0, fmt.Errorf("list open roles: %w", err)
	}

	sent := 0
	var errs []error
	for _, role := range roles {
		if len(role.Skills) == 0 {
			continue
		}

		profiles, err := m.store.FindProfilesBySkills(ctx, role.Skills, m.limit)
		if err != nil {
			log.Error("find matching profiles", zap.String("role_id", role.ID), zap.Error(err))
			errs = append(errs, fmt.Errorf("role %s: %w", role.ID, err))
			continue
		}

		for _, profile := range profiles {
			n := inviteNotification(role, profile.UserID, m.now())
			if err := m.store.InsertNotification(ctx, n); err != nil {
				log.Error("create invite", zap.String("role_id", role.ID), zap.String("user_id", profile.UserID), zap.Error(err))
				errs = append(errs, fmt.Errorf("role %s invite %s: %w", role.ID, profile.UserID, err))
				continue
			}
			sent++
		}
	}

	log.Info("auto-invite finished", zap.Int("roles", len(roles)), zap.Int("invites", sent))
	return sent, errors.Join(errs...)
}

// inviteNamespace scopes invite notification ids.
var inviteNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("connecta:collabo:invite"))

func inviteID(roleID, userID string) string {
	return uuid.NewSHA1(inviteNamespace, []byte(roleID+"/"+userID)).String()
}

func inviteNotification(role domain.Role, userID string, now time.Time) *domain.Notification {
	return &domain.Notification{
		ID:          inviteID(role.ID, userID),
		UserID:      userID,
		Type:        domain.NotificationCollaboInvite,
		Title:       "Team Invite: " + role.Title,
		Message:     fmt.Sprintf("You've been matched for a team project role: %s ($%g).", role.Title, role.Budget),
		RelatedID:   role.ID,
		RelatedType: "project",
		Link:        "/collabo/invite/" + role.ID,
		IsRead:      false,
		CreatedAt:   now,
	}
}

// AcceptRole binds freelancerID to the role if it is still open and adds the
// role to the General channel. ErrRoleUnavailable means someone else won.
func (m *Matcher) AcceptRole(ctx context.Context, roleID, freelancerID string) (*domain.Role, error) {
	var accepted *domain.Role
	err := m.store.Atomic(ctx, func(tx domain.Repository) error {
		role, err := tx.ClaimRole(ctx, roleID, freelancerID)
		if err != nil {
			return err
		}
		if err := tx.AddRoleToChannel(ctx, role.ProjectID, domain.DefaultChannel, role.ID); err != nil {
			return err
		}
		accepted = role
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("role accepted",
		zap.String("role_id", accepted.ID),
		zap.String("project_id", accepted.ProjectID),
		zap.String("freelancer_id", freelancerID),
	)
	return accepted, nil
}

// GetRole returns the role together with its project.
func (m *Matcher) GetRole(ctx context.Context, roleID string) (*domain.RoleDetails, error) {
	role, err := m.store.GetRole(ctx, roleID)
	if err != nil {
		return nil, err
	}
	project, err := m.store.GetProject(ctx, role.ProjectID)
	if err != nil {
		return nil, err
	}
	return &domain.RoleDetails{Role: role, Project: project}, nil
}
