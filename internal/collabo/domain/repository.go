package domain

import (
	"context"
	"time"
)

// Repository is the persistence surface of the collabo workflow. Lookups of a
// missing entity return the matching Err*NotFound sentinel.
type Repository interface {
	InsertProject(ctx context.Context, p *Project) error
	GetProject(ctx context.Context, id string) (*Project, error)
	ListProjectsByClient(ctx context.Context, clientID string) ([]Project, error)
	SetProjectStatus(ctx context.Context, id string, status ProjectStatus) (*Project, error)
	// ListProjectsWithoutWorkspace returns projects created before createdBefore
	// that have no workspace, oldest first.
	ListProjectsWithoutWorkspace(ctx context.Context, createdBefore time.Time) ([]string, error)

	InsertRoles(ctx context.Context, roles []Role) error
	GetRole(ctx context.Context, id string) (*Role, error)
	// ListRoles returns the roles of a project; an empty status returns all of them.
	ListRoles(ctx context.Context, projectID string, status RoleStatus) ([]Role, error)
	// ClaimRole binds freelancerID to the role only while it is still open.
	// It returns ErrRoleUnavailable when no open role matched.
	ClaimRole(ctx context.Context, roleID, freelancerID string) (*Role, error)

	// InsertWorkspace returns ErrWorkspaceExists when the project already has one.
	InsertWorkspace(ctx context.Context, w *Workspace) error
	GetWorkspace(ctx context.Context, id string) (*Workspace, error)
	GetWorkspaceByProject(ctx context.Context, projectID string) (*Workspace, error)
	// AddRoleToChannel adds roleID to the channel of the project's workspace. Adding
	// a role that is already present is a no-op.
	AddRoleToChannel(ctx context.Context, projectID, channel, roleID string) error

	InsertMessage(ctx context.Context, m *Message) error
	ListMessages(ctx context.Context, workspaceID, channel string) ([]Message, error)

	InsertTask(ctx context.Context, t *Task) error
	GetTask(ctx context.Context, id string) (*Task, error)
	UpdateTask(ctx context.Context, t *Task) error
	ListTasks(ctx context.Context, workspaceID string) ([]Task, error)

	InsertFile(ctx context.Context, f *File) error
	ListFiles(ctx context.Context, workspaceID string) ([]File, error)

	InsertPayment(ctx context.Context, p *Payment) error
	GetPayment(ctx context.Context, id string) (*Payment, error)
	SetPaymentReference(ctx context.Context, id, reference string) error
	SetPaymentStatus(ctx context.Context, id string, status PaymentStatus) error
	HasSuccessfulPayment(ctx context.Context, projectID string) (bool, error)

	GetUser(ctx context.Context, id string) (*UserSummary, error)
	FindProfilesBySkills(ctx context.Context, skills []string, limit int) ([]Profile, error)
	// InsertNotification is a no-op when a notification with n.ID exists.
	InsertNotification(ctx context.Context, n *Notification) error
}

// Store is a Repository that can group writes.
type Store interface {
	Repository
	// Atomic runs fn so that its writes commit or roll back together when the
	// store runs in strict durability mode. In best-effort mode fn runs against
	// the store directly and earlier writes survive a later failure.
	Atomic(ctx context.Context, fn func(tx Repository) error) error
}
