package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/connecta/collabo-backend/internal/collabo/domain"
)

const uniqueViolation = "23505"

func (q *Queries) InsertWorkspace(ctx context.Context, w *domain.Workspace) error {
	const stmt = `insert into collabo_workspaces (id, project_id, created_at) values ($1, $2, $3)`
	if _, err := q.db.Exec(ctx, stmt, w.ID, w.ProjectID, w.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrWorkspaceExists
		}
		return fmt.Errorf("insert workspace: %w", err)
	}

	const chStmt = `insert into collabo_channels (workspace_id, name, role_ids, position) values ($1, $2, $3, $4)`
	for i, ch := range w.Channels {
		if _, err := q.db.Exec(ctx, chStmt, w.ID, ch.Name, nonNil(ch.RoleIDs), i); err != nil {
			return fmt.Errorf("insert channel %s: %w", ch.Name, err)
		}
	}
	return nil
}

func (q *Queries) GetWorkspace(ctx context.Context, id string) (*domain.Workspace, error) {
	return q.getWorkspace(ctx, `select id, project_id, created_at from collabo_workspaces where id = $1`, id)
}

func (q *Queries) GetWorkspaceByProject(ctx context.Context, projectID string) (*domain.Workspace, error) {
	return q.getWorkspace(ctx, `select id, project_id, created_at from collabo_workspaces where project_id = $1`, projectID)
}

func (q *Queries) getWorkspace(ctx context.Context, stmt, arg string) (*domain.Workspace, error) {
	var w domain.Workspace
	if err := q.db.QueryRow(ctx, stmt, arg).Scan(&w.ID, &w.ProjectID, &w.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("get workspace: %w", err)
	}

	rows, err := q.db.Query(ctx, `select name, role_ids from collabo_channels where workspace_id = $1 order by position, name`, w.ID)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	defer rows.Close()

	w.Channels = []domain.Channel{}
	for rows.Next() {
		var ch domain.Channel
		if err := rows.Scan(&ch.Name, &ch.RoleIDs); err != nil {
			return nil, err
		}
		w.Channels = append(w.Channels, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &w, nil
}

func (q *Queries) AddRoleToChannel(ctx context.Context, projectID, channel, roleID string) error {
	const stmt = `
update collabo_channels c
set role_ids = array_append(c.role_ids, $3)
from collabo_workspaces w
where w.id = c.workspace_id
  and w.project_id = $1
  and c.name = $2
  and not ($3 = any(c.role_ids))`

	if _, err := q.db.Exec(ctx, stmt, projectID, channel, roleID); err != nil {
		return fmt.Errorf("add role to channel: %w", err)
	}
	return nil
}
