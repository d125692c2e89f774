package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/connecta/collabo-backend/internal/collabo/domain"
)

const projectColumns = `
p.id, p.client_id, p.title, p.description, p.total_budget::float8, p.status,
p.milestones::text, p.recommended_stack, p.risks, p.category, p.niche, p.project_type,
p.scope, p.duration, p.duration_type, coalesce(w.id, ''), p.created_at, p.updated_at`

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	var milestones string
	if err := row.Scan(
		&p.ID, &p.ClientID, &p.Title, &p.Description, &p.TotalBudget, &p.Status,
		&milestones, &p.RecommendedStack, &p.Risks, &p.Category, &p.Niche, &p.ProjectType,
		&p.Scope, &p.Duration, &p.DurationType, &p.WorkspaceID, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(milestones), &p.Milestones); err != nil {
		return nil, fmt.Errorf("decode milestones: %w", err)
	}
	return &p, nil
}

func (q *Queries) InsertProject(ctx context.Context, p *domain.Project) error {
	milestones, err := json.Marshal(nonNilMilestones(p.Milestones))
	if err != nil {
		return fmt.Errorf("encode milestones: %w", err)
	}

	const stmt = `
insert into collabo_projects (
  id, client_id, title, description, total_budget, status, milestones, recommended_stack,
  risks, category, niche, project_type, scope, duration, duration_type, created_at, updated_at
) values ($1, $2, $3, $4, $5, $6, $7::jsonb, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
`
	_, err = q.db.Exec(ctx, stmt,
		p.ID, p.ClientID, p.Title, p.Description, p.TotalBudget, p.Status, string(milestones),
		nonNil(p.RecommendedStack), nonNil(p.Risks), p.Category, p.Niche, p.ProjectType,
		p.Scope, p.Duration, p.DurationType, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (q *Queries) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	stmt := `select ` + projectColumns + `
from collabo_projects p
left join collabo_workspaces w on w.project_id = p.id
where p.id = $1`

	p, err := scanProject(q.db.QueryRow(ctx, stmt, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (q *Queries) ListProjectsByClient(ctx context.Context, clientID string) ([]domain.Project, error) {
	stmt := `select ` + projectColumns + `
from collabo_projects p
left join collabo_workspaces w on w.project_id = p.id
where p.client_id = $1
order by p.created_at desc`

	rows, err := q.db.Query(ctx, stmt, clientID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (q *Queries) SetProjectStatus(ctx context.Context, id string, status domain.ProjectStatus) (*domain.Project, error) {
	const stmt = `update collabo_projects set status = $2, updated_at = now() where id = $1`
	ct, err := q.db.Exec(ctx, stmt, id, status)
	if err != nil {
		return nil, fmt.Errorf("update project status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return nil, domain.ErrProjectNotFound
	}
	return q.GetProject(ctx, id)
}

func (q *Queries) ListProjectsWithoutWorkspace(ctx context.Context, createdBefore time.Time) ([]string, error) {
	const stmt = `
select p.id
from collabo_projects p
left join collabo_workspaces w on w.project_id = p.id
where w.id is null and p.created_at < $1
order by p.created_at`

	rows, err := q.db.Query(ctx, stmt, createdBefore)
	if err != nil {
		return nil, fmt.Errorf("list orphan projects: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilMilestones(m []domain.Milestone) []domain.Milestone {
	if m == nil {
		return []domain.Milestone{}
	}
	return m
}
