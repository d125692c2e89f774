package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/connecta/collabo-backend/internal/collabo/domain"
)

const roleColumns = `id, project_id, title, description, budget::float8, skills, status, freelancer_id, created_at, updated_at`

func scanRole(row pgx.Row) (*domain.Role, error) {
	var r domain.Role
	if err := row.Scan(
		&r.ID, &r.ProjectID, &r.Title, &r.Description, &r.Budget, &r.Skills,
		&r.Status, &r.FreelancerID, &r.CreatedAt, &r.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &r, nil
}

func (q *Queries) InsertRoles(ctx context.Context, roles []domain.Role) error {
	if len(roles) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	const stmt = `
insert into collabo_roles (id, project_id, title, description, budget, skills, status, freelancer_id, created_at, updated_at)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for _, r := range roles {
		batch.Queue(stmt, r.ID, r.ProjectID, r.Title, r.Description, r.Budget, nonNil(r.Skills),
			r.Status, r.FreelancerID, r.CreatedAt, r.UpdatedAt)
	}

	br := q.db.SendBatch(ctx, batch)
	defer br.Close()
	for range roles {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert role: %w", err)
		}
	}
	return nil
}

func (q *Queries) GetRole(ctx context.Context, id string) (*domain.Role, error) {
	r, err := scanRole(q.db.QueryRow(ctx, `select `+roleColumns+` from collabo_roles where id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, fmt.Errorf("get role: %w", err)
	}
	return r, nil
}

func (q *Queries) ListRoles(ctx context.Context, projectID string, status domain.RoleStatus) ([]domain.Role, error) {
	stmt := `select ` + roleColumns + ` from collabo_roles where project_id = $1 and ($2::text = '' or status = $2) order by created_at, id`

	rows, err := q.db.Query(ctx, stmt, projectID, string(status))
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	out := []domain.Role{}
	for rows.Next() {
		r, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (q *Queries) ClaimRole(ctx context.Context, roleID, freelancerID string) (*domain.Role, error) {
	stmt := `
update collabo_roles
set freelancer_id = $2, status = 'filled', updated_at = now()
where id = $1 and status = 'open'
returning ` + roleColumns

	r, err := scanRole(q.db.QueryRow(ctx, stmt, roleID, freelancerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRoleUnavailable
		}
		return nil, fmt.Errorf("claim role: %w", err)
	}
	return r, nil
}
