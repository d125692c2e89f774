package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/connecta/collabo-backend/internal/collabo/domain"
)

// Users, profiles and notifications belong to the wider marketplace; the
// collabo workflow only reads users and profiles and appends notifications.

func (q *Queries) GetUser(ctx context.Context, id string) (*domain.UserSummary, error) {
	const stmt = `
select id, coalesce(email, ''), coalesce(display_name, ''), coalesce(photo_url, '')
from users
where id = $1`

	var u domain.UserSummary
	if err := q.db.QueryRow(ctx, stmt, id).Scan(&u.ID, &u.Email, &u.DisplayName, &u.PhotoURL); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// FindProfilesBySkills returns up to limit profiles sharing at least one skill.
// Order is whatever the planner produces; no ranking is applied.
func (q *Queries) FindProfilesBySkills(ctx context.Context, skills []string, limit int) ([]domain.Profile, error) {
	rows, err := q.db.Query(ctx, `select user_id, skills from profiles where skills && $1::text[] limit $2`, skills, limit)
	if err != nil {
		return nil, fmt.Errorf("find profiles: %w", err)
	}
	defer rows.Close()

	var out []domain.Profile
	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(&p.UserID, &p.Skills); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (q *Queries) InsertNotification(ctx context.Context, n *domain.Notification) error {
	const stmt = `
insert into notifications (id, user_id, type, title, message, related_id, related_type, link, is_read, created_at)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
on conflict (id) do nothing`
	if _, err := q.db.Exec(ctx, stmt, n.ID, n.UserID, n.Type, n.Title, n.Message, n.RelatedID, n.RelatedType,
		n.Link, n.IsRead, n.CreatedAt); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}
