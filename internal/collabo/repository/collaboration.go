package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/connecta/collabo-backend/internal/collabo/domain"
)

func (q *Queries) InsertMessage(ctx context.Context, m *domain.Message) error {
	const stmt = `
insert into collabo_messages (id, workspace_id, channel_name, sender_id, sender_role, content, created_at)
values ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := q.db.Exec(ctx, stmt, m.ID, m.WorkspaceID, m.ChannelName, m.SenderID, m.SenderRole, m.Content, m.CreatedAt); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (q *Queries) ListMessages(ctx context.Context, workspaceID, channel string) ([]domain.Message, error) {
	const stmt = `
select m.id, m.workspace_id, m.channel_name, m.sender_id, m.sender_role, m.content, m.created_at,
       u.id, coalesce(u.display_name, ''), coalesce(u.photo_url, '')
from collabo_messages m
left join users u on u.id = m.sender_id
where m.workspace_id = $1 and m.channel_name = $2
order by m.created_at asc`

	rows, err := q.db.Query(ctx, stmt, workspaceID, channel)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	out := []domain.Message{}
	for rows.Next() {
		var m domain.Message
		var userID *string
		var name, photo string
		if err := rows.Scan(&m.ID, &m.WorkspaceID, &m.ChannelName, &m.SenderID, &m.SenderRole, &m.Content, &m.CreatedAt,
			&userID, &name, &photo); err != nil {
			return nil, err
		}
		m.Sender = summary(userID, name, photo)
		out = append(out, m)
	}
	return out, rows.Err()
}

const taskColumns = `id, workspace_id, title, description, status, priority, assignee_id, created_by, due_date, created_at, updated_at`

const selectTask = `
select t.id, t.workspace_id, t.title, t.description, t.status, t.priority, t.assignee_id, t.created_by, t.due_date,
       t.created_at, t.updated_at, u.id, coalesce(u.display_name, ''), coalesce(u.photo_url, '')
from collabo_tasks t
left join users u on u.id = t.assignee_id`

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	var userID *string
	var name, photo string
	if err := row.Scan(&t.ID, &t.WorkspaceID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.AssigneeID, &t.CreatedBy, &t.DueDate, &t.CreatedAt, &t.UpdatedAt, &userID, &name, &photo); err != nil {
		return nil, err
	}
	t.Assignee = summary(userID, name, photo)
	return &t, nil
}

// summary builds the joined user of a left join; nil when no user matched.
func summary(userID *string, name, photo string) *domain.UserSummary {
	if userID == nil {
		return nil
	}
	return &domain.UserSummary{ID: *userID, DisplayName: name, PhotoURL: photo}
}

func (q *Queries) InsertTask(ctx context.Context, t *domain.Task) error {
	const stmt = `
insert into collabo_tasks (` + taskColumns + `)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	if _, err := q.db.Exec(ctx, stmt, t.ID, t.WorkspaceID, t.Title, t.Description, t.Status, t.Priority,
		t.AssigneeID, t.CreatedBy, t.DueDate, t.CreatedAt, t.UpdatedAt); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (q *Queries) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	t, err := scanTask(q.db.QueryRow(ctx, selectTask+` where t.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (q *Queries) UpdateTask(ctx context.Context, t *domain.Task) error {
	const stmt = `
update collabo_tasks
set title = $2, description = $3, status = $4, priority = $5, assignee_id = $6, due_date = $7, updated_at = $8
where id = $1`
	ct, err := q.db.Exec(ctx, stmt, t.ID, t.Title, t.Description, t.Status, t.Priority, t.AssigneeID, t.DueDate, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (q *Queries) ListTasks(ctx context.Context, workspaceID string) ([]domain.Task, error) {
	rows, err := q.db.Query(ctx, selectTask+` where t.workspace_id = $1 order by t.created_at desc`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	out := []domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (q *Queries) InsertFile(ctx context.Context, f *domain.File) error {
	const stmt = `
insert into collabo_files (id, workspace_id, uploader_id, name, mime_type, size_bytes, url, created_at)
values ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := q.db.Exec(ctx, stmt, f.ID, f.WorkspaceID, f.UploaderID, f.Name, f.MimeType, f.Size, f.URL, f.CreatedAt); err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	return nil
}

func (q *Queries) ListFiles(ctx context.Context, workspaceID string) ([]domain.File, error) {
	const stmt = `
select f.id, f.workspace_id, f.uploader_id, f.name, f.mime_type, f.size_bytes, f.url, f.created_at,
       u.id, coalesce(u.display_name, ''), coalesce(u.photo_url, '')
from collabo_files f
left join users u on u.id = f.uploader_id
where f.workspace_id = $1
order by f.created_at desc`

	rows, err := q.db.Query(ctx, stmt, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	out := []domain.File{}
	for rows.Next() {
		var f domain.File
		var userID *string
		var name, photo string
		if err := rows.Scan(&f.ID, &f.WorkspaceID, &f.UploaderID, &f.Name, &f.MimeType, &f.Size, &f.URL, &f.CreatedAt,
			&userID, &name, &photo); err != nil {
			return nil, err
		}
		f.Uploader = summary(userID, name, photo)
		out = append(out, f)
	}
	return out, rows.Err()
}
