package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/connecta/collabo-backend/internal/collabo/domain"
	"github.com/connecta/collabo-backend/internal/logging"
)

// WorkspaceService handles channel messages, tasks and files of a workspace.
// Every mutation is queued for real-time fan-out after it is persisted.
type WorkspaceService struct {
	store   domain.Store
	events  EventPublisher
	enforce bool
	now     clock
}

// NewWorkspaceService builds the service. With enforceMembership set, writers
// must own the project or hold a role listed in the target channel.
func NewWorkspaceService(store domain.Store, events EventPublisher, enforceMembership bool) *WorkspaceService {
	return &WorkspaceService{store: store, events: events, enforce: enforceMembership, now: utcNow}
}

func (s *WorkspaceService) GetWorkspace(ctx context.Context, workspaceID string) (*domain.Workspace, error) {
	return s.store.GetWorkspace(ctx, workspaceID)
}

func (s *WorkspaceService) SendMessage(ctx context.Context, req domain.SendMessageRequest) (*domain.Message, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, domain.Invalid("content is required")
	}
	if req.ChannelName == "" {
		req.ChannelName = domain.DefaultChannel
	}

	ws, err := s.store.GetWorkspace(ctx, req.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, ws, req.SenderID, req.ChannelName); err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ID:          uuid.New().String(),
		WorkspaceID: ws.ID,
		ChannelName: req.ChannelName,
		SenderID:    req.SenderID,
		SenderRole:  req.SenderRole,
		Content:     req.Content,
		CreatedAt:   s.now(),
	}
	if err := s.store.InsertMessage(ctx, msg); err != nil {
		return nil, err
	}

	msg.Sender = s.userSummary(ctx, req.SenderID)

	s.emit(ctx, domain.EventMessageCreated, msg)
	return msg, nil
}

// GetMessages returns the channel's messages oldest first.
func (s *WorkspaceService) GetMessages(ctx context.Context, workspaceID, channel string) ([]domain.Message, error) {
	if channel == "" {
		channel = domain.DefaultChannel
	}
	return s.store.ListMessages(ctx, workspaceID, channel)
}

func (s *WorkspaceService) CreateTask(ctx context.Context, req domain.CreateTaskRequest) (*domain.Task, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, domain.Invalid("title is required")
	}
	if req.Priority == "" {
		req.Priority = domain.PriorityMedium
	}
	if !req.Priority.Valid() {
		return nil, domain.Invalid("unknown task priority %q", req.Priority)
	}

	ws, err := s.store.GetWorkspace(ctx, req.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, ws, req.CreatedBy, ""); err != nil {
		return nil, err
	}

	if req.AssigneeID != nil && *req.AssigneeID == "" {
		req.AssigneeID = nil
	}

	now := s.now()
	task := &domain.Task{
		ID:          uuid.New().String(),
		WorkspaceID: ws.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Status:      domain.TaskTodo,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
		CreatedBy:   req.CreatedBy,
		DueDate:     req.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.InsertTask(ctx, task); err != nil {
		return nil, err
	}
	task.Assignee = s.assignee(ctx, task)
	return task, nil
}

// GetTasks returns the workspace's tasks newest first.
func (s *WorkspaceService) GetTasks(ctx context.Context, workspaceID string) ([]domain.Task, error) {
	return s.store.ListTasks(ctx, workspaceID)
}

// UpdateTask applies a partial update. Last write wins.
func (s *WorkspaceService) UpdateTask(ctx context.Context, taskID, userID string, req domain.UpdateTaskRequest) (*domain.Task, error) {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if s.enforce {
		ws, err := s.store.GetWorkspace(ctx, task.WorkspaceID)
		if err != nil {
			return nil, err
		}
		if err := s.authorize(ctx, ws, userID, ""); err != nil {
			return nil, err
		}
	}

	if err := req.Apply(task); err != nil {
		return nil, err
	}
	task.UpdatedAt = s.now()
	if err := s.store.UpdateTask(ctx, task); err != nil {
		return nil, err
	}
	task.Assignee = s.assignee(ctx, task)

	s.emit(ctx, domain.EventTaskUpdated, task)
	return task, nil
}

func (s *WorkspaceService) AddFile(ctx context.Context, req domain.AddFileRequest) (*domain.File, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, domain.Invalid("file name is required")
	}
	if req.URL == "" {
		return nil, domain.Invalid("file url is required")
	}
	if req.Size < 0 {
		return nil, domain.Invalid("file size must not be negative")
	}

	ws, err := s.store.GetWorkspace(ctx, req.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, ws, req.UploaderID, ""); err != nil {
		return nil, err
	}

	mime := req.MimeType
	if mime == "" {
		mime = "application/octet-stream"
	}
	file := &domain.File{
		ID:          uuid.New().String(),
		WorkspaceID: ws.ID,
		UploaderID:  req.UploaderID,
		Name:        req.Name,
		MimeType:    mime,
		Size:        req.Size,
		URL:         req.URL,
		CreatedAt:   s.now(),
	}
	if err := s.store.InsertFile(ctx, file); err != nil {
		return nil, err
	}
	file.Uploader = s.userSummary(ctx, req.UploaderID)

	s.emit(ctx, domain.EventFileUploaded, file)
	return file, nil
}

// GetFiles returns the workspace's files newest first.
func (s *WorkspaceService) GetFiles(ctx context.Context, workspaceID string) ([]domain.File, error) {
	return s.store.ListFiles(ctx, workspaceID)
}

// CanWrite reports whether userID may write to the workspace. Callers use it
// to reject uploads before any bytes reach file storage.
func (s *WorkspaceService) CanWrite(ctx context.Context, workspaceID, userID string) error {
	ws, err := s.store.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return err
	}
	return s.authorize(ctx, ws, userID, "")
}

// authorize checks channel membership when enforcement is on. An empty
// channel accepts membership of any channel in the workspace.
func (s *WorkspaceService) authorize(ctx context.Context, ws *domain.Workspace, userID, channel string) error {
	if !s.enforce {
		return nil
	}

	project, err := s.store.GetProject(ctx, ws.ProjectID)
	if err != nil {
		return err
	}
	if project.ClientID == userID {
		return nil
	}

	roles, err := s.store.ListRoles(ctx, project.ID, domain.RoleFilled)
	if err != nil {
		return err
	}
	var held []string
	for _, r := range roles {
		if r.FreelancerID != nil && *r.FreelancerID == userID {
			held = append(held, r.ID)
		}
	}

	for _, ch := range ws.Channels {
		if channel != "" && ch.Name != channel {
			continue
		}
		for _, id := range held {
			if ch.HasRole(id) {
				return nil
			}
		}
	}
	return domain.ErrNotChannelMember
}

// userSummary returns nil when the user cannot be loaded; the summary is
// display data and never fails the write it decorates.
func (s *WorkspaceService) userSummary(ctx context.Context, userID string) *domain.UserSummary {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil
	}
	return &domain.UserSummary{ID: u.ID, DisplayName: u.DisplayName, PhotoURL: u.PhotoURL}
}

func (s *WorkspaceService) assignee(ctx context.Context, t *domain.Task) *domain.UserSummary {
	if t.AssigneeID == nil {
		return nil
	}
	return s.userSummary(ctx, *t.AssigneeID)
}

func (s *WorkspaceService) emit(ctx context.Context, eventType string, entity any) {
	if s.events == nil {
		return
	}
	if err := s.events.Enqueue(ctx, eventType, entity); err != nil {
		logging.FromContext(ctx).Error("queue realtime event", zap.String("event_type", eventType), zap.Error(err))
	}
}
