package http

import (
	"time"

	"github.com/connecta/collabo-backend/internal/collabo/domain"
)

// Request bodies keep the camelCase field names the Connecta apps already send.

type createProjectBody struct {
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	TotalBudget      float64            `json:"totalBudget"`
	Roles            []domain.RoleSpec  `json:"roles"`
	Milestones       []domain.Milestone `json:"milestones"`
	RecommendedStack []string           `json:"recommendedStack"`
	Risks            []string           `json:"risks"`
	Category         string             `json:"category"`
	Niche            string             `json:"niche"`
	ProjectType      string             `json:"projectType"`
	Scope            string             `json:"scope"`
	Duration         string             `json:"duration"`
	DurationType     string             `json:"durationType"`
}

func (b createProjectBody) toRequest() domain.CreateProjectRequest {
	return domain.CreateProjectRequest{
		Title:            b.Title,
		Description:      b.Description,
		TotalBudget:      b.TotalBudget,
		Roles:            b.Roles,
		Milestones:       b.Milestones,
		RecommendedStack: b.RecommendedStack,
		Risks:            b.Risks,
		Category:         b.Category,
		Niche:            b.Niche,
		ProjectType:      b.ProjectType,
		Scope:            b.Scope,
		Duration:         b.Duration,
		DurationType:     b.DurationType,
	}
}

type scopeBody struct {
	Description string `json:"description"`
}

type acceptRoleBody struct {
	RoleID string `json:"roleId" binding:"required"`
}

type sendMessageBody struct {
	WorkspaceID string `json:"workspaceId" binding:"required"`
	ChannelName string `json:"channelName"`
	Content     string `json:"content"`
	SenderRole  string `json:"senderRole"`
}

type createTaskBody struct {
	WorkspaceID string              `json:"workspaceId" binding:"required"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    domain.TaskPriority `json:"priority"`
	AssigneeID  *string             `json:"assigneeId"`
	DueDate     *time.Time          `json:"dueDate"`
}

type updateTaskBody struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Status      *domain.TaskStatus   `json:"status"`
	Priority    *domain.TaskPriority `json:"priority"`
	AssigneeID  *string              `json:"assigneeId"`
	DueDate     *time.Time           `json:"dueDate"`
}

func (b updateTaskBody) toRequest() domain.UpdateTaskRequest {
	return domain.UpdateTaskRequest{
		Title:       b.Title,
		Description: b.Description,
		Status:      b.Status,
		Priority:    b.Priority,
		AssigneeID:  b.AssigneeID,
		DueDate:     b.DueDate,
	}
}

// addFileBody registers a file that is already hosted elsewhere.
type addFileBody struct {
	WorkspaceID string `json:"workspaceId" binding:"required"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Size        int64  `json:"size"`
	URL         string `json:"url"`
}

type verifyFundingBody struct {
	Reference string `json:"reference" binding:"required"`
}
