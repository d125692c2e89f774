package domain

import (
	"strings"
	"time"
)

// RoleSpec describes a role to staff, either proposed by scoping or entered by the client.
type RoleSpec struct {
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Budget      float64  `json:"budget"`
	Skills      []string `json:"skills"`
	Count       int      `json:"count,omitempty"`
}

type CreateProjectRequest struct {
	Title            string
	Description      string
	TotalBudget      float64
	Roles            []RoleSpec
	Milestones       []Milestone
	RecommendedStack []string
	Risks            []string
	Category         string
	Niche            string
	ProjectType      string
	Scope            string
	Duration         string
	DurationType     string
}

func (r *CreateProjectRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return Invalid("title is required")
	}
	if strings.TrimSpace(r.Description) == "" {
		return Invalid("description is required")
	}
	if r.TotalBudget <= 0 {
		return Invalid("total budget must be positive")
	}
	if len(r.Roles) == 0 {
		return Invalid("at least one role is required")
	}
	for i, role := range r.Roles {
		if strings.TrimSpace(role.Title) == "" {
			return Invalid("role %d: title is required", i)
		}
		if role.Budget < 0 {
			return Invalid("role %d: budget must not be negative", i)
		}
	}
	return nil
}

// CreatedProject is the result of a successful project creation.
type CreatedProject struct {
	Project   *Project   `json:"project"`
	Roles     []Role     `json:"roles"`
	Workspace *Workspace `json:"workspace"`
}

type ProjectDetails struct {
	Project   *Project   `json:"project"`
	Roles     []Role     `json:"roles"`
	Workspace *Workspace `json:"workspace"`
}

type RoleDetails struct {
	Role    *Role    `json:"role"`
	Project *Project `json:"project"`
}

// ScopeProposal is the structured decomposition of a free-text project idea.
type ScopeProposal struct {
	Roles                []RoleSpec  `json:"roles"`
	TotalEstimatedBudget float64     `json:"totalEstimatedBudget"`
	Timeline             string      `json:"timeline"`
	Milestones           []Milestone `json:"milestones"`
	RecommendedStack     []string    `json:"recommendedStack"`
	Risks                []string    `json:"risks"`
}

type FundResult struct {
	PaymentID   string `json:"payment_id"`
	CheckoutURL string `json:"authorization_url"`
	Reference   string `json:"reference"`
}

// CheckoutRequest is sent to the payment gateway to open a hosted checkout.
type CheckoutRequest struct {
	Reference   string
	Amount      float64
	Currency    string
	Email       string
	Description string
	Metadata    map[string]string
}

type CheckoutSession struct {
	URL              string
	GatewayReference string
}

type PaymentVerification struct {
	Reference string
	Status    PaymentStatus
	Amount    float64
	Currency  string
}

type SendMessageRequest struct {
	WorkspaceID string
	ChannelName string
	SenderID    string
	SenderRole  string
	Content     string
}

type CreateTaskRequest struct {
	WorkspaceID string
	Title       string
	Description string
	Priority    TaskPriority
	AssigneeID  *string
	CreatedBy   string
	DueDate     *time.Time
}

// UpdateTaskRequest carries a partial update; nil fields are left untouched.
type UpdateTaskRequest struct {
	Title       *string
	Description *string
	Status      *TaskStatus
	Priority    *TaskPriority
	AssigneeID  *string
	DueDate     *time.Time
}

func (u *UpdateTaskRequest) Apply(t *Task) error {
	if u.Title != nil {
		if strings.TrimSpace(*u.Title) == "" {
			return Invalid("title must not be empty")
		}
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Status != nil {
		if !u.Status.Valid() {
			return Invalid("unknown task status %q", *u.Status)
		}
		t.Status = *u.Status
	}
	if u.Priority != nil {
		if !u.Priority.Valid() {
			return Invalid("unknown task priority %q", *u.Priority)
		}
		t.Priority = *u.Priority
	}
	if u.AssigneeID != nil {
		if *u.AssigneeID == "" {
			t.AssigneeID = nil
		} else {
			id := *u.AssigneeID
			t.AssigneeID = &id
		}
	}
	if u.DueDate != nil {
		d := *u.DueDate
		t.DueDate = &d
	}
	return nil
}

type AddFileRequest struct {
	WorkspaceID string
	UploaderID  string
	Name        string
	MimeType    string
	Size        int64
	URL         string
}
