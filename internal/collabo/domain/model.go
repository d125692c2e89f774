package domain

import "time"

type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectCancelled ProjectStatus = "cancelled"
)

type RoleStatus string

const (
	RoleOpen   RoleStatus = "open"
	RoleFilled RoleStatus = "filled"
)

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskReview     TaskStatus = "review"
	TaskDone       TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskReview, TaskDone:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentSuccessful PaymentStatus = "successful"
	PaymentFailed     PaymentStatus = "failed"
)

const (
	EscrowHeld     = "held"
	EscrowReleased = "released"
)

// DefaultChannel is created with every workspace; accepted roles join it.
const DefaultChannel = "General"

// Project is a client's team project. WorkspaceID is derived from the
// workspace row that points at the project and is never stored on the project.
type Project struct {
	ID               string        `json:"id"`
	ClientID         string        `json:"client_id"`
	Title            string        `json:"title"`
	Description      string        `json:"description"`
	TotalBudget      float64       `json:"total_budget"`
	Status           ProjectStatus `json:"status"`
	Milestones       []Milestone   `json:"milestones"`
	RecommendedStack []string      `json:"recommended_stack"`
	Risks            []string      `json:"risks"`
	Category         string        `json:"category,omitempty"`
	Niche            string        `json:"niche,omitempty"`
	ProjectType      string        `json:"project_type,omitempty"`
	Scope            string        `json:"scope,omitempty"`
	Duration         string        `json:"duration,omitempty"`
	DurationType     string        `json:"duration_type,omitempty"`
	WorkspaceID      string        `json:"workspace_id,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

type Milestone struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Duration     string   `json:"duration"`
	Deliverables []string `json:"deliverables"`
}

// Role is one staffing slot on a project.
type Role struct {
	ID           string     `json:"id"`
	ProjectID    string     `json:"project_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Budget       float64    `json:"budget"`
	Skills       []string   `json:"skills"`
	Status       RoleStatus `json:"status"`
	FreelancerID *string    `json:"freelancer_id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type Channel struct {
	Name    string   `json:"name"`
	RoleIDs []string `json:"role_ids"`
}

func (c Channel) HasRole(roleID string) bool {
	for _, id := range c.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

type Workspace struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Channels  []Channel `json:"channels"`
	CreatedAt time.Time `json:"created_at"`
}

// Channel returns the named channel or nil.
func (w *Workspace) Channel(name string) *Channel {
	for i := range w.Channels {
		if w.Channels[i].Name == name {
			return &w.Channels[i]
		}
	}
	return nil
}

type UserSummary struct {
	ID          string `json:"id"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

type Message struct {
	ID          string       `json:"id"`
	WorkspaceID string       `json:"workspace_id"`
	ChannelName string       `json:"channel_name"`
	SenderID    string       `json:"sender_id"`
	SenderRole  string       `json:"sender_role"`
	Content     string       `json:"content"`
	Sender      *UserSummary `json:"sender,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

type Task struct {
	ID          string       `json:"id"`
	WorkspaceID string       `json:"workspace_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	AssigneeID  *string      `json:"assignee_id"`
	Assignee    *UserSummary `json:"assignee,omitempty"`
	CreatedBy   string       `json:"created_by"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type File struct {
	ID          string       `json:"id"`
	WorkspaceID string       `json:"workspace_id"`
	UploaderID  string       `json:"uploader_id"`
	Uploader    *UserSummary `json:"uploader,omitempty"`
	Name        string       `json:"name"`
	MimeType    string       `json:"mime_type"`
	Size        int64        `json:"size"`
	URL         string       `json:"url"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Payment correlates a gateway checkout session with the project it funds.
type Payment struct {
	ID               string        `json:"id"`
	CollaboProjectID string        `json:"collabo_project_id"`
	PayerID          string        `json:"payer_id"`
	PayeeID          string        `json:"payee_id"`
	Amount           float64       `json:"amount"`
	Currency         string        `json:"currency"`
	PlatformFee      float64       `json:"platform_fee"`
	NetAmount        float64       `json:"net_amount"`
	PaymentType      string        `json:"payment_type"`
	Description      string        `json:"description"`
	Status           PaymentStatus `json:"status"`
	EscrowStatus     string        `json:"escrow_status"`
	GatewayReference string        `json:"gateway_reference,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// Profile is the skill listing of a freelancer.
type Profile struct {
	UserID string   `json:"user_id"`
	Skills []string `json:"skills"`
}

type Notification struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	RelatedID   string    `json:"related_id"`
	RelatedType string    `json:"related_type"`
	Link        string    `json:"link"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

const NotificationCollaboInvite = "collabo_invite"
