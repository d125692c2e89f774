package domain

// Outbound event types.
const (
	EventProjectActivated = "project.activated"
	EventMessageCreated   = "message.created"
	EventTaskUpdated      = "task.updated"
	EventFileUploaded     = "file.uploaded"
)

// Real-time event kinds delivered to workspace subscribers.
const (
	RealtimeMessage    = "collabo:message"
	RealtimeTaskUpdate = "collabo:task_update"
	RealtimeFileUpload = "collabo:file_upload"
)

type ProjectActivatedPayload struct {
	ProjectID string `json:"project_id"`
}
