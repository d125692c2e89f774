package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/connecta/collabo-backend/internal/collabo/domain"
	"github.com/connecta/collabo-backend/internal/storage"
)

func workspaceQuery(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Query("workspaceId"))
	if id == "" {
		badRequest(c, "workspaceId is required")
		return "", false
	}
	return id, true
}

func (h *Handler) SendMessage(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}

	var body sendMessageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "workspaceId is required")
		return
	}

	msg, err := h.workspaces.SendMessage(c.Request.Context(), domain.SendMessageRequest{
		WorkspaceID: body.WorkspaceID,
		ChannelName: body.ChannelName,
		SenderID:    uid,
		SenderRole:  body.SenderRole,
		Content:     body.Content,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "message": msg})
}

// GetMessages lists a channel oldest first; channelName defaults to General.
func (h *Handler) GetMessages(c *gin.Context) {
	wsID, ok := workspaceQuery(c)
	if !ok {
		return
	}

	msgs, err := h.workspaces.GetMessages(c.Request.Context(), wsID, c.Query("channelName"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "messages": msgs})
}

func (h *Handler) CreateTask(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}

	var body createTaskBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "workspaceId is required")
		return
	}

	task, err := h.workspaces.CreateTask(c.Request.Context(), domain.CreateTaskRequest{
		WorkspaceID: body.WorkspaceID,
		Title:       body.Title,
		Description: body.Description,
		Priority:    body.Priority,
		AssigneeID:  body.AssigneeID,
		CreatedBy:   uid,
		DueDate:     body.DueDate,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "task": task})
}

func (h *Handler) GetTasks(c *gin.Context) {
	wsID, ok := workspaceQuery(c)
	if !ok {
		return
	}

	tasks, err := h.workspaces.GetTasks(c.Request.Context(), wsID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "tasks": tasks})
}

func (h *Handler) UpdateTask(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}

	var body updateTaskBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	task, err := h.workspaces.UpdateTask(c.Request.Context(), c.Param("id"), uid, body.toRequest())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "task": task})
}

// UploadFile accepts either a multipart upload in field "file" or a JSON body
// describing a file that is already hosted.
func (h *Handler) UploadFile(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		h.uploadMultipart(c, uid)
		return
	}

	var body addFileBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "workspaceId is required")
		return
	}

	file, err := h.workspaces.AddFile(c.Request.Context(), domain.AddFileRequest{
		WorkspaceID: body.WorkspaceID,
		UploaderID:  uid,
		Name:        body.Name,
		MimeType:    body.Type,
		Size:        body.Size,
		URL:         body.URL,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "file": file})
}

func (h *Handler) uploadMultipart(c *gin.Context, uid string) {
	if h.files == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"ok": false, "error": "file uploads are not configured"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)

	wsID := strings.TrimSpace(c.PostForm("workspaceId"))
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"ok": false, "error": "file too large"})
			return
		}
		badRequest(c, "no file uploaded")
		return
	}
	if wsID == "" {
		badRequest(c, "workspaceId is required")
		return
	}

	ctx := c.Request.Context()
	if err := h.workspaces.CanWrite(ctx, wsID, uid); err != nil {
		writeError(c, err)
		return
	}

	src, err := header.Open()
	if err != nil {
		writeError(c, err)
		return
	}
	defer src.Close()

	contentType := header.Header.Get("Content-Type")
	url, err := h.files.Save(ctx, storage.Object{
		WorkspaceID: wsID,
		Name:        header.Filename,
		ContentType: contentType,
		Size:        header.Size,
	}, src)
	if err != nil {
		writeError(c, err)
		return
	}

	file, err := h.workspaces.AddFile(ctx, domain.AddFileRequest{
		WorkspaceID: wsID,
		UploaderID:  uid,
		Name:        header.Filename,
		MimeType:    contentType,
		Size:        header.Size,
		URL:         url,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "file": file})
}

func (h *Handler) GetFiles(c *gin.Context) {
	wsID, ok := workspaceQuery(c)
	if !ok {
		return
	}

	files, err := h.workspaces.GetFiles(c.Request.Context(), wsID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "files": files})
}
