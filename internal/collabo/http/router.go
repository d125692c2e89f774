package http

import "github.com/gin-gonic/gin"

// Register registers the collabo routes under /collabo.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/create", h.CreateProject)
	rg.POST("/scope", h.ScopeProject)
	rg.GET("/my-projects", h.MyProjects)
	rg.POST("/accept-role", h.AcceptRole)
	rg.POST("/:id/fund", h.FundProject)
	rg.POST("/:id/activate", h.ActivateProject)
	rg.GET("/:id", h.GetProject)
	rg.GET("/role/:id", h.GetRole)

	rg.POST("/message", h.SendMessage)
	rg.GET("/messages", h.GetMessages)
	rg.POST("/task", h.CreateTask)
	rg.GET("/tasks", h.GetTasks)
	rg.PATCH("/task/:id", h.UpdateTask)
	rg.POST("/file", h.UploadFile)
	rg.GET("/files", h.GetFiles)
	rg.GET("/workspaces/:id/stream", h.StreamWorkspace)
}

// RegisterPayments registers the funding confirmation route under /payments.
func (h *Handler) RegisterPayments(rg *gin.RouterGroup) {
	rg.POST("/collabo/verify", h.VerifyFunding)
}
