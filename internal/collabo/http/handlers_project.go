package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CreateProject creates a project with its roles and workspace.
func (h *Handler) CreateProject(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}

	var body createProjectBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	created, err := h.projects.Create(c.Request.Context(), uid, body.toRequest())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"ok":        true,
		"project":   created.Project,
		"roles":     created.Roles,
		"workspace": created.Workspace,
	})
}

// ScopeProject proposes roles and a budget for a free-text idea.
func (h *Handler) ScopeProject(c *gin.Context) {
	var body scopeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	proposal, err := h.projects.Scope(c.Request.Context(), body.Description)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "proposal": proposal})
}

func (h *Handler) MyProjects(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}

	projects, err := h.projects.ListClientProjects(c.Request.Context(), uid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": projects})
}

func (h *Handler) GetProject(c *gin.Context) {
	details, err := h.projects.GetProjectDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"project":   details.Project,
		"roles":     details.Roles,
		"workspace": details.Workspace,
	})
}

// FundProject opens a checkout session; only the project owner may fund.
func (h *Handler) FundProject(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}

	res, err := h.projects.Fund(c.Request.Context(), c.Param("id"), uid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":                true,
		"payment_id":        res.PaymentID,
		"authorization_url": res.CheckoutURL,
		"reference":         res.Reference,
	})
}

func (h *Handler) ActivateProject(c *gin.Context) {
	project, err := h.projects.Activate(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": project})
}

// VerifyFunding confirms a checkout with the gateway after the client returns
// from the hosted payment page.
func (h *Handler) VerifyFunding(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}

	var body verifyFundingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "reference is required")
		return
	}

	payment, err := h.projects.ConfirmFunding(c.Request.Context(), body.Reference, uid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "payment": payment})
}

func (h *Handler) AcceptRole(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}

	var body acceptRoleBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "roleId is required")
		return
	}

	role, err := h.matcher.AcceptRole(c.Request.Context(), body.RoleID, uid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "role": role})
}

func (h *Handler) GetRole(c *gin.Context) {
	details, err := h.matcher.GetRole(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "role": details.Role, "project": details.Project})
}
