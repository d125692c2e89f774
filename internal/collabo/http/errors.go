package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/connecta/collabo-backend/internal/collabo/domain"
	"github.com/connecta/collabo-backend/internal/logging"
)

// statusFor maps a service error to an HTTP status and a client facing message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "not authorized"
	case errors.Is(err, domain.ErrNotChannelMember):
		return http.StatusForbidden, domain.ErrNotChannelMember.Error()
	case errors.Is(err, domain.ErrProjectNotFound),
		errors.Is(err, domain.ErrRoleNotFound),
		errors.Is(err, domain.ErrWorkspaceNotFound),
		errors.Is(err, domain.ErrTaskNotFound),
		errors.Is(err, domain.ErrPaymentNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrRoleUnavailable):
		return http.StatusConflict, "someone else already took this role"
	case errors.Is(err, domain.ErrNotFunded):
		return http.StatusConflict, domain.ErrNotFunded.Error()
	case errors.Is(err, domain.ErrPaymentUnconfirmed):
		return http.StatusPaymentRequired, domain.ErrPaymentUnconfirmed.Error()
	case errors.Is(err, domain.ErrFundingFailed):
		return http.StatusBadGateway, domain.ErrFundingFailed.Error()
	}
	return http.StatusInternalServerError, "internal error"
}

func writeError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	body := gin.H{"ok": false, "error": msg}

	if status >= http.StatusInternalServerError || status == http.StatusPaymentRequired {
		body["details"] = err.Error()
	}
	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).Error("collabo request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": msg})
}
