package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrForbidden          = errors.New("not authorized")
	ErrProjectNotFound    = errors.New("project not found")
	ErrRoleNotFound       = errors.New("role not found")
	ErrRoleUnavailable    = errors.New("role not found or already filled")
	ErrWorkspaceNotFound  = errors.New("workspace not found")
	ErrWorkspaceExists    = errors.New("project already has a workspace")
	ErrTaskNotFound       = errors.New("task not found")
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrNotFunded          = errors.New("project funding not confirmed")
	ErrNotChannelMember   = errors.New("not a member of this channel")
	ErrFundingFailed      = errors.New("failed to initiate funding")
	ErrPaymentUnconfirmed = errors.New("payment could not be confirmed")
)

// Invalid wraps ErrValidation with a field level message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
