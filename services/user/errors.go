package user

import (
	"errors"

	"easybook/database/repository"
	"easybook/utils"
)

const (
	msgUserNotFound       = "User not found"
	msgInvalidCredentials = "Invalid email or password"
	msgAccountDisabled    = "Account is deactivated"
	msgEmailTaken         = "User already exists with this email"
	msgInvalidCode        = "Invalid or expired code"
)

// lookupError maps a repository read failure to the API error taxonomy.
func lookupError(err error, notFound string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return utils.NewNotFoundError(notFound)
	}
	return utils.NewInternalError("Failed to load user", err)
}

func writeError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return utils.NewNotFoundError(msgUserNotFound)
	case errors.Is(err, repository.ErrDuplicate):
		return utils.NewConflictError(msgEmailTaken)
	default:
		return utils.NewInternalError("Failed to save user", err)
	}
}

func codeError(err error) error {
	if errors.Is(err, utils.ErrCodeNotFound) || errors.Is(err, utils.ErrCodeMismatch) {
		return utils.NewValidationError(msgInvalidCode)
	}
	return utils.NewUpstreamError("Failed to check code", err)
}
