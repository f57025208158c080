package user

import (
	"context"

	userRepo "easybook/database/repository/user"
	"easybook/models"
	"easybook/utils"

	"go.uber.org/zap"
)

func (s *DefaultUserService) ListUsers(ctx context.Context, filter models.UserFilter, page models.Page) ([]models.User, int64, error) {
	if filter.Role != "" && !filter.Role.IsValid() {
		return nil, 0, utils.NewValidationError("Invalid role filter")
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, 0, utils.NewValidationError("Invalid status filter")
	}
	users, total, err := s.Repo.List(ctx, filter, page)
	if err != nil {
		return nil, 0, utils.NewInternalError("Failed to list users", err)
	}
	return users, total, nil
}

// SetStatus activates, deactivates or suspends an account.
func (s *DefaultUserService) SetStatus(ctx context.Context, userID string, status models.AccountStatus, reason string) (*models.User, error) {
	if !status.IsValid() {
		return nil, utils.NewValidationError("Validation failed", utils.FieldError{Field: "status", Message: "Status must be active, inactive or suspended"})
	}
	if len(reason) > 200 {
		return nil, utils.NewValidationError("Validation failed", utils.FieldError{Field: "reason", Message: "Reason cannot exceed 200 characters"})
	}
	user, err := s.Repo.Update(ctx, userID, userRepo.UserPatch{Status: &status, StatusReason: &reason})
	if err != nil {
		return nil, writeError(err)
	}
	utils.GetLogger().Info("User status changed", zap.String("userId", userID), zap.String("status", string(status)))
	return user, nil
}

// SetRole changes an account's role. Only admins may do this and never on their own account.
func (s *DefaultUserService) SetRole(ctx context.Context, actor models.Actor, userID string, role models.Role) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, utils.NewForbiddenError("Only admins can change roles")
	}
	if !role.IsValid() {
		return nil, utils.NewValidationError("Validation failed", utils.FieldError{Field: "role", Message: "Role must be customer, provider or admin"})
	}
	if actor.ID == userID {
		return nil, utils.NewInvalidStateError("Admins cannot change their own role")
	}
	current, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, lookupError(err, msgUserNotFound)
	}

	patch := userRepo.UserPatch{Role: &role}
	defaults := &models.User{Role: role}
	applyRoleDefaults(defaults, current.ServiceCategory)
	if current.ProviderInfo == nil {
		patch.ProviderInfo = defaults.ProviderInfo
	}
	if current.CustomerInfo == nil {
		patch.CustomerInfo = defaults.CustomerInfo
	}

	user, err := s.Repo.Update(ctx, userID, patch)
	if err != nil {
		return nil, writeError(err)
	}
	utils.GetLogger().Info("User role changed", zap.String("userId", userID), zap.String("role", string(role)))
	return user, nil
}
