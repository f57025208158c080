package user

import (
	"context"
	"strings"

	userRepo "easybook/database/repository/user"
	"easybook/utils"
)

// UpdateFCMToken stores the device token used for push notifications.
func (s *DefaultUserService) UpdateFCMToken(ctx context.Context, userID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return utils.NewValidationError("Validation failed", utils.FieldError{Field: "token", Message: "FCM token is required"})
	}
	if _, err := s.Repo.Update(ctx, userID, userRepo.UserPatch{FCMToken: &token}); err != nil {
		return writeError(err)
	}
	return nil
}
