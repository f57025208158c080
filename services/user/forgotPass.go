package user

import (
	"context"

	userRepo "easybook/database/repository/user"
	"easybook/models"
	"easybook/utils"
	"easybook/validation"

	"go.uber.org/zap"
)

// VerifyEmail consumes the emailed verification code and marks the account verified.
func (s *DefaultUserService) VerifyEmail(ctx context.Context, req models.VerifyEmailRequest) error {
	req.Email = validation.NormalizeEmail(req.Email)
	if err := validation.Struct(&req); err != nil {
		return err
	}
	user, err := s.Repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return lookupError(err, msgUserNotFound)
	}
	if user.IsVerified {
		return nil
	}
	if s.Codes == nil {
		return utils.NewUpstreamError("Email codes are not configured", nil)
	}
	if err := s.Codes.Consume(ctx, purposeVerifyEmail, req.Email, req.VerificationCode); err != nil {
		return codeError(err)
	}
	verified := true
	if _, err := s.Repo.Update(ctx, user.ID, userRepo.UserPatch{IsVerified: &verified}); err != nil {
		return writeError(err)
	}
	return nil
}

// ResendVerification issues a fresh verification code for an unverified account.
func (s *DefaultUserService) ResendVerification(ctx context.Context, email string) error {
	email = validation.NormalizeEmail(email)
	user, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return lookupError(err, msgUserNotFound)
	}
	if user.IsVerified {
		return utils.NewInvalidStateError("Email is already verified")
	}
	return s.sendCode(ctx, email, purposeVerifyEmail, verificationTTL)
}

// ForgotPassword mails a single-use reset code valid for 15 minutes.
func (s *DefaultUserService) ForgotPassword(ctx context.Context, email string) error {
	email = validation.NormalizeEmail(email)
	if _, err := s.Repo.GetByEmail(ctx, email); err != nil {
		return lookupError(err, "User not found with this email")
	}
	return s.sendCode(ctx, email, purposeResetPassword, resetTTL)
}

// ResetPassword consumes the reset code and replaces the password. Accounts linked to
// Firebase get the new password there as well.
func (s *DefaultUserService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	req.Email = validation.NormalizeEmail(req.Email)
	if err := validation.Struct(&req); err != nil {
		return err
	}
	user, err := s.Repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return lookupError(err, "User not found with this email")
	}
	if s.Codes == nil {
		return utils.NewUpstreamError("Email codes are not configured", nil)
	}
	if err := s.Codes.Consume(ctx, purposeResetPassword, req.Email, req.ResetCode); err != nil {
		return codeError(err)
	}

	hash, err := s.hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if _, err := s.Repo.Update(ctx, user.ID, userRepo.UserPatch{PasswordHash: &hash}); err != nil {
		return writeError(err)
	}

	if user.FirebaseUID != "" && s.Identity != nil {
		if err := s.Identity.UpdatePassword(ctx, user.FirebaseUID, req.NewPassword); err != nil {
			utils.GetLogger().Warn("Failed to update Firebase password", zap.String("userId", user.ID), zap.Error(err))
		}
	}
	utils.GetLogger().Info("Password reset", zap.String("userId", user.ID))
	return nil
}
