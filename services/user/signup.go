package user

import (
	"context"
	"fmt"
	"time"

	"easybook/models"
	"easybook/utils"
	"easybook/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	purposeVerifyEmail   = "verify_email"
	purposeResetPassword = "reset_password"

	verificationTTL = 24 * time.Hour
	resetTTL        = 15 * time.Minute
)

// Register validates the payload, creates the account and signs the user in.
// The welcome and verification emails are best-effort.
func (s *DefaultUserService) Register(ctx context.Context, req models.RegistrationRequest) (*models.AuthResponse, error) {
	if err := validation.ValidateRegistration(&req); err != nil {
		return nil, err
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	user := &models.User{
		ID:           uuid.New().String(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
		Role:         req.Role,
		Status:       models.AccountActive,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	applyRoleDefaults(user, req.ServiceCategory)

	if err := s.Repo.Create(ctx, user); err != nil {
		return nil, writeError(err)
	}
	utils.GetLogger().Info("User registered", zap.String("userId", user.ID), zap.String("role", string(user.Role)))

	s.sendWelcome(ctx, user)
	return s.signIn(ctx, user)
}

// applyRoleDefaults attaches the role-specific sub-document a new account starts with.
func applyRoleDefaults(user *models.User, category models.Category) {
	switch user.Role {
	case models.RoleProvider:
		user.ServiceCategory = category
		user.ProviderInfo = &models.ProviderInfo{
			Services:     []string{},
			IsAvailable:  true,
			WorkingHours: models.DefaultWorkingHours(),
		}
	case models.RoleCustomer:
		user.CustomerInfo = &models.CustomerInfo{
			Preferences: models.Preferences{Notifications: true, EmailUpdates: true},
		}
	}
}

func (s *DefaultUserService) hashPassword(password string) (string, error) {
	cost := s.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", utils.NewInternalError("Failed to hash password", err)
	}
	return string(hash), nil
}

func (s *DefaultUserService) sendWelcome(ctx context.Context, user *models.User) {
	if s.Mailer == nil {
		return
	}
	msg := models.EmailMessage{
		To:      user.Email,
		Subject: "Welcome to EasyBook",
		Text:    fmt.Sprintf("Hi %s, welcome to EasyBook.", user.FirstName),
	}
	if err := s.Mailer.Send(ctx, msg); err != nil {
		utils.GetLogger().Warn("Welcome email failed", zap.String("userId", user.ID), zap.Error(err))
	}
	if err := s.sendCode(ctx, user.Email, purposeVerifyEmail, verificationTTL); err != nil {
		utils.GetLogger().Warn("Verification email failed", zap.String("userId", user.ID), zap.Error(err))
	}
}

// sendCode issues a one-time code for email and mails it.
func (s *DefaultUserService) sendCode(ctx context.Context, email, purpose string, ttl time.Duration) error {
	if s.Codes == nil || s.Mailer == nil {
		return utils.NewUpstreamError("Email codes are not configured", nil)
	}
	code, err := s.Codes.Issue(ctx, purpose, email, ttl)
	if err != nil {
		return utils.NewUpstreamError("Failed to issue code", err)
	}
	subject, text := "Verify your email", "Your EasyBook verification code is %s. It expires in 24 hours."
	if purpose == purposeResetPassword {
		subject, text = "Reset your password", "Your EasyBook password reset code is %s. It expires in 15 minutes."
	}
	if err := s.Mailer.Send(ctx, models.EmailMessage{To: email, Subject: subject, Text: fmt.Sprintf(text, code)}); err != nil {
		return utils.NewUpstreamError("Failed to send email", err)
	}
	return nil
}
