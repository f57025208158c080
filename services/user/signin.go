package user

import (
	"context"
	"errors"

	"easybook/database/repository"
	userRepo "easybook/database/repository/user"
	"easybook/models"
	"easybook/utils"
	"easybook/validation"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Login checks the password of a local account and issues a session token.
func (s *DefaultUserService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	req.Email = validation.NormalizeEmail(req.Email)
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}

	user, err := s.Repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NewUnauthorizedError(msgInvalidCredentials)
		}
		return nil, utils.NewInternalError("Failed to load user", err)
	}
	if user.PasswordHash == "" {
		return nil, utils.NewUnauthorizedError(msgInvalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, utils.NewUnauthorizedError(msgInvalidCredentials)
	}
	if !user.IsActive {
		return nil, utils.NewForbiddenError(msgAccountDisabled)
	}
	return s.signIn(ctx, user)
}

// signIn stamps lastLogin and issues the session token.
func (s *DefaultUserService) signIn(ctx context.Context, user *models.User) (*models.AuthResponse, error) {
	now := s.Now()
	if updated, err := s.Repo.Update(ctx, user.ID, userRepo.UserPatch{LastLogin: &now}); err != nil {
		utils.GetLogger().Warn("Failed to record last login", zap.String("userId", user.ID), zap.Error(err))
	} else {
		user = updated
	}

	token, err := utils.GenerateToken(user.ID, string(user.Role), s.TokenTTL)
	if err != nil {
		return nil, utils.NewInternalError("Failed to generate auth token", err)
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}
