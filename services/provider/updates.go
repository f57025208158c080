package provider

import (
	"context"
	"errors"
	"strings"

	"easybook/database/repository"
	userRepo "easybook/database/repository/user"
	"easybook/models"
	"easybook/utils"
	"easybook/validation"

	"go.uber.org/zap"
)

// GetProfile loads the provider account, rejecting non-provider ids.
func (s *DefaultProviderService) GetProfile(ctx context.Context, providerID string) (*models.User, error) {
	provider, err := s.Users.GetByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NewNotFoundError("Provider not found")
		}
		return nil, utils.NewInternalError("Failed to load provider", err)
	}
	if provider.Role != models.RoleProvider {
		return nil, utils.NewForbiddenError("Provider access required")
	}
	if provider.ProviderInfo == nil {
		provider.ProviderInfo = &models.ProviderInfo{Services: []string{}, WorkingHours: models.DefaultWorkingHours()}
	}
	return provider, nil
}

// UpdateProfile edits business details. A changed display name is copied onto the provider's listings.
func (s *DefaultProviderService) UpdateProfile(ctx context.Context, providerID string, update models.ProviderProfileUpdate) (*models.User, error) {
	if err := validation.ValidateProviderProfile(update); err != nil {
		return nil, err
	}
	provider, err := s.GetProfile(ctx, providerID)
	if err != nil {
		return nil, err
	}
	before := provider.DisplayName()

	info := *provider.ProviderInfo
	if update.BusinessName != nil {
		info.BusinessName = strings.TrimSpace(*update.BusinessName)
	}
	if update.BusinessAddress != nil {
		info.BusinessAddress = strings.TrimSpace(*update.BusinessAddress)
	}
	if update.Experience != nil {
		info.Experience = *update.Experience
	}
	if update.IsAvailable != nil {
		info.IsAvailable = *update.IsAvailable
	}

	updated, err := s.Users.Update(ctx, providerID, userRepo.UserPatch{ProviderInfo: &info})
	if err != nil {
		return nil, utils.NewInternalError("Failed to update provider", err)
	}
	if after := updated.DisplayName(); after != before {
		if err := s.Services.RenameProvider(ctx, providerID, after); err != nil {
			utils.GetLogger().Warn("Failed to rename provider on services", zap.String("providerId", providerID), zap.Error(err))
		}
	}
	return updated, nil
}

// UpdateWorkingHours merges the given weekdays into the stored table.
func (s *DefaultProviderService) UpdateWorkingHours(ctx context.Context, providerID string, hours map[string]models.DayHours) (*models.User, error) {
	if len(hours) == 0 {
		return nil, utils.NewValidationError("Validation failed", utils.FieldError{Field: "workingHours", Message: "workingHours is required"})
	}
	normalized := make(map[string]models.DayHours, len(hours))
	for day, h := range hours {
		normalized[strings.ToLower(day)] = h
	}
	if err := validation.ValidateWorkingHours(normalized); err != nil {
		return nil, err
	}
	provider, err := s.GetProfile(ctx, providerID)
	if err != nil {
		return nil, err
	}

	info := *provider.ProviderInfo
	merged := models.DefaultWorkingHours()
	for day, h := range info.WorkingHours {
		merged[day] = h
	}
	for day, h := range normalized {
		merged[day] = h
	}
	info.WorkingHours = merged

	updated, err := s.Users.Update(ctx, providerID, userRepo.UserPatch{ProviderInfo: &info})
	if err != nil {
		return nil, utils.NewInternalError("Failed to update working hours", err)
	}
	return updated, nil
}
