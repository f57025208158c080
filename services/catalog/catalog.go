package catalog

import (
	"context"
	"errors"
	"strings"

	"easybook/database/repository"
	"easybook/models"
	"easybook/utils"
	"easybook/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	msgServiceNotFound = "Service not found"
	msgNotOwner        = "Not authorized to modify this service"

	maxPageSize = 50
)

var sortable = map[string]bool{"price": true, "rating": true, "name": true, "createdAt": true}

// List returns active listings matching the filter.
func (s *DefaultCatalogService) List(ctx context.Context, filter models.ServiceFilter, page models.Page) ([]models.Service, int64, error) {
	if filter.Category != "" && !filter.Category.IsValid() {
		return nil, 0, utils.NewValidationError("Validation failed", utils.FieldError{Field: "category", Message: "Invalid category"})
	}
	if filter.SortBy != "" && !sortable[filter.SortBy] {
		return nil, 0, utils.NewValidationError("Validation failed", utils.FieldError{Field: "sortBy", Message: "sortBy must be price, rating, name or createdAt"})
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, 0, utils.NewValidationError("Validation failed", utils.FieldError{Field: "minPrice", Message: "minPrice cannot exceed maxPrice"})
	}
	filter.IncludeInactive = false
	services, total, err := s.Services.List(ctx, filter, page.Normalize(10, maxPageSize))
	if err != nil {
		return nil, 0, utils.NewInternalError("Failed to list services", err)
	}
	return services, total, nil
}

func (s *DefaultCatalogService) Categories() []models.CategoryInfo {
	return models.Categories
}

// ByCategory lists active listings in one category, matched case-insensitively.
// sort is rating (default, best first), price or name (ascending) or newest.
func (s *DefaultCatalogService) ByCategory(ctx context.Context, category, sort string, page models.Page) ([]models.Service, int64, error) {
	var matched models.Category
	for _, info := range models.Categories {
		if strings.EqualFold(string(info.Name), strings.TrimSpace(category)) {
			matched = info.Name
		}
	}
	if matched == "" {
		return nil, 0, utils.NewValidationError("Validation failed", utils.FieldError{Field: "category", Message: "Invalid category"})
	}
	filter := models.ServiceFilter{Category: matched, SortBy: "rating"}
	switch sort {
	case "", "rating":
	case "price", "name":
		filter.SortBy, filter.SortAsc = sort, true
	default:
		filter.SortBy = "createdAt"
	}
	return s.List(ctx, filter, page)
}

func (s *DefaultCatalogService) Get(ctx context.Context, id string) (*models.Service, error) {
	service, err := s.Services.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NewNotFoundError(msgServiceNotFound)
		}
		return nil, utils.NewInternalError("Failed to load service", err)
	}
	return service, nil
}

// Mine lists every listing of the provider, inactive ones included.
func (s *DefaultCatalogService) Mine(ctx context.Context, providerID string, page models.Page) ([]models.Service, int64, error) {
	filter := models.ServiceFilter{ProviderID: providerID, IncludeInactive: true, SortBy: "createdAt"}
	services, total, err := s.Services.List(ctx, filter, page.Normalize(10, maxPageSize))
	if err != nil {
		return nil, 0, utils.NewInternalError("Failed to list services", err)
	}
	return services, total, nil
}

// Create adds a listing for the provider and records it on the provider profile.
func (s *DefaultCatalogService) Create(ctx context.Context, providerID string, input models.ServiceInput) (*models.Service, error) {
	if err := validation.ValidateServiceInput(&input); err != nil {
		return nil, err
	}
	provider, err := s.Users.GetByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NewNotFoundError("Provider not found")
		}
		return nil, utils.NewInternalError("Failed to load provider", err)
	}
	if provider.Role != models.RoleProvider {
		return nil, utils.NewForbiddenError("Only providers can create services")
	}

	now := s.Now()
	service := &models.Service{
		ID:           uuid.New().String(),
		ProviderID:   provider.ID,
		ProviderName: provider.DisplayName(),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	applyInput(service, input)
	if err := s.Services.Create(ctx, service); err != nil {
		return nil, utils.NewInternalError("Failed to create service", err)
	}
	if err := s.Users.AddProviderService(ctx, provider.ID, service.ID); err != nil {
		utils.GetLogger().Warn("Failed to link service to provider",
			zap.String("providerId", provider.ID), zap.String("serviceId", service.ID), zap.Error(err))
	}
	return service, nil
}

// Update replaces the editable fields of a listing owned by providerID.
func (s *DefaultCatalogService) Update(ctx context.Context, providerID, id string, input models.ServiceInput) (*models.Service, error) {
	if err := validation.ValidateServiceInput(&input); err != nil {
		return nil, err
	}
	service, err := s.owned(ctx, providerID, id)
	if err != nil {
		return nil, err
	}
	applyInput(service, input)
	service.UpdatedAt = s.Now()
	if err := s.Services.Update(ctx, service); err != nil {
		return nil, utils.NewInternalError("Failed to update service", err)
	}
	return service, nil
}

// Delete deactivates a listing; bookings keep their snapshot.
func (s *DefaultCatalogService) Delete(ctx context.Context, providerID, id string) error {
	if _, err := s.owned(ctx, providerID, id); err != nil {
		return err
	}
	if err := s.Services.Deactivate(ctx, id); err != nil {
		return utils.NewInternalError("Failed to delete service", err)
	}
	return nil
}

func (s *DefaultCatalogService) owned(ctx context.Context, providerID, id string) (*models.Service, error) {
	service, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if service.ProviderID != providerID {
		return nil, utils.NewForbiddenError(msgNotOwner)
	}
	return service, nil
}

func applyInput(service *models.Service, input models.ServiceInput) {
	service.Name = input.Name
	service.Description = input.Description
	service.Category = input.Category
	service.Price = input.Price
	service.Duration = input.Duration
	service.Images = nonNil(input.Images)
	service.Availability = input.Availability
	service.ServiceArea = nonNil(input.ServiceArea)
	service.Tags = nonNil(input.Tags)
	if input.IsActive != nil {
		service.IsActive = *input.IsActive
	}
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
