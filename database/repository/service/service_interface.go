package serviceRepo

import (
	"context"

	"easybook/models"
)

// ServiceRepository defines methods for listing data access.
type ServiceRepository interface {
	Create(ctx context.Context, service *models.Service) error
	GetByID(ctx context.Context, id string) (*models.Service, error)
	// Update overwrites the editable fields of an existing listing.
	Update(ctx context.Context, service *models.Service) error
	// Deactivate soft-deletes a listing.
	Deactivate(ctx context.Context, id string) error
	List(ctx context.Context, filter models.ServiceFilter, page models.Page) ([]models.Service, int64, error)
	CountActive(ctx context.Context) (int64, error)
	// CategoryTotals groups active listings by category, largest first.
	CategoryTotals(ctx context.Context) ([]models.CategoryTotals, error)
	// ApplyRating folds one review into the listing's running average.
	ApplyRating(ctx context.Context, id string, rating int) error
	// RenameProvider refreshes the denormalized provider name on every listing.
	RenameProvider(ctx context.Context, providerID, name string) error
}
