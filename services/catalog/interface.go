package catalog

import (
	"context"
	"time"

	serviceRepo "easybook/database/repository/service"
	userRepo "easybook/database/repository/user"
	"easybook/models"
)

// CatalogService manages provider listings and the public catalog.
type CatalogService interface {
	List(ctx context.Context, filter models.ServiceFilter, page models.Page) ([]models.Service, int64, error)
	Categories() []models.CategoryInfo
	ByCategory(ctx context.Context, category, sort string, page models.Page) ([]models.Service, int64, error)
	Get(ctx context.Context, id string) (*models.Service, error)
	Mine(ctx context.Context, providerID string, page models.Page) ([]models.Service, int64, error)
	Create(ctx context.Context, providerID string, input models.ServiceInput) (*models.Service, error)
	Update(ctx context.Context, providerID, id string, input models.ServiceInput) (*models.Service, error)
	Delete(ctx context.Context, providerID, id string) error
}

type DefaultCatalogService struct {
	Services serviceRepo.ServiceRepository
	Users    userRepo.UserRepository
	Now      func() time.Time
}

func NewDefaultCatalogService(services serviceRepo.ServiceRepository, users userRepo.UserRepository) *DefaultCatalogService {
	return &DefaultCatalogService{
		Services: services,
		Users:    users,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}
