package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"easybook/database/repository"
	serviceRepo "easybook/database/repository/service"
	"easybook/models"
)

// ServiceRepo is an in-memory serviceRepo.ServiceRepository.
type ServiceRepo struct {
	mu       sync.RWMutex
	services map[string]*models.Service
}

func NewServiceRepo() *ServiceRepo {
	return &ServiceRepo{services: make(map[string]*models.Service)}
}

var _ serviceRepo.ServiceRepository = (*ServiceRepo)(nil)

func (r *ServiceRepo) Create(_ context.Context, service *models.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.services[service.ID]; ok {
		return repository.ErrDuplicate
	}
	now := time.Now().UTC()
	if service.CreatedAt.IsZero() {
		service.CreatedAt = now
	}
	service.UpdatedAt = now
	r.services[service.ID] = cloneService(service)
	return nil
}

func (r *ServiceRepo) GetByID(_ context.Context, id string) (*models.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.services[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneService(s), nil
}

func (r *ServiceRepo) Update(_ context.Context, service *models.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.services[service.ID]
	if !ok {
		return repository.ErrNotFound
	}
	next := cloneService(service)
	next.ProviderID = existing.ProviderID
	next.ProviderName = existing.ProviderName
	next.Rating = existing.Rating
	next.ReviewCount = existing.ReviewCount
	next.CreatedAt = existing.CreatedAt
	next.UpdatedAt = time.Now().UTC()
	service.UpdatedAt = next.UpdatedAt
	r.services[service.ID] = next
	return nil
}

func (r *ServiceRepo) Deactivate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.services[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.IsActive = false
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func matchesService(s *models.Service, filter models.ServiceFilter) bool {
	if !filter.IncludeInactive && !s.IsActive {
		return false
	}
	if filter.Category != "" && s.Category != filter.Category {
		return false
	}
	if filter.ProviderID != "" && s.ProviderID != filter.ProviderID {
		return false
	}
	if filter.MinPrice != nil && s.Price < *filter.MinPrice {
		return false
	}
	if filter.MaxPrice != nil && s.Price > *filter.MaxPrice {
		return false
	}
	if filter.MinRating != nil && s.Rating < *filter.MinRating {
		return false
	}
	if filter.Search != "" {
		term := strings.ToLower(filter.Search)
		hay := strings.ToLower(s.Name + "\x00" + s.Description + "\x00" + strings.Join(s.Tags, "\x00"))
		if !strings.Contains(hay, term) {
			return false
		}
	}
	return true
}

func serviceLess(a, b *models.Service, sortBy string, asc bool) bool {
	var cmp int
	switch sortBy {
	case "price":
		cmp = compareFloat(a.Price, b.Price)
	case "rating":
		cmp = compareFloat(a.Rating, b.Rating)
	case "name":
		cmp = strings.Compare(a.Name, b.Name)
	default:
		cmp = a.CreatedAt.Compare(b.CreatedAt)
	}
	if cmp == 0 {
		return a.ID < b.ID
	}
	if asc {
		return cmp < 0
	}
	return cmp > 0
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (r *ServiceRepo) List(_ context.Context, filter models.ServiceFilter, page models.Page) ([]models.Service, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []models.Service{}
	for _, s := range r.services {
		if matchesService(s, filter) {
			matched = append(matched, *cloneService(s))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return serviceLess(&matched[i], &matched[j], filter.SortBy, filter.SortAsc)
	})
	return paginate(matched, page), int64(len(matched)), nil
}

func (r *ServiceRepo) CountActive(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, s := range r.services {
		if s.IsActive {
			n++
		}
	}
	return n, nil
}

func (r *ServiceRepo) CategoryTotals(_ context.Context) ([]models.CategoryTotals, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byCategory := make(map[models.Category]*models.CategoryTotals)
	for _, s := range r.services {
		if !s.IsActive {
			continue
		}
		row, ok := byCategory[s.Category]
		if !ok {
			row = &models.CategoryTotals{Category: s.Category}
			byCategory[s.Category] = row
		}
		row.Count++
		row.PriceSum += s.Price
		row.RatingSum += s.Rating
	}
	out := make([]models.CategoryTotals, 0, len(byCategory))
	for _, row := range byCategory {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

func (r *ServiceRepo) ApplyRating(_ context.Context, id string, rating int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.services[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.Rating = (s.Rating*float64(s.ReviewCount) + float64(rating)) / float64(s.ReviewCount+1)
	s.ReviewCount++
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *ServiceRepo) RenameProvider(_ context.Context, providerID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.services {
		if s.ProviderID == providerID {
			s.ProviderName = name
		}
	}
	return nil
}
