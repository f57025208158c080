package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"easybook/database/repository"
	userRepo "easybook/database/repository/user"
	"easybook/models"
)

// UserRepo is an in-memory userRepo.UserRepository.
type UserRepo struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[string]*models.User)}
}

var _ userRepo.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; ok {
		return repository.ErrDuplicate
	}
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicate
		}
		if user.FirebaseUID != "" && existing.FirebaseUID == user.FirebaseUID {
			return repository.ErrDuplicate
		}
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *UserRepo) find(match func(*models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *UserRepo) GetByFirebaseUID(_ context.Context, uid string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return uid != "" && u.FirebaseUID == uid })
}

func (r *UserRepo) Update(_ context.Context, id string, patch userRepo.UserPatch) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.FirebaseUID != nil && *patch.FirebaseUID != "" {
		for _, other := range r.users {
			if other.ID != id && other.FirebaseUID == *patch.FirebaseUID {
				return nil, repository.ErrDuplicate
			}
		}
	}
	patch.Apply(u, time.Now().UTC())
	return cloneUser(u), nil
}

func matchesUser(u *models.User, filter models.UserFilter) bool {
	if filter.Role != "" && u.Role != filter.Role {
		return false
	}
	if filter.Status != "" && u.Status != filter.Status {
		return false
	}
	if filter.Search != "" {
		term := strings.ToLower(filter.Search)
		hay := strings.ToLower(u.FirstName + "\x00" + u.LastName + "\x00" + u.Email)
		if !strings.Contains(hay, term) {
			return false
		}
	}
	return true
}

func (r *UserRepo) List(_ context.Context, filter models.UserFilter, page models.Page) ([]models.User, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []models.User{}
	for _, u := range r.users {
		if matchesUser(u, filter) {
			matched = append(matched, *cloneUser(u))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})
	return paginate(matched, page), int64(len(matched)), nil
}

func (r *UserRepo) CountByRole(_ context.Context) (map[models.Role]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[models.Role]int64)
	for _, u := range r.users {
		counts[u.Role]++
	}
	return counts, nil
}

func (r *UserRepo) AddProviderService(_ context.Context, providerID, serviceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[providerID]
	if !ok || u.Role != models.RoleProvider {
		return repository.ErrNotFound
	}
	if u.ProviderInfo == nil {
		u.ProviderInfo = &models.ProviderInfo{}
	}
	for _, id := range u.ProviderInfo.Services {
		if id == serviceID {
			return nil
		}
	}
	u.ProviderInfo.Services = append(u.ProviderInfo.Services, serviceID)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *UserRepo) ApplyProviderRating(_ context.Context, providerID string, rating int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[providerID]
	if !ok {
		return repository.ErrNotFound
	}
	if u.ProviderInfo == nil {
		u.ProviderInfo = &models.ProviderInfo{}
	}
	summary := &u.ProviderInfo.Rating
	summary.Average = (summary.Average*float64(summary.Count) + float64(rating)) / float64(summary.Count+1)
	summary.Count++
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *UserRepo) SignupBuckets(_ context.Context, dateRange models.DateRange, bucket models.Bucket) ([]models.UserBucket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byKey := make(map[string]*models.UserBucket)
	for _, u := range r.users {
		if !dateRange.Contains(u.CreatedAt) {
			continue
		}
		key := bucket.Key(u.CreatedAt)
		row, ok := byKey[key]
		if !ok {
			row = &models.UserBucket{Period: key}
			byKey[key] = row
		}
		row.TotalUsers++
		switch u.Role {
		case models.RoleProvider:
			row.Providers++
		case models.RoleCustomer:
			row.Customers++
		}
	}
	out := make([]models.UserBucket, 0, len(byKey))
	for _, key := range sortedKeys(byKey) {
		out = append(out, *byKey[key])
	}
	return out, nil
}
