package userRepo

import (
	"context"

	"easybook/models"
)

// UserRepository defines methods for user data access.
type UserRepository interface {
	// Create inserts a new user record.
	Create(ctx context.Context, user *models.User) error
	// GetByID retrieves a user by their unique ID.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByEmail retrieves a user by their (normalized) email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetByFirebaseUID retrieves a user linked to an external identity.
	GetByFirebaseUID(ctx context.Context, uid string) (*models.User, error)
	// Update applies a partial patch and returns the updated user.
	Update(ctx context.Context, id string, patch UserPatch) (*models.User, error)
	// List returns one page of users plus the total match count.
	List(ctx context.Context, filter models.UserFilter, page models.Page) ([]models.User, int64, error)
	// CountByRole counts users grouped by role.
	CountByRole(ctx context.Context) (map[models.Role]int64, error)
	// AddProviderService links a service to the provider's profile.
	AddProviderService(ctx context.Context, providerID, serviceID string) error
	// ApplyProviderRating folds one review into the provider's running average.
	ApplyProviderRating(ctx context.Context, providerID string, rating int) error
	// SignupBuckets groups account creation into time buckets.
	SignupBuckets(ctx context.Context, dateRange models.DateRange, bucket models.Bucket) ([]models.UserBucket, error)
}
