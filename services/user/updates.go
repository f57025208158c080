package user

import (
	"context"
	"strings"

	bookingRepo "easybook/database/repository/booking"
	userRepo "easybook/database/repository/user"
	"easybook/models"
	"easybook/utils"
	"easybook/validation"

	"golang.org/x/crypto/bcrypt"
)

func (s *DefaultUserService) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, lookupError(err, msgUserNotFound)
	}
	return user, nil
}

// UpdateProfile changes the caller's own name, phone and picture. Nothing else is writable here.
func (s *DefaultUserService) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (*models.User, error) {
	if err := validation.ValidateProfileUpdate(update); err != nil {
		return nil, err
	}
	patch := userRepo.UserPatch{
		FirstName:    trimmed(update.FirstName),
		LastName:     trimmed(update.LastName),
		Phone:        update.Phone,
		ProfileImage: update.ProfileImage,
	}
	if patch.IsEmpty() {
		return s.GetUserByID(ctx, userID)
	}
	user, err := s.Repo.Update(ctx, userID, patch)
	if err != nil {
		return nil, writeError(err)
	}
	return user, nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

// ChangePassword requires the current password. Passwordless (Firebase-only) accounts cannot use it.
func (s *DefaultUserService) ChangePassword(ctx context.Context, userID string, req models.ChangePasswordRequest) error {
	if err := validation.Struct(&req); err != nil {
		return err
	}
	user, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return lookupError(err, msgUserNotFound)
	}
	if user.PasswordHash == "" {
		return utils.NewInvalidStateError("Password change is not available for this account")
	}
	if req.CurrentPassword == "" {
		return utils.NewValidationError("Validation failed", utils.FieldError{Field: "currentPassword", Message: "Current password is required"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return utils.NewUnauthorizedError("Current password is incorrect")
	}
	hash, err := s.hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if _, err := s.Repo.Update(ctx, userID, userRepo.UserPatch{PasswordHash: &hash}); err != nil {
		return writeError(err)
	}
	return nil
}

// UpdateCustomerProfile edits the customer's address and notification preferences.
func (s *DefaultUserService) UpdateCustomerProfile(ctx context.Context, userID string, update models.CustomerProfileUpdate) (*models.User, error) {
	user, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, lookupError(err, msgUserNotFound)
	}
	if user.Role != models.RoleCustomer {
		return nil, utils.NewForbiddenError("Only customers have a customer profile")
	}
	info := models.CustomerInfo{Preferences: models.Preferences{Notifications: true, EmailUpdates: true}}
	if user.CustomerInfo != nil {
		info = *user.CustomerInfo
	}
	if update.Address != nil {
		info.Address = update.Address
	}
	if update.Preferences != nil {
		info.Preferences = *update.Preferences
	}
	updated, err := s.Repo.Update(ctx, userID, userRepo.UserPatch{CustomerInfo: &info})
	if err != nil {
		return nil, writeError(err)
	}
	return updated, nil
}

// CustomerDashboard summarises the customer's bookings.
func (s *DefaultUserService) CustomerDashboard(ctx context.Context, userID string) (*CustomerDashboard, error) {
	filter := models.BookingFilter{CustomerID: userID}
	counts, err := s.Bookings.StatusCounts(ctx, filter)
	if err != nil {
		return nil, utils.NewInternalError("Failed to count bookings", err)
	}
	spent, err := s.Bookings.CompletedRevenue(ctx, filter)
	if err != nil {
		return nil, utils.NewInternalError("Failed to total spending", err)
	}
	recent, _, err := s.Bookings.List(ctx, filter, models.Page{Page: 1, Limit: 5})
	if err != nil {
		return nil, utils.NewInternalError("Failed to list bookings", err)
	}
	return &CustomerDashboard{
		BookingsByStatus: counts,
		TotalBookings:    counts.Total(),
		TotalSpent:       spent,
		RecentBookings:   recent,
	}, nil
}

// BookingHistory pages through the customer's bookings, latest appointment first.
func (s *DefaultUserService) BookingHistory(ctx context.Context, userID string, status models.BookingStatus, page models.Page) ([]models.Booking, int64, error) {
	if status != "" && !status.IsValid() {
		return nil, 0, utils.NewValidationError("Validation failed", utils.FieldError{Field: "status", Message: "Invalid booking status"})
	}
	filter := models.BookingFilter{CustomerID: userID, Status: status, Sort: models.SortBySchedule}
	bookings, total, err := s.Bookings.List(ctx, filter, page)
	if err != nil {
		return nil, 0, utils.NewInternalError("Failed to load booking history", err)
	}
	return bookings, total, nil
}

const (
	favoriteServices  = 10
	favoriteProviders = 5
)

func (s *DefaultUserService) Favorites(ctx context.Context, userID string) (*Favorites, error) {
	services, err := s.Bookings.FavoriteTotals(ctx, userID, bookingRepo.ByService, favoriteServices)
	if err != nil {
		return nil, utils.NewInternalError("Failed to load favourite services", err)
	}
	providers, err := s.Bookings.FavoriteTotals(ctx, userID, bookingRepo.ByProvider, favoriteProviders)
	if err != nil {
		return nil, utils.NewInternalError("Failed to load favourite providers", err)
	}
	return &Favorites{Services: services, Providers: providers}, nil
}
