package user

import (
	"context"
	"time"

	bookingRepo "easybook/database/repository/booking"
	userRepo "easybook/database/repository/user"
	"easybook/models"
)

// UserService covers accounts: sign-up, sign-in, profile and admin account controls.
type UserService interface {
	// Registration and authentication
	Register(ctx context.Context, req models.RegistrationRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	VerifyFirebaseToken(ctx context.Context, idToken string) (*models.AuthResponse, error)

	// Email codes
	VerifyEmail(ctx context.Context, req models.VerifyEmailRequest) error
	ResendVerification(ctx context.Context, email string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error

	// Self-service
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (*models.User, error)
	ChangePassword(ctx context.Context, userID string, req models.ChangePasswordRequest) error
	UpdateFCMToken(ctx context.Context, userID, token string) error
	UpdateCustomerProfile(ctx context.Context, userID string, update models.CustomerProfileUpdate) (*models.User, error)
	CustomerDashboard(ctx context.Context, userID string) (*CustomerDashboard, error)
	BookingHistory(ctx context.Context, userID string, status models.BookingStatus, page models.Page) ([]models.Booking, int64, error)
	Favorites(ctx context.Context, userID string) (*Favorites, error)

	// Admin
	ListUsers(ctx context.Context, filter models.UserFilter, page models.Page) ([]models.User, int64, error)
	SetStatus(ctx context.Context, userID string, status models.AccountStatus, reason string) (*models.User, error)
	SetRole(ctx context.Context, actor models.Actor, userID string, role models.Role) (*models.User, error)
}

// IdentityVerifier checks tokens issued by the external identity provider.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (*models.ExternalIdentity, error)
	UpdatePassword(ctx context.Context, uid, password string) error
}

// CodeStore keeps one-time codes keyed by purpose and subject.
type CodeStore interface {
	Issue(ctx context.Context, purpose, subject string, ttl time.Duration) (string, error)
	Consume(ctx context.Context, purpose, subject, provided string) error
}

// Mailer sends account emails.
type Mailer interface {
	Send(ctx context.Context, msg models.EmailMessage) error
}

// CustomerDashboard is the summary shown on a customer's home screen.
type CustomerDashboard struct {
	BookingsByStatus models.BookingStatusCounts `json:"bookingsByStatus"`
	TotalBookings    int64                      `json:"totalBookings"`
	TotalSpent       float64                    `json:"totalSpent"`
	RecentBookings   []models.Booking           `json:"recentBookings"`
}

// Favorites ranks what a customer books again and again, counting completed bookings only.
type Favorites struct {
	Services  []models.FavoriteTotals `json:"favoriteServices"`
	Providers []models.FavoriteTotals `json:"favoriteProviders"`
}

// DefaultUserService is the production implementation.
// Identity, Codes and Mailer are optional; the flows that need them fail with an upstream error.
type DefaultUserService struct {
	Repo     userRepo.UserRepository
	Bookings bookingRepo.BookingRepository
	Identity IdentityVerifier
	Codes    CodeStore
	Mailer   Mailer

	TokenTTL time.Duration
	HashCost int
	Now      func() time.Time
}

func NewDefaultUserService(repo userRepo.UserRepository, bookings bookingRepo.BookingRepository) *DefaultUserService {
	return &DefaultUserService{
		Repo:     repo,
		Bookings: bookings,
		TokenTTL: 7 * 24 * time.Hour,
		HashCost: 12,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}
