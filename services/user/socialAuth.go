package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"easybook/database/repository"
	userRepo "easybook/database/repository/user"
	"easybook/models"
	"easybook/utils"
	"easybook/validation"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// VerifyFirebaseToken exchanges an external identity token for a session token.
// The account is matched by firebase uid, then by email (linking the uid), and created
// as a passwordless customer when neither exists.
func (s *DefaultUserService) VerifyFirebaseToken(ctx context.Context, idToken string) (*models.AuthResponse, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, utils.NewValidationError("Validation failed", utils.FieldError{Field: "idToken", Message: "idToken is required"})
	}
	if s.Identity == nil {
		return nil, utils.NewUpstreamError("Identity provider is not configured", nil)
	}
	identity, err := s.Identity.Verify(ctx, idToken)
	if err != nil {
		utils.GetLogger().Warn("Identity token rejected", zap.Error(err))
		return nil, utils.NewUnauthorizedError("Invalid Firebase token")
	}

	user, err := s.Repo.GetByFirebaseUID(ctx, identity.UID)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		user, err = s.linkOrCreate(ctx, identity)
		if err != nil {
			return nil, err
		}
	default:
		return nil, utils.NewInternalError("Failed to load user", err)
	}

	if !user.IsActive {
		return nil, utils.NewForbiddenError(msgAccountDisabled)
	}
	return s.signIn(ctx, user)
}

func (s *DefaultUserService) linkOrCreate(ctx context.Context, identity *models.ExternalIdentity) (*models.User, error) {
	email := validation.NormalizeEmail(identity.Email)
	if email == "" {
		return nil, utils.NewValidationError("Firebase account has no email address")
	}

	existing, err := s.Repo.GetByEmail(ctx, email)
	if err == nil {
		patch := userRepo.UserPatch{FirebaseUID: &identity.UID}
		if identity.EmailVerified && !existing.IsVerified {
			verified := true
			patch.IsVerified = &verified
		}
		linked, err := s.Repo.Update(ctx, existing.ID, patch)
		if err != nil {
			return nil, writeError(err)
		}
		return linked, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NewInternalError("Failed to load user", err)
	}

	first, last := splitName(identity.DisplayName)
	if first == "" {
		first = strings.SplitN(email, "@", 2)[0]
	}
	now := s.Now()
	user := &models.User{
		ID:           uuid.New().String(),
		FirstName:    first,
		LastName:     last,
		Email:        email,
		Phone:        identity.PhoneNumber,
		FirebaseUID:  identity.UID,
		ProfileImage: identity.PhotoURL,
		Role:         models.RoleCustomer,
		Status:       models.AccountActive,
		IsActive:     true,
		IsVerified:   identity.EmailVerified,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	applyRoleDefaults(user, "")
	if err := s.Repo.Create(ctx, user); err != nil {
		return nil, writeError(err)
	}
	utils.GetLogger().Info("User created from Firebase identity", zap.String("userId", user.ID))
	return user, nil
}

func splitName(display string) (string, string) {
	parts := strings.Fields(display)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

// FirebaseIdentityVerifier implements IdentityVerifier with the Firebase Admin auth client.
type FirebaseIdentityVerifier struct {
	client *auth.Client
}

func NewFirebaseIdentityVerifier(ctx context.Context, app *firebase.App) (*FirebaseIdentityVerifier, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase auth client: %w", err)
	}
	return &FirebaseIdentityVerifier{client: client}, nil
}

func (v *FirebaseIdentityVerifier) Verify(ctx context.Context, idToken string) (*models.ExternalIdentity, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}
	record, err := v.client.GetUser(ctx, token.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch Firebase user %s: %w", token.UID, err)
	}
	return &models.ExternalIdentity{
		UID:           record.UID,
		Email:         record.Email,
		EmailVerified: record.EmailVerified,
		DisplayName:   record.DisplayName,
		PhoneNumber:   record.PhoneNumber,
		PhotoURL:      record.PhotoURL,
	}, nil
}

func (v *FirebaseIdentityVerifier) UpdatePassword(ctx context.Context, uid, password string) error {
	params := (&auth.UserToUpdate{}).Password(password)
	if _, err := v.client.UpdateUser(ctx, uid, params); err != nil {
		return fmt.Errorf("failed to update Firebase password for %s: %w", uid, err)
	}
	return nil
}
