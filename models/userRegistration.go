package models

// RegistrationRequest is the public sign-up payload.
type RegistrationRequest struct {
	FirstName       string   `json:"firstName" validate:"required,min=2,max=50"`
	LastName        string   `json:"lastName" validate:"max=50"`
	Email           string   `json:"email" validate:"required,email"`
	Phone           string   `json:"phone" validate:"omitempty,phone"`
	Password        string   `json:"password" validate:"required,min=6,max=128"`
	Role            Role     `json:"role" validate:"omitempty,oneof=customer provider"`
	ServiceCategory Category `json:"serviceCategory" validate:"omitempty,category"`
}

// LoginRequest authenticates with a local password.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ExternalIdentity is what an identity provider vouches for after verifying its token.
type ExternalIdentity struct {
	UID           string
	Email         string
	EmailVerified bool
	DisplayName   string
	PhoneNumber   string
	PhotoURL      string
}

// AuthResponse contains the session token and the signed-in user.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=128"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	ResetCode   string `json:"resetCode" validate:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=128"`
}

type VerifyEmailRequest struct {
	Email            string `json:"email" validate:"required,email"`
	VerificationCode string `json:"verificationCode" validate:"required,len=6,numeric"`
}
