package userRepo

import (
	"time"

	"easybook/models"

	"go.mongodb.org/mongo-driver/bson"
)

// UserPatch is a partial user update; nil fields are left untouched.
type UserPatch struct {
	FirstName       *string
	LastName        *string
	Phone           *string
	ProfileImage    *string
	PasswordHash    *string
	FirebaseUID     *string
	Role            *models.Role
	Status          *models.AccountStatus
	StatusReason    *string
	IsVerified      *bool
	FCMToken        *string
	ServiceCategory *models.Category
	LastLogin       *time.Time
	ProviderInfo    *models.ProviderInfo
	CustomerInfo    *models.CustomerInfo
}

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return len(p.SetDocument(time.Time{})) == 1
}

// Apply writes the patch onto an in-memory user.
func (p UserPatch) Apply(u *models.User, now time.Time) {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.ProfileImage != nil {
		u.ProfileImage = *p.ProfileImage
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.FirebaseUID != nil {
		u.FirebaseUID = *p.FirebaseUID
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Status != nil {
		u.Status = *p.Status
		u.IsActive = *p.Status == models.AccountActive
	}
	if p.StatusReason != nil {
		u.StatusReason = *p.StatusReason
	}
	if p.IsVerified != nil {
		u.IsVerified = *p.IsVerified
	}
	if p.FCMToken != nil {
		u.FCMToken = *p.FCMToken
	}
	if p.ServiceCategory != nil {
		u.ServiceCategory = *p.ServiceCategory
	}
	if p.LastLogin != nil {
		t := *p.LastLogin
		u.LastLogin = &t
	}
	if p.ProviderInfo != nil {
		info := *p.ProviderInfo
		u.ProviderInfo = &info
	}
	if p.CustomerInfo != nil {
		info := *p.CustomerInfo
		u.CustomerInfo = &info
	}
	u.UpdatedAt = now
}

// SetDocument renders the patch as a $set document.
func (p UserPatch) SetDocument(now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if p.FirstName != nil {
		set["firstName"] = *p.FirstName
	}
	if p.LastName != nil {
		set["lastName"] = *p.LastName
	}
	if p.Phone != nil {
		set["phone"] = *p.Phone
	}
	if p.ProfileImage != nil {
		set["profileImage"] = *p.ProfileImage
	}
	if p.PasswordHash != nil {
		set["passwordHash"] = *p.PasswordHash
	}
	if p.FirebaseUID != nil {
		set["firebaseUid"] = *p.FirebaseUID
	}
	if p.Role != nil {
		set["role"] = *p.Role
	}
	if p.Status != nil {
		set["status"] = *p.Status
		set["isActive"] = *p.Status == models.AccountActive
	}
	if p.StatusReason != nil {
		set["statusReason"] = *p.StatusReason
	}
	if p.IsVerified != nil {
		set["isVerified"] = *p.IsVerified
	}
	if p.FCMToken != nil {
		set["fcmToken"] = *p.FCMToken
	}
	if p.ServiceCategory != nil {
		set["serviceCategory"] = *p.ServiceCategory
	}
	if p.LastLogin != nil {
		set["lastLogin"] = *p.LastLogin
	}
	if p.ProviderInfo != nil {
		set["providerInfo"] = *p.ProviderInfo
	}
	if p.CustomerInfo != nil {
		set["customerInfo"] = *p.CustomerInfo
	}
	return set
}
