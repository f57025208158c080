// models/user.go
package models

import (
	"strings"
	"time"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleProvider, RoleAdmin:
		return true
	}
	return false
}

// AccountStatus is the admin-controlled account state. IsActive mirrors StatusActive.
type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountInactive  AccountStatus = "inactive"
	AccountSuspended AccountStatus = "suspended"
)

func (s AccountStatus) IsValid() bool {
	switch s {
	case AccountActive, AccountInactive, AccountSuspended:
		return true
	}
	return false
}

// User represents a platform user.
type User struct {
	ID              string        `bson:"id" json:"id"`
	FirstName       string        `bson:"firstName" json:"firstName"`
	LastName        string        `bson:"lastName" json:"lastName"`
	Email           string        `bson:"email" json:"email"`
	Phone           string        `bson:"phone,omitempty" json:"phone,omitempty"`
	PasswordHash    string        `bson:"passwordHash,omitempty" json:"-"`
	FirebaseUID     string        `bson:"firebaseUid,omitempty" json:"firebaseUid,omitempty"`
	Role            Role          `bson:"role" json:"role"`
	Status          AccountStatus `bson:"status" json:"status"`
	StatusReason    string        `bson:"statusReason,omitempty" json:"statusReason,omitempty"`
	IsActive        bool          `bson:"isActive" json:"isActive"`
	IsVerified      bool          `bson:"isVerified" json:"isVerified"`
	ProfileImage    string        `bson:"profileImage,omitempty" json:"profileImage,omitempty"`
	ServiceCategory Category      `bson:"serviceCategory,omitempty" json:"serviceCategory,omitempty"`
	FCMToken        string        `bson:"fcmToken,omitempty" json:"-"`
	ProviderInfo    *ProviderInfo `bson:"providerInfo,omitempty" json:"providerInfo,omitempty"`
	CustomerInfo    *CustomerInfo `bson:"customerInfo,omitempty" json:"customerInfo,omitempty"`
	LastLogin       *time.Time    `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	CreatedAt       time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time     `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// DisplayName is the business name for providers that set one, the full name otherwise.
func (u *User) DisplayName() string {
	if u.ProviderInfo != nil && u.ProviderInfo.BusinessName != "" {
		return u.ProviderInfo.BusinessName
	}
	return u.FullName()
}

// WantsPush reports whether push delivery is allowed for this user.
func (u *User) WantsPush() bool {
	if u.FCMToken == "" {
		return false
	}
	if u.CustomerInfo != nil {
		return u.CustomerInfo.Preferences.Notifications
	}
	return true
}

// WantsEmail reports whether booking emails are allowed for this user.
func (u *User) WantsEmail() bool {
	if u.Email == "" {
		return false
	}
	if u.CustomerInfo != nil {
		return u.CustomerInfo.Preferences.EmailUpdates
	}
	return true
}

// RatingSummary is a running average over customer reviews.
type RatingSummary struct {
	Average float64 `bson:"average" json:"average"`
	Count   int     `bson:"count" json:"count"`
}

// DayHours is a single weekday entry of a provider's working-hours table.
type DayHours struct {
	Start     string `bson:"start" json:"start"`
	End       string `bson:"end" json:"end"`
	IsWorking bool   `bson:"isWorking" json:"isWorking"`
}

// Weekdays lists the keys used by working-hours and availability maps.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// DefaultWorkingHours is Monday to Friday 09:00-17:00.
func DefaultWorkingHours() map[string]DayHours {
	hours := make(map[string]DayHours, len(Weekdays))
	for _, day := range Weekdays {
		working := day != "saturday" && day != "sunday"
		hours[day] = DayHours{Start: "09:00", End: "17:00", IsWorking: working}
	}
	return hours
}

type ProviderInfo struct {
	BusinessName    string              `bson:"businessName,omitempty" json:"businessName,omitempty"`
	BusinessAddress string              `bson:"businessAddress,omitempty" json:"businessAddress,omitempty"`
	Services        []string            `bson:"services" json:"services"`
	Experience      int                 `bson:"experience" json:"experience"`
	Rating          RatingSummary       `bson:"rating" json:"rating"`
	IsAvailable     bool                `bson:"isAvailable" json:"isAvailable"`
	WorkingHours    map[string]DayHours `bson:"workingHours" json:"workingHours"`
}

type Preferences struct {
	Notifications bool `bson:"notifications" json:"notifications"`
	EmailUpdates  bool `bson:"emailUpdates" json:"emailUpdates"`
}

type CustomerInfo struct {
	Address     *Address    `bson:"address,omitempty" json:"address,omitempty"`
	Preferences Preferences `bson:"preferences" json:"preferences"`
}

// UserFilter narrows admin user listings.
type UserFilter struct {
	Role   Role
	Status AccountStatus
	Search string
}

// ProfileUpdate carries the only fields a user may change on their own account.
type ProfileUpdate struct {
	FirstName    *string `json:"firstName"`
	LastName     *string `json:"lastName"`
	Phone        *string `json:"phone"`
	ProfileImage *string `json:"profileImage"`
}

// ProviderProfileUpdate carries editable provider business fields.
type ProviderProfileUpdate struct {
	BusinessName    *string `json:"businessName"`
	BusinessAddress *string `json:"businessAddress"`
	Experience      *int    `json:"experience"`
	IsAvailable     *bool   `json:"isAvailable"`
}

// CustomerProfileUpdate carries editable customer fields.
type CustomerProfileUpdate struct {
	Address     *Address     `json:"address"`
	Preferences *Preferences `json:"preferences"`
}
