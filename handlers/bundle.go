package handlers

import (
	userRepo "easybook/database/repository/user"
)

// HandlerBundle groups the endpoint handlers the router mounts.
type HandlerBundle struct {
	// UserRepo backs the auth middleware.
	UserRepo userRepo.UserRepository

	Auth          *AuthHandler
	Providers     *ProviderHandler
	Customers     *CustomerHandler
	Services      *ServiceHandler
	Bookings      *BookingHandler
	Payments      *PaymentHandler
	Notifications *NotificationHandler
	Maps          *MapsHandler
	Admin         *AdminHandler
	Uploads       *UploadHandler
	Health        *HealthHandler
}
