package routes

import (
	"time"

	"easybook/config"
	"easybook/handlers"
	"easybook/middleware"
	"easybook/models"
	"easybook/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers sign-up, sign-in and account endpoints.
func RegisterAuthRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	auth := api.Group("/auth")
	{
		auth.POST("/register", hb.Auth.Register)
		auth.POST("/login", hb.Auth.Login)
		auth.POST("/verify-firebase-token", hb.Auth.VerifyFirebaseToken)
		auth.POST("/verify-email", hb.Auth.VerifyEmail)
		auth.POST("/resend-verification", hb.Auth.ResendVerification)
		auth.POST("/forgot-password", hb.Auth.ForgotPassword)
		auth.POST("/reset-password", hb.Auth.ResetPassword)

		// Protected routes (Require Authentication)
		protected := auth.Group("")
		protected.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		protected.GET("/me", hb.Auth.Me)
		protected.PUT("/profile", hb.Auth.UpdateProfile)
		protected.PUT("/change-password", hb.Auth.ChangePassword)
		protected.POST("/fcm-token", hb.Auth.UpdateFCMToken)
	}
}

// RegisterProviderRoutes registers the provider self-service endpoints.
func RegisterProviderRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	providers := api.Group("/providers")
	{
		providers.Use(middleware.JWTAuthMiddleware(hb.UserRepo), middleware.RequireRole(models.RoleProvider))
		providers.GET("/profile", hb.Providers.GetProfile)
		providers.PUT("/profile", hb.Providers.UpdateProfile)
		providers.PUT("/working-hours", hb.Providers.UpdateWorkingHours)
		providers.GET("/dashboard", hb.Providers.Dashboard)
		providers.GET("/earnings", hb.Providers.Earnings)
		providers.GET("/reviews", hb.Providers.Reviews)
		providers.GET("/availability", hb.Providers.GetAvailability)
		providers.POST("/availability", hb.Providers.SetAvailability)
	}
}

// RegisterCustomerRoutes registers the customer self-service endpoints.
func RegisterCustomerRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	customers := api.Group("/customers")
	{
		customers.Use(middleware.JWTAuthMiddleware(hb.UserRepo), middleware.RequireRole(models.RoleCustomer))
		customers.GET("/profile", hb.Customers.GetProfile)
		customers.PUT("/profile", hb.Customers.UpdateProfile)
		customers.GET("/dashboard", hb.Customers.Dashboard)
		customers.GET("/booking-history", hb.Customers.BookingHistory)
		customers.GET("/favorites", hb.Customers.Favorites)
	}
}

// RegisterServiceRoutes registers the public catalog and listing management.
func RegisterServiceRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	services := api.Group("/services")
	{
		services.GET("", hb.Services.List)
		services.GET("/categories", hb.Services.Categories)
		services.GET("/category/:category", hb.Services.ByCategory)

		owner := services.Group("")
		owner.Use(middleware.JWTAuthMiddleware(hb.UserRepo), middleware.RequireRole(models.RoleProvider))
		owner.GET("/provider/mine", hb.Services.Mine)
		owner.POST("", hb.Services.Create)
		owner.PUT("/:id", hb.Services.Update)
		owner.DELETE("/:id", hb.Services.Delete)

		services.GET("/:id", hb.Services.Get)
	}
}

// RegisterNotificationRoutes registers the inbox endpoints.
func RegisterNotificationRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	notifications := api.Group("/notifications")
	{
		notifications.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		notifications.GET("", hb.Notifications.List)
		notifications.PUT("/:id/read", hb.Notifications.MarkAsRead)
		notifications.POST("/send", middleware.RequireRole(models.RoleAdmin, models.RoleProvider), hb.Notifications.Send)
		notifications.POST("/bulk", middleware.RequireRole(models.RoleAdmin), hb.Notifications.SendBulk)
	}
}

// RegisterMapsRoutes registers geocoding and routing endpoints.
func RegisterMapsRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	maps := api.Group("/maps")
	{
		maps.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		maps.POST("/geocode", hb.Maps.Geocode)
		maps.POST("/directions", hb.Maps.Directions)
		maps.POST("/distance", hb.Maps.Distance)
	}
}

// RegisterUploadRoutes registers media uploads.
func RegisterUploadRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	uploads := api.Group("/uploads")
	{
		uploads.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		uploads.POST("", hb.Uploads.Upload)
		uploads.DELETE("/*publicId", hb.Uploads.Delete)
	}
}

// RegisterAdminRoutes sets up endpoints for admin operations.
func RegisterAdminRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	admin := api.Group("/admin")
	{
		admin.Use(middleware.JWTAuthMiddleware(hb.UserRepo), middleware.RequireRole(models.RoleAdmin))
		admin.GET("/dashboard", hb.Admin.Dashboard)
		admin.GET("/users", hb.Admin.ListUsers)
		admin.PUT("/users/:id/status", hb.Admin.SetUserStatus)
		admin.PUT("/users/:id/role", hb.Admin.SetUserRole)
		admin.GET("/bookings", hb.Bookings.AdminList)
		admin.GET("/analytics", hb.Admin.Analytics)
		admin.GET("/analytics/performance", hb.Admin.Performance)
		admin.GET("/analytics/reviews", hb.Admin.Reviews)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.Health.Health)
	r.GET("/api/health", hb.Health.Health)
}

func corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	origins := config.AllowedOrigins()
	if len(origins) == 1 && origins[0] == "*" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(
		utils.ErrorHandler(),
		middleware.RequestLogger(),
		cors.New(corsConfig()),
		middleware.RateLimitMiddleware(config.AppConfig.RateLimitRPS, config.AppConfig.RateLimitBurst),
	)

	RegisterHealthRoute(r, hb)

	api := r.Group("/api")
	RegisterAuthRoutes(api, hb)
	RegisterProviderRoutes(api, hb)
	RegisterCustomerRoutes(api, hb)
	RegisterServiceRoutes(api, hb)
	RegisterBookingRoutes(api, hb)
	RegisterPaymentRoutes(api, hb)
	RegisterNotificationRoutes(api, hb)
	RegisterMapsRoutes(api, hb)
	RegisterUploadRoutes(api, hb)
	RegisterAdminRoutes(api, hb)
}
