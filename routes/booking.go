package routes

import (
	"easybook/handlers"
	"easybook/middleware"
	"easybook/models"

	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes registers the booking lifecycle endpoints.
func RegisterBookingRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	bookings := api.Group("/bookings")
	{
		bookings.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		bookings.GET("", hb.Bookings.List)
		bookings.GET("/:id", hb.Bookings.Get)

		customer := middleware.RequireRole(models.RoleCustomer)
		bookings.POST("", customer, hb.Bookings.Create)
		bookings.PUT("/:id/review", customer, hb.Bookings.Review)

		provider := middleware.RequireRole(models.RoleProvider)
		bookings.PUT("/:id/accept", provider, hb.Bookings.Accept)
		bookings.PUT("/:id/decline", provider, hb.Bookings.Decline)
		bookings.PUT("/:id/start", provider, hb.Bookings.Start)
		bookings.PUT("/:id/complete", provider, hb.Bookings.Complete)

		bookings.PUT("/:id/cancel", hb.Bookings.Cancel)
	}
}

// RegisterPaymentRoutes registers charge, capture and refund endpoints.
func RegisterPaymentRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	payments := api.Group("/payments")
	{
		payments.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		payments.POST("/process", hb.Payments.Process)
		payments.POST("/capture", hb.Payments.Capture)
		payments.POST("/refund", hb.Payments.Refund)
		payments.GET("/status/:paymentId", hb.Payments.Status)
		payments.GET("/history", hb.Payments.History)
	}
}
