package routes

import (
	"time"

	"marketplace/handlers"
	"marketplace/middleware"
	"marketplace/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", handlers.HealthHandler(hb.Health))
}

// RegisterProviderRoutes registers public provider data and the provider's
// own schedule management.
func RegisterProviderRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/providers")
	{
		api.POST("", hb.Providers.RegisterProviderHandler)
		api.GET("/:id", hb.Providers.GetProviderHandler)
		api.GET("/:id/slots", hb.Providers.GetSlotsHandler)
		api.GET("/:id/availability", hb.Providers.GetAvailabilityHandler)
		api.GET("/:id/reliability", hb.Providers.GetReliabilityHandler)
		api.GET("/:id/reviews", hb.Providers.ListReviewsHandler)
		api.GET("/:id/services", hb.Catalog.ListServicesHandler)
	}

	me := r.Group("/api/providers/me")
	{
		me.Use(middleware.Authenticate(hb.JWTSecret, hb.AdminToken), middleware.RequireRole(models.RoleProvider))
		me.PUT("/availability", hb.Providers.UpdateAvailabilityHandler)
		me.PUT("/availability/special/:date", hb.Providers.SetSpecialDateHandler)
		me.DELETE("/availability/special/:date", hb.Providers.ClearSpecialDateHandler)

		me.POST("/services", hb.Catalog.CreateServiceHandler)
		me.PUT("/services/:serviceId", hb.Catalog.UpdateServiceHandler)
		me.DELETE("/services/:serviceId", hb.Catalog.DeleteServiceHandler)
	}
}

// RegisterAccountRoutes registers client signup, subscriptions and device
// tokens.
func RegisterAccountRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/api/clients", hb.Providers.RegisterClientHandler)

	me := r.Group("/api/me")
	{
		me.Use(middleware.Authenticate(hb.JWTSecret, hb.AdminToken), middleware.RequireRole(models.RoleClient, models.RoleProvider))
		me.PUT("/fcm-token", hb.Providers.UpdateFCMTokenHandler)
	}

	sub := r.Group("/api/subscription")
	{
		sub.Use(middleware.Authenticate(hb.JWTSecret, hb.AdminToken), middleware.RequireRole(models.RoleClient))
		sub.GET("", hb.Subscriptions.GetSubscriptionHandler)
		sub.POST("", hb.Subscriptions.SubscribeHandler)
		sub.POST("/cancel", hb.Subscriptions.CancelSubscriptionHandler)
	}

	inbox := r.Group("/api/notifications")
	{
		inbox.Use(middleware.Authenticate(hb.JWTSecret, hb.AdminToken), middleware.RequireRole(models.RoleClient, models.RoleProvider))
		inbox.GET("", hb.Notifications.ListNotificationsHandler)
		inbox.POST("/:id/read", hb.Notifications.MarkReadHandler)
	}
}

// RegisterBookingRoutes sets up the endpoints for the booking lifecycle.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	bookingGroup := r.Group("/api/bookings")
	{
		bookingGroup.Use(middleware.Authenticate(hb.JWTSecret, hb.AdminToken))
		client := middleware.RequireRole(models.RoleClient)
		provider := middleware.RequireRole(models.RoleProvider)

		bookingGroup.POST("", client, hb.Bookings.CreateBookingHandler)
		bookingGroup.GET("", hb.Bookings.ListBookingsHandler)
		bookingGroup.GET("/:id", hb.Bookings.GetBookingHandler)

		bookingGroup.POST("/:id/accept", provider, hb.Bookings.AcceptBookingHandler)
		bookingGroup.POST("/:id/decline", provider, hb.Bookings.DeclineBookingHandler)
		bookingGroup.POST("/:id/complete", provider, hb.Bookings.CompleteBookingHandler)
		bookingGroup.POST("/:id/cancellation-request", provider, hb.Bookings.RequestCancellationHandler)

		bookingGroup.POST("/:id/cancel", client, hb.Bookings.CancelBookingHandler)
		bookingGroup.POST("/:id/cancellation-response", client, hb.Bookings.RespondToCancellationHandler)
		bookingGroup.POST("/:id/payment", client, hb.Bookings.PayBookingFeeHandler)
		bookingGroup.POST("/:id/review", client, hb.Bookings.SubmitReviewHandler)
	}
}

// RegisterAdminRoutes sets up endpoints for admin operations.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(middleware.Authenticate(hb.JWTSecret, hb.AdminToken), middleware.RequireRole(models.RoleAdmin))
		adminGroup.GET("/cancellations", hb.Admin.ListPendingCancellationsHandler)
		adminGroup.POST("/cancellations/:id/resolve", hb.Admin.ResolveCancellationHandler)

		adminGroup.GET("/providers", hb.Admin.GetAllProvidersHandler)
		adminGroup.POST("/providers/:id/verify", hb.Admin.VerifyProviderHandler)
		adminGroup.PUT("/providers/:id/score", hb.Admin.SetScoreHandler)
		adminGroup.POST("/providers/:id/reset-restrictions", hb.Admin.ResetRestrictionsHandler)

		adminGroup.POST("/accounts/:role/:id/suspend", hb.Admin.SuspendAccountHandler)
		adminGroup.POST("/accounts/:role/:id/reinstate", hb.Admin.ReinstateAccountHandler)
	}
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r, hb)
	RegisterProviderRoutes(r, hb)
	RegisterAccountRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}
