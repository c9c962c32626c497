package api

import (
	"net/http"

	"workbid-backend/internal/auth/delivery"
	authRepo "workbid-backend/internal/auth/repository"
	authUsecase "workbid-backend/internal/auth/usecase"
	notifDelivery "workbid-backend/internal/notification/delivery"
	notifUsecase "workbid-backend/internal/notification/usecase"
	"workbid-backend/pkg/sse"

	"github.com/gin-gonic/gin"
)

// SetupRoutes mounts every API route on r.
func SetupRoutes(r *gin.Engine, authUc authUsecase.AuthUsecase, tokenRepo authRepo.DeviceTokenRepository, notifService *notifUsecase.Service, sseManager *sse.Manager) {
	authHandler := delivery.NewAuthHandler(authUc, tokenRepo)
	notifHandler := notifDelivery.NewNotificationHandler(notifService)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// SSE stream of cache-change signals
		api.GET("/events", delivery.AuthMiddleware(authUc), func(c *gin.Context) {
			sseManager.ServeHTTP(c, c.GetString("userID"))
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", delivery.AuthMiddleware(authUc), authHandler.Me)
		}

		// FCM device routes (protected)
		fcm := api.Group("/fcm")
		fcm.Use(delivery.AuthMiddleware(authUc))
		{
			fcm.POST("/register", authHandler.RegisterDeviceToken)
			fcm.DELETE("/:token", authHandler.UnregisterDeviceToken)
		}

		// Notification routes (protected)
		notifications := api.Group("/notifications")
		notifications.Use(delivery.AuthMiddleware(authUc))
		{
			notifications.GET("", notifHandler.List)
			notifications.POST("", notifHandler.Create)
		}

		// Settings (protected)
		settings := api.Group("/settings")
		settings.Use(delivery.AuthMiddleware(authUc))
		{
			settings.PATCH("/alerts", authHandler.UpdateAlertSettings)
		}

		// User lookup (protected)
		users := api.Group("/users")
		users.Use(delivery.AuthMiddleware(authUc))
		{
			users.GET("/:key", authHandler.ResolveUser)
		}
	}
}
