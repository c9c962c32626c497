package api

import (
	"net/http"

	authRepo "workbid-backend/internal/auth/repository"
	authUsecase "workbid-backend/internal/auth/usecase"
	notifUsecase "workbid-backend/internal/notification/usecase"
	"workbid-backend/pkg/sse"

	"github.com/gin-gonic/gin"
)

// Handler owns the HTTP server wiring.
type Handler struct {
	authUsecase  authUsecase.AuthUsecase
	tokenRepo    authRepo.DeviceTokenRepository
	notifService *notifUsecase.Service
	sseManager   *sse.Manager
}

// NewHandler creates the HTTP handler.
func NewHandler(authUc authUsecase.AuthUsecase, tokenRepo authRepo.DeviceTokenRepository, notifService *notifUsecase.Service, sseManager *sse.Manager) *Handler {
	return &Handler{
		authUsecase:  authUc,
		tokenRepo:    tokenRepo,
		notifService: notifService,
		sseManager:   sseManager,
	}
}

// Start runs the HTTP server on addr, blocking until it exits.
func (h *Handler) Start(addr string) error {
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	SetupRoutes(r, h.authUsecase, h.tokenRepo, h.notifService, h.sseManager)
	return r.Run(addr)
}
