package api

import (
	"errors"
	"net/http"

	"github.com/covenantlabs/covenant-server/internal/apperrors"
	"github.com/covenantlabs/covenant-server/internal/models"
	"github.com/covenantlabs/covenant-server/internal/service"
	"github.com/gin-gonic/gin"
)

// Handler holds the API handlers
type Handler struct {
	svc service.Service
}

// NewHandler creates a new API handler
func NewHandler(svc service.Service) *Handler {
	return &Handler{svc: svc}
}

// SetupRoutes registers all API routes on the router
func (h *Handler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/signup", h.SignUp)
		auth.POST("/login", h.Login)
	}

	// Public verification view, no auth
	api.GET("/verify/:code", h.VerifyContract)

	users := api.Group("/users", AuthMiddleware())
	{
		users.GET("/profile", h.GetProfile)
		users.PUT("/profile", h.UpdateProfile)
		users.PUT("/digital-identity", h.UpdateDigitalIdentity)
	}

	templates := api.Group("/templates", AuthMiddleware())
	{
		templates.POST("", h.CreateTemplate)
		templates.GET("", h.ListTemplates)
		templates.GET("/:id", h.GetTemplate)
		templates.PUT("/:id", h.UpdateTemplate)
		templates.DELETE("/:id", h.DeleteTemplate)
	}

	contracts := api.Group("/contracts", AuthMiddleware())
	{
		contracts.POST("", h.CreateContract)
		contracts.GET("", h.ListContracts)
		contracts.GET("/:id", h.GetContract)
		contracts.PUT("/:id", h.UpdateContract)
		contracts.DELETE("/:id", h.DeleteContract)
		contracts.POST("/:id/sign", h.SignContract)
	}

	notifications := api.Group("/notifications", AuthMiddleware())
	{
		notifications.GET("", h.ListNotifications)
		notifications.PUT("/read-all", h.MarkAllNotificationsRead)
		notifications.PUT("/:id/read", h.MarkNotificationRead)
		notifications.DELETE("/:id", h.DeleteNotification)
	}
}

// userID returns the authenticated user id set by AuthMiddleware
func userID(c *gin.Context) string {
	return c.GetString("userId")
}

// respondError maps service errors onto HTTP statuses
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, apperrors.ErrUnauthorized):
		status, code = http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, apperrors.ErrForbidden):
		status, code = http.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, apperrors.ErrConflict):
		status, code = http.StatusConflict, "CONFLICT"
	case errors.Is(err, apperrors.ErrInvalidState):
		status, code = http.StatusBadRequest, "INVALID_STATE"
	case errors.Is(err, apperrors.ErrValidation):
		status, code = http.StatusBadRequest, "VALIDATION_ERROR"
	}

	c.JSON(status, models.ErrorResponse{
		Status:  "error",
		Code:    code,
		Message: err.Error(),
	})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Status:  "error",
		Code:    "VALIDATION_ERROR",
		Message: err.Error(),
	})
}
