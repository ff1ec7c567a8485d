package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/LightsoftTeam/baldoria-backend/internal/middleware"
	"github.com/LightsoftTeam/baldoria-backend/internal/models"
)

// AuthHandler handles authentication related API endpoints.
type AuthHandler struct {
	logger *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(logger *zap.Logger) *AuthHandler {
	return &AuthHandler{logger: logger}
}

// Me handles GET /auth/me. The back-office frontend calls it after a Firebase
// sign-in to learn whether the account is a staff admin. It relies on the auth
// middleware chain having verified the token and resolved the admin record.
func (h *AuthHandler) Me(c *gin.Context) {
	raw, exists := c.Get(middleware.ContextAdminProfile)
	if !exists {
		h.logger.Error("Admin profile not found in context, auth middleware did not run")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: admin not found in context"})
		return
	}
	profile, ok := raw.(models.UserProfile)
	if !ok {
		h.logger.Error("Admin profile in context has an unexpected type")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "An unexpected internal server error occurred."})
		return
	}
	c.JSON(http.StatusOK, profile)
}
