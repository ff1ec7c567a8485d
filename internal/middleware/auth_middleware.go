package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/LightsoftTeam/baldoria-backend/internal/models"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID    = "userID"
	ContextUserEmail = "userEmail"
	ContextAdmin     = "admin"

	// ContextAdminProfile holds the models.UserProfile of the verified admin.
	ContextAdminProfile = "adminProfile"
)

// ErrorResponse mirrors api.ErrorResponse to avoid an import cycle.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// TokenVerifier verifies Firebase ID tokens. *auth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// AdminLookup resolves an admin record by email. db.UserRepository satisfies it.
type AdminLookup interface {
	GetAdminByEmail(ctx context.Context, email string) (*models.User, error)
}

// AuthMiddleware provides Gin middleware for Firebase token authentication of
// back-office staff.
type AuthMiddleware struct {
	verifier TokenVerifier
	admins   AdminLookup
	logger   *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware instance.
func NewAuthMiddleware(verifier TokenVerifier, admins AdminLookup, logger *zap.Logger) *AuthMiddleware {
	if verifier == nil || admins == nil {
		logger.Fatal("AuthMiddleware requires a token verifier and an admin lookup")
	}
	return &AuthMiddleware{verifier: verifier, admins: admins, logger: logger}
}

// VerifyToken verifies the Bearer ID token and stores the caller's UID and email in
// the Gin context.
func (m *AuthMiddleware) VerifyToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header is required"})
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header format must be 'Bearer {token}'"})
			return
		}

		token, err := m.verifier.VerifyIDToken(c.Request.Context(), parts[1])
		if err != nil {
			m.logger.Warn("Invalid Firebase ID token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired authentication token"})
			return
		}

		c.Set(ContextUserID, token.UID)
		if email, ok := token.Claims["email"].(string); ok {
			c.Set(ContextUserEmail, email)
		}
		c.Next()
	}
}

// RequireAdmin must run after VerifyToken. It rejects callers whose token email
// does not belong to an admin record.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString(ContextUserEmail)
		if email == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "Token carries no email"})
			return
		}

		admin, err := m.admins.GetAdminByEmail(c.Request.Context(), email)
		if err != nil {
			m.logger.Error("Admin lookup failed", zap.String("email", email), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to verify permissions"})
			return
		}
		if admin == nil {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "Admin access required"})
			return
		}

		c.Set(ContextAdmin, admin.ID)
		c.Set(ContextAdminProfile, admin.Profile())
		c.Next()
	}
}

// Chain returns VerifyToken followed by RequireAdmin.
func (m *AuthMiddleware) Chain() []gin.HandlerFunc {
	return []gin.HandlerFunc{m.VerifyToken(), m.RequireAdmin()}
}
