package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/LightsoftTeam/baldoria-backend/internal/core"
	"github.com/LightsoftTeam/baldoria-backend/internal/middleware"
)

// SetupRoutes configures all the application routes with their handlers.
// Global middleware (logging, recovery, CORS) is expected on router already.
// When authMW is nil the back-office routes are left open.
func SetupRoutes(
	router *gin.Engine,
	logger *zap.Logger,
	userService core.UserService,
	reservationService core.ReservationService,
	authMW *middleware.AuthMiddleware,
) {
	userHandler := NewUserHandler(userService, logger)
	reservationHandler := NewReservationHandler(reservationService, logger)

	var adminOnly []gin.HandlerFunc
	if authMW != nil {
		adminOnly = authMW.Chain()
	} else {
		logger.Warn("Authentication disabled, back-office routes are public")
	}

	apiGroup := router.Group("/api")
	{
		reservations := apiGroup.Group("/reservations", adminOnly...)
		{
			reservations.POST("/use", reservationHandler.UseReservation)
			reservations.GET("", reservationHandler.ListReservations)
			reservations.GET("/visits", reservationHandler.Visits)
			reservations.GET("/:id/qr-info", reservationHandler.QRInfo)
		}

		if authMW != nil {
			authHandler := NewAuthHandler(logger)
			apiGroup.GET("/auth/me", append(authMW.Chain(), authHandler.Me)...)
		}

		users := apiGroup.Group("/users")
		{
			users.POST("", userHandler.CreateUser)
			users.GET("", append(adminOnly, userHandler.ListUsers)...)
			users.GET("/by-document/:documentType/:documentNumber", userHandler.GetClientByDocument)
			users.GET("/:id/reservations", userHandler.GetReservations)
			users.POST("/:id/reservations", userHandler.AddReservation)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{Status: "UP", Message: "Baldoria backend is healthy."})
	})

	logger.Info("API routes configured under /api and /health")
}
