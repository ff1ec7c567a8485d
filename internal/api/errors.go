package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/LightsoftTeam/baldoria-backend/internal/core"
	"github.com/LightsoftTeam/baldoria-backend/internal/models"
)

// mapErrorToStatus maps errors from the core services to HTTP status codes.
// Redemption rejections keep their structured {error, message} body.
func mapErrorToStatus(c *gin.Context, logger *zap.Logger, err error) {
	var rerr *core.RedemptionError
	if errors.As(err, &rerr) {
		c.JSON(http.StatusBadRequest, rerr)
		return
	}

	var statusCode int
	var errResponse ErrorResponse
	switch {
	case errors.Is(err, core.ErrReservationNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: "Reservation not found"}
	case errors.Is(err, core.ErrUserNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: "User not found"}
	case errors.Is(err, core.ErrInvalidRange),
		errors.Is(err, models.ErrInvalidDate),
		errors.Is(err, models.ErrInvalidEnterprise),
		errors.Is(err, models.ErrInvalidDocumentType):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Invalid request", Details: err.Error()}
	case errors.Is(err, models.ErrReservationAlreadyUsed):
		statusCode = http.StatusConflict
		errResponse = ErrorResponse{Error: models.ErrReservationAlreadyUsed.Error()}
	default:
		logger.Error("Internal server error",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "An unexpected internal server error occurred."}
	}
	c.JSON(statusCode, errResponse)
}

// badRequest answers 400 for input that failed binding or validation.
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request", Details: validationDetails(err)})
}
