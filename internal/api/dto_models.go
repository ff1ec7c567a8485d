package api

import (
	"time"

	"github.com/LightsoftTeam/baldoria-backend/internal/models"
)

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error   string `json:"error"`             // A high-level error message or code
	Details string `json:"details,omitempty"` // More specific details about the error, if available
}

// UseReservationResponse is the body of a successful POST /reservations/use.
type UseReservationResponse struct {
	UsedAt time.Time `json:"usedAt"`
}

// AddReservationResponse is the body of POST /users/:id/reservations.
type AddReservationResponse struct {
	Reservation *models.Reservation `json:"reservation"`
	IsNew       bool                `json:"isNew"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
