package core

import (
	"context"
	"time"

	"github.com/LightsoftTeam/baldoria-backend/internal/models"
)

// UserService defines the interface for client registration and the reservations
// embedded in each client.
type UserService interface {
	CreateClient(ctx context.Context, req models.CreateUserRequest) (*models.User, error)
	// List returns one page of clients with their reservation counts per enterprise.
	List(ctx context.Context, params models.ListUsersParams) (*models.UserListResponse, error)
	GetClientByDocument(ctx context.Context, documentType models.DocumentType, documentNumber string) (*models.User, error)
	// GetReservations returns the client's reservations, newest day first.
	GetReservations(ctx context.Context, userID string) ([]models.Reservation, error)
	// AddReservation creates a reservation unless one already exists for the same
	// enterprise and day. The boolean reports whether a new one was created.
	AddReservation(ctx context.Context, userID string, req models.AddReservationRequest) (*models.Reservation, bool, error)
}

// ReservationService defines the interface for reservation queries and redemption.
type ReservationService interface {
	// UseReservation redeems a reservation on its day. Rejections are returned as
	// *RedemptionError.
	UseReservation(ctx context.Context, reservationID string) (time.Time, error)
	ListByEnterpriseAndDate(ctx context.Context, enterprise models.Enterprise, day time.Time) ([]models.ReservationWithUser, error)
	Visits(ctx context.Context, from, to time.Time) ([]models.UserVisits, error)
	// FindReservation returns nil values without error when the reservation is unknown.
	FindReservation(ctx context.Context, reservationID string) (*models.Reservation, *models.User, error)
	QRInfo(ctx context.Context, reservationID string) (*QRInfo, error)
}

// AuditService defines the interface for audit logging operations.
type AuditService interface {
	CreateAuditLog(ctx context.Context, logEntry models.AuditLog) error
}
