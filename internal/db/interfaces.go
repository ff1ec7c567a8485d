package db

import (
	"context"
	"time"

	"github.com/LightsoftTeam/baldoria-backend/internal/models"
)

// UpdateFunc mutates a freshly read user inside a conditional write. Returning an
// error aborts the write and the error is passed back to the caller unchanged.
// It may be invoked more than once when the store retries on contention.
type UpdateFunc func(user *models.User) error

// UserRepository defines the interface for user data storage operations.
// Client users embed their reservations, so every reservation query goes through it.
type UserRepository interface {
	// Create stores a new user. An empty ID is replaced with a generated one.
	Create(ctx context.Context, user *models.User) error
	// GetByID returns ErrNotFound (wrapped) when the user does not exist.
	GetByID(ctx context.Context, userID string) (*models.User, error)
	// GetClientByDocument returns nil, nil when no client matches.
	GetClientByDocument(ctx context.Context, documentType models.DocumentType, documentNumber string) (*models.User, error)
	// GetAdminByEmail returns nil, nil when no admin matches.
	GetAdminByEmail(ctx context.Context, email string) (*models.User, error)
	// GetByReservationID returns the user embedding the reservation, or nil, nil.
	GetByReservationID(ctx context.Context, reservationID string) (*models.User, error)
	// FindByReservationKey returns every user holding a reservation for the
	// enterprise on the given day.
	FindByReservationKey(ctx context.Context, enterprise models.Enterprise, day time.Time) ([]*models.User, error)
	// ListClients returns every client user.
	ListClients(ctx context.Context) ([]*models.User, error)
	// List returns one page of clients and the total number of matches.
	List(ctx context.Context, params models.ListUsersParams) (*models.UserPage, error)
	// Update runs fn against the current stored user and writes the result only if
	// the document did not change in between. Derived fields are refreshed before
	// the write. It returns the user as written.
	Update(ctx context.Context, userID string, fn UpdateFunc) (*models.User, error)
}

// AuditRepository defines the interface for audit log data storage operations.
type AuditRepository interface {
	Create(ctx context.Context, logEntry models.AuditLog) error
}

var (
	_ UserRepository  = (*FirestoreUserRepository)(nil)
	_ UserRepository  = (*MemoryUserRepository)(nil)
	_ AuditRepository = (*FirestoreAuditRepository)(nil)
	_ AuditRepository = (*MemoryAuditRepository)(nil)
)
