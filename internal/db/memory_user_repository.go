package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/LightsoftTeam/baldoria-backend/internal/models"
)

// MemoryUserRepository is an in-process UserRepository used by tests and by the
// memory storage driver. It stores deep copies, so callers never share state with
// the store, and serializes writes with a single mutex.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*models.User
	order []string
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]*models.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if _, ok := r.users[user.ID]; ok {
		return fmt.Errorf("user with ID '%s' already exists", user.ID)
	}
	user.RefreshDerived()
	r.users[user.ID] = user.Clone()
	r.order = append(r.order, user.ID)
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, userID string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, fmt.Errorf("user with ID '%s' not found: %w", userID, ErrNotFound)
	}
	return u.Clone(), nil
}

func (r *MemoryUserRepository) GetClientByDocument(_ context.Context, documentType models.DocumentType, documentNumber string) (*models.User, error) {
	return r.findOne(func(u *models.User) bool {
		return u.Role == models.RoleClient && u.DocumentType == documentType && u.DocumentNumber == documentNumber
	}), nil
}

func (r *MemoryUserRepository) GetAdminByEmail(_ context.Context, email string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	return r.findOne(func(u *models.User) bool {
		return u.Role == models.RoleAdmin && u.Email == email
	}), nil
}

func (r *MemoryUserRepository) GetByReservationID(_ context.Context, reservationID string) (*models.User, error) {
	if reservationID == "" {
		return nil, nil
	}
	return r.findOne(func(u *models.User) bool {
		return u.FindReservation(reservationID) != nil
	}), nil
}

func (r *MemoryUserRepository) FindByReservationKey(_ context.Context, enterprise models.Enterprise, day time.Time) ([]*models.User, error) {
	return r.findAll(func(u *models.User) bool {
		return u.FindReservationByKey(enterprise, day) != nil
	}), nil
}

func (r *MemoryUserRepository) ListClients(_ context.Context) ([]*models.User, error) {
	return r.findAll(func(u *models.User) bool {
		return u.Role == models.RoleClient
	}), nil
}

func (r *MemoryUserRepository) List(ctx context.Context, params models.ListUsersParams) (*models.UserPage, error) {
	clients, err := r.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	matched := FilterUsers(clients, params.Search)
	SortUsers(matched, params.SortBy, params.Sort)
	return &models.UserPage{Users: Paginate(matched, params), Total: len(matched)}, nil
}

// Update applies fn to a copy of the stored user and replaces it while holding the
// write lock, so concurrent updates of the same user are serialized.
func (r *MemoryUserRepository) Update(_ context.Context, userID string, fn UpdateFunc) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[userID]
	if !ok {
		return nil, fmt.Errorf("user with ID '%s' not found: %w", userID, ErrNotFound)
	}
	user := stored.Clone()
	if err := fn(user); err != nil {
		return nil, err
	}
	user.ID = userID
	user.RefreshDerived()
	r.users[userID] = user.Clone()
	return user, nil
}

func (r *MemoryUserRepository) findOne(match func(*models.User) bool) *models.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.order {
		if u := r.users[id]; match(u) {
			return u.Clone()
		}
	}
	return nil
}

func (r *MemoryUserRepository) findAll(match func(*models.User) bool) []*models.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.User, 0)
	for _, id := range r.order {
		if u := r.users[id]; match(u) {
			out = append(out, u.Clone())
		}
	}
	return out
}
