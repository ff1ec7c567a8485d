package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/LightsoftTeam/baldoria-backend/internal/clock"
	"github.com/LightsoftTeam/baldoria-backend/internal/db"
	"github.com/LightsoftTeam/baldoria-backend/internal/models"
)

// errUnchanged aborts an Update without writing.
var errUnchanged = errors.New("unchanged")

// userService implements the UserService interface.
type userService struct {
	userRepo db.UserRepository
	audit    AuditService
	clock    clock.Business
	logger   *zap.Logger
}

// NewUserService creates a new UserService instance. Creation timestamps are taken
// from c shifted by offset.
func NewUserService(userRepo db.UserRepository, audit AuditService, c clock.Clock, offset time.Duration, logger *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		audit:    audit,
		clock:    clock.NewBusiness(c, offset),
		logger:   logger,
	}
}

func (s *userService) CreateClient(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	birthdate, err := models.ParseDay(req.Birthdate)
	if err != nil {
		return nil, err
	}
	docType := models.DocumentType(req.DocumentType)
	if !docType.IsValid() {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidDocumentType, req.DocumentType)
	}

	user := &models.User{
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		DocumentType:   docType,
		DocumentNumber: strings.TrimSpace(req.DocumentNumber),
		Email:          models.NormalizeEmail(req.Email),
		PhoneCode:      req.PhoneCode,
		PhoneNumber:    req.PhoneNumber,
		Role:           models.RoleClient,
		Reservations:   []models.Reservation{},
		Birthdate:      birthdate,
		CreatedAt:      s.clock.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	s.logger.Info("Client created", zap.String("user_id", user.ID))
	recordAudit(ctx, s.audit, s.logger, models.AuditLog{
		UserID:     user.ID,
		Action:     models.AuditUserCreate,
		TargetType: models.AuditTargetUser,
		TargetID:   user.ID,
	})
	return user, nil
}

func (s *userService) List(ctx context.Context, params models.ListUsersParams) (*models.UserListResponse, error) {
	page, err := s.userRepo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	data := make([]models.UserListItem, 0, len(page.Users))
	for _, u := range page.Users {
		data = append(data, models.UserListItem{
			UserProfile: u.Profile(),
			ReservationsInfo: map[models.Enterprise]int{
				models.EnterpriseBaldoria: u.BaldoriaCount,
				models.EnterpriseLov:      u.LovCount,
			},
		})
	}
	return &models.UserListResponse{
		Data: data,
		Meta: models.PageMeta{Page: params.Page, Limit: params.Limit, Total: page.Total},
	}, nil
}

func (s *userService) GetClientByDocument(ctx context.Context, documentType models.DocumentType, documentNumber string) (*models.User, error) {
	user, err := s.userRepo.GetClientByDocument(ctx, documentType, documentNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get client by document: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: document %s %s", ErrUserNotFound, documentType, documentNumber)
	}
	return user, nil
}

func (s *userService) GetReservations(ctx context.Context, userID string) ([]models.Reservation, error) {
	user, err := s.getClient(ctx, userID)
	if err != nil {
		return nil, err
	}
	reservations := append([]models.Reservation{}, user.Reservations...)
	sort.SliceStable(reservations, func(i, j int) bool {
		return reservations[i].Date.After(reservations[j].Date)
	})
	return reservations, nil
}

func (s *userService) AddReservation(ctx context.Context, userID string, req models.AddReservationRequest) (*models.Reservation, bool, error) {
	enterprise, err := models.ParseEnterprise(req.Enterprise)
	if err != nil {
		return nil, false, err
	}
	date, err := models.ParseDay(req.Date)
	if err != nil {
		return nil, false, err
	}
	needParking := req.NeedParking != nil && *req.NeedParking

	var (
		result models.Reservation
		isNew  bool
	)
	_, err = s.userRepo.Update(ctx, userID, func(u *models.User) error {
		if u.Role != models.RoleClient {
			return fmt.Errorf("%w: '%s'", ErrUserNotFound, userID)
		}
		if existing := u.FindReservationByKey(enterprise, date); existing != nil {
			result, isNew = *existing, false
			return errUnchanged
		}
		result = models.Reservation{
			ID:          uuid.NewString(),
			Enterprise:  enterprise,
			NeedParking: needParking,
			Date:        date,
			CreatedAt:   s.clock.Now(),
		}
		isNew = true
		u.AddReservation(result)
		return nil
	})
	switch {
	case errors.Is(err, errUnchanged):
	case errors.Is(err, db.ErrNotFound):
		return nil, false, fmt.Errorf("%w: '%s'", ErrUserNotFound, userID)
	case err != nil:
		return nil, false, fmt.Errorf("failed to add reservation to user '%s': %w", userID, err)
	}

	if isNew {
		s.logger.Info("Reservation created",
			zap.String("user_id", userID),
			zap.String("reservation_id", result.ID),
			zap.String("enterprise", enterprise.String()),
			zap.String("date", date.Format(models.DayLayout)))
		recordAudit(ctx, s.audit, s.logger, models.AuditLog{
			UserID:     userID,
			Action:     models.AuditReservationCreate,
			TargetType: models.AuditTargetReservation,
			TargetID:   result.ID,
			Details: map[string]interface{}{
				"enterprise": enterprise.String(),
				"date":       date.Format(models.DayLayout),
			},
		})
	}
	return &result, isNew, nil
}

func (s *userService) getClient(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get user by ID '%s' from repository: %w", userID, err)
	}
	if user.Role != models.RoleClient {
		return nil, fmt.Errorf("%w: '%s'", ErrUserNotFound, userID)
	}
	return user, nil
}
