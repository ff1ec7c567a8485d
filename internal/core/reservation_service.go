package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/LightsoftTeam/baldoria-backend/internal/db"
	"github.com/LightsoftTeam/baldoria-backend/internal/models"
)

// reservationService implements the ReservationService interface.
type reservationService struct {
	userRepo  db.UserRepository
	evaluator *Evaluator
	audit     AuditService
	logger    *zap.Logger
}

// NewReservationService creates a new ReservationService instance.
func NewReservationService(userRepo db.UserRepository, evaluator *Evaluator, audit AuditService, logger *zap.Logger) ReservationService {
	return &reservationService{
		userRepo:  userRepo,
		evaluator: evaluator,
		audit:     audit,
		logger:    logger,
	}
}

func (s *reservationService) UseReservation(ctx context.Context, reservationID string) (time.Time, error) {
	usedAt, ownerID, err := s.evaluator.mutate(ctx, reservationID, true)
	if err != nil {
		return time.Time{}, err
	}

	s.logger.Info("Reservation used",
		zap.String("reservation_id", reservationID),
		zap.String("user_id", ownerID),
		zap.Time("used_at", usedAt))
	recordAudit(ctx, s.audit, s.logger, models.AuditLog{
		UserID:     ownerID,
		Action:     models.AuditReservationUse,
		TargetType: models.AuditTargetReservation,
		TargetID:   reservationID,
		Details:    map[string]interface{}{"usedAt": usedAt},
	})
	return usedAt, nil
}

func (s *reservationService) ListByEnterpriseAndDate(ctx context.Context, enterprise models.Enterprise, day time.Time) ([]models.ReservationWithUser, error) {
	users, err := s.userRepo.FindByReservationKey(ctx, enterprise, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations for %s on %s: %w", enterprise, day.Format(models.DayLayout), err)
	}
	rows, duplicated := db.ReservationsForDay(users, enterprise, day)
	for _, userID := range duplicated {
		s.logger.Warn("User holds more than one reservation for the same enterprise and day",
			zap.String("user_id", userID),
			zap.String("enterprise", enterprise.String()),
			zap.String("date", day.Format(models.DayLayout)))
	}
	return rows, nil
}

func (s *reservationService) Visits(ctx context.Context, from, to time.Time) ([]models.UserVisits, error) {
	if models.Day(from).After(models.Day(to)) {
		return nil, ErrInvalidRange
	}
	clients, err := s.userRepo.ListClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients for visits: %w", err)
	}
	return db.AggregateVisits(clients, from, to), nil
}

func (s *reservationService) FindReservation(ctx context.Context, reservationID string) (*models.Reservation, *models.User, error) {
	owner, err := s.userRepo.GetByReservationID(ctx, reservationID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up reservation '%s': %w", reservationID, err)
	}
	if owner == nil {
		return nil, nil, nil
	}
	r := owner.FindReservation(reservationID)
	if r == nil {
		return nil, nil, nil
	}
	res := *r
	return &res, owner, nil
}

func (s *reservationService) QRInfo(ctx context.Context, reservationID string) (*QRInfo, error) {
	r, owner, err := s.FindReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("%w: '%s'", ErrReservationNotFound, reservationID)
	}
	return &QRInfo{
		User:              owner.Profile(),
		ReservationsState: s.evaluator.State(r),
		Reservation:       *r,
	}, nil
}
