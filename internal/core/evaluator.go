package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/LightsoftTeam/baldoria-backend/internal/clock"
	"github.com/LightsoftTeam/baldoria-backend/internal/db"
	"github.com/LightsoftTeam/baldoria-backend/internal/models"
)

const (
	usedAtLayout = "02/01/2006 15:04"
	dayLayout    = "02/01/2006"
)

// Evaluator decides whether a reservation can be redeemed and performs the
// redemption.
//
// A reservation is redeemable only on its own calendar day in business time: now
// shifted by the business offset, then truncated to the day. Days are compared
// for equality, never stored instants.
type Evaluator struct {
	repo     db.UserRepository
	clock    clock.Clock
	business clock.Business
	display  *time.Location
	logger   *zap.Logger
}

// NewEvaluator creates an Evaluator. display is the timezone used when formatting
// timestamps in rejection messages; nil means UTC.
func NewEvaluator(repo db.UserRepository, c clock.Clock, offset time.Duration, display *time.Location, logger *zap.Logger) *Evaluator {
	if display == nil {
		display = time.UTC
	}
	return &Evaluator{
		repo:     repo,
		clock:    c,
		business: clock.NewBusiness(c, offset),
		display:  display,
		logger:   logger,
	}
}

// Check is the pure decision. now is a real instant; the offset is applied here.
// It returns nil when the reservation is redeemable.
func (e *Evaluator) Check(r *models.Reservation, now time.Time) *RedemptionError {
	if r.UsedAt != nil {
		return &RedemptionError{
			Kind:    KindAlreadyUsed,
			Message: fmt.Sprintf("Reservation already used on %s", r.UsedAt.In(e.display).Format(usedAtLayout)),
		}
	}
	today := e.business.DayOf(now)
	reservationDay := models.Day(r.Date)
	if !reservationDay.Equal(today) {
		return &RedemptionError{
			Kind:    KindDateNotValid,
			Message: fmt.Sprintf("Reservation is only valid on %s", reservationDay.Format(dayLayout)),
		}
	}
	return nil
}

// State evaluates r against the current time.
func (e *Evaluator) State(r *models.Reservation) RedemptionState {
	if rerr := e.Check(r, e.clock.Now()); rerr != nil {
		return RedemptionState{IsValid: false, Error: rerr}
	}
	return RedemptionState{IsValid: true}
}

// EvaluateRedemption loads the reservation and reports whether it can be redeemed now.
func (e *Evaluator) EvaluateRedemption(ctx context.Context, reservationID string) (RedemptionState, error) {
	_, r, err := e.locate(ctx, reservationID)
	if err != nil {
		return RedemptionState{}, err
	}
	return e.State(r), nil
}

// Redeem marks the reservation used without checking its date. Callers are expected
// to have evaluated it first. An already redeemed reservation is never overwritten.
func (e *Evaluator) Redeem(ctx context.Context, reservationID string) (time.Time, error) {
	usedAt, _, err := e.mutate(ctx, reservationID, false)
	return usedAt, err
}

// UseReservation evaluates and redeems inside a single conditional update, so two
// concurrent requests cannot both redeem the same reservation.
func (e *Evaluator) UseReservation(ctx context.Context, reservationID string) (time.Time, error) {
	usedAt, _, err := e.mutate(ctx, reservationID, true)
	return usedAt, err
}

// mutate sets usedAt on the reservation and returns it along with the owner's ID.
func (e *Evaluator) mutate(ctx context.Context, reservationID string, check bool) (time.Time, string, error) {
	owner, _, err := e.locate(ctx, reservationID)
	if err != nil {
		return time.Time{}, "", err
	}

	var usedAt time.Time
	_, err = e.repo.Update(ctx, owner.ID, func(u *models.User) error {
		r := u.FindReservation(reservationID)
		if r == nil {
			return fmt.Errorf("%w: '%s'", ErrReservationNotFound, reservationID)
		}
		if check {
			if rerr := e.Check(r, e.clock.Now()); rerr != nil {
				return rerr
			}
		}
		usedAt = e.business.Now()
		return r.MarkUsed(usedAt)
	})
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			e.logger.Warn("Owner of reservation vanished before redemption",
				zap.String("reservation_id", reservationID), zap.String("user_id", owner.ID))
			return time.Time{}, "", fmt.Errorf("%w: '%s'", ErrReservationNotFound, reservationID)
		}
		return time.Time{}, "", err
	}
	return usedAt, owner.ID, nil
}

func (e *Evaluator) locate(ctx context.Context, reservationID string) (*models.User, *models.Reservation, error) {
	owner, err := e.repo.GetByReservationID(ctx, reservationID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up reservation '%s': %w", reservationID, err)
	}
	if owner == nil {
		return nil, nil, fmt.Errorf("%w: '%s'", ErrReservationNotFound, reservationID)
	}
	r := owner.FindReservation(reservationID)
	if r == nil {
		return nil, nil, fmt.Errorf("%w: '%s'", ErrReservationNotFound, reservationID)
	}
	return owner, r, nil
}
