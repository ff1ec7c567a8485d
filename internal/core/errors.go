package core

import (
	"errors"

	"github.com/LightsoftTeam/baldoria-backend/internal/models"
)

var (
	// ErrUserNotFound is returned when a client does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrReservationNotFound is returned when no user embeds the reservation.
	ErrReservationNotFound = errors.New("reservation not found")
	// ErrInvalidRange is returned when a date range ends before it starts.
	ErrInvalidRange = errors.New("invalid date range: from is after to")
)

// RedemptionErrorKind identifies why a reservation cannot be redeemed.
type RedemptionErrorKind string

const (
	KindAlreadyUsed  RedemptionErrorKind = "ALREADY_USED"
	KindDateNotValid RedemptionErrorKind = "DATE_NOT_VALID"
)

// RedemptionError is a business rejection. Clients branch on Kind and show Message.
type RedemptionError struct {
	Kind    RedemptionErrorKind `json:"error"`
	Message string              `json:"message"`
}

func (e *RedemptionError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// RedemptionState is the outcome of evaluating a reservation.
type RedemptionState struct {
	IsValid bool             `json:"isValid"`
	Error   *RedemptionError `json:"error"`
}

// QRInfo is what the door scanner shows for a reservation.
type QRInfo struct {
	User              models.UserProfile `json:"user"`
	ReservationsState RedemptionState    `json:"reservationsState"`
	Reservation       models.Reservation `json:"reservation"`
}
