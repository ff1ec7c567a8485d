package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Enterprise is one of the businesses a reservation can be made for.
type Enterprise string

const (
	EnterpriseBaldoria Enterprise = "baldoria"
	EnterpriseLov      Enterprise = "lov"
)

// Enterprises lists every known enterprise in a stable order.
var Enterprises = []Enterprise{EnterpriseBaldoria, EnterpriseLov}

var (
	ErrInvalidEnterprise      = errors.New("invalid enterprise")
	ErrInvalidDate            = errors.New("invalid date, expected YYYY-MM-DD")
	ErrReservationAlreadyUsed = errors.New("reservation already used")
)

// ParseEnterprise validates s against the closed set of enterprises.
func ParseEnterprise(s string) (Enterprise, error) {
	e := Enterprise(strings.ToLower(strings.TrimSpace(s)))
	if !e.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidEnterprise, s)
	}
	return e, nil
}

func (e Enterprise) IsValid() bool {
	switch e {
	case EnterpriseBaldoria, EnterpriseLov:
		return true
	default:
		return false
	}
}

func (e Enterprise) String() string { return string(e) }

// DayLayout is the wire format of calendar days.
const DayLayout = "2006-01-02"

// Day truncates t to the start of its UTC calendar day.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay accepts a bare day (2006-01-02) or an RFC 3339 timestamp and returns the
// UTC midnight of that day.
func ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DayLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Day(t), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// ReservationKey is the business key of a reservation inside its owner document.
func ReservationKey(e Enterprise, day time.Time) string {
	return string(e) + "|" + Day(day).Format(DayLayout)
}

// Reservation is embedded in its owning User document; it has no independent existence.
type Reservation struct {
	ID          string     `json:"id" firestore:"id"`
	Enterprise  Enterprise `json:"enterprise" firestore:"enterprise"`
	NeedParking bool       `json:"needParking" firestore:"needParking"`
	Date        time.Time  `json:"date" firestore:"date"`
	CreatedAt   time.Time  `json:"createdAt" firestore:"createdAt"`
	UsedAt      *time.Time `json:"usedAt,omitempty" firestore:"usedAt,omitempty"`
}

// IsUsed reports whether the reservation was already redeemed.
func (r *Reservation) IsUsed() bool {
	return r.UsedAt != nil
}

// Key returns the (enterprise, day) business key.
func (r *Reservation) Key() string {
	return ReservationKey(r.Enterprise, r.Date)
}

// MarkUsed redeems the reservation. usedAt is write-once.
func (r *Reservation) MarkUsed(at time.Time) error {
	if r.UsedAt != nil {
		return ErrReservationAlreadyUsed
	}
	r.UsedAt = &at
	return nil
}

// CountByEnterprise counts reservations per enterprise. Every known enterprise is
// present in the result, with zero when it has no reservations.
func CountByEnterprise(reservations []Reservation) map[Enterprise]int {
	counts := make(map[Enterprise]int, len(Enterprises))
	for _, e := range Enterprises {
		counts[e] = 0
	}
	for _, r := range reservations {
		counts[r.Enterprise]++
	}
	return counts
}
