package models

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidDocumentType is returned for document types outside the closed set.
var ErrInvalidDocumentType = errors.New("invalid document type")

// Role distinguishes the two kinds of records stored in the users collection.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
)

// DocumentType is the kind of identity document a client registers with.
type DocumentType string

const (
	DocumentTypeDNI               DocumentType = "dni"
	DocumentTypePassport          DocumentType = "pasaporte"
	DocumentTypeCarnetExtranjeria DocumentType = "carnet_extranjeria"
)

func (d DocumentType) IsValid() bool {
	switch d {
	case DocumentTypeDNI, DocumentTypePassport, DocumentTypeCarnetExtranjeria:
		return true
	default:
		return false
	}
}

// User is a document of the users collection. Client documents embed their
// reservations and keep per-enterprise counters in sync with them.
type User struct {
	ID             string        `json:"id" firestore:"-"` // Document ID
	FirstName      string        `json:"firstName" firestore:"firstName"`
	LastName       string        `json:"lastName" firestore:"lastName"`
	DocumentType   DocumentType  `json:"documentType" firestore:"documentType"`
	DocumentNumber string        `json:"documentNumber" firestore:"documentNumber"`
	Email          string        `json:"email" firestore:"email"`
	Password       string        `json:"-" firestore:"password,omitempty"`
	PhoneCode      string        `json:"phoneCode" firestore:"phoneCode"`
	PhoneNumber    string        `json:"phoneNumber" firestore:"phoneNumber"`
	Role           Role          `json:"role" firestore:"role"`
	Reservations   []Reservation `json:"reservations" firestore:"reservations"`
	LovCount       int           `json:"lovCount" firestore:"lovCount"`
	BaldoriaCount  int           `json:"baldoriaCount" firestore:"baldoriaCount"`
	Birthdate      time.Time     `json:"birthdate" firestore:"birthdate"`
	CreatedAt      time.Time     `json:"createdAt" firestore:"createdAt"`

	// Query indexes over the embedded reservations, rebuilt by RefreshDerived.
	ReservationIDs  []string `json:"-" firestore:"reservationIds"`
	ReservationKeys []string `json:"-" firestore:"reservationKeys"`
}

// RecomputeCounters sets the enterprise counters from the full reservation list.
func (u *User) RecomputeCounters() {
	counts := CountByEnterprise(u.Reservations)
	u.LovCount = counts[EnterpriseLov]
	u.BaldoriaCount = counts[EnterpriseBaldoria]
}

// NormalizeEmail is the stored and queried form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RefreshDerived normalizes the email and rebuilds every field derived from the
// embedded reservations. Repositories call it before each write.
func (u *User) RefreshDerived() {
	u.Email = NormalizeEmail(u.Email)
	if u.Reservations == nil {
		u.Reservations = []Reservation{}
	}
	u.RecomputeCounters()
	u.ReservationIDs = make([]string, 0, len(u.Reservations))
	u.ReservationKeys = make([]string, 0, len(u.Reservations))
	seen := make(map[string]struct{}, len(u.Reservations))
	for _, r := range u.Reservations {
		u.ReservationIDs = append(u.ReservationIDs, r.ID)
		k := r.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		u.ReservationKeys = append(u.ReservationKeys, k)
	}
}

// FindReservation returns a pointer into u.Reservations, or nil.
func (u *User) FindReservation(id string) *Reservation {
	for i := range u.Reservations {
		if u.Reservations[i].ID == id {
			return &u.Reservations[i]
		}
	}
	return nil
}

// FindReservationByKey returns the first reservation for the enterprise on the given day.
func (u *User) FindReservationByKey(e Enterprise, day time.Time) *Reservation {
	key := ReservationKey(e, day)
	for i := range u.Reservations {
		if u.Reservations[i].Key() == key {
			return &u.Reservations[i]
		}
	}
	return nil
}

// AddReservation appends r and recomputes the counters.
func (u *User) AddReservation(r Reservation) {
	u.Reservations = append(u.Reservations, r)
	u.RecomputeCounters()
}

// Clone returns a deep copy of u.
func (u *User) Clone() *User {
	c := *u
	if u.Reservations != nil {
		c.Reservations = make([]Reservation, len(u.Reservations))
		for i, r := range u.Reservations {
			if r.UsedAt != nil {
				at := *r.UsedAt
				r.UsedAt = &at
			}
			c.Reservations[i] = r
		}
	}
	c.ReservationIDs = append([]string(nil), u.ReservationIDs...)
	c.ReservationKeys = append([]string(nil), u.ReservationKeys...)
	return &c
}

// UserProfile is the user projection embedded in reservation listings:
// no password, no nested reservations.
type UserProfile struct {
	ID             string       `json:"id"`
	FirstName      string       `json:"firstName"`
	LastName       string       `json:"lastName"`
	DocumentType   DocumentType `json:"documentType"`
	DocumentNumber string       `json:"documentNumber"`
	Email          string       `json:"email"`
	PhoneCode      string       `json:"phoneCode"`
	PhoneNumber    string       `json:"phoneNumber"`
	Role           Role         `json:"role"`
	LovCount       int          `json:"lovCount"`
	BaldoriaCount  int          `json:"baldoriaCount"`
	Birthdate      time.Time    `json:"birthdate"`
	CreatedAt      time.Time    `json:"createdAt"`
}

// Profile projects u into a UserProfile.
func (u *User) Profile() UserProfile {
	return UserProfile{
		ID:             u.ID,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		DocumentType:   u.DocumentType,
		DocumentNumber: u.DocumentNumber,
		Email:          u.Email,
		PhoneCode:      u.PhoneCode,
		PhoneNumber:    u.PhoneNumber,
		Role:           u.Role,
		LovCount:       u.LovCount,
		BaldoriaCount:  u.BaldoriaCount,
		Birthdate:      u.Birthdate,
		CreatedAt:      u.CreatedAt,
	}
}

// ReservationWithUser is a reservation annotated with its owner.
type ReservationWithUser struct {
	Reservation
	User UserProfile `json:"user"`
}

// UserVisits aggregates a client's reservations within a date range.
type UserVisits struct {
	User                     UserProfile `json:"user"`
	BaldoriaReservations     int         `json:"baldoriaReservations"`
	LovReservations          int         `json:"lovReservations"`
	UsedBaldoriaReservations int         `json:"usedBaldoriaReservations"`
	UsedLovReservations      int         `json:"usedLovReservations"`
}

// UserListItem is a row of the paginated users listing.
type UserListItem struct {
	UserProfile
	ReservationsInfo map[Enterprise]int `json:"reservationsInfo"`
}
