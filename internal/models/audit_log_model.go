package models

import "time"

// Audit actions recorded by the services.
const (
	AuditUserCreate        = "USER_CREATE"
	AuditReservationCreate = "RESERVATION_CREATE"
	AuditReservationUse    = "RESERVATION_USE"
)

// Audit target types.
const (
	AuditTargetUser        = "USER"
	AuditTargetReservation = "RESERVATION"
)

// AuditLog represents an audit trail event.
type AuditLog struct {
	ID         string                 `json:"id" firestore:"-"`
	Timestamp  time.Time              `json:"timestamp" firestore:"timestamp,serverTimestamp"`
	UserID     string                 `json:"userId" firestore:"userId"` // Owner of the affected reservation or the created user
	Action     string                 `json:"action" firestore:"action"`
	TargetType string                 `json:"targetType,omitempty" firestore:"targetType,omitempty"`
	TargetID   string                 `json:"targetId,omitempty" firestore:"targetId,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty" firestore:"details,omitempty"`
}
