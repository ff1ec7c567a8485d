package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/LightsoftTeam/baldoria-backend/internal/models"
)

// DefaultAuditCollection is used when no collection name is configured.
const DefaultAuditCollection = "auditLogs"

// FirestoreAuditRepository appends audit events to a Firestore collection.
type FirestoreAuditRepository struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreAuditRepository(client *firestore.Client, collection string, logger *zap.Logger) *FirestoreAuditRepository {
	if client == nil {
		logger.Fatal("Firestore client is not initialized for AuditRepository")
	}
	if collection == "" {
		collection = DefaultAuditCollection
	}
	return &FirestoreAuditRepository{client: client, collection: collection}
}

// Create stores the entry under a generated ID. The timestamp is set by Firestore.
func (r *FirestoreAuditRepository) Create(ctx context.Context, logEntry models.AuditLog) error {
	ref := r.client.Collection(r.collection).NewDoc()
	if _, err := ref.Create(ctx, logEntry); err != nil {
		return fmt.Errorf("failed to create audit log '%s': %w", logEntry.Action, err)
	}
	return nil
}

// MemoryAuditRepository keeps audit events in memory.
type MemoryAuditRepository struct {
	mu      sync.Mutex
	entries []models.AuditLog
	now     func() time.Time
}

func NewMemoryAuditRepository() *MemoryAuditRepository {
	return &MemoryAuditRepository{now: time.Now}
}

func (r *MemoryAuditRepository) Create(_ context.Context, logEntry models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	logEntry.ID = uuid.NewString()
	if logEntry.Timestamp.IsZero() {
		logEntry.Timestamp = r.now().UTC()
	}
	r.entries = append(r.entries, logEntry)
	return nil
}

// Entries returns a copy of the recorded events in insertion order.
func (r *MemoryAuditRepository) Entries() []models.AuditLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.AuditLog(nil), r.entries...)
}
