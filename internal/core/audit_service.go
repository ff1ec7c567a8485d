package core

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/LightsoftTeam/baldoria-backend/internal/db"
	"github.com/LightsoftTeam/baldoria-backend/internal/models"
)

// auditService implements the AuditService interface.
type auditService struct {
	auditRepo db.AuditRepository
}

// NewAuditService creates a new AuditService instance.
func NewAuditService(auditRepo db.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

// CreateAuditLog creates a new audit log entry.
func (s *auditService) CreateAuditLog(ctx context.Context, logEntry models.AuditLog) error {
	if s.auditRepo == nil {
		return errors.New("AuditRepository not initialized in AuditService")
	}
	if logEntry.Action == "" {
		return errors.New("audit log action cannot be empty")
	}
	if err := s.auditRepo.Create(ctx, logEntry); err != nil {
		return fmt.Errorf("failed to create audit log via repository: %w", err)
	}
	return nil
}

// recordAudit writes an audit entry. A failure is logged and never fails the
// operation being audited.
func recordAudit(ctx context.Context, audit AuditService, logger *zap.Logger, entry models.AuditLog) {
	if audit == nil {
		return
	}
	if err := audit.CreateAuditLog(ctx, entry); err != nil {
		logger.Warn("Failed to record audit log",
			zap.String("action", entry.Action),
			zap.String("target_id", entry.TargetID),
			zap.Error(err))
	}
}
