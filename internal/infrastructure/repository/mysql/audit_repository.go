package sqlrepository

import (
	"context"
	"fmt"

	"github.com/gigmile/loan-ledger/internal/domain"
	"github.com/gigmile/loan-ledger/internal/infrastructure/persistence"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GORMAuditRepository is append-only: it inserts and reads, nothing else.
type GORMAuditRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func (r *GORMAuditRepository) Append(ctx context.Context, entry *domain.AuditLog) error {
	model, err := persistence.AuditLogModelFromDomain(entry)
	if err != nil {
		return err
	}
	model.ID = 0

	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		r.logger.Error("failed to append audit entry",
			zap.Error(result.Error),
			zap.String("action", string(entry.Action)),
			zap.String("entity_id", entry.EntityID),
		)
		return fmt.Errorf("database error: %w", result.Error)
	}

	entry.ID = model.ID
	return nil
}

// Query returns matching entries newest first.
func (r *GORMAuditRepository) Query(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	q := r.db.WithContext(ctx).Model(&persistence.AuditLogModel{})
	if filter.LoanID != "" {
		q = q.Where("loan_id = ?", filter.LoanID)
	}
	if filter.EntityType != "" {
		q = q.Where("entity_type = ?", string(filter.EntityType))
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var models []persistence.AuditLogModel
	if result := q.Order("performed_at DESC").Order("id DESC").Find(&models); result.Error != nil {
		r.logger.Error("failed to query audit log", zap.Error(result.Error), zap.String("loan_id", filter.LoanID))
		return nil, fmt.Errorf("database error: %w", result.Error)
	}

	entries := make([]*domain.AuditLog, 0, len(models))
	for i := range models {
		entry, err := models[i].ToDomain()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *GORMAuditRepository) References(ctx context.Context, entityType domain.EntityType, entityID string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&persistence.AuditLogModel{}).
		Where("entity_type = ? AND entity_id = ?", string(entityType), entityID).
		Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("database error: %w", result.Error)
	}
	return count > 0, nil
}
