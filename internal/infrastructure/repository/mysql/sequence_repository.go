package sqlrepository

import (
	"context"
	"fmt"

	"github.com/gigmile/loan-ledger/internal/domain"
	"github.com/gigmile/loan-ledger/internal/infrastructure/persistence"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMSequenceRepository keeps one counter row per identifier type. Next
// must run inside a transaction: the UPDATE holds the row lock until commit,
// which serializes concurrent generators for the same counter.
type GORMSequenceRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func (r *GORMSequenceRepository) Next(ctx context.Context, name string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&persistence.SequenceModel{}).
		Where("name = ?", name).
		Update("value", gorm.Expr("value + ?", 1))
	if result.Error != nil {
		return 0, fmt.Errorf("failed to advance sequence %s: %w", name, result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, domain.ErrSequenceNotFound
	}

	var model persistence.SequenceModel
	if err := r.db.WithContext(ctx).First(&model, "name = ?", name).Error; err != nil {
		return 0, fmt.Errorf("failed to read sequence %s: %w", name, err)
	}

	r.logger.Debug("sequence advanced", zap.String("sequence", name), zap.Int64("value", model.Value))
	return model.Value, nil
}

func (r *GORMSequenceRepository) Ensure(ctx context.Context, name string, floor int64) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&persistence.SequenceModel{Name: name, Value: floor}).Error
	if err != nil {
		return fmt.Errorf("failed to create sequence %s: %w", name, err)
	}

	err = r.db.WithContext(ctx).
		Model(&persistence.SequenceModel{}).
		Where("name = ? AND value < ?", name, floor).
		Update("value", floor).Error
	if err != nil {
		return fmt.Errorf("failed to raise sequence %s: %w", name, err)
	}
	return nil
}
