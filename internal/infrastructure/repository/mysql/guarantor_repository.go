package sqlrepository

import (
	"context"
	"fmt"

	"github.com/gigmile/loan-ledger/internal/domain"
	"github.com/gigmile/loan-ledger/internal/infrastructure/persistence"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type GORMGuarantorRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func (r *GORMGuarantorRepository) Create(ctx context.Context, guarantor *domain.Guarantor) error {
	model := persistence.GuarantorModelFromDomain(guarantor)

	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		r.logger.Error("failed to create guarantor", zap.Error(result.Error), zap.String("loan_id", guarantor.LoanID))
		return fmt.Errorf("failed to create guarantor: %w", result.Error)
	}

	guarantor.ID = model.ID
	guarantor.CreatedAt = model.CreatedAt
	return nil
}

func (r *GORMGuarantorRepository) FindByLoanID(ctx context.Context, loanID string) ([]*domain.Guarantor, error) {
	var models []persistence.GuarantorModel

	result := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("id ASC").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("database error: %w", result.Error)
	}

	guarantors := make([]*domain.Guarantor, len(models))
	for i := range models {
		guarantors[i] = models[i].ToDomain()
	}
	return guarantors, nil
}

func (r *GORMGuarantorRepository) ListGuarantorIDs(ctx context.Context) ([]string, error) {
	var ids []string
	result := r.db.WithContext(ctx).Model(&persistence.GuarantorModel{}).Pluck("guarantor_id", &ids)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list guarantor ids: %w", result.Error)
	}
	return ids, nil
}
