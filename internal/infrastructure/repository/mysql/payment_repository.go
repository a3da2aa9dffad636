package sqlrepository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gigmile/loan-ledger/internal/domain"
	"github.com/gigmile/loan-ledger/internal/infrastructure/persistence"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type GORMPaymentRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func (r *GORMPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	model := persistence.PaymentModelFromDomain(payment)

	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		if isDuplicateError(result.Error) {
			// The index name tells which uniqueness rule fired.
			if strings.Contains(result.Error.Error(), "installment") {
				return domain.ErrInstallmentTaken
			}
			return domain.ErrPaymentIDTaken
		}

		r.logger.Error("failed to save payment", zap.Error(result.Error), zap.String("loan_id", payment.LoanID))
		return fmt.Errorf("database error: %w", result.Error)
	}

	payment.ID = model.ID
	payment.CreatedAt = model.CreatedAt
	payment.UpdatedAt = model.UpdatedAt

	r.logger.Debug("payment saved",
		zap.String("payment_id", payment.PaymentID),
		zap.String("loan_id", payment.LoanID),
		zap.Int("installment_number", payment.InstallmentNumber),
	)

	return nil
}

func (r *GORMPaymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	model := persistence.PaymentModelFromDomain(payment)
	now := time.Now()

	result := r.db.WithContext(ctx).
		Model(&persistence.PaymentModel{}).
		Where("payment_id = ? AND loan_id = ?", payment.PaymentID, payment.LoanID).
		Updates(map[string]interface{}{
			"installment_amount": model.InstallmentAmount,
			"penalty_amount":     model.PenaltyAmount,
			"amount":             model.Amount,
			"paid_date":          model.PaidDate,
			"method":             model.Method,
			"method_detail":      model.MethodDetail,
			"transaction_id":     model.TransactionID,
			"remarks":            model.Remarks,
			"updated_at":         now,
		})

	if result.Error != nil {
		r.logger.Error("failed to update payment", zap.Error(result.Error), zap.String("payment_id", payment.PaymentID))
		return fmt.Errorf("database error: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrPaymentNotFound
	}

	payment.UpdatedAt = now
	return nil
}

// Delete removes the payment row and retires its identifier. Callers run it
// inside a transaction so both writes land together.
func (r *GORMPaymentRepository) Delete(ctx context.Context, payment *domain.Payment) error {
	result := r.db.WithContext(ctx).
		Where("payment_id = ? AND loan_id = ?", payment.PaymentID, payment.LoanID).
		Delete(&persistence.PaymentModel{})

	if result.Error != nil {
		r.logger.Error("failed to delete payment", zap.Error(result.Error), zap.String("payment_id", payment.PaymentID))
		return fmt.Errorf("database error: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrPaymentNotFound
	}

	retired := &persistence.RetiredPaymentIDModel{
		PaymentID: payment.PaymentID,
		LoanID:    payment.LoanID,
		RetiredAt: time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(retired).Error; err != nil {
		r.logger.Error("failed to retire payment id", zap.Error(err), zap.String("payment_id", payment.PaymentID))
		return fmt.Errorf("database error: %w", err)
	}

	return nil
}

func (r *GORMPaymentRepository) FindByPaymentID(ctx context.Context, loanID, paymentID string) (*domain.Payment, error) {
	var model persistence.PaymentModel

	result := r.db.WithContext(ctx).
		Where("payment_id = ? AND loan_id = ?", paymentID, loanID).
		First(&model)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("database error: %w", result.Error)
	}

	return model.ToDomain(), nil
}

func (r *GORMPaymentRepository) FindByInstallment(ctx context.Context, loanID string, installment int) (*domain.Payment, error) {
	var model persistence.PaymentModel

	result := r.db.WithContext(ctx).
		Where("loan_id = ? AND installment_number = ?", loanID, installment).
		First(&model)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("database error: %w", result.Error)
	}

	return model.ToDomain(), nil
}

// FindByLoanID returns the loan's payments in chronological order of payment.
func (r *GORMPaymentRepository) FindByLoanID(ctx context.Context, loanID string) ([]*domain.Payment, error) {
	var models []persistence.PaymentModel

	result := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("paid_date ASC").
		Order("id ASC").
		Find(&models)

	if result.Error != nil {
		r.logger.Error("failed to fetch payments by loan ID",
			zap.Error(result.Error),
			zap.String("loan_id", loanID),
		)
		return nil, fmt.Errorf("database error: %w", result.Error)
	}

	payments := make([]*domain.Payment, len(models))
	for i := range models {
		payments[i] = models[i].ToDomain()
	}

	r.logger.Debug("fetched payments by loan ID",
		zap.String("loan_id", loanID),
		zap.Int("count", len(payments)),
	)

	return payments, nil
}

// ExistsByPaymentID reports whether the identifier belongs to a live payment
// or to one that was reverted.
func (r *GORMPaymentRepository) ExistsByPaymentID(ctx context.Context, paymentID string) (bool, error) {
	for _, model := range []interface{}{&persistence.PaymentModel{}, &persistence.RetiredPaymentIDModel{}} {
		var count int64
		result := r.db.WithContext(ctx).
			Model(model).
			Where("payment_id = ?", paymentID).
			Count(&count)

		if result.Error != nil {
			r.logger.Error("failed to check payment existence", zap.Error(result.Error))
			return false, fmt.Errorf("database error: %w", result.Error)
		}
		if count > 0 {
			return true, nil
		}
	}

	return false, nil
}
