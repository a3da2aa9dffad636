package sqlrepository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gigmile/loan-ledger/internal/domain"
	"github.com/gigmile/loan-ledger/internal/infrastructure/persistence"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GORMLoanRepository struct {
	db      *gorm.DB
	cache   LoanCache
	logger  *zap.Logger
	inTx    bool
	touched *[]string
}

func (r *GORMLoanRepository) FindByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	// Transactions always read the table; the cache may lag behind.
	cacheable := r.cache != nil && !r.inTx
	var generation int64
	if cacheable {
		cached, err := r.cache.Get(ctx, loanID)
		if err == nil {
			r.logger.Debug("loan cache hit", zap.String("loan_id", loanID))
			return cached, nil
		}
		r.logger.Debug("loan cache miss, querying database", zap.String("loan_id", loanID))

		// Taken before the query so a save that commits in between voids the fill.
		generation, err = r.cache.Generation(ctx, loanID)
		if err != nil {
			r.logger.Debug("failed to read loan cache generation", zap.Error(err), zap.String("loan_id", loanID))
			cacheable = false
		}
	}

	loan, err := r.find(ctx, r.db, loanID)
	if err != nil {
		return nil, err
	}

	if cacheable {
		go func(l *domain.Loan) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			stored, err := r.cache.Set(ctx, l, generation)
			if err != nil {
				r.logger.Debug("failed to cache loan", zap.Error(err), zap.String("loan_id", l.LoanID))
				return
			}
			if !stored {
				r.logger.Debug("skipped caching loan invalidated during read", zap.String("loan_id", l.LoanID))
			}
		}(loan)
	}

	return loan, nil
}

func (r *GORMLoanRepository) FindByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	return r.find(ctx, r.db.Clauses(clause.Locking{Strength: "UPDATE"}), loanID)
}

func (r *GORMLoanRepository) find(ctx context.Context, db *gorm.DB, loanID string) (*domain.Loan, error) {
	var model persistence.LoanModel
	result := db.WithContext(ctx).First(&model, "loan_id = ?", loanID)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLoanNotFound
		}
		r.logger.Error("failed to query loan", zap.Error(result.Error), zap.String("loan_id", loanID))
		return nil, fmt.Errorf("database error: %w", result.Error)
	}

	return model.ToDomain()
}

func (r *GORMLoanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	model, err := persistence.LoanModelFromDomain(loan)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		r.logger.Error("failed to create loan", zap.Error(result.Error), zap.String("loan_id", loan.LoanID))
		return fmt.Errorf("failed to create loan: %w", result.Error)
	}

	loan.ID = model.ID
	loan.CreatedAt = model.CreatedAt
	loan.UpdatedAt = model.UpdatedAt

	r.logger.Debug("loan created", zap.String("loan_id", loan.LoanID))
	return nil
}

// Save writes the mutable rollover state of the loan under an optimistic
// lock on Version.
func (r *GORMLoanRepository) Save(ctx context.Context, loan *domain.Loan) error {
	model, err := persistence.LoanModelFromDomain(loan)
	if err != nil {
		return err
	}

	// Invalidate cache BEFORE updating the row so concurrent readers refetch.
	if r.cache != nil {
		if err := r.cache.Delete(ctx, loan.LoanID); err != nil {
			r.logger.Warn("failed to invalidate cache before save",
				zap.Error(err),
				zap.String("loan_id", loan.LoanID))
		}
	}

	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&persistence.LoanModel{}).
		Where("loan_id = ? AND version = ?", loan.LoanID, loan.Version).
		Updates(map[string]interface{}{
			"status":            model.Status,
			"next_payment_date": model.NextPaymentDate,
			"payment_ids":       model.PaymentIDs,
			"version":           gorm.Expr("version + 1"),
			"updated_at":        now,
		})

	if result.Error != nil {
		r.logger.Error("failed to update loan", zap.Error(result.Error), zap.String("loan_id", loan.LoanID))
		return fmt.Errorf("database error: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.ErrOptimisticLock
	}

	loan.Version++
	loan.UpdatedAt = now

	if r.touched != nil {
		*r.touched = append(*r.touched, loan.LoanID)
	}

	r.logger.Debug("loan saved",
		zap.String("loan_id", loan.LoanID),
		zap.Int64("version", loan.Version),
	)

	return nil
}

func (r *GORMLoanRepository) ListLoanIDs(ctx context.Context) ([]string, error) {
	var ids []string
	result := r.db.WithContext(ctx).Model(&persistence.LoanModel{}).Pluck("loan_id", &ids)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list loan ids: %w", result.Error)
	}
	return ids, nil
}
