package sqlrepository

import (
	"context"
	"errors"
	"strings"

	"github.com/gigmile/loan-ledger/internal/domain"
	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const mysqlDuplicateEntry = 1062

// LoanCache is the optional read-through cache in front of the loans table.
// Delete bumps the loan's generation; Set stores the loan only if the
// generation still matches the one read before the table was queried.
type LoanCache interface {
	Get(ctx context.Context, loanID string) (*domain.Loan, error)
	Generation(ctx context.Context, loanID string) (int64, error)
	Set(ctx context.Context, loan *domain.Loan, generation int64) (bool, error)
	Delete(ctx context.Context, loanIDs ...string) error
}

// GormStore implements domain.UnitOfWork on top of a *gorm.DB. Inside
// Atomic the same type wraps the transaction handle.
type GormStore struct {
	db      *gorm.DB
	cache   LoanCache
	logger  *zap.Logger
	inTx    bool
	touched *[]string
}

// NewStore builds the store. cache may be nil to disable loan caching.
func NewStore(db *gorm.DB, cache LoanCache, logger *zap.Logger) *GormStore {
	return &GormStore{
		db:     db,
		cache:  cache,
		logger: logger,
	}
}

func (s *GormStore) Loans() domain.LoanRepository {
	return &GORMLoanRepository{db: s.db, cache: s.cache, logger: s.logger, inTx: s.inTx, touched: s.touched}
}

func (s *GormStore) Payments() domain.PaymentRepository {
	return &GORMPaymentRepository{db: s.db, logger: s.logger}
}

func (s *GormStore) Guarantors() domain.GuarantorRepository {
	return &GORMGuarantorRepository{db: s.db, logger: s.logger}
}

func (s *GormStore) Sequences() domain.SequenceRepository {
	return &GORMSequenceRepository{db: s.db, logger: s.logger}
}

func (s *GormStore) Audit() domain.AuditRepository {
	return &GORMAuditRepository{db: s.db, logger: s.logger}
}

// Atomic runs fn in a database transaction. Cached loans written by fn are
// invalidated again once the transaction commits.
func (s *GormStore) Atomic(ctx context.Context, fn func(tx domain.Store) error) error {
	touched := []string{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{
			db:      tx,
			cache:   s.cache,
			logger:  s.logger,
			inTx:    true,
			touched: &touched,
		})
	})
	if err != nil {
		return err
	}

	if s.cache != nil && len(touched) > 0 {
		if err := s.cache.Delete(ctx, touched...); err != nil {
			s.logger.Warn("failed to invalidate loan cache after commit",
				zap.Error(err),
				zap.Strings("loan_ids", touched),
			)
		}
	}
	return nil
}

func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlDuplicateEntry
	}

	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "Duplicate entry") ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}
