package service

import (
	"context"
	"errors"

	"github.com/gigmile/loan-ledger/internal/domain"
	"go.uber.org/zap"
)

// translate turns repository sentinels into LedgerErrors carrying the loan
// and installment the caller was working on.
func translate(err error, loanID string, installment int) error {
	if err == nil {
		return nil
	}

	if le, ok := domain.AsLedgerError(err); ok {
		if le.LoanID == "" {
			le.LoanID = loanID
		}
		if le.InstallmentNumber == 0 {
			le.InstallmentNumber = installment
		}
		return le
	}

	switch {
	case errors.Is(err, domain.ErrLoanNotFound):
		return domain.NewNotFoundError(loanID, installment, "loan does not exist", err)
	case errors.Is(err, domain.ErrPaymentNotFound):
		return domain.NewNotFoundError(loanID, installment, "payment does not exist for this loan", err)
	case errors.Is(err, domain.ErrInstallmentTaken):
		return domain.NewConflictError(loanID, installment, "installment is already paid", err)
	case errors.Is(err, domain.ErrOptimisticLock):
		return domain.NewConflictError(loanID, installment, "loan was modified concurrently", err)
	case errors.Is(err, domain.ErrIDSpaceExhausted):
		return domain.NewDependencyError(loanID, installment, "could not allocate a payment id", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domain.NewDependencyError(loanID, installment, "request cancelled before commit", err)
	default:
		return domain.NewDependencyError(loanID, installment, "storage unavailable", err)
	}
}

// retryPolicy bounds how often a unit of work is re-run. Only identifier
// collisions and optimistic-lock failures are retried.
type retryPolicy struct {
	idCollisions  int
	lockConflicts int
}

func runAtomic(
	ctx context.Context,
	uow domain.UnitOfWork,
	policy retryPolicy,
	logger *zap.Logger,
	fn func(tx domain.Store) error,
) error {
	collisions, conflicts := 0, 0
	for {
		err := uow.Atomic(ctx, fn)

		switch {
		case err == nil:
			return nil
		case errors.Is(err, domain.ErrPaymentIDTaken):
			collisions++
			if collisions >= policy.idCollisions {
				return errors.Join(domain.ErrIDSpaceExhausted, err)
			}
		case errors.Is(err, domain.ErrOptimisticLock):
			conflicts++
			if conflicts >= policy.lockConflicts {
				return err
			}
		default:
			return err
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		logger.Warn("retrying unit of work",
			zap.Error(err),
			zap.Int("id_collisions", collisions),
			zap.Int("lock_conflicts", conflicts),
		)
	}
}
