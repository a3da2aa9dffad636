// Package idgen assigns business-facing identifiers to loans, payments and
// guarantors. One Generator is built per process and shared by every
// creation path.
package idgen

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/gigmile/loan-ledger/internal/domain"
	"go.uber.org/zap"
)

const DefaultRetryBudget = 32

const paymentNumeralSpace = 10000

type Generator struct {
	mu          sync.Mutex
	rnd         *rand.Rand
	retryBudget int
	logger      *zap.Logger
}

func NewGenerator(retryBudget int, logger *zap.Logger) *Generator {
	return NewGeneratorWithSource(rand.NewSource(time.Now().UnixNano()), retryBudget, logger)
}

// NewGeneratorWithSource lets tests fix the random sequence.
func NewGeneratorWithSource(src rand.Source, retryBudget int, logger *zap.Logger) *Generator {
	if retryBudget <= 0 {
		retryBudget = DefaultRetryBudget
	}
	return &Generator{
		rnd:         rand.New(src),
		retryBudget: retryBudget,
		logger:      logger,
	}
}

// RetryBudget is the number of attempts allowed for a random identifier,
// both for draws and for write-time collisions.
func (g *Generator) RetryBudget() int {
	return g.retryBudget
}

// Bootstrap raises every counter to at least the largest numeral already in
// use so counters introduced over existing data never reissue an ID.
func (g *Generator) Bootstrap(ctx context.Context, uow domain.UnitOfWork) error {
	return uow.Atomic(ctx, func(tx domain.Store) error {
		if err := g.seed(ctx, tx, domain.SequenceLoan); err != nil {
			return err
		}
		return g.seed(ctx, tx, domain.SequenceGuarantor)
	})
}

func (g *Generator) seed(ctx context.Context, tx domain.Store, name string) error {
	var (
		ids    []string
		err    error
		format domain.IDFormat
	)
	switch name {
	case domain.SequenceLoan:
		format = domain.LoanIDFormat
		ids, err = tx.Loans().ListLoanIDs(ctx)
	case domain.SequenceGuarantor:
		format = domain.GuarantorIDFormat
		ids, err = tx.Guarantors().ListGuarantorIDs(ctx)
	default:
		return fmt.Errorf("unknown sequence %q", name)
	}
	if err != nil {
		return err
	}

	floor := format.MaxSuffix(ids)
	if err := tx.Sequences().Ensure(ctx, name, floor); err != nil {
		return err
	}

	g.logger.Debug("sequence bootstrapped", zap.String("sequence", name), zap.Int64("floor", floor))
	return nil
}

// NextLoanID must be called inside the transaction that inserts the loan.
func (g *Generator) NextLoanID(ctx context.Context, tx domain.Store) (string, error) {
	n, err := g.next(ctx, tx, domain.SequenceLoan)
	if err != nil {
		return "", err
	}
	return domain.LoanIDFormat.Format(n), nil
}

// NextGuarantorID must be called inside the transaction that inserts the
// guarantor.
func (g *Generator) NextGuarantorID(ctx context.Context, tx domain.Store) (string, error) {
	n, err := g.next(ctx, tx, domain.SequenceGuarantor)
	if err != nil {
		return "", err
	}
	return domain.GuarantorIDFormat.Format(n), nil
}

func (g *Generator) next(ctx context.Context, tx domain.Store, name string) (int64, error) {
	n, err := tx.Sequences().Next(ctx, name)
	if errors.Is(err, domain.ErrSequenceNotFound) {
		if err := g.seed(ctx, tx, name); err != nil {
			return 0, err
		}
		n, err = tx.Sequences().Next(ctx, name)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to advance %s sequence: %w", name, err)
	}
	return n, nil
}

// NextPaymentID draws random PY-#### identifiers until one is not held by a
// payment, not retired by a revert and not named in the audit trail, so a
// reverted payment's id is never handed out again. The unique index on payment_id stays the
// authority; callers retry the unit of work on ErrPaymentIDTaken.
func (g *Generator) NextPaymentID(ctx context.Context, tx domain.Store) (string, error) {
	for attempt := 1; attempt <= g.retryBudget; attempt++ {
		id := domain.PaymentIDFormat.Format(g.draw())

		taken, err := tx.Payments().ExistsByPaymentID(ctx, id)
		if err != nil {
			return "", err
		}
		if !taken {
			taken, err = tx.Audit().References(ctx, domain.EntityTypePayment, id)
			if err != nil {
				return "", err
			}
		}
		if !taken {
			return id, nil
		}

		g.logger.Debug("payment id collision, redrawing",
			zap.String("payment_id", id),
			zap.Int("attempt", attempt),
		)
	}
	return "", domain.ErrIDSpaceExhausted
}

func (g *Generator) draw() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return int64(g.rnd.Intn(paymentNumeralSpace))
}
