package service

import (
	"context"
	"errors"
	"time"

	"github.com/gigmile/loan-ledger/internal/application/idgen"
	"github.com/gigmile/loan-ledger/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const DefaultTxRetries = 5

// LedgerOptions tunes a LedgerService. Zero values take defaults.
type LedgerOptions struct {
	Penalty   *domain.PenaltyPolicy
	TxRetries int
	Now       func() time.Time
}

// LedgerService is the only writer of payments. Every mutation runs as one
// unit of work against the loan row, followed by its audit entry.
type LedgerService struct {
	uow            domain.UnitOfWork
	ids            *idgen.Generator
	penalty        domain.PenaltyPolicy
	txRetries      int
	now            func() time.Time
	audit          *auditWriter
	eventPublisher domain.EventPublisher // Optional - can be nil
	logger         *zap.Logger
}

func NewLedgerService(
	uow domain.UnitOfWork,
	ids *idgen.Generator,
	opts LedgerOptions,
	outbox domain.AuditOutbox,
	eventPublisher domain.EventPublisher,
	logger *zap.Logger,
) *LedgerService {
	penalty := domain.PenaltyPolicy{PerDay: domain.DefaultPenaltyPerDay}
	if opts.Penalty != nil {
		penalty = *opts.Penalty
	}
	if opts.TxRetries <= 0 {
		opts.TxRetries = DefaultTxRetries
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}

	return &LedgerService{
		uow:            uow,
		ids:            ids,
		penalty:        penalty,
		txRetries:      opts.TxRetries,
		now:            opts.Now,
		audit:          &auditWriter{audit: uow.Audit(), outbox: outbox, logger: logger},
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

type RecordPaymentRequest struct {
	LoanID            string
	InstallmentNumber int
	Amount            decimal.Decimal
	PenaltyAmount     *decimal.Decimal // nil takes the computed default
	OverridePenalty   bool
	Method            domain.PaymentMethod
	PaidDate          time.Time  // zero means now
	DueDate           *time.Time // optional, must match the schedule
	TransactionID     string
	Remarks           string
}

// RecordPayment pays one installment and rolls the loan over to its next
// unpaid installment.
func (s *LedgerService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*domain.Payment, error) {
	loanID, inst := req.LoanID, req.InstallmentNumber

	if loanID == "" {
		return nil, domain.NewValidationError("", inst, "loan id is required")
	}
	if err := domain.ValidateInstallmentAmount(loanID, inst, req.Amount); err != nil {
		return nil, err
	}
	if req.Method.Kind == "" {
		return nil, domain.NewValidationError(loanID, inst, "payment method is required")
	}
	if req.PenaltyAmount != nil && req.PenaltyAmount.IsNegative() {
		return nil, domain.NewValidationError(loanID, inst, "penalty amount must not be negative")
	}

	paidDate := req.PaidDate.UTC()
	if req.PaidDate.IsZero() {
		paidDate = s.now()
	}

	var (
		payment *domain.Payment
		loan    *domain.Loan
	)

	err := runAtomic(ctx, s.uow, s.retryPolicy(), s.logger, func(tx domain.Store) error {
		var err error
		loan, err = tx.Loans().FindByLoanIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		if !loan.IsActive() {
			return domain.NewValidationError(loanID, inst, "loan is "+string(loan.Status)+", not active")
		}
		if !loan.HasInstallment(inst) {
			return domain.NewNotFoundError(loanID, inst, "installment is outside the loan's schedule", nil)
		}

		dueDate := loan.DueDate(inst)
		if req.DueDate != nil && !sameDay(*req.DueDate, dueDate) {
			return domain.NewValidationError(loanID, inst,
				"due date "+req.DueDate.Format(time.DateOnly)+" does not match scheduled "+dueDate.Format(time.DateOnly))
		}

		existing, err := tx.Payments().FindByInstallment(ctx, loanID, inst)
		switch {
		case err == nil:
			return domain.NewConflictError(loanID, inst,
				"installment is already paid by "+existing.PaymentID, domain.ErrInstallmentTaken)
		case !errors.Is(err, domain.ErrPaymentNotFound):
			return err
		}

		penalty, err := s.penalty.Resolve(s.penalty.Compute(dueDate, paidDate), req.PenaltyAmount, req.OverridePenalty)
		if err != nil {
			return err
		}

		paymentID, err := s.ids.NextPaymentID(ctx, tx)
		if err != nil {
			return err
		}

		payment, err = domain.NewPayment(paymentID, loanID, inst, req.Amount, penalty, req.Method, paidDate, dueDate)
		if err != nil {
			return err
		}
		payment.TransactionID = req.TransactionID
		payment.Remarks = req.Remarks

		if err := tx.Payments().Create(ctx, payment); err != nil {
			return err
		}

		loan.AttachPayment(payment.PaymentID)
		return s.reconcile(ctx, tx, loan)
	})
	if err != nil {
		return nil, s.fail("record payment", err, loanID, inst)
	}

	s.logger.Info("payment recorded",
		zap.String("loan_id", loanID),
		zap.Int("installment_number", inst),
		zap.String("payment_id", payment.PaymentID),
		zap.String("amount", payment.Amount.StringFixed(domain.CurrencyPlaces)),
		zap.String("loan_status", string(loan.Status)),
	)

	entry := domain.NewAuditLog(
		domain.AuditActionPaymentCreated,
		domain.EntityTypePayment,
		payment.PaymentID,
		loanID,
		payment.Snapshot(),
		domain.ActorFromContext(ctx),
		s.now(),
	)
	auditErr := s.audit.write(ctx, entry, inst)

	s.publish(domain.EventTypePaymentRecorded, loan, payment)

	return payment, auditErr
}

// UpdatePaymentFields lists the corrections to apply; nil fields keep their
// current value.
type UpdatePaymentFields struct {
	Amount          *decimal.Decimal
	PenaltyAmount   *decimal.Decimal
	OverridePenalty bool
	Method          *domain.PaymentMethod
	PaidDate        *time.Time
	TransactionID   *string
	Remarks         *string
}

func (f UpdatePaymentFields) empty() bool {
	return f.Amount == nil && f.PenaltyAmount == nil && f.Method == nil &&
		f.PaidDate == nil && f.TransactionID == nil && f.Remarks == nil
}

// UpdatePayment corrects the payment recorded against an installment. The
// penalty is resolved again against the paid date in effect after the update;
// without a submitted penalty, a changed paid date takes the new default.
func (s *LedgerService) UpdatePayment(ctx context.Context, loanID string, inst int, fields UpdatePaymentFields) (*domain.Payment, error) {
	if fields.empty() {
		return nil, domain.NewValidationError(loanID, inst, "no fields to update")
	}
	if fields.Amount != nil {
		if err := domain.ValidateInstallmentAmount(loanID, inst, *fields.Amount); err != nil {
			return nil, err
		}
	}
	if fields.PenaltyAmount != nil && fields.PenaltyAmount.IsNegative() {
		return nil, domain.NewValidationError(loanID, inst, "penalty amount must not be negative")
	}
	if fields.Method != nil && fields.Method.Kind == "" {
		return nil, domain.NewValidationError(loanID, inst, "payment method is required")
	}

	var (
		payment  *domain.Payment
		previous domain.Payment
	)

	err := runAtomic(ctx, s.uow, s.retryPolicy(), s.logger, func(tx domain.Store) error {
		if _, err := tx.Loans().FindByLoanIDForUpdate(ctx, loanID); err != nil {
			return err
		}

		var err error
		payment, err = tx.Payments().FindByInstallment(ctx, loanID, inst)
		if err != nil {
			return err
		}
		previous = *payment

		paidDate := payment.PaidDate
		if fields.PaidDate != nil {
			paidDate = fields.PaidDate.UTC()
		}

		amount := payment.InstallmentAmount
		if fields.Amount != nil {
			amount = *fields.Amount
		}

		penalty := payment.PenaltyAmount
		if fields.PenaltyAmount != nil || fields.PaidDate != nil {
			computed := s.penalty.Compute(payment.DueDate, paidDate)
			penalty, err = s.penalty.Resolve(computed, fields.PenaltyAmount, fields.OverridePenalty)
			if err != nil {
				return err
			}
		}

		if domain.ExceedsMaxAmount(amount.Add(penalty)) {
			return domain.NewValidationError(loanID, inst, "amount plus penalty exceeds "+domain.MaxAmount.StringFixed(domain.CurrencyPlaces))
		}
		payment.Reprice(amount, penalty)
		payment.PaidDate = paidDate
		if fields.Method != nil {
			payment.Method = *fields.Method
		}
		if fields.TransactionID != nil {
			payment.TransactionID = *fields.TransactionID
		}
		if fields.Remarks != nil {
			payment.Remarks = *fields.Remarks
		}

		return tx.Payments().Update(ctx, payment)
	})
	if err != nil {
		return nil, s.fail("update payment", err, loanID, inst)
	}

	s.logger.Info("payment updated",
		zap.String("loan_id", loanID),
		zap.Int("installment_number", inst),
		zap.String("payment_id", payment.PaymentID),
	)

	details := payment.Snapshot()
	details["previous"] = previous.Snapshot()
	entry := domain.NewAuditLog(
		domain.AuditActionPaymentUpdated,
		domain.EntityTypePayment,
		payment.PaymentID,
		loanID,
		details,
		domain.ActorFromContext(ctx),
		s.now(),
	)

	return payment, s.audit.write(ctx, entry, inst)
}

// RevertPayment deletes a payment and frees its installment for a new
// RecordPayment. The returned snapshot carries status reverted.
func (s *LedgerService) RevertPayment(ctx context.Context, loanID, paymentID string) (*domain.Payment, error) {
	if loanID == "" || paymentID == "" {
		return nil, domain.NewValidationError(loanID, 0, "loan id and payment id are required")
	}

	var (
		payment *domain.Payment
		loan    *domain.Loan
	)

	err := runAtomic(ctx, s.uow, s.retryPolicy(), s.logger, func(tx domain.Store) error {
		var err error
		loan, err = tx.Loans().FindByLoanIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}

		payment, err = tx.Payments().FindByPaymentID(ctx, loanID, paymentID)
		if err != nil {
			return err
		}

		if err := tx.Payments().Delete(ctx, payment); err != nil {
			return err
		}

		if !loan.DetachPayment(paymentID) {
			s.logger.Warn("reverted payment was missing from loan payment list",
				zap.String("loan_id", loanID),
				zap.String("payment_id", paymentID),
			)
		}
		return s.reconcile(ctx, tx, loan)
	})
	if err != nil {
		inst := 0
		if payment != nil {
			inst = payment.InstallmentNumber
		}
		return nil, s.fail("revert payment", err, loanID, inst)
	}

	payment.MarkReverted()

	s.logger.Info("payment reverted",
		zap.String("loan_id", loanID),
		zap.Int("installment_number", payment.InstallmentNumber),
		zap.String("payment_id", paymentID),
		zap.String("loan_status", string(loan.Status)),
	)

	entry := domain.NewAuditLog(
		domain.AuditActionPaymentReverted,
		domain.EntityTypePayment,
		paymentID,
		loanID,
		payment.Snapshot(),
		domain.ActorFromContext(ctx),
		s.now(),
	)
	auditErr := s.audit.write(ctx, entry, payment.InstallmentNumber)

	s.publish(domain.EventTypePaymentReverted, loan, payment)

	return payment, auditErr
}

// ListPayments returns the loan's payments in order of payment.
func (s *LedgerService) ListPayments(ctx context.Context, loanID string) ([]*domain.Payment, error) {
	if _, err := s.uow.Loans().FindByLoanID(ctx, loanID); err != nil {
		return nil, translate(err, loanID, 0)
	}

	payments, err := s.uow.Payments().FindByLoanID(ctx, loanID)
	if err != nil {
		s.logger.Error("failed to list payments", zap.Error(err), zap.String("loan_id", loanID))
		return nil, translate(err, loanID, 0)
	}
	return payments, nil
}

// reconcile recomputes the loan's rollover state from the payments visible
// in tx and saves it.
func (s *LedgerService) reconcile(ctx context.Context, tx domain.Store, loan *domain.Loan) error {
	payments, err := tx.Payments().FindByLoanID(ctx, loan.LoanID)
	if err != nil {
		return err
	}

	paid := domain.PaidInstallments(payments)
	loan.Reconcile(paid)
	s.logger.Debug("loan reconciled",
		zap.String("loan_id", loan.LoanID),
		zap.String("status", string(loan.Status)),
		zap.Int("installments_remaining", loan.OutstandingInstallments(paid)),
	)
	return tx.Loans().Save(ctx, loan)
}

func (s *LedgerService) retryPolicy() retryPolicy {
	return retryPolicy{
		idCollisions:  s.ids.RetryBudget(),
		lockConflicts: s.txRetries,
	}
}

func (s *LedgerService) fail(op string, err error, loanID string, inst int) error {
	err = translate(err, loanID, inst)
	if errors.Is(err, domain.ErrDependency) {
		s.logger.Error(op+" failed",
			zap.Error(err),
			zap.String("loan_id", loanID),
			zap.Int("installment_number", inst),
		)
	} else {
		s.logger.Info(op+" rejected",
			zap.Error(err),
			zap.String("loan_id", loanID),
			zap.Int("installment_number", inst),
		)
	}
	return err
}

func (s *LedgerService) publish(eventType string, loan *domain.Loan, payment *domain.Payment) {
	if s.eventPublisher == nil {
		return
	}
	event := domain.NewPaymentEvent(eventType, loan, payment, s.now())
	go s.publishEvent(event)
}

func (s *LedgerService) publishEvent(event *domain.PaymentEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish payment event",
			zap.Error(err),
			zap.String("event_type", event.GetEventType()),
			zap.String("event_id", event.GetEventID()),
			zap.String("loan_id", event.Payload.LoanID),
		)
		return
	}

	s.logger.Debug("payment event published",
		zap.String("event_type", event.GetEventType()),
		zap.String("event_id", event.GetEventID()),
	)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
