package domain

import "context"

type LoanRepository interface {
	FindByLoanID(ctx context.Context, loanID string) (*Loan, error)
	// FindByLoanIDForUpdate locks the loan row for the rest of the
	// transaction where the database supports it.
	FindByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	Create(ctx context.Context, loan *Loan) error
	Save(ctx context.Context, loan *Loan) error
	ListLoanIDs(ctx context.Context) ([]string, error)
}

type PaymentRepository interface {
	// Create returns ErrInstallmentTaken or ErrPaymentIDTaken when a unique
	// index rejects the row.
	Create(ctx context.Context, payment *Payment) error
	Update(ctx context.Context, payment *Payment) error
	Delete(ctx context.Context, payment *Payment) error
	FindByPaymentID(ctx context.Context, loanID, paymentID string) (*Payment, error)
	FindByInstallment(ctx context.Context, loanID string, installment int) (*Payment, error)
	FindByLoanID(ctx context.Context, loanID string) ([]*Payment, error)
	ExistsByPaymentID(ctx context.Context, paymentID string) (bool, error)
}

type GuarantorRepository interface {
	Create(ctx context.Context, guarantor *Guarantor) error
	FindByLoanID(ctx context.Context, loanID string) ([]*Guarantor, error)
	ListGuarantorIDs(ctx context.Context) ([]string, error)
}

// AuditRepository is append-only.
type AuditRepository interface {
	Append(ctx context.Context, entry *AuditLog) error
	Query(ctx context.Context, filter AuditFilter) ([]*AuditLog, error)
	// References reports whether any entry names the entity.
	References(ctx context.Context, entityType EntityType, entityID string) (bool, error)
}

type SequenceRepository interface {
	// Next increments the named counter and returns the new value.
	Next(ctx context.Context, name string) (int64, error)
	// Ensure creates the counter if missing and raises it to at least floor.
	Ensure(ctx context.Context, name string, floor int64) error
}

type Store interface {
	Loans() LoanRepository
	Payments() PaymentRepository
	Guarantors() GuarantorRepository
	Sequences() SequenceRepository
	Audit() AuditRepository
}

// UnitOfWork runs fn against a transactional Store. Any error returned by fn
// rolls the whole unit back.
type UnitOfWork interface {
	Store
	Atomic(ctx context.Context, fn func(tx Store) error) error
}

// OutboxItem is an audit entry claimed from the outbox. Receipt identifies
// the claim for Ack and Requeue.
type OutboxItem struct {
	Entry   *AuditLog
	Receipt string
}

// AuditOutbox parks audit entries that could not be appended after commit.
type AuditOutbox interface {
	Push(ctx context.Context, entry *AuditLog) error
	// Claim returns nil when the outbox is empty.
	Claim(ctx context.Context) (*OutboxItem, error)
	Ack(ctx context.Context, item *OutboxItem) error
	Requeue(ctx context.Context, item *OutboxItem) error
}
