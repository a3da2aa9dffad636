package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type LoanStatus string

const (
	LoanStatusActive    LoanStatus = "active"
	LoanStatusClosed    LoanStatus = "closed"
	LoanStatusDefaulted LoanStatus = "defaulted"
)

// Loan is the aggregate root of the ledger.
type Loan struct {
	ID               uint
	LoanID           string
	CustomerID       string
	VehicleID        string
	Principal        decimal.Decimal
	InterestRate     decimal.Decimal // annual, percent
	TenureMonths     int
	StartDate        time.Time
	EndDate          time.Time
	EMIAmount        decimal.Decimal
	TotalAmount      decimal.Decimal
	TotalInterest    decimal.Decimal
	ProcessingFee    decimal.Decimal
	DisbursementDate time.Time
	Status           LoanStatus
	NextPaymentDate  *time.Time
	PaymentIDs       []string // chronological
	Cadence          Cadence
	Version          int64 // for optimistic locking
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type NewLoanParams struct {
	CustomerID       string
	VehicleID        string
	Principal        decimal.Decimal
	InterestRate     decimal.Decimal
	TenureMonths     int
	ProcessingFee    decimal.Decimal
	DisbursementDate time.Time
	Cadence          Cadence
}

// NewLoan creates an active loan with its amortization applied. loanID may
// be empty until the generator assigns one.
func NewLoan(loanID string, p NewLoanParams) (*Loan, error) {
	if p.CustomerID == "" {
		return nil, NewValidationError(loanID, 0, "customer id is required")
	}
	if p.VehicleID == "" {
		return nil, NewValidationError(loanID, 0, "vehicle id is required")
	}
	if HasSubCentPrecision(p.Principal) {
		return nil, NewValidationError(loanID, 0, "principal has sub-cent precision")
	}
	if p.ProcessingFee.IsNegative() || HasSubCentPrecision(p.ProcessingFee) {
		return nil, NewValidationError(loanID, 0, "processing fee must be a non-negative currency amount")
	}
	if ExceedsMaxAmount(p.ProcessingFee) {
		return nil, NewValidationError(loanID, 0, "processing fee exceeds "+MaxAmount.StringFixed(CurrencyPlaces))
	}
	if !p.InterestRate.Equal(p.InterestRate.Truncate(2)) {
		return nil, NewValidationError(loanID, 0, "interest rate allows at most two decimals")
	}

	plan, err := CalculateAmortization(p.Principal, p.InterestRate, p.TenureMonths, p.DisbursementDate, p.Cadence)
	if err != nil {
		if le, ok := AsLedgerError(err); ok {
			le.LoanID = loanID
		}
		return nil, err
	}

	first := plan.DueDates[0]
	return &Loan{
		LoanID:           loanID,
		CustomerID:       p.CustomerID,
		VehicleID:        p.VehicleID,
		Principal:        p.Principal,
		InterestRate:     p.InterestRate,
		TenureMonths:     p.TenureMonths,
		StartDate:        p.DisbursementDate,
		EndDate:          plan.DueDates[len(plan.DueDates)-1],
		EMIAmount:        plan.EMIAmount,
		TotalAmount:      plan.TotalAmount,
		TotalInterest:    plan.TotalInterest,
		ProcessingFee:    p.ProcessingFee,
		DisbursementDate: p.DisbursementDate,
		Status:           LoanStatusActive,
		NextPaymentDate:  &first,
		PaymentIDs:       []string{},
		Cadence:          p.Cadence,
		Version:          1,
	}, nil
}

// DueDate returns the due date of installment n.
func (l *Loan) DueDate(n int) time.Time {
	return l.Cadence.DueDate(l.DisbursementDate, n)
}

func (l *Loan) HasInstallment(n int) bool {
	return n >= 1 && n <= l.TenureMonths
}

func (l *Loan) IsActive() bool {
	return l.Status == LoanStatusActive
}

func (l *Loan) AttachPayment(paymentID string) {
	l.PaymentIDs = append(l.PaymentIDs, paymentID)
}

// DetachPayment removes paymentID from the list, reporting whether it was present.
func (l *Loan) DetachPayment(paymentID string) bool {
	for i, id := range l.PaymentIDs {
		if id == paymentID {
			l.PaymentIDs = append(l.PaymentIDs[:i:i], l.PaymentIDs[i+1:]...)
			return true
		}
	}
	return false
}

// Reconcile derives the rollover state from the set of paid installments:
// NextPaymentDate becomes the due date of the lowest unpaid installment and
// the loan closes once none is left. A closed loan that regains an unpaid
// installment reopens. Defaulted loans keep their status.
func (l *Loan) Reconcile(paid map[int]bool) {
	for n := 1; n <= l.TenureMonths; n++ {
		if paid[n] {
			continue
		}
		due := l.DueDate(n)
		l.NextPaymentDate = &due
		if l.Status == LoanStatusClosed {
			l.Status = LoanStatusActive
		}
		return
	}

	l.NextPaymentDate = nil
	if l.Status == LoanStatusActive {
		l.Status = LoanStatusClosed
	}
}

// OutstandingInstallments returns how many installments have no payment.
func (l *Loan) OutstandingInstallments(paid map[int]bool) int {
	count := 0
	for n := 1; n <= l.TenureMonths; n++ {
		if !paid[n] {
			count++
		}
	}
	return count
}
