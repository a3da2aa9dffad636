package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusReverted PaymentStatus = "reverted"
)

type PaymentMethodKind string

const (
	PaymentMethodCash         PaymentMethodKind = "cash"
	PaymentMethodBankTransfer PaymentMethodKind = "bank_transfer"
	PaymentMethodCheque       PaymentMethodKind = "cheque"
	PaymentMethodUPI          PaymentMethodKind = "upi"
	PaymentMethodOther        PaymentMethodKind = "other"
)

// PaymentMethod is either one of the enumerated kinds or "other" with a
// non-empty free-text description.
type PaymentMethod struct {
	Kind   PaymentMethodKind
	Detail string
}

func NewPaymentMethod(kind, detail string) (PaymentMethod, error) {
	detail = strings.TrimSpace(detail)
	switch PaymentMethodKind(kind) {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCheque, PaymentMethodUPI:
		return PaymentMethod{Kind: PaymentMethodKind(kind)}, nil
	case PaymentMethodOther:
		if detail == "" {
			return PaymentMethod{}, NewValidationError("", 0, "payment method 'other' requires a description")
		}
		return PaymentMethod{Kind: PaymentMethodOther, Detail: detail}, nil
	default:
		return PaymentMethod{}, NewValidationError("", 0, "unknown payment method "+kind)
	}
}

func (m PaymentMethod) String() string {
	if m.Kind == PaymentMethodOther {
		return string(m.Kind) + ":" + m.Detail
	}
	return string(m.Kind)
}

type Payment struct {
	ID                uint
	PaymentID         string
	LoanID            string
	InstallmentNumber int
	InstallmentAmount decimal.Decimal
	PenaltyAmount     decimal.Decimal
	Amount            decimal.Decimal // installment + penalty
	Status            PaymentStatus
	PaidDate          time.Time
	DueDate           time.Time
	Method            PaymentMethod
	TransactionID     string
	Remarks           string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ValidateInstallmentAmount checks an amount applied to an installment.
func ValidateInstallmentAmount(loanID string, installment int, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return NewValidationError(loanID, installment, "amount must be positive")
	}
	if HasSubCentPrecision(amount) {
		return NewValidationError(loanID, installment, "amount has sub-cent precision")
	}
	if ExceedsMaxAmount(amount) {
		return NewValidationError(loanID, installment, "amount exceeds "+MaxAmount.StringFixed(CurrencyPlaces))
	}
	return nil
}

func NewPayment(
	paymentID string,
	loanID string,
	installment int,
	amount decimal.Decimal,
	penalty decimal.Decimal,
	method PaymentMethod,
	paidDate time.Time,
	dueDate time.Time,
) (*Payment, error) {
	if err := ValidateInstallmentAmount(loanID, installment, amount); err != nil {
		return nil, err
	}
	if penalty.IsNegative() {
		return nil, NewValidationError(loanID, installment, "penalty amount must not be negative")
	}
	if ExceedsMaxAmount(amount.Add(penalty)) {
		return nil, NewValidationError(loanID, installment, "amount plus penalty exceeds "+MaxAmount.StringFixed(CurrencyPlaces))
	}
	if method.Kind == "" {
		return nil, NewValidationError(loanID, installment, "payment method is required")
	}

	return &Payment{
		PaymentID:         paymentID,
		LoanID:            loanID,
		InstallmentNumber: installment,
		InstallmentAmount: amount,
		PenaltyAmount:     penalty,
		Amount:            amount.Add(penalty),
		Status:            PaymentStatusPaid,
		PaidDate:          paidDate,
		DueDate:           dueDate,
		Method:            method,
	}, nil
}

// Reprice replaces the installment and penalty parts, keeping Amount their sum.
func (p *Payment) Reprice(amount, penalty decimal.Decimal) {
	p.InstallmentAmount = amount
	p.PenaltyAmount = penalty
	p.Amount = amount.Add(penalty)
}

func (p *Payment) MarkReverted() {
	p.Status = PaymentStatusReverted
}

// Snapshot is the audit representation of the payment.
func (p *Payment) Snapshot() map[string]any {
	return map[string]any{
		"payment_id":         p.PaymentID,
		"installment_number": p.InstallmentNumber,
		"installment_amount": p.InstallmentAmount.StringFixed(CurrencyPlaces),
		"penalty_amount":     p.PenaltyAmount.StringFixed(CurrencyPlaces),
		"amount":             p.Amount.StringFixed(CurrencyPlaces),
		"status":             string(p.Status),
		"paid_date":          p.PaidDate.Format(time.RFC3339),
		"due_date":           p.DueDate.Format(time.RFC3339),
		"payment_method":     p.Method.String(),
		"transaction_id":     p.TransactionID,
		"remarks":            p.Remarks,
	}
}
