package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type InstallmentStatus string

const (
	InstallmentStatusPending InstallmentStatus = "pending"
	InstallmentStatusPaid    InstallmentStatus = "paid"
	InstallmentStatusOverdue InstallmentStatus = "overdue"
)

// Installment is derived on read from a loan and its payments; it is never
// stored.
type Installment struct {
	LoanID        string
	Number        int
	DueDate       time.Time
	Amount        decimal.Decimal
	Status        InstallmentStatus
	PaidAmount    decimal.Decimal
	PaidDate      *time.Time
	LateFee       decimal.Decimal
	PaymentMethod *PaymentMethod
	PaymentID     string
	TransactionID string
	Remarks       string
}

// PaidInstallments indexes payments by installment number.
func PaidInstallments(payments []*Payment) map[int]bool {
	paid := make(map[int]bool, len(payments))
	for _, p := range payments {
		if p.Status == PaymentStatusPaid {
			paid[p.InstallmentNumber] = true
		}
	}
	return paid
}

// BuildSchedule lays out every installment of the loan. Overdue is a
// read-time classification of a pending installment whose due date has
// passed; its LateFee is the penalty accrued as of now.
func BuildSchedule(loan *Loan, payments []*Payment, penalty PenaltyPolicy, now time.Time) []Installment {
	byNumber := make(map[int]*Payment, len(payments))
	for _, p := range payments {
		if p.Status == PaymentStatusPaid {
			byNumber[p.InstallmentNumber] = p
		}
	}

	schedule := make([]Installment, 0, loan.TenureMonths)
	for n := 1; n <= loan.TenureMonths; n++ {
		inst := Installment{
			LoanID:     loan.LoanID,
			Number:     n,
			DueDate:    loan.DueDate(n),
			Amount:     loan.EMIAmount,
			Status:     InstallmentStatusPending,
			PaidAmount: decimal.Zero,
			LateFee:    decimal.Zero,
		}

		if p, ok := byNumber[n]; ok {
			paidDate := p.PaidDate
			method := p.Method
			inst.Status = InstallmentStatusPaid
			inst.PaidAmount = p.Amount
			inst.PaidDate = &paidDate
			inst.LateFee = p.PenaltyAmount
			inst.PaymentMethod = &method
			inst.PaymentID = p.PaymentID
			inst.TransactionID = p.TransactionID
			inst.Remarks = p.Remarks
		} else if DaysLate(inst.DueDate, now) > 0 {
			inst.Status = InstallmentStatusOverdue
			inst.LateFee = penalty.Compute(inst.DueDate, now)
		}

		schedule = append(schedule, inst)
	}
	return schedule
}
