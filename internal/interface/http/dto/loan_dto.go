package dto

import (
	"time"

	"github.com/gigmile/loan-ledger/internal/application/service"
	"github.com/gigmile/loan-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// Money fields accept JSON numbers or decimal strings.
type CreateLoanRequest struct {
	CustomerID       string           `json:"customer_id" validate:"required,max=50"`
	VehicleID        string           `json:"vehicle_id" validate:"required,max=50"`
	Principal        *decimal.Decimal `json:"principal" validate:"required"`
	InterestRate     *decimal.Decimal `json:"interest_rate" validate:"required"`
	TenureMonths     int              `json:"tenure_months" validate:"required,min=1,max=600"`
	ProcessingFee    *decimal.Decimal `json:"processing_fee"`
	DisbursementDate string           `json:"disbursement_date" validate:"omitempty,datetime=2006-01-02"`
}

func (r *CreateLoanRequest) Validate() error {
	return validateStruct(r)
}

func (r *CreateLoanRequest) ToServiceRequest() (service.CreateLoanRequest, error) {
	disbursement, err := ParseDate(r.DisbursementDate)
	if err != nil {
		return service.CreateLoanRequest{}, err
	}
	fee := decimal.Zero
	if r.ProcessingFee != nil {
		fee = *r.ProcessingFee
	}
	return service.CreateLoanRequest{
		CustomerID:       r.CustomerID,
		VehicleID:        r.VehicleID,
		Principal:        *r.Principal,
		InterestRate:     *r.InterestRate,
		TenureMonths:     r.TenureMonths,
		ProcessingFee:    fee,
		DisbursementDate: disbursement,
	}, nil
}

type QuoteRequest struct {
	Principal        *decimal.Decimal `json:"principal" validate:"required"`
	InterestRate     *decimal.Decimal `json:"interest_rate" validate:"required"`
	TenureMonths     int              `json:"tenure_months" validate:"required,min=1,max=600"`
	DisbursementDate string           `json:"disbursement_date" validate:"omitempty,datetime=2006-01-02"`
}

func (r *QuoteRequest) Validate() error {
	return validateStruct(r)
}

type LoanResponse struct {
	LoanID           string   `json:"loan_id"`
	CustomerID       string   `json:"customer_id"`
	VehicleID        string   `json:"vehicle_id"`
	Principal        string   `json:"principal"`
	InterestRate     string   `json:"interest_rate"`
	TenureMonths     int      `json:"tenure_months"`
	StartDate        string   `json:"start_date"`
	EndDate          string   `json:"end_date"`
	EMIAmount        string   `json:"emi_amount"`
	TotalAmount      string   `json:"total_amount"`
	TotalInterest    string   `json:"total_interest"`
	ProcessingFee    string   `json:"processing_fee"`
	DisbursementDate string   `json:"disbursement_date"`
	Status           string   `json:"status"`
	NextPaymentDate  *string  `json:"next_payment_date"`
	PaymentIDs       []string `json:"payment_ids"`
	BillingCadence   string   `json:"billing_cadence"`
	IntervalDays     int      `json:"interval_days,omitempty"`
}

func NewLoanResponse(loan *domain.Loan) LoanResponse {
	ids := loan.PaymentIDs
	if ids == nil {
		ids = []string{}
	}
	resp := LoanResponse{
		LoanID:           loan.LoanID,
		CustomerID:       loan.CustomerID,
		VehicleID:        loan.VehicleID,
		Principal:        money(loan.Principal),
		InterestRate:     loan.InterestRate.StringFixed(2),
		TenureMonths:     loan.TenureMonths,
		StartDate:        formatDate(loan.StartDate),
		EndDate:          formatDate(loan.EndDate),
		EMIAmount:        money(loan.EMIAmount),
		TotalAmount:      money(loan.TotalAmount),
		TotalInterest:    money(loan.TotalInterest),
		ProcessingFee:    money(loan.ProcessingFee),
		DisbursementDate: formatDate(loan.DisbursementDate),
		Status:           string(loan.Status),
		NextPaymentDate:  formatOptionalDate(loan.NextPaymentDate),
		PaymentIDs:       ids,
		BillingCadence:   string(loan.Cadence.Kind),
	}
	if loan.Cadence.Kind == domain.CadenceFixedInterval {
		resp.IntervalDays = loan.Cadence.IntervalDays
	}
	return resp
}

type InstallmentResponse struct {
	InstallmentNumber int     `json:"installment_number"`
	DueDate           string  `json:"due_date"`
	Amount            string  `json:"amount"`
	Status            string  `json:"status"`
	PaidAmount        string  `json:"paid_amount"`
	PaidDate          *string `json:"paid_date"`
	LateFee           string  `json:"late_fee"`
	PaymentMethod     string  `json:"payment_method,omitempty"`
	PaymentID         string  `json:"payment_id,omitempty"`
	TransactionID     string  `json:"transaction_id,omitempty"`
	Remarks           string  `json:"remarks,omitempty"`
}

type ScheduleResponse struct {
	LoanID          string                `json:"loan_id"`
	Status          string                `json:"status"`
	NextPaymentDate *string               `json:"next_payment_date"`
	AsOf            string                `json:"as_of"`
	Installments    []InstallmentResponse `json:"installments"`
}

func NewScheduleResponse(schedule *service.LoanSchedule) ScheduleResponse {
	installments := make([]InstallmentResponse, len(schedule.Installments))
	for i, inst := range schedule.Installments {
		resp := InstallmentResponse{
			InstallmentNumber: inst.Number,
			DueDate:           formatDate(inst.DueDate),
			Amount:            money(inst.Amount),
			Status:            string(inst.Status),
			PaidAmount:        money(inst.PaidAmount),
			PaidDate:          formatOptionalDate(inst.PaidDate),
			LateFee:           money(inst.LateFee),
			PaymentID:         inst.PaymentID,
			TransactionID:     inst.TransactionID,
			Remarks:           inst.Remarks,
		}
		if inst.PaymentMethod != nil {
			resp.PaymentMethod = inst.PaymentMethod.String()
		}
		installments[i] = resp
	}

	return ScheduleResponse{
		LoanID:          schedule.Loan.LoanID,
		Status:          string(schedule.Loan.Status),
		NextPaymentDate: formatOptionalDate(schedule.Loan.NextPaymentDate),
		AsOf:            schedule.AsOf.UTC().Format(time.RFC3339),
		Installments:    installments,
	}
}

type QuoteResponse struct {
	EMIAmount     string   `json:"emi_amount"`
	TotalAmount   string   `json:"total_amount"`
	TotalInterest string   `json:"total_interest"`
	DueDates      []string `json:"due_dates"`
}

func NewQuoteResponse(plan domain.Amortization) QuoteResponse {
	dates := make([]string, len(plan.DueDates))
	for i, d := range plan.DueDates {
		dates[i] = formatDate(d)
	}
	return QuoteResponse{
		EMIAmount:     money(plan.EMIAmount),
		TotalAmount:   money(plan.TotalAmount),
		TotalInterest: money(plan.TotalInterest),
		DueDates:      dates,
	}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(domain.CurrencyPlaces)
}
