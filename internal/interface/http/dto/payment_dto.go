package dto

import (
	"time"

	"github.com/gigmile/loan-ledger/internal/application/service"
	"github.com/gigmile/loan-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

type PaymentRequest struct {
	InstallmentNumber   int              `json:"installment_number" validate:"required"`
	Amount              *decimal.Decimal `json:"amount" validate:"required"`
	PenaltyAmount       *decimal.Decimal `json:"penalty_amount"`
	OverridePenalty     bool             `json:"override_penalty"`
	PaymentMethod       string           `json:"payment_method" validate:"required,oneof=cash bank_transfer cheque upi other"`
	PaymentMethodDetail string           `json:"payment_method_detail" validate:"required_if=PaymentMethod other,max=100"`
	PaidDate            string           `json:"paid_date" validate:"omitempty,datetime=2006-01-02"`
	DueDate             string           `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	TransactionID       string           `json:"transaction_id" validate:"max=100"`
	Remarks             string           `json:"remarks" validate:"max=255"`
}

func (r *PaymentRequest) Validate() error {
	return validateStruct(r)
}

func (r *PaymentRequest) ToServiceRequest(loanID string) (service.RecordPaymentRequest, error) {
	method, err := domain.NewPaymentMethod(r.PaymentMethod, r.PaymentMethodDetail)
	if err != nil {
		return service.RecordPaymentRequest{}, err
	}
	paidDate, err := ParseDate(r.PaidDate)
	if err != nil {
		return service.RecordPaymentRequest{}, err
	}

	req := service.RecordPaymentRequest{
		LoanID:            loanID,
		InstallmentNumber: r.InstallmentNumber,
		Amount:            *r.Amount,
		PenaltyAmount:     r.PenaltyAmount,
		OverridePenalty:   r.OverridePenalty,
		Method:            method,
		PaidDate:          paidDate,
		TransactionID:     r.TransactionID,
		Remarks:           r.Remarks,
	}
	if r.DueDate != "" {
		dueDate, err := ParseDate(r.DueDate)
		if err != nil {
			return service.RecordPaymentRequest{}, err
		}
		req.DueDate = &dueDate
	}
	return req, nil
}

// UpdatePaymentRequest carries only the fields being corrected.
type UpdatePaymentRequest struct {
	Amount              *decimal.Decimal `json:"amount"`
	PenaltyAmount       *decimal.Decimal `json:"penalty_amount"`
	OverridePenalty     bool             `json:"override_penalty"`
	PaymentMethod       *string          `json:"payment_method" validate:"omitempty,oneof=cash bank_transfer cheque upi other"`
	PaymentMethodDetail string           `json:"payment_method_detail" validate:"max=100"`
	PaidDate            *string          `json:"paid_date" validate:"omitempty,datetime=2006-01-02"`
	TransactionID       *string          `json:"transaction_id" validate:"omitempty,max=100"`
	Remarks             *string          `json:"remarks" validate:"omitempty,max=255"`
}

func (r *UpdatePaymentRequest) Validate() error {
	return validateStruct(r)
}

func (r *UpdatePaymentRequest) ToServiceFields() (service.UpdatePaymentFields, error) {
	fields := service.UpdatePaymentFields{
		Amount:          r.Amount,
		PenaltyAmount:   r.PenaltyAmount,
		OverridePenalty: r.OverridePenalty,
		TransactionID:   r.TransactionID,
		Remarks:         r.Remarks,
	}
	if r.PaymentMethod != nil {
		method, err := domain.NewPaymentMethod(*r.PaymentMethod, r.PaymentMethodDetail)
		if err != nil {
			return service.UpdatePaymentFields{}, err
		}
		fields.Method = &method
	}
	if r.PaidDate != nil {
		paidDate, err := ParseDate(*r.PaidDate)
		if err != nil {
			return service.UpdatePaymentFields{}, err
		}
		fields.PaidDate = &paidDate
	}
	return fields, nil
}

type PaymentResponse struct {
	PaymentID         string `json:"payment_id"`
	LoanID            string `json:"loan_id"`
	InstallmentNumber int    `json:"installment_number"`
	InstallmentAmount string `json:"installment_amount"`
	PenaltyAmount     string `json:"penalty_amount"`
	Amount            string `json:"amount"`
	Status            string `json:"status"`
	PaidDate          string `json:"paid_date"`
	DueDate           string `json:"due_date"`
	PaymentMethod     string `json:"payment_method"`
	TransactionID     string `json:"transaction_id,omitempty"`
	Remarks           string `json:"remarks,omitempty"`
	CreatedAt         string `json:"created_at"`
	UpdatedAt         string `json:"updated_at"`
}

func NewPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		PaymentID:         p.PaymentID,
		LoanID:            p.LoanID,
		InstallmentNumber: p.InstallmentNumber,
		InstallmentAmount: money(p.InstallmentAmount),
		PenaltyAmount:     money(p.PenaltyAmount),
		Amount:            money(p.Amount),
		Status:            string(p.Status),
		PaidDate:          formatDate(p.PaidDate),
		DueDate:           formatDate(p.DueDate),
		PaymentMethod:     p.Method.String(),
		TransactionID:     p.TransactionID,
		Remarks:           p.Remarks,
		CreatedAt:         p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:         p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func NewPaymentListResponse(payments []*domain.Payment) []PaymentResponse {
	out := make([]PaymentResponse, len(payments))
	for i, p := range payments {
		out[i] = NewPaymentResponse(p)
	}
	return out
}

type ErrorResponse struct {
	Error             string `json:"error"`
	Message           string `json:"message,omitempty"`
	LoanID            string `json:"loan_id,omitempty"`
	InstallmentNumber int    `json:"installment_number,omitempty"`
}

// AcceptedResponse is returned when a change committed but its audit entry
// is still queued.
type AcceptedResponse struct {
	Data  interface{}   `json:"data"`
	Error ErrorResponse `json:"error"`
}
