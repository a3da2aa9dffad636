package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gigmile/loan-ledger/internal/application/service"
	"github.com/gigmile/loan-ledger/internal/interface/http/dto"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	ledgerService *service.LedgerService
	logger        *zap.Logger
}

func NewPaymentHandler(ledgerService *service.LedgerService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		ledgerService: ledgerService,
		logger:        logger,
	}
}

// CreatePayment records the payment of one installment.
func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	loanID := chi.URLParam(r, "loan_id")
	var req dto.PaymentRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	// Validate request
	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, "validation failed", err)
		return
	}

	params, err := req.ToServiceRequest(loanID)
	if err != nil {
		respondFailure(w, h.logger, err)
		return
	}

	payment, err := h.ledgerService.RecordPayment(r.Context(), params)
	if payment == nil {
		respondFailure(w, h.logger, err)
		return
	}
	respondResult(w, h.logger, http.StatusCreated, dto.NewPaymentResponse(payment), err)
}

// ListPayments returns the loan's payments in the order they were paid.
func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	loanID := chi.URLParam(r, "loan_id")

	payments, err := h.ledgerService.ListPayments(r.Context(), loanID)
	if err != nil {
		respondFailure(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"loan_id":  loanID,
		"count":    len(payments),
		"payments": dto.NewPaymentListResponse(payments),
	})
}

// UpdatePayment corrects the payment recorded against an installment.
func (h *PaymentHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	loanID := chi.URLParam(r, "loan_id")
	installment, err := strconv.Atoi(chi.URLParam(r, "installment_number"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "installment_number must be an integer", err)
		return
	}

	var req dto.UpdatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, "validation failed", err)
		return
	}

	fields, err := req.ToServiceFields()
	if err != nil {
		respondFailure(w, h.logger, err)
		return
	}

	payment, err := h.ledgerService.UpdatePayment(r.Context(), loanID, installment, fields)
	if payment == nil {
		respondFailure(w, h.logger, err)
		return
	}
	respondResult(w, h.logger, http.StatusOK, dto.NewPaymentResponse(payment), err)
}

// RevertPayment removes a payment and reopens its installment.
func (h *PaymentHandler) RevertPayment(w http.ResponseWriter, r *http.Request) {
	payment, err := h.ledgerService.RevertPayment(r.Context(), chi.URLParam(r, "loan_id"), chi.URLParam(r, "payment_id"))
	if payment == nil {
		respondFailure(w, h.logger, err)
		return
	}
	respondResult(w, h.logger, http.StatusOK, dto.NewPaymentResponse(payment), err)
}
