package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gigmile/loan-ledger/internal/application/service"
	"github.com/gigmile/loan-ledger/internal/interface/http/dto"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type LoanHandler struct {
	loanService *service.LoanService
	logger      *zap.Logger
}

func NewLoanHandler(loanService *service.LoanService, logger *zap.Logger) *LoanHandler {
	return &LoanHandler{
		loanService: loanService,
		logger:      logger,
	}
}

// CreateLoan originates a loan and returns it with its amortization.
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLoanRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, "validation failed", err)
		return
	}

	params, err := req.ToServiceRequest()
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation failed", err)
		return
	}

	loan, err := h.loanService.CreateLoan(r.Context(), params)
	if loan == nil {
		respondFailure(w, h.logger, err)
		return
	}
	respondResult(w, h.logger, http.StatusCreated, dto.NewLoanResponse(loan), err)
}

func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loan, err := h.loanService.GetLoan(r.Context(), chi.URLParam(r, "loan_id"))
	if err != nil {
		respondFailure(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewLoanResponse(loan))
}

// GetSchedule returns every installment with its derived status.
func (h *LoanHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.loanService.GetSchedule(r.Context(), chi.URLParam(r, "loan_id"))
	if err != nil {
		respondFailure(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewScheduleResponse(schedule))
}

// Quote previews an amortization without creating a loan.
func (h *LoanHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req dto.QuoteRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, "validation failed", err)
		return
	}

	disbursement, err := dto.ParseDate(req.DisbursementDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation failed", err)
		return
	}

	plan, err := h.loanService.Quote(*req.Principal, *req.InterestRate, req.TenureMonths, disbursement)
	if err != nil {
		respondFailure(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewQuoteResponse(plan))
}

// HealthCheck handles health check endpoint
func (h *LoanHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
