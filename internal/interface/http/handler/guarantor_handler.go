package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gigmile/loan-ledger/internal/application/service"
	"github.com/gigmile/loan-ledger/internal/interface/http/dto"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type GuarantorHandler struct {
	guarantorService *service.GuarantorService
	logger           *zap.Logger
}

func NewGuarantorHandler(guarantorService *service.GuarantorService, logger *zap.Logger) *GuarantorHandler {
	return &GuarantorHandler{
		guarantorService: guarantorService,
		logger:           logger,
	}
}

func (h *GuarantorHandler) CreateGuarantor(w http.ResponseWriter, r *http.Request) {
	var req dto.GuarantorRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, "validation failed", err)
		return
	}

	guarantor, err := h.guarantorService.CreateGuarantor(r.Context(), chi.URLParam(r, "loan_id"), service.CreateGuarantorRequest{
		FullName:     req.FullName,
		Phone:        req.Phone,
		Relationship: req.Relationship,
	})
	if guarantor == nil {
		respondFailure(w, h.logger, err)
		return
	}
	respondResult(w, h.logger, http.StatusCreated, dto.NewGuarantorResponse(guarantor), err)
}

func (h *GuarantorHandler) ListGuarantors(w http.ResponseWriter, r *http.Request) {
	loanID := chi.URLParam(r, "loan_id")

	guarantors, err := h.guarantorService.ListGuarantors(r.Context(), loanID)
	if err != nil {
		respondFailure(w, h.logger, err)
		return
	}

	response := make([]dto.GuarantorResponse, len(guarantors))
	for i, g := range guarantors {
		response[i] = dto.NewGuarantorResponse(g)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"loan_id":    loanID,
		"count":      len(guarantors),
		"guarantors": response,
	})
}
