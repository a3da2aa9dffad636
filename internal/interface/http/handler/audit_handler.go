package handler

import (
	"net/http"
	"strconv"

	"github.com/gigmile/loan-ledger/internal/application/service"
	"github.com/gigmile/loan-ledger/internal/domain"
	"github.com/gigmile/loan-ledger/internal/interface/http/dto"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AuditHandler struct {
	auditService *service.AuditService
	logger       *zap.Logger
}

func NewAuditHandler(auditService *service.AuditService, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		logger:       logger,
	}
}

// GetLoanAuditTrail returns a loan's audit entries newest first.
func (h *AuditHandler) GetLoanAuditTrail(w http.ResponseWriter, r *http.Request) {
	loanID := chi.URLParam(r, "loan_id")

	entries, err := h.auditService.GetAuditTrail(r.Context(), loanID, r.URL.Query().Get("entity_type"))
	if err != nil {
		respondFailure(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"loan_id": loanID,
		"count":   len(entries),
		"entries": dto.NewAuditLogResponses(entries),
	})
}

// Search queries the audit log across loans.
func (h *AuditHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.AuditFilter{LoanID: query.Get("loan_id")}

	if et := query.Get("entity_type"); et != "" {
		entityType, err := domain.ParseEntityType(et)
		if err != nil {
			respondFailure(w, h.logger, err)
			return
		}
		filter.EntityType = entityType
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			respondError(w, http.StatusBadRequest, "limit must be an integer", err)
			return
		}
		filter.Limit = limit
	}

	entries, err := h.auditService.Search(r.Context(), filter)
	if err != nil {
		respondFailure(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(entries),
		"entries": dto.NewAuditLogResponses(entries),
	})
}
