package dto

import (
	"time"

	"github.com/gigmile/loan-ledger/internal/domain"
)

type AuditLogResponse struct {
	ID          uint           `json:"id"`
	Action      string         `json:"action"`
	EntityType  string         `json:"entity_type"`
	EntityID    string         `json:"entity_id"`
	LoanID      string         `json:"loan_id"`
	Details     map[string]any `json:"details"`
	PerformedBy string         `json:"performed_by"`
	PerformedAt string         `json:"performed_at"`
}

func NewAuditLogResponses(entries []*domain.AuditLog) []AuditLogResponse {
	out := make([]AuditLogResponse, len(entries))
	for i, e := range entries {
		out[i] = AuditLogResponse{
			ID:          e.ID,
			Action:      string(e.Action),
			EntityType:  string(e.EntityType),
			EntityID:    e.EntityID,
			LoanID:      e.LoanID,
			Details:     e.Details,
			PerformedBy: e.PerformedBy,
			PerformedAt: e.PerformedAt.UTC().Format(time.RFC3339),
		}
	}
	return out
}

type GuarantorRequest struct {
	FullName     string `json:"full_name" validate:"required,max=150"`
	Phone        string `json:"phone" validate:"required,max=30"`
	Relationship string `json:"relationship" validate:"max=50"`
}

func (r *GuarantorRequest) Validate() error {
	return validateStruct(r)
}

type GuarantorResponse struct {
	GuarantorID  string `json:"guarantor_id"`
	LoanID       string `json:"loan_id"`
	FullName     string `json:"full_name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship,omitempty"`
}

func NewGuarantorResponse(g *domain.Guarantor) GuarantorResponse {
	return GuarantorResponse{
		GuarantorID:  g.GuarantorID,
		LoanID:       g.LoanID,
		FullName:     g.FullName,
		Phone:        g.Phone,
		Relationship: g.Relationship,
	}
}
