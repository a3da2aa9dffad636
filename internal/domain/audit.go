package domain

import "time"

type AuditAction string

const (
	AuditActionLoanCreated      AuditAction = "LOAN_CREATED"
	AuditActionPaymentCreated   AuditAction = "PAYMENT_CREATED"
	AuditActionPaymentUpdated   AuditAction = "PAYMENT_UPDATED"
	AuditActionPaymentDeleted   AuditAction = "PAYMENT_DELETED"
	AuditActionPaymentReverted  AuditAction = "PAYMENT_REVERTED"
	AuditActionGuarantorCreated AuditAction = "GUARANTOR_CREATED"
)

type EntityType string

const (
	EntityTypeLoan      EntityType = "loan"
	EntityTypePayment   EntityType = "payment"
	EntityTypeGuarantor EntityType = "guarantor"
)

func ParseEntityType(s string) (EntityType, error) {
	switch EntityType(s) {
	case EntityTypeLoan, EntityTypePayment, EntityTypeGuarantor:
		return EntityType(s), nil
	}
	return "", NewValidationError("", 0, "unknown entity type "+s)
}

// AuditLog is an immutable record of one mutating operation.
type AuditLog struct {
	ID          uint
	Action      AuditAction
	EntityType  EntityType
	EntityID    string
	LoanID      string
	Details     map[string]any
	PerformedBy string
	PerformedAt time.Time
}

func NewAuditLog(action AuditAction, entityType EntityType, entityID, loanID string, details map[string]any, performedBy string, at time.Time) *AuditLog {
	if performedBy == "" {
		performedBy = SystemActor
	}
	return &AuditLog{
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		LoanID:      loanID,
		Details:     details,
		PerformedBy: performedBy,
		PerformedAt: at,
	}
}

// AuditFilter narrows an audit query. Zero values match everything.
type AuditFilter struct {
	LoanID     string
	EntityType EntityType
	Limit      int
}
