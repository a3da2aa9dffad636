package domain

import (
	"strings"
	"time"
)

type Guarantor struct {
	ID           uint
	GuarantorID  string
	LoanID       string
	FullName     string
	Phone        string
	Relationship string
	CreatedAt    time.Time
}

func NewGuarantor(guarantorID, loanID, fullName, phone, relationship string) (*Guarantor, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, NewValidationError(loanID, 0, "guarantor name is required")
	}
	if strings.TrimSpace(phone) == "" {
		return nil, NewValidationError(loanID, 0, "guarantor phone is required")
	}
	return &Guarantor{
		GuarantorID:  guarantorID,
		LoanID:       loanID,
		FullName:     fullName,
		Phone:        strings.TrimSpace(phone),
		Relationship: strings.TrimSpace(relationship),
	}, nil
}

func (g *Guarantor) Snapshot() map[string]any {
	return map[string]any{
		"guarantor_id": g.GuarantorID,
		"full_name":    g.FullName,
		"phone":        g.Phone,
		"relationship": g.Relationship,
	}
}
