package service

import (
	"context"
	"testing"
	"time"

	"github.com/gigmile/loan-ledger/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGuarantor(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, nil)
	loan := f.createLoan(t, 12)
	other := f.createLoan(t, 12)

	first, err := f.guarantors.CreateGuarantor(ctx, loan.LoanID, CreateGuarantorRequest{
		FullName:     "  Ada Obi ",
		Phone:        "+2348000000000",
		Relationship: "sibling",
	})
	require.NoError(t, err)
	assert.Equal(t, "GU001", first.GuarantorID)
	assert.Equal(t, "Ada Obi", first.FullName)

	second, err := f.guarantors.CreateGuarantor(ctx, other.LoanID, CreateGuarantorRequest{
		FullName: "Chidi Eze",
		Phone:    "+2348000000001",
	})
	require.NoError(t, err)
	assert.Equal(t, "GU002", second.GuarantorID)

	listed, err := f.guarantors.ListGuarantors(ctx, loan.LoanID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "GU001", listed[0].GuarantorID)
	assert.Equal(t, "sibling", listed[0].Relationship)
}

func TestCreateGuarantor_Errors(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, nil)
	loan := f.createLoan(t, 12)

	_, err := f.guarantors.CreateGuarantor(ctx, loan.LoanID, CreateGuarantorRequest{Phone: "+2348000000000"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.guarantors.CreateGuarantor(ctx, "LN99999", CreateGuarantorRequest{FullName: "Ada Obi", Phone: "+2348000000000"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.guarantors.ListGuarantors(ctx, "LN99999")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// A failed creation rolls its counter increment back.
	created, err := f.guarantors.CreateGuarantor(ctx, loan.LoanID, CreateGuarantorRequest{FullName: "Ada Obi", Phone: "+2348000000000"})
	require.NoError(t, err)
	assert.Equal(t, "GU001", created.GuarantorID)
}

func TestCreateGuarantor_AuditUsesLedgerClock(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, nil)
	loan := f.createLoan(t, 12)
	f.now = time.Date(2024, 2, 14, 8, 0, 0, 0, time.UTC)

	created, err := f.guarantors.CreateGuarantor(ctx, loan.LoanID, CreateGuarantorRequest{FullName: "Ada Obi", Phone: "+2348000000000"})
	require.NoError(t, err)

	entries, err := f.audit.GetAuditTrail(ctx, loan.LoanID, "guarantor")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, created.GuarantorID, entries[0].EntityID)
	assert.True(t, f.now.Equal(entries[0].PerformedAt), "performed at %s", entries[0].PerformedAt)
}
