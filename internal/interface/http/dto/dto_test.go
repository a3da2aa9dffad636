package dto

import (
	"encoding/json"
	"testing"

	"github.com/gigmile/loan-ledger/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodePayment(t *testing.T, raw string) *PaymentRequest {
	t.Helper()
	var req PaymentRequest
	require.NoError(t, json.Unmarshal([]byte(raw), &req))
	return &req
}

func TestPaymentRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{"valid", `{"installment_number":1,"amount":"8884.88","payment_method":"cash"}`, ""},
		{"numeric amount", `{"installment_number":1,"amount":8884.88,"payment_method":"bank_transfer"}`, ""},
		{"missing amount", `{"installment_number":1,"payment_method":"cash"}`, "amount is required"},
		{"missing installment", `{"amount":"10","payment_method":"cash"}`, "installment_number is required"},
		{"unknown method", `{"installment_number":1,"amount":"10","payment_method":"card"}`, "payment_method must be one of"},
		{"other without detail", `{"installment_number":1,"amount":"10","payment_method":"other"}`, "payment_method_detail is required"},
		{"other with detail", `{"installment_number":1,"amount":"10","payment_method":"other","payment_method_detail":"mobile wallet"}`, ""},
		{"bad paid date", `{"installment_number":1,"amount":"10","payment_method":"cash","paid_date":"2024/01/01"}`, "paid_date must be a date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := decodePayment(t, tt.raw).Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPaymentRequest_ToServiceRequest(t *testing.T) {
	req := decodePayment(t, `{
		"installment_number": 2,
		"amount": "8884.88",
		"penalty_amount": "150",
		"override_penalty": true,
		"payment_method": "other",
		"payment_method_detail": " mobile wallet ",
		"paid_date": "2024-02-02",
		"due_date": "2024-01-31"
	}`)
	require.NoError(t, req.Validate())

	params, err := req.ToServiceRequest("LN00001")
	require.NoError(t, err)

	assert.Equal(t, "LN00001", params.LoanID)
	assert.Equal(t, 2, params.InstallmentNumber)
	assert.Equal(t, "8884.88", params.Amount.StringFixed(2))
	require.NotNil(t, params.PenaltyAmount)
	assert.Equal(t, "150", params.PenaltyAmount.String())
	assert.True(t, params.OverridePenalty)
	assert.Equal(t, domain.PaymentMethod{Kind: domain.PaymentMethodOther, Detail: "mobile wallet"}, params.Method)
	assert.Equal(t, "2024-02-02", params.PaidDate.Format(DateLayout))
	require.NotNil(t, params.DueDate)
	assert.Equal(t, "2024-01-31", params.DueDate.Format(DateLayout))
}

func TestUpdatePaymentRequest_ToServiceFields(t *testing.T) {
	var req UpdatePaymentRequest
	require.NoError(t, json.Unmarshal([]byte(`{"payment_method":"upi","paid_date":"2024-01-05"}`), &req))
	require.NoError(t, req.Validate())

	fields, err := req.ToServiceFields()
	require.NoError(t, err)
	require.NotNil(t, fields.Method)
	assert.Equal(t, domain.PaymentMethodUPI, fields.Method.Kind)
	require.NotNil(t, fields.PaidDate)
	assert.Equal(t, 5, fields.PaidDate.Day())
	assert.Nil(t, fields.Amount)
	assert.Nil(t, fields.Remarks)

	require.NoError(t, json.Unmarshal([]byte(`{"payment_method":"other"}`), &req))
	_, err = req.ToServiceFields()
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = ParseDate("2024-13-01")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
