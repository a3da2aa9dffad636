package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gigmile/loan-ledger/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStatusFor(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", domain.NewValidationError("LN00001", 1, "bad amount"), http.StatusBadRequest},
		{"not found", domain.NewNotFoundError("LN00001", 0, "", domain.ErrLoanNotFound), http.StatusNotFound},
		{"conflict", domain.NewConflictError("LN00001", 1, "", domain.ErrInstallmentTaken), http.StatusConflict},
		{"dependency", domain.NewDependencyError("LN00001", 0, "storage unavailable", cause), http.StatusServiceUnavailable},
		{"unaudited", domain.NewUnauditedError("LN00001", 1, cause), http.StatusAccepted},
		{"untyped", cause, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, statusFor(tt.err))
		})
	}
}

func TestRespondResult_UnauditedCarriesPayload(t *testing.T) {
	rec := httptest.NewRecorder()
	payload := map[string]string{"payment_id": "PY-0042"}

	respondResult(rec, zap.NewNop(), http.StatusCreated, payload, domain.NewUnauditedError("LN00001", 3, errors.New("audit store down")))

	require.Equal(t, http.StatusAccepted, rec.Code)

	var body struct {
		Data  map[string]string `json:"data"`
		Error struct {
			Error             string `json:"error"`
			LoanID            string `json:"loan_id"`
			InstallmentNumber int    `json:"installment_number"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "PY-0042", body.Data["payment_id"])
	assert.Equal(t, domain.ErrUnaudited.Error(), body.Error.Error)
	assert.Equal(t, "LN00001", body.Error.LoanID)
	assert.Equal(t, 3, body.Error.InstallmentNumber)
}

func TestRespondResult_Success(t *testing.T) {
	rec := httptest.NewRecorder()
	respondResult(rec, zap.NewNop(), http.StatusCreated, map[string]string{"loan_id": "LN00001"}, nil)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"loan_id":"LN00001"}`, rec.Body.String())
}
