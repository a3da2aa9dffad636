package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gigmile/loan-ledger/internal/domain"
	"github.com/gigmile/loan-ledger/internal/interface/http/dto"
	"go.uber.org/zap"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := dto.ErrorResponse{
		Error:   message,
		Message: "",
	}

	if err != nil {
		response.Message = err.Error()
	}

	respondJSON(w, status, response)
}

// statusFor maps a ledger error kind onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrDependency):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrUnaudited):
		return http.StatusAccepted
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(err error) dto.ErrorResponse {
	response := dto.ErrorResponse{Error: "internal error", Message: err.Error()}
	if le, ok := domain.AsLedgerError(err); ok {
		response.Error = le.Kind.Error()
		response.LoanID = le.LoanID
		response.InstallmentNumber = le.InstallmentNumber
	}
	return response
}

// respondResult writes a service result. A committed change whose audit
// entry is still queued is answered with 202 and both the payload and the
// error.
func respondResult(w http.ResponseWriter, logger *zap.Logger, status int, payload interface{}, err error) {
	if err == nil {
		respondJSON(w, status, payload)
		return
	}

	code := statusFor(err)
	if code == http.StatusAccepted {
		logger.Warn("change committed without audit entry", zap.Error(err))
		respondJSON(w, code, dto.AcceptedResponse{Data: payload, Error: errorBody(err)})
		return
	}
	if code >= http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
	}
	respondJSON(w, code, errorBody(err))
}

func respondFailure(w http.ResponseWriter, logger *zap.Logger, err error) {
	respondResult(w, logger, 0, nil, err)
}
