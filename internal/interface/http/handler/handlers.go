package handler

import (
	"github.com/gigmile/loan-ledger/internal/application/service"
	"go.uber.org/zap"
)

type Services struct {
	Loans      *service.LoanService
	Ledger     *service.LedgerService
	Guarantors *service.GuarantorService
	Audit      *service.AuditService
}

type Handlers struct {
	Loan      *LoanHandler
	Payment   *PaymentHandler
	Guarantor *GuarantorHandler
	Audit     *AuditHandler
}

func NewHandlers(services Services, logger *zap.Logger) *Handlers {
	return &Handlers{
		Loan:      NewLoanHandler(services.Loans, logger),
		Payment:   NewPaymentHandler(services.Ledger, logger),
		Guarantor: NewGuarantorHandler(services.Guarantors, logger),
		Audit:     NewAuditHandler(services.Audit, logger),
	}
}
