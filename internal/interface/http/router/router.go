package router

import (
	"time"

	"github.com/gigmile/loan-ledger/internal/interface/http/handler"
	"github.com/gigmile/loan-ledger/internal/interface/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func NewRouter(handlers *handler.Handlers, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(chimiddleware.Compress(5))
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(middleware.Actor)

	// Routes
	r.Get("/health", handlers.Loan.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/amortization/quote", handlers.Loan.Quote)
		r.Get("/audit", handlers.Audit.Search)

		r.Post("/loans", handlers.Loan.CreateLoan)
		r.Route("/loans/{loan_id}", func(r chi.Router) {
			r.Get("/", handlers.Loan.GetLoan)
			r.Get("/schedule", handlers.Loan.GetSchedule)

			r.Post("/payments", handlers.Payment.CreatePayment)
			r.Get("/payments", handlers.Payment.ListPayments)
			r.Delete("/payments/{payment_id}", handlers.Payment.RevertPayment)
			r.Patch("/installments/{installment_number}/payment", handlers.Payment.UpdatePayment)

			r.Get("/audit", handlers.Audit.GetLoanAuditTrail)

			r.Post("/guarantors", handlers.Guarantor.CreateGuarantor)
			r.Get("/guarantors", handlers.Guarantor.ListGuarantors)
		})
	})

	return r
}
