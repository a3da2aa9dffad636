package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gigmile/loan-ledger/internal/domain"
	"go.uber.org/zap"
)

// NotificationService handles borrower-facing side effects of ledger events.
type NotificationService struct {
	loanRepo domain.LoanRepository
	logger   *zap.Logger
}

func NewNotificationService(
	loanRepo domain.LoanRepository,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		loanRepo: loanRepo,
		logger:   logger,
	}
}

// HandlePaymentRecorded sends the payment receipt and, once the last
// installment is in, the closure notice.
func (s *NotificationService) HandlePaymentRecorded(ctx context.Context, event domain.DomainEvent) error {
	paymentEvent, ok := event.(*domain.PaymentEvent)
	if !ok {
		return fmt.Errorf("invalid event type %T", event)
	}
	payload := paymentEvent.Payload

	s.logger.Info("handling payment recorded event",
		zap.String("event_id", event.GetEventID()),
		zap.String("loan_id", payload.LoanID),
		zap.String("payment_id", payload.PaymentID),
	)

	message := fmt.Sprintf("Payment %s of %s received for installment %d of loan %s.",
		payload.PaymentID, payload.Amount, payload.InstallmentNumber, payload.LoanID)
	if payload.NextPaymentDate != nil {
		message += " Next installment due " + payload.NextPaymentDate.Format(time.DateOnly) + "."
	}

	s.logger.Info("SMS notification sent",
		zap.String("customer_id", payload.CustomerID),
		zap.String("message", message),
	)

	if payload.LoanStatus == string(domain.LoanStatusClosed) {
		s.logger.Info("Congratulations SMS sent",
			zap.String("customer_id", payload.CustomerID),
			zap.String("message", "Congratulations! Loan "+payload.LoanID+" is fully repaid."),
		)
	}

	return nil
}

// HandlePaymentReverted tells the borrower which installment is open again.
// The loan is read back so the notice reflects its current due date.
func (s *NotificationService) HandlePaymentReverted(ctx context.Context, event domain.DomainEvent) error {
	paymentEvent, ok := event.(*domain.PaymentEvent)
	if !ok {
		return fmt.Errorf("invalid event type %T", event)
	}
	payload := paymentEvent.Payload

	loan, err := s.loanRepo.FindByLoanID(ctx, payload.LoanID)
	if err != nil {
		return fmt.Errorf("failed to load loan %s: %w", payload.LoanID, err)
	}

	message := fmt.Sprintf("Payment %s for installment %d of loan %s was reversed.",
		payload.PaymentID, payload.InstallmentNumber, loan.LoanID)
	if loan.NextPaymentDate != nil {
		message += " Next installment due " + loan.NextPaymentDate.Format(time.DateOnly) + "."
	}

	s.logger.Info("SMS notification sent",
		zap.String("customer_id", loan.CustomerID),
		zap.String("message", message),
	)
	return nil
}
