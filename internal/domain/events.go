package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventTypePaymentRecorded = "payment.recorded"
	EventTypePaymentReverted = "payment.reverted"
)

// DomainEvent represents a domain event
type DomainEvent interface {
	GetEventID() string
	GetEventType() string
	GetAggregateID() string
	GetOccurredAt() time.Time
	GetPayload() interface{}
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	AggregateID string    `json:"aggregate_id"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func (e BaseEvent) GetEventID() string       { return e.EventID }
func (e BaseEvent) GetEventType() string     { return e.EventType }
func (e BaseEvent) GetAggregateID() string   { return e.AggregateID }
func (e BaseEvent) GetOccurredAt() time.Time { return e.OccurredAt }

// PaymentEvent is emitted after a payment is recorded or reverted.
type PaymentEvent struct {
	BaseEvent
	Payload PaymentEventPayload `json:"payload"`
}

func (e PaymentEvent) GetPayload() interface{} { return e.Payload }

// Money fields are decimal strings.
type PaymentEventPayload struct {
	LoanID            string     `json:"loan_id"`
	CustomerID        string     `json:"customer_id"`
	PaymentID         string     `json:"payment_id"`
	InstallmentNumber int        `json:"installment_number"`
	Amount            string     `json:"amount"`
	PenaltyAmount     string     `json:"penalty_amount"`
	LoanStatus        string     `json:"loan_status"`
	NextPaymentDate   *time.Time `json:"next_payment_date,omitempty"`
	OccurredAt        time.Time  `json:"occurred_at"`
}

func NewPaymentEvent(eventType string, loan *Loan, payment *Payment, at time.Time) *PaymentEvent {
	return &PaymentEvent{
		BaseEvent: BaseEvent{
			EventID:     uuid.New().String(),
			EventType:   eventType,
			AggregateID: loan.LoanID,
			OccurredAt:  at,
		},
		Payload: PaymentEventPayload{
			LoanID:            loan.LoanID,
			CustomerID:        loan.CustomerID,
			PaymentID:         payment.PaymentID,
			InstallmentNumber: payment.InstallmentNumber,
			Amount:            payment.Amount.StringFixed(CurrencyPlaces),
			PenaltyAmount:     payment.PenaltyAmount.StringFixed(CurrencyPlaces),
			LoanStatus:        string(loan.Status),
			NextPaymentDate:   loan.NextPaymentDate,
			OccurredAt:        at,
		},
	}
}

// EventPublisher interface
type EventPublisher interface {
	Publish(ctx context.Context, event DomainEvent) error
}

// EventSubscriber interface
type EventSubscriber interface {
	Subscribe(ctx context.Context, eventType string, handler EventHandler) error
}

// EventHandler processes events
type EventHandler func(ctx context.Context, event DomainEvent) error
