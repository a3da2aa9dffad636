package persistence

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gigmile/loan-ledger/internal/domain"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// AllModels lists every table for AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&LoanModel{},
		&PaymentModel{},
		&RetiredPaymentIDModel{},
		&GuarantorModel{},
		&AuditLogModel{},
		&SequenceModel{},
	}
}

// LoanModel represents the database schema for loans
type LoanModel struct {
	ID                  uint            `gorm:"primaryKey;autoIncrement"`
	LoanID              string          `gorm:"type:varchar(20);uniqueIndex;not null"`
	CustomerID          string          `gorm:"type:varchar(50);not null;index"`
	VehicleID           string          `gorm:"type:varchar(50);not null"`
	Principal           decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	InterestRate        decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	TenureMonths        int             `gorm:"not null"`
	StartDate           time.Time       `gorm:"not null"`
	EndDate             time.Time       `gorm:"not null"`
	EMIAmount           decimal.Decimal `gorm:"column:emi_amount;type:decimal(15,2);not null"`
	TotalAmount         decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	TotalInterest       decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	ProcessingFee       decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	DisbursementDate    time.Time       `gorm:"not null"`
	Status              string          `gorm:"type:varchar(20);not null;index"`
	NextPaymentDate     *time.Time      `gorm:"index"`
	PaymentIDs          datatypes.JSON  `gorm:"column:payment_ids"`
	CadenceKind         string          `gorm:"type:varchar(20);not null"`
	CadenceIntervalDays int             `gorm:"not null;default:0"`
	Version             int64           `gorm:"not null;default:1"`
	CreatedAt           time.Time       `gorm:"autoCreateTime"`
	UpdatedAt           time.Time       `gorm:"autoUpdateTime"`
}

func (LoanModel) TableName() string {
	return "loans"
}

// ToDomain converts database model to domain entity
func (m *LoanModel) ToDomain() (*domain.Loan, error) {
	paymentIDs := []string{}
	if len(m.PaymentIDs) > 0 {
		if err := json.Unmarshal(m.PaymentIDs, &paymentIDs); err != nil {
			return nil, fmt.Errorf("failed to decode payment ids of loan %s: %w", m.LoanID, err)
		}
	}

	return &domain.Loan{
		ID:               m.ID,
		LoanID:           m.LoanID,
		CustomerID:       m.CustomerID,
		VehicleID:        m.VehicleID,
		Principal:        m.Principal,
		InterestRate:     m.InterestRate,
		TenureMonths:     m.TenureMonths,
		StartDate:        m.StartDate,
		EndDate:          m.EndDate,
		EMIAmount:        m.EMIAmount,
		TotalAmount:      m.TotalAmount,
		TotalInterest:    m.TotalInterest,
		ProcessingFee:    m.ProcessingFee,
		DisbursementDate: m.DisbursementDate,
		Status:           domain.LoanStatus(m.Status),
		NextPaymentDate:  m.NextPaymentDate,
		PaymentIDs:       paymentIDs,
		Cadence: domain.Cadence{
			Kind:         domain.CadenceKind(m.CadenceKind),
			IntervalDays: m.CadenceIntervalDays,
		},
		Version:   m.Version,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

// LoanModelFromDomain converts domain entity to database model
func LoanModelFromDomain(loan *domain.Loan) (*LoanModel, error) {
	ids := loan.PaymentIDs
	if ids == nil {
		ids = []string{}
	}
	paymentIDs, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payment ids of loan %s: %w", loan.LoanID, err)
	}

	return &LoanModel{
		ID:                  loan.ID,
		LoanID:              loan.LoanID,
		CustomerID:          loan.CustomerID,
		VehicleID:           loan.VehicleID,
		Principal:           loan.Principal,
		InterestRate:        loan.InterestRate,
		TenureMonths:        loan.TenureMonths,
		StartDate:           loan.StartDate,
		EndDate:             loan.EndDate,
		EMIAmount:           loan.EMIAmount,
		TotalAmount:         loan.TotalAmount,
		TotalInterest:       loan.TotalInterest,
		ProcessingFee:       loan.ProcessingFee,
		DisbursementDate:    loan.DisbursementDate,
		Status:              string(loan.Status),
		NextPaymentDate:     loan.NextPaymentDate,
		PaymentIDs:          datatypes.JSON(paymentIDs),
		CadenceKind:         string(loan.Cadence.Kind),
		CadenceIntervalDays: loan.Cadence.IntervalDays,
		Version:             loan.Version,
		CreatedAt:           loan.CreatedAt,
		UpdatedAt:           loan.UpdatedAt,
	}, nil
}

// PaymentModel represents the database schema for payments. The composite
// unique index allows one payment per installment; reverting deletes the row
// and frees the slot.
type PaymentModel struct {
	ID                uint            `gorm:"primaryKey;autoIncrement"`
	PaymentID         string          `gorm:"type:varchar(20);uniqueIndex:idx_payments_payment_id;not null"`
	LoanID            string          `gorm:"type:varchar(20);uniqueIndex:idx_payments_loan_installment,priority:1;not null"`
	InstallmentNumber int             `gorm:"uniqueIndex:idx_payments_loan_installment,priority:2;not null"`
	InstallmentAmount decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	PenaltyAmount     decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Amount            decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Status            string          `gorm:"type:varchar(20);not null"`
	PaidDate          time.Time       `gorm:"not null;index"`
	DueDate           time.Time       `gorm:"not null"`
	Method            string          `gorm:"type:varchar(20);not null"`
	MethodDetail      string          `gorm:"type:varchar(100)"`
	TransactionID     string          `gorm:"type:varchar(100)"`
	Remarks           string          `gorm:"type:varchar(255)"`
	CreatedAt         time.Time       `gorm:"autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime"`
}

func (PaymentModel) TableName() string {
	return "payments"
}

func (m *PaymentModel) ToDomain() *domain.Payment {
	return &domain.Payment{
		ID:                m.ID,
		PaymentID:         m.PaymentID,
		LoanID:            m.LoanID,
		InstallmentNumber: m.InstallmentNumber,
		InstallmentAmount: m.InstallmentAmount,
		PenaltyAmount:     m.PenaltyAmount,
		Amount:            m.Amount,
		Status:            domain.PaymentStatus(m.Status),
		PaidDate:          m.PaidDate,
		DueDate:           m.DueDate,
		Method: domain.PaymentMethod{
			Kind:   domain.PaymentMethodKind(m.Method),
			Detail: m.MethodDetail,
		},
		TransactionID: m.TransactionID,
		Remarks:       m.Remarks,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func PaymentModelFromDomain(payment *domain.Payment) *PaymentModel {
	return &PaymentModel{
		ID:                payment.ID,
		PaymentID:         payment.PaymentID,
		LoanID:            payment.LoanID,
		InstallmentNumber: payment.InstallmentNumber,
		InstallmentAmount: payment.InstallmentAmount,
		PenaltyAmount:     payment.PenaltyAmount,
		Amount:            payment.Amount,
		Status:            string(payment.Status),
		PaidDate:          payment.PaidDate,
		DueDate:           payment.DueDate,
		Method:            string(payment.Method.Kind),
		MethodDetail:      payment.Method.Detail,
		TransactionID:     payment.TransactionID,
		Remarks:           payment.Remarks,
		CreatedAt:         payment.CreatedAt,
		UpdatedAt:         payment.UpdatedAt,
	}
}

// RetiredPaymentIDModel records a reverted payment's identifier. It is
// written in the revert transaction so the identifier stays reserved even if
// the audit entry naming it has not been persisted yet.
type RetiredPaymentIDModel struct {
	PaymentID string    `gorm:"type:varchar(20);primaryKey"`
	LoanID    string    `gorm:"type:varchar(20);not null;index"`
	RetiredAt time.Time `gorm:"not null"`
}

func (RetiredPaymentIDModel) TableName() string {
	return "retired_payment_ids"
}

type GuarantorModel struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	GuarantorID  string    `gorm:"type:varchar(20);uniqueIndex;not null"`
	LoanID       string    `gorm:"type:varchar(20);not null;index"`
	FullName     string    `gorm:"type:varchar(150);not null"`
	Phone        string    `gorm:"type:varchar(30);not null"`
	Relationship string    `gorm:"type:varchar(50)"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (GuarantorModel) TableName() string {
	return "guarantors"
}

func (m *GuarantorModel) ToDomain() *domain.Guarantor {
	return &domain.Guarantor{
		ID:           m.ID,
		GuarantorID:  m.GuarantorID,
		LoanID:       m.LoanID,
		FullName:     m.FullName,
		Phone:        m.Phone,
		Relationship: m.Relationship,
		CreatedAt:    m.CreatedAt,
	}
}

func GuarantorModelFromDomain(g *domain.Guarantor) *GuarantorModel {
	return &GuarantorModel{
		ID:           g.ID,
		GuarantorID:  g.GuarantorID,
		LoanID:       g.LoanID,
		FullName:     g.FullName,
		Phone:        g.Phone,
		Relationship: g.Relationship,
		CreatedAt:    g.CreatedAt,
	}
}

// AuditLogModel has no UpdatedAt: rows are never modified.
type AuditLogModel struct {
	ID          uint           `gorm:"primaryKey;autoIncrement"`
	Action      string         `gorm:"type:varchar(40);not null"`
	EntityType  string         `gorm:"type:varchar(20);not null;index:idx_audit_entity,priority:1"`
	EntityID    string         `gorm:"type:varchar(20);not null;index:idx_audit_entity,priority:2"`
	LoanID      string         `gorm:"type:varchar(20);index"`
	Details     datatypes.JSON `gorm:"not null"`
	PerformedBy string         `gorm:"type:varchar(100);not null"`
	PerformedAt time.Time      `gorm:"not null;index"`
}

func (AuditLogModel) TableName() string {
	return "audit_logs"
}

func (m *AuditLogModel) ToDomain() (*domain.AuditLog, error) {
	details := map[string]any{}
	if len(m.Details) > 0 {
		if err := json.Unmarshal(m.Details, &details); err != nil {
			return nil, fmt.Errorf("failed to decode audit details %d: %w", m.ID, err)
		}
	}
	return &domain.AuditLog{
		ID:          m.ID,
		Action:      domain.AuditAction(m.Action),
		EntityType:  domain.EntityType(m.EntityType),
		EntityID:    m.EntityID,
		LoanID:      m.LoanID,
		Details:     details,
		PerformedBy: m.PerformedBy,
		PerformedAt: m.PerformedAt,
	}, nil
}

func AuditLogModelFromDomain(entry *domain.AuditLog) (*AuditLogModel, error) {
	details := entry.Details
	if details == nil {
		details = map[string]any{}
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("failed to encode audit details: %w", err)
	}
	return &AuditLogModel{
		ID:          entry.ID,
		Action:      string(entry.Action),
		EntityType:  string(entry.EntityType),
		EntityID:    entry.EntityID,
		LoanID:      entry.LoanID,
		Details:     datatypes.JSON(raw),
		PerformedBy: entry.PerformedBy,
		PerformedAt: entry.PerformedAt,
	}, nil
}

// SequenceModel is one counter row per sequential identifier type.
type SequenceModel struct {
	Name  string `gorm:"primaryKey;type:varchar(40)"`
	Value int64  `gorm:"not null;default:0"`
}

func (SequenceModel) TableName() string {
	return "sequences"
}
