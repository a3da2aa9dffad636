package service

import (
	"context"
	"time"

	"github.com/gigmile/loan-ledger/internal/application/idgen"
	"github.com/gigmile/loan-ledger/internal/domain"
	"go.uber.org/zap"
)

type GuarantorService struct {
	uow    domain.UnitOfWork
	ids    *idgen.Generator
	now    func() time.Time
	audit  *auditWriter
	logger *zap.Logger
}

func NewGuarantorService(
	uow domain.UnitOfWork,
	ids *idgen.Generator,
	opts LedgerOptions,
	outbox domain.AuditOutbox,
	logger *zap.Logger,
) *GuarantorService {
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	return &GuarantorService{
		uow:    uow,
		ids:    ids,
		now:    now,
		audit:  &auditWriter{audit: uow.Audit(), outbox: outbox, logger: logger},
		logger: logger,
	}
}

type CreateGuarantorRequest struct {
	FullName     string
	Phone        string
	Relationship string
}

func (s *GuarantorService) CreateGuarantor(ctx context.Context, loanID string, req CreateGuarantorRequest) (*domain.Guarantor, error) {
	guarantor, err := domain.NewGuarantor("", loanID, req.FullName, req.Phone, req.Relationship)
	if err != nil {
		return nil, err
	}

	err = s.uow.Atomic(ctx, func(tx domain.Store) error {
		if _, err := tx.Loans().FindByLoanID(ctx, loanID); err != nil {
			return err
		}

		guarantorID, err := s.ids.NextGuarantorID(ctx, tx)
		if err != nil {
			return err
		}
		guarantor.GuarantorID = guarantorID
		return tx.Guarantors().Create(ctx, guarantor)
	})
	if err != nil {
		return nil, translate(err, loanID, 0)
	}

	s.logger.Info("guarantor created",
		zap.String("loan_id", loanID),
		zap.String("guarantor_id", guarantor.GuarantorID),
	)

	entry := domain.NewAuditLog(
		domain.AuditActionGuarantorCreated,
		domain.EntityTypeGuarantor,
		guarantor.GuarantorID,
		loanID,
		guarantor.Snapshot(),
		domain.ActorFromContext(ctx),
		s.now(),
	)

	return guarantor, s.audit.write(ctx, entry, 0)
}

func (s *GuarantorService) ListGuarantors(ctx context.Context, loanID string) ([]*domain.Guarantor, error) {
	if _, err := s.uow.Loans().FindByLoanID(ctx, loanID); err != nil {
		return nil, translate(err, loanID, 0)
	}

	guarantors, err := s.uow.Guarantors().FindByLoanID(ctx, loanID)
	if err != nil {
		return nil, translate(err, loanID, 0)
	}
	return guarantors, nil
}
