package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gigmile/loan-ledger/internal/domain"
	"go.uber.org/zap"
)

const maxAuditQueryLimit = 500

// auditWriter appends audit entries once their mutation has committed.
// Entries that cannot be appended are parked in the outbox and the caller
// receives an unaudited error instead of success.
type auditWriter struct {
	audit  domain.AuditRepository
	outbox domain.AuditOutbox // Optional - can be nil
	logger *zap.Logger
}

func (w *auditWriter) write(ctx context.Context, entry *domain.AuditLog, installment int) error {
	err := w.audit.Append(ctx, entry)
	if err == nil {
		return nil
	}

	w.logger.Error("audit append failed after commit",
		zap.Error(err),
		zap.String("action", string(entry.Action)),
		zap.String("loan_id", entry.LoanID),
		zap.String("entity_id", entry.EntityID),
	)

	if w.outbox != nil {
		if pushErr := w.outbox.Push(context.WithoutCancel(ctx), entry); pushErr != nil {
			w.logger.Error("failed to park audit entry in outbox",
				zap.Error(pushErr),
				zap.String("action", string(entry.Action)),
				zap.String("entity_id", entry.EntityID),
			)
			err = errors.Join(err, pushErr)
		}
	}

	return domain.NewUnauditedError(entry.LoanID, installment, err)
}

type AuditService struct {
	store  domain.Store
	logger *zap.Logger
}

func NewAuditService(store domain.Store, logger *zap.Logger) *AuditService {
	return &AuditService{
		store:  store,
		logger: logger,
	}
}

// GetAuditTrail returns the loan's audit entries newest first, optionally
// narrowed to one entity type.
func (s *AuditService) GetAuditTrail(ctx context.Context, loanID, entityType string) ([]*domain.AuditLog, error) {
	filter := domain.AuditFilter{LoanID: loanID}
	if entityType != "" {
		et, err := domain.ParseEntityType(entityType)
		if err != nil {
			return nil, translate(err, loanID, 0)
		}
		filter.EntityType = et
	}

	if _, err := s.store.Loans().FindByLoanID(ctx, loanID); err != nil {
		return nil, translate(err, loanID, 0)
	}

	entries, err := s.store.Audit().Query(ctx, filter)
	if err != nil {
		s.logger.Error("failed to query audit trail", zap.Error(err), zap.String("loan_id", loanID))
		return nil, translate(err, loanID, 0)
	}
	return entries, nil
}

// Search runs an audit query across loans.
func (s *AuditService) Search(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	if filter.Limit < 0 {
		return nil, domain.NewValidationError(filter.LoanID, 0, "limit must not be negative")
	}
	if filter.Limit == 0 || filter.Limit > maxAuditQueryLimit {
		filter.Limit = maxAuditQueryLimit
	}

	entries, err := s.store.Audit().Query(ctx, filter)
	if err != nil {
		return nil, translate(err, filter.LoanID, 0)
	}
	return entries, nil
}

// AuditRelay moves parked audit entries from the outbox into the audit store.
type AuditRelay struct {
	audit  domain.AuditRepository
	outbox domain.AuditOutbox
	logger *zap.Logger
}

func NewAuditRelay(audit domain.AuditRepository, outbox domain.AuditOutbox, logger *zap.Logger) *AuditRelay {
	return &AuditRelay{
		audit:  audit,
		outbox: outbox,
		logger: logger,
	}
}

// Drain appends up to batch parked entries and returns how many landed. It
// stops at the first append failure, leaving that entry queued.
func (r *AuditRelay) Drain(ctx context.Context, batch int) (int, error) {
	drained := 0
	for drained < batch {
		item, err := r.outbox.Claim(ctx)
		if err != nil {
			return drained, fmt.Errorf("failed to claim outbox entry: %w", err)
		}
		if item == nil {
			break
		}

		if err := r.audit.Append(ctx, item.Entry); err != nil {
			if requeueErr := r.outbox.Requeue(ctx, item); requeueErr != nil {
				r.logger.Error("failed to requeue audit entry",
					zap.Error(requeueErr),
					zap.String("entity_id", item.Entry.EntityID),
				)
			}
			return drained, fmt.Errorf("failed to append parked audit entry: %w", err)
		}

		if err := r.outbox.Ack(ctx, item); err != nil {
			r.logger.Warn("failed to ack relayed audit entry",
				zap.Error(err),
				zap.String("entity_id", item.Entry.EntityID),
			)
		}
		drained++
	}

	if drained > 0 {
		r.logger.Info("relayed parked audit entries", zap.Int("count", drained))
	}
	return drained, nil
}
