package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"receivables-desk/internal/domain"
	"receivables-desk/internal/receivable"
	"receivables-desk/internal/repository"
	"receivables-desk/internal/validation"
	"receivables-desk/pkg/metrics"

	"github.com/google/uuid"
)

type ReceivableRepository interface {
	Create(ctx context.Context, r *domain.Receivable) error
	List(ctx context.Context, f repository.ReceivablesFilter) ([]domain.Receivable, error)
	HasMoreThan(ctx context.Context, limit int64, f repository.ReceivablesFilter) (bool, error)
}

type ReceivableService struct {
	repo    ReceivableRepository
	cache   Cache
	store   BlobStore
	ws      Notifier
	metrics Metrics

	exportPrefix string
}

func NewReceivableService(repo ReceivableRepository, cache Cache, store BlobStore, ws Notifier, m Metrics, exportPrefix string) *ReceivableService {
	if exportPrefix == "" {
		exportPrefix = "exports:"
	}
	return &ReceivableService{
		repo:         repo,
		cache:        cache,
		store:        store,
		ws:           ws,
		metrics:      m,
		exportPrefix: exportPrefix,
	}
}

// Submit confirms the assembled form and stores the result. Validation
// failures are returned as validation.Errors and nothing is stored.
func (s *ReceivableService) Submit(ctx context.Context, subscriber string, a *receivable.Assembler) (domain.Receivable, error) {
	var stored domain.Receivable

	err := a.Confirm(ctx, func(ctx context.Context, sub domain.ReceivableSubmission) error {
		rcv := domain.Receivable{
			ID:                   uuid.NewString(),
			ReceivableSubmission: sub,
		}
		if err := s.repo.Create(ctx, &rcv); err != nil {
			return err
		}
		stored = rcv
		return nil
	})

	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		s.record(metrics.ResultInvalid)
		return domain.Receivable{}, err
	case err != nil:
		s.record(metrics.ResultFailed)
		log.Printf("[RECEIVABLE] store failed: %v", err)
		return domain.Receivable{}, fmt.Errorf("store receivable: %w", err)
	}

	s.record(metrics.ResultAccepted)
	log.Printf("[RECEIVABLE] stored %s debtor=%q due_diligence=%t", stored.ID, stored.DebtorName, stored.DueDiligence != nil)

	if s.ws != nil {
		_ = s.ws.NotifyReceivableSubmitted(ctx, subscriber, stored.ID, stored.DebtorName)
	}
	return stored, nil
}

func (s *ReceivableService) record(result string) {
	if s.metrics != nil {
		s.metrics.RecordReceivable(result)
	}
}
