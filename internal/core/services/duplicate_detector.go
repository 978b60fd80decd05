package services

import (
	"context"
	"fmt"
	"time"

	"github.com/openbooks/ledger_ingest_app/internal/apperrors"
	"github.com/openbooks/ledger_ingest_app/internal/core/domain"
	portsrepo "github.com/openbooks/ledger_ingest_app/internal/core/ports/repositories"
	portssvc "github.com/openbooks/ledger_ingest_app/internal/core/ports/services"
)

// duplicateDetector decides whether a candidate is the same financial event
// as an already persisted transaction. Matching is exact-value on the
// (referenceNumber, transactionDate, amount) triple, never fuzzy: a missed
// duplicate from a formatting difference is preferred over silently blocking
// a legitimate transaction. Identity keys are deliberately not match keys;
// source formats that assign a shared value (e.g. a card product name) to a
// key slot would over-match every line in the batch.
type duplicateDetector struct {
	BaseService

	txnRepo  portsrepo.TransactionReader
	lookback time.Duration
	clock    func() time.Time
}

// NewDuplicateDetector creates a DuplicateDetectorSvc. lookback bounds the
// time range searched for matches (query cost vs. correctness trade-off).
func NewDuplicateDetector(txnRepo portsrepo.TransactionReader, lookback time.Duration) portssvc.DuplicateDetectorSvc {
	return newDuplicateDetector(txnRepo, lookback, time.Now)
}

func newDuplicateDetector(txnRepo portsrepo.TransactionReader, lookback time.Duration, clock func() time.Time) *duplicateDetector {
	if lookback <= 0 {
		lookback = 2 * 365 * 24 * time.Hour
	}
	return &duplicateDetector{
		txnRepo:  txnRepo,
		lookback: lookback,
		clock:    clock,
	}
}

var _ portssvc.DuplicateDetectorSvc = (*duplicateDetector)(nil)

// FindMatches implements portssvc.DuplicateDetectorSvc. It reads the backing
// store directly: duplicate checks need read-after-write consistency, which
// the snapshot cache does not guarantee.
func (d *duplicateDetector) FindMatches(ctx context.Context, candidate domain.Transaction) ([]domain.Transaction, error) {
	if candidate.ReferenceNumber == "" {
		return nil, fmt.Errorf("%w: candidate reference number is required for duplicate detection", apperrors.ErrValidation)
	}
	if candidate.TenantID == "" {
		return nil, fmt.Errorf("%w: candidate tenant ID is required", apperrors.ErrValidation)
	}
	if candidate.TransactionDate.IsZero() {
		return nil, fmt.Errorf("%w: candidate transaction date is required", apperrors.ErrValidation)
	}

	date := domain.DateOnly(candidate.TransactionDate)
	since := domain.DateOnly(d.clock().Add(-d.lookback))

	matches, err := d.txnRepo.FindByReferenceDateAmount(ctx, candidate.TenantID, candidate.ReferenceNumber, date, candidate.Amount, since)
	if err != nil {
		return nil, fmt.Errorf("duplicate lookup failed for reference %s: %w", candidate.ReferenceNumber, err)
	}
	return matches, nil
}
