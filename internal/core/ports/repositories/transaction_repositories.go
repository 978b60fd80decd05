package repositories

import (
	"context"
	"time"

	"github.com/openbooks/ledger_ingest_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionReader defines read operations for ledger transaction data.
type TransactionReader interface {
	// LoadAllTransactions performs the single unfiltered bulk read the
	// snapshot cache refreshes from. It spans every tenant by design; tenant
	// isolation happens at the read sites, not here.
	LoadAllTransactions(ctx context.Context) ([]domain.Transaction, error)

	// FindByReferenceDateAmount retrieves transactions whose reference
	// number, calendar transaction date and signed amount all match exactly,
	// restricted to transactions dated on or after since. Results are ordered
	// by id descending (most recently persisted match first). This is the
	// read-after-write-consistent query the duplicate detector relies on; it
	// always bypasses the snapshot cache.
	FindByReferenceDateAmount(ctx context.Context, tenantID, referenceNumber string, date time.Time, amount decimal.Decimal, since time.Time) ([]domain.Transaction, error)
}

// TransactionWriter defines write operations for ledger transaction data.
type TransactionWriter interface {
	// SaveTransaction persists a candidate and returns the stored row with
	// its assigned id.
	SaveTransaction(ctx context.Context, txn domain.Transaction) (*domain.Transaction, error)
}

// TransactionRepositoryFacade combines all transaction repository interfaces.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
