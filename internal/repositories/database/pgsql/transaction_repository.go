package pgsql

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/openbooks/ledger_ingest_app/internal/apperrors"
	"github.com/openbooks/ledger_ingest_app/internal/core/domain"
	portsrepo "github.com/openbooks/ledger_ingest_app/internal/core/ports/repositories"
	"github.com/openbooks/ledger_ingest_app/internal/models"
	"github.com/openbooks/ledger_ingest_app/internal/utils/mapping"
)

// transactionColumns is the shared select list for transaction rows.
const transactionColumns = `
	transaction_id, tenant_id, transaction_date, amount, description,
	debit_account, credit_account, reference_number,
	identity_key1, identity_key2, identity_key3,
	source_artifact_locator, source_format,
	created_at, created_by, last_updated_at, last_updated_by`

// PgxTransactionRepository is the pgx-backed implementation of the
// transaction backing store.
type PgxTransactionRepository struct {
	BaseRepository
}

// newPgxTransactionRepository creates a new repository for transaction data.
func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// NewTransactionRepository creates a transaction repository on pool.
func NewTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryFacade {
	return newPgxTransactionRepository(pool)
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

// LoadAllTransactions performs the unfiltered cross-tenant bulk read the
// snapshot cache refreshes from. At six-figure row counts this is expected
// to take tens of seconds; callers tolerate the latency.
func (r *PgxTransactionRepository) LoadAllTransactions(ctx context.Context) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		ORDER BY transaction_date DESC, transaction_id DESC;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query all transactions", err)
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan transaction row", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating transaction rows", err)
	}

	return mapping.ToDomainTransactionSlice(transactions), nil
}

// FindByReferenceDateAmount runs the indexed duplicate lookup: exact match on
// (reference_number, transaction_date, amount) within the lookback window,
// scoped to the candidate's tenant, most recently persisted first. Relies on
// the index over (reference_number, transaction_date, amount).
func (r *PgxTransactionRepository) FindByReferenceDateAmount(ctx context.Context, tenantID, referenceNumber string, date time.Time, amount decimal.Decimal, since time.Time) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE tenant_id = $1
		  AND reference_number = $2
		  AND transaction_date = $3::date
		  AND amount = $4
		  AND transaction_date >= $5::date
		ORDER BY transaction_id DESC;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, referenceNumber, date, amount, since)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query duplicate candidates for reference "+referenceNumber, err)
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan duplicate candidate row", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating duplicate candidate rows", err)
	}

	return mapping.ToDomainTransactionSlice(transactions), nil
}

// SaveTransaction persists a candidate, assigning its id, and returns the
// stored row.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) (*domain.Transaction, error) {
	if txn.TransactionID == "" {
		txn.TransactionID = uuid.NewString()
	}
	modelTxn := mapping.ToModelTransaction(txn)

	query := `
		INSERT INTO transactions (
			transaction_id, tenant_id, transaction_date, amount, description,
			debit_account, credit_account, reference_number,
			identity_key1, identity_key2, identity_key3,
			source_artifact_locator, source_format,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err := r.Pool.Exec(ctx, query,
		modelTxn.TransactionID,
		modelTxn.TenantID,
		modelTxn.TransactionDate,
		modelTxn.Amount,
		modelTxn.Description,
		modelTxn.DebitAccount,
		modelTxn.CreditAccount,
		modelTxn.ReferenceNumber,
		modelTxn.IdentityKey1,
		modelTxn.IdentityKey2,
		modelTxn.IdentityKey3,
		modelTxn.SourceArtifactLocator,
		modelTxn.SourceFormat,
		modelTxn.CreatedAt,
		modelTxn.CreatedBy,
		modelTxn.LastUpdatedAt,
		modelTxn.LastUpdatedBy,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to insert transaction "+modelTxn.TransactionID, err)
	}

	stored := mapping.ToDomainTransaction(modelTxn)
	return &stored, nil
}

// scanTransaction scans one transaction row using the shared column order.
func scanTransaction(scan func(dest ...any) error) (models.Transaction, error) {
	var t models.Transaction
	err := scan(
		&t.TransactionID,
		&t.TenantID,
		&t.TransactionDate,
		&t.Amount,
		&t.Description,
		&t.DebitAccount,
		&t.CreditAccount,
		&t.ReferenceNumber,
		&t.IdentityKey1,
		&t.IdentityKey2,
		&t.IdentityKey3,
		&t.SourceArtifactLocator,
		&t.SourceFormat,
		&t.CreatedAt,
		&t.CreatedBy,
		&t.LastUpdatedAt,
		&t.LastUpdatedBy,
	)
	return t, err
}
