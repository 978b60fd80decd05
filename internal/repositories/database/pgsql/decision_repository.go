package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openbooks/ledger_ingest_app/internal/apperrors"
	"github.com/openbooks/ledger_ingest_app/internal/core/domain"
	portsrepo "github.com/openbooks/ledger_ingest_app/internal/core/ports/repositories"
	"github.com/openbooks/ledger_ingest_app/internal/models"
	"github.com/openbooks/ledger_ingest_app/internal/utils/mapping"
)

// PgxDecisionRepository is the pgx-backed store for duplicate decision audit
// records.
type PgxDecisionRepository struct {
	BaseRepository
}

// NewDecisionRepository creates a decision repository on pool.
func NewDecisionRepository(pool *pgxpool.Pool) portsrepo.DecisionRepositoryFacade {
	return &PgxDecisionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.DecisionRepositoryFacade = (*PgxDecisionRepository)(nil)

// SaveDecision appends one audit record. Records are never updated.
func (r *PgxDecisionRepository) SaveDecision(ctx context.Context, decision domain.DuplicateDecision) error {
	m := mapping.ToModelDecision(decision)

	query := `
		INSERT INTO duplicate_decisions (
			decision_id, import_id, tenant_id, matched_transaction_id, decision,
			reference_number, transaction_date, amount,
			identity_key1, identity_key2, identity_key3,
			new_artifact_locator, decided_by, decided_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.DecisionID,
		m.ImportID,
		m.TenantID,
		m.MatchedTransactionID,
		m.Decision,
		m.ReferenceNumber,
		m.TransactionDate,
		m.Amount,
		m.IdentityKey1,
		m.IdentityKey2,
		m.IdentityKey3,
		m.NewArtifactLocator,
		m.DecidedBy,
		m.DecidedAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert duplicate decision "+m.DecisionID, err)
	}
	return nil
}

// ListDecisionsByTenant retrieves decision records for one tenant, most
// recent first.
func (r *PgxDecisionRepository) ListDecisionsByTenant(ctx context.Context, tenantID string, limit int) ([]domain.DuplicateDecision, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT decision_id, import_id, tenant_id, matched_transaction_id, decision,
		       reference_number, transaction_date, amount,
		       identity_key1, identity_key2, identity_key3,
		       new_artifact_locator, decided_by, decided_at
		FROM duplicate_decisions
		WHERE tenant_id = $1
		ORDER BY decided_at DESC
		LIMIT $2;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query duplicate decisions", err)
	}
	defer rows.Close()

	decisions := []domain.DuplicateDecision{}
	for rows.Next() {
		var m models.DuplicateDecision
		err := rows.Scan(
			&m.DecisionID,
			&m.ImportID,
			&m.TenantID,
			&m.MatchedTransactionID,
			&m.Decision,
			&m.ReferenceNumber,
			&m.TransactionDate,
			&m.Amount,
			&m.IdentityKey1,
			&m.IdentityKey2,
			&m.IdentityKey3,
			&m.NewArtifactLocator,
			&m.DecidedBy,
			&m.DecidedAt,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan duplicate decision row", err)
		}
		decisions = append(decisions, mapping.ToDomainDecision(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating duplicate decision rows", err)
	}

	return decisions, nil
}
