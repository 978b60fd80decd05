package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/openbooks/ledger_ingest_app/internal/core/ports/repositories"
	"github.com/openbooks/ledger_ingest_app/internal/repositories/memory"
)

// NewRepositoryProvider wires the pgx-backed repositories plus the in-memory
// import session store into a RepositoryProvider for the service container.
func NewRepositoryProvider(pool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TransactionRepo: newPgxTransactionRepository(pool),
		DecisionRepo:    NewDecisionRepository(pool),
		SessionRepo:     memory.NewSessionRepository(),
	}
}
