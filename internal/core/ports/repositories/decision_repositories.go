package repositories

import (
	"context"

	"github.com/openbooks/ledger_ingest_app/internal/core/domain"
)

// DecisionWriter defines write operations for duplicate decision records.
type DecisionWriter interface {
	// SaveDecision appends a duplicate decision audit record. Records are
	// never updated or deleted.
	SaveDecision(ctx context.Context, decision domain.DuplicateDecision) error
}

// DecisionReader defines read operations for duplicate decision records.
type DecisionReader interface {
	// ListDecisionsByTenant retrieves decision records for a tenant, most
	// recent first.
	ListDecisionsByTenant(ctx context.Context, tenantID string, limit int) ([]domain.DuplicateDecision, error)
}

// DecisionRepositoryFacade combines all decision repository interfaces.
type DecisionRepositoryFacade interface {
	DecisionWriter
	DecisionReader
}
