package repositories

import (
	"context"
	"time"

	"github.com/openbooks/ledger_ingest_app/internal/core/domain"
)

// ImportSessionRepository stores serialized AwaitingDecision contexts keyed
// by import id, so a decision arriving in a later request can resume the
// workflow. The default implementation is in-memory; the port exists so an
// external session store can be swapped in.
type ImportSessionRepository interface {
	// SaveSession stores a new session.
	SaveSession(ctx context.Context, session domain.ImportSession) error

	// FindSessionByID retrieves a session by its import id.
	FindSessionByID(ctx context.Context, importID string) (*domain.ImportSession, error)

	// UpdateSession replaces a stored session.
	UpdateSession(ctx context.Context, session domain.ImportSession) error

	// ListExpiredSessions returns non-terminal sessions whose decision window
	// closed before now.
	ListExpiredSessions(ctx context.Context, now time.Time) ([]domain.ImportSession, error)
}
