package services

import (
	"context"

	"github.com/openbooks/ledger_ingest_app/internal/core/domain"
)

// DuplicateDetectorSvc decides whether an import candidate is "the same
// financial event" as something already persisted.
type DuplicateDetectorSvc interface {
	// FindMatches queries the backing store for transactions matching the
	// candidate's (referenceNumber, transactionDate, amount) triple exactly,
	// within the configured lookback window, most recent id first. It never
	// mutates state and never consults the snapshot cache.
	FindMatches(ctx context.Context, candidate domain.Transaction) ([]domain.Transaction, error)
}

// ImportSvcFacade orchestrates the per-candidate import workflow:
// Parsed -> Checked -> {NoDuplicate -> Inserted} |
// {DuplicateFound -> AwaitingDecision -> {Accepted -> Inserted} |
// {Cancelled -> CleanedUp}}.
type ImportSvcFacade interface {
	// SubmitCandidate runs the duplicate check for one parsed candidate.
	// With zero matches it inserts immediately, invalidates the cache and
	// returns a terminal session in state INSERTED. With one or more matches
	// it persists and returns a resumable session in state AWAITING_DECISION.
	SubmitCandidate(ctx context.Context, tenantID string, candidate domain.Transaction, userID string) (*domain.ImportSession, error)

	// Decide resumes an AWAITING_DECISION session with an accept or cancel
	// signal. Accept inserts the candidate, invalidates the cache and writes
	// an ACCEPT decision record; cancel runs artifact cleanup and writes a
	// CANCEL record. A decision on a terminal session returns that session
	// unchanged (idempotent); a decision on an expired session enforces the
	// lazy cancel and returns apperrors.ErrDecisionExpired.
	Decide(ctx context.Context, importID string, decision domain.DecisionType, userID string) (*domain.ImportSession, error)

	// GetSession returns the session for an import id, applying lazy expiry
	// first.
	GetSession(ctx context.Context, importID string) (*domain.ImportSession, error)

	// ExpireStale cancels every session whose decision window has closed.
	// Returns the number of sessions cancelled.
	ExpireStale(ctx context.Context) (int, error)

	// ListDecisions returns a tenant's duplicate decision audit trail, most
	// recent first.
	ListDecisions(ctx context.Context, tenantID string, limit int) ([]domain.DuplicateDecision, error)
}
