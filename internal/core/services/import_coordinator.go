package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/openbooks/ledger_ingest_app/internal/apperrors"
	"github.com/openbooks/ledger_ingest_app/internal/core/domain"
	portsrepo "github.com/openbooks/ledger_ingest_app/internal/core/ports/repositories"
	portssvc "github.com/openbooks/ledger_ingest_app/internal/core/ports/services"
)

// expiryPrincipal is recorded as the deciding principal when a session is
// cancelled by expiry rather than an explicit signal.
const expiryPrincipal = "system:session-expiry"

// importCoordinator drives the per-candidate import state machine. Sessions
// are persisted so the accept/cancel decision may arrive in a later request;
// an expired session is cancelled lazily on its next lookup (fail-safe: never
// insert on ambiguity).
type importCoordinator struct {
	BaseService

	txnRepo      portsrepo.TransactionRepositoryFacade
	decisionRepo portsrepo.DecisionRepositoryFacade
	sessionRepo  portsrepo.ImportSessionRepository
	detector     portssvc.DuplicateDetectorSvc
	cache        portssvc.SnapshotCacheSvc
	cleanup      portssvc.CleanupSvc
	sessionTTL   time.Duration
	clock        func() time.Time
}

// NewImportCoordinator creates an ImportSvcFacade. sessionTTL bounds how long
// an undecided import may await its decision before being treated as
// cancelled.
func NewImportCoordinator(
	txnRepo portsrepo.TransactionRepositoryFacade,
	decisionRepo portsrepo.DecisionRepositoryFacade,
	sessionRepo portsrepo.ImportSessionRepository,
	detector portssvc.DuplicateDetectorSvc,
	cache portssvc.SnapshotCacheSvc,
	cleanup portssvc.CleanupSvc,
	sessionTTL time.Duration,
) portssvc.ImportSvcFacade {
	return newImportCoordinator(txnRepo, decisionRepo, sessionRepo, detector, cache, cleanup, sessionTTL, time.Now)
}

func newImportCoordinator(
	txnRepo portsrepo.TransactionRepositoryFacade,
	decisionRepo portsrepo.DecisionRepositoryFacade,
	sessionRepo portsrepo.ImportSessionRepository,
	detector portssvc.DuplicateDetectorSvc,
	cache portssvc.SnapshotCacheSvc,
	cleanup portssvc.CleanupSvc,
	sessionTTL time.Duration,
	clock func() time.Time,
) *importCoordinator {
	if sessionTTL <= 0 {
		sessionTTL = 30 * time.Minute
	}
	return &importCoordinator{
		txnRepo:      txnRepo,
		decisionRepo: decisionRepo,
		sessionRepo:  sessionRepo,
		detector:     detector,
		cache:        cache,
		cleanup:      cleanup,
		sessionTTL:   sessionTTL,
		clock:        clock,
	}
}

var _ portssvc.ImportSvcFacade = (*importCoordinator)(nil)

// SubmitCandidate implements portssvc.ImportSvcFacade.
func (s *importCoordinator) SubmitCandidate(ctx context.Context, tenantID string, candidate domain.Transaction, userID string) (*domain.ImportSession, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenant ID is required", apperrors.ErrValidation)
	}
	if candidate.IsPersisted() {
		return nil, fmt.Errorf("%w: candidate must not carry a transaction ID", apperrors.ErrValidation)
	}

	now := s.clock().UTC()
	candidate.TenantID = tenantID
	candidate.NormalizeDate()
	candidate.AuditFields = domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}

	matches, err := s.detector.FindMatches(ctx, candidate)
	if err != nil {
		return nil, err
	}

	session := domain.ImportSession{
		ImportID:  uuid.NewString(),
		TenantID:  tenantID,
		Candidate: candidate,
		Matches:   matches,
		State:     domain.ImportChecked,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedBy: userID,
	}

	if len(matches) == 0 {
		stored, err := s.insert(ctx, candidate)
		if err != nil {
			return nil, err
		}
		session.State = domain.ImportInserted
		session.InsertedTransactionID = stored.TransactionID
		session.Candidate = *stored
		if err := s.sessionRepo.SaveSession(ctx, session); err != nil {
			// The transaction is in; losing the terminal session record only
			// costs a later status lookup.
			s.LogError(ctx, err, "Failed to save terminal import session", slog.String("import_id", session.ImportID))
		}
		s.LogInfo(ctx, "Import candidate inserted",
			slog.String("import_id", session.ImportID),
			slog.String("transaction_id", stored.TransactionID))
		return &session, nil
	}

	session.State = domain.ImportAwaitingDecision
	if err := s.sessionRepo.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save import session %s: %w", session.ImportID, err)
	}

	s.LogInfo(ctx, "Duplicate matches found, awaiting decision",
		slog.String("import_id", session.ImportID),
		slog.Int("match_count", len(matches)),
		slog.String("reference_number", candidate.ReferenceNumber))
	return &session, nil
}

// Decide implements portssvc.ImportSvcFacade.
func (s *importCoordinator) Decide(ctx context.Context, importID string, decision domain.DecisionType, userID string) (*domain.ImportSession, error) {
	if decision != domain.DecisionAccept && decision != domain.DecisionCancel {
		return nil, fmt.Errorf("%w: unknown decision %q", apperrors.ErrValidation, decision)
	}

	session, err := s.sessionRepo.FindSessionByID(ctx, importID)
	if err != nil {
		return nil, err
	}

	// Idempotence: a repeated decision on a finished import returns the
	// terminal session without inserting or cleaning up again.
	if session.State.Terminal() {
		return session, nil
	}

	now := s.clock().UTC()
	if session.Expired(now) {
		expired, cancelErr := s.cancelSession(ctx, *session, expiryPrincipal)
		if cancelErr != nil {
			return nil, cancelErr
		}
		return expired, apperrors.ErrDecisionExpired
	}

	switch decision {
	case domain.DecisionAccept:
		return s.acceptSession(ctx, *session, userID)
	default:
		return s.cancelSession(ctx, *session, userID)
	}
}

// GetSession implements portssvc.ImportSvcFacade.
func (s *importCoordinator) GetSession(ctx context.Context, importID string) (*domain.ImportSession, error) {
	session, err := s.sessionRepo.FindSessionByID(ctx, importID)
	if err != nil {
		return nil, err
	}
	if !session.State.Terminal() && session.Expired(s.clock().UTC()) {
		return s.cancelSession(ctx, *session, expiryPrincipal)
	}
	return session, nil
}

// ExpireStale implements portssvc.ImportSvcFacade.
func (s *importCoordinator) ExpireStale(ctx context.Context) (int, error) {
	expired, err := s.sessionRepo.ListExpiredSessions(ctx, s.clock().UTC())
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for _, session := range expired {
		if _, err := s.cancelSession(ctx, session, expiryPrincipal); err != nil {
			s.LogError(ctx, err, "Failed to cancel expired import session", slog.String("import_id", session.ImportID))
			continue
		}
		cancelled++
	}
	return cancelled, nil
}

// ListDecisions implements portssvc.ImportSvcFacade.
func (s *importCoordinator) ListDecisions(ctx context.Context, tenantID string, limit int) ([]domain.DuplicateDecision, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenant ID is required", apperrors.ErrValidation)
	}
	return s.decisionRepo.ListDecisionsByTenant(ctx, tenantID, limit)
}

// acceptSession inserts the candidate, invalidates the cache and records an
// ACCEPT decision. An insert failure leaves the session in AWAITING_DECISION
// so the decision can be retried.
func (s *importCoordinator) acceptSession(ctx context.Context, session domain.ImportSession, userID string) (*domain.ImportSession, error) {
	stored, err := s.insert(ctx, session.Candidate)
	if err != nil {
		return nil, err
	}

	session.State = domain.ImportInserted
	session.InsertedTransactionID = stored.TransactionID
	session.Candidate = *stored
	if err := s.sessionRepo.UpdateSession(ctx, session); err != nil {
		s.LogError(ctx, err, "Failed to update import session after insert", slog.String("import_id", session.ImportID))
	}

	s.recordDecision(ctx, session, domain.DecisionAccept, userID)
	s.LogInfo(ctx, "Duplicate accepted and inserted",
		slog.String("import_id", session.ImportID),
		slog.String("transaction_id", stored.TransactionID))
	return &session, nil
}

// cancelSession cleans up the candidate's artifact, records a CANCEL decision
// and marks the session terminal. Cancellation never inserts a transaction;
// a cleanup failure is soft and does not block completion.
func (s *importCoordinator) cancelSession(ctx context.Context, session domain.ImportSession, decidedBy string) (*domain.ImportSession, error) {
	existingLocator := ""
	if len(session.Matches) > 0 {
		existingLocator = session.Matches[0].SourceArtifactLocator
	}

	if err := s.cleanup.Cleanup(ctx, session.Candidate.SourceArtifactLocator, existingLocator); err != nil {
		if !errors.Is(err, apperrors.ErrCleanupFailed) {
			return nil, err
		}
		s.LogWarn(ctx, "Artifact cleanup failed for cancelled import",
			slog.String("import_id", session.ImportID),
			slog.String("error", err.Error()))
	}

	session.State = domain.ImportCleanedUp
	if err := s.sessionRepo.UpdateSession(ctx, session); err != nil {
		s.LogError(ctx, err, "Failed to update import session after cancel", slog.String("import_id", session.ImportID))
	}

	s.recordDecision(ctx, session, domain.DecisionCancel, decidedBy)
	s.LogInfo(ctx, "Import cancelled and cleaned up", slog.String("import_id", session.ImportID))
	return &session, nil
}

func (s *importCoordinator) insert(ctx context.Context, candidate domain.Transaction) (*domain.Transaction, error) {
	stored, err := s.txnRepo.SaveTransaction(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInsertFailed, err)
	}
	s.cache.Invalidate()
	return stored, nil
}

// recordDecision writes the duplicate decision audit record. The record is
// written for every duplicate encounter; a write failure is logged but does
// not unwind the already-completed state transition.
func (s *importCoordinator) recordDecision(ctx context.Context, session domain.ImportSession, decision domain.DecisionType, decidedBy string) {
	if len(session.Matches) == 0 {
		return
	}

	record := domain.DuplicateDecision{
		DecisionID:           uuid.NewString(),
		ImportID:             session.ImportID,
		TenantID:             session.TenantID,
		MatchedTransactionID: session.Matches[0].TransactionID,
		Decision:             decision,
		ReferenceNumber:      session.Candidate.ReferenceNumber,
		TransactionDate:      session.Candidate.TransactionDate,
		Amount:               session.Candidate.Amount,
		IdentityKeys:         session.Candidate.IdentityKeys,
		NewArtifactLocator:   session.Candidate.SourceArtifactLocator,
		DecidedBy:            decidedBy,
		DecidedAt:            s.clock().UTC(),
	}
	if err := s.decisionRepo.SaveDecision(ctx, record); err != nil {
		s.LogError(ctx, err, "Failed to save duplicate decision record",
			slog.String("import_id", session.ImportID),
			slog.String("decision", string(decision)))
	}
}
