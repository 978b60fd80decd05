package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/openbooks/ledger_ingest_app/internal/apperrors"
	"github.com/openbooks/ledger_ingest_app/internal/core/domain"
	portssvc "github.com/openbooks/ledger_ingest_app/internal/core/ports/services"
	"github.com/openbooks/ledger_ingest_app/internal/core/services"
)

type ImportCoordinatorTestSuite struct {
	suite.Suite
	mockTxnRepo   *MockTransactionRepository
	mockDecisions *MockDecisionRepository
	mockSessions  *MockSessionRepository
	mockDetector  *MockDuplicateDetector
	mockCache     *MockSnapshotCache
	mockArtifacts *MockArtifactStore
	coordinator   portssvc.ImportSvcFacade
}

func (suite *ImportCoordinatorTestSuite) SetupTest() {
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockDecisions = new(MockDecisionRepository)
	suite.mockSessions = new(MockSessionRepository)
	suite.mockDetector = new(MockDuplicateDetector)
	suite.mockCache = new(MockSnapshotCache)
	suite.mockArtifacts = new(MockArtifactStore)
	suite.coordinator = services.NewImportCoordinator(
		suite.mockTxnRepo,
		suite.mockDecisions,
		suite.mockSessions,
		suite.mockDetector,
		suite.mockCache,
		services.NewCleanupService(suite.mockArtifacts),
		30*time.Minute,
	)
}

func importCandidate() domain.Transaction {
	return domain.Transaction{
		TransactionDate:       time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC),
		Amount:                decimal.RequireFromString("250.00"),
		Description:           "Office supplies",
		ReferenceNumber:       "REF-5521",
		SourceArtifactLocator: "uploads/batch-17.csv",
	}
}

func awaitingSession(importID string) *domain.ImportSession {
	candidate := importCandidate()
	candidate.TenantID = "tenant-a"
	return &domain.ImportSession{
		ImportID:  importID,
		TenantID:  "tenant-a",
		Candidate: candidate,
		Matches: []domain.Transaction{{
			TransactionID:         "existing-9",
			TenantID:              "tenant-a",
			ReferenceNumber:       "REF-5521",
			SourceArtifactLocator: "uploads/batch-12.csv",
		}},
		State:     domain.ImportAwaitingDecision,
		CreatedAt: time.Now().Add(-time.Minute),
		ExpiresAt: time.Now().Add(29 * time.Minute),
		CreatedBy: "user-1",
	}
}

// --- SubmitCandidate ---

func (suite *ImportCoordinatorTestSuite) TestSubmitCandidate_NoMatchesInsertsImmediately() {
	ctx := context.Background()
	candidate := importCandidate()

	suite.mockDetector.On("FindMatches", ctx, mock.MatchedBy(func(c domain.Transaction) bool {
		// Tenant assigned and date normalized before the duplicate check
		return c.TenantID == "tenant-a" &&
			c.TransactionDate.Equal(domain.DateOnly(candidate.TransactionDate)) &&
			c.CreatedBy == "user-1"
	})).Return([]domain.Transaction{}, nil).Once()

	stored := candidate
	stored.TenantID = "tenant-a"
	stored.TransactionID = uuid.NewString()
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction")).Return(&stored, nil).Once()
	suite.mockCache.On("Invalidate").Return().Once()
	suite.mockSessions.On("SaveSession", ctx, mock.MatchedBy(func(s domain.ImportSession) bool {
		return s.State == domain.ImportInserted && s.InsertedTransactionID == stored.TransactionID
	})).Return(nil).Once()

	session, err := suite.coordinator.SubmitCandidate(ctx, "tenant-a", candidate, "user-1")

	suite.Require().NoError(err)
	suite.Require().NotNil(session)
	suite.Equal(domain.ImportInserted, session.State)
	suite.Equal(stored.TransactionID, session.InsertedTransactionID)
	suite.NotEmpty(session.ImportID)

	suite.mockDetector.AssertExpectations(suite.T())
	suite.mockTxnRepo.AssertExpectations(suite.T())
	suite.mockCache.AssertExpectations(suite.T())
	suite.mockSessions.AssertExpectations(suite.T())
}

func (suite *ImportCoordinatorTestSuite) TestSubmitCandidate_MatchesAwaitDecision() {
	ctx := context.Background()
	match := domain.Transaction{TransactionID: "existing-9", TenantID: "tenant-a"}

	suite.mockDetector.On("FindMatches", ctx, mock.AnythingOfType("domain.Transaction")).
		Return([]domain.Transaction{match}, nil).Once()
	suite.mockSessions.On("SaveSession", ctx, mock.MatchedBy(func(s domain.ImportSession) bool {
		return s.State == domain.ImportAwaitingDecision &&
			len(s.Matches) == 1 &&
			s.ExpiresAt.After(s.CreatedAt)
	})).Return(nil).Once()

	session, err := suite.coordinator.SubmitCandidate(ctx, "tenant-a", importCandidate(), "user-1")

	suite.Require().NoError(err)
	suite.Equal(domain.ImportAwaitingDecision, session.State)
	suite.Empty(session.InsertedTransactionID)

	// No insert happens until the decision arrives
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything)
	suite.mockSessions.AssertExpectations(suite.T())
}

func (suite *ImportCoordinatorTestSuite) TestSubmitCandidate_MissingTenant() {
	session, err := suite.coordinator.SubmitCandidate(context.Background(), "", importCandidate(), "user-1")

	suite.Require().Error(err)
	suite.Nil(session)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ImportCoordinatorTestSuite) TestSubmitCandidate_PersistedCandidateRejected() {
	candidate := importCandidate()
	candidate.TransactionID = "already-there"

	session, err := suite.coordinator.SubmitCandidate(context.Background(), "tenant-a", candidate, "user-1")

	suite.Require().Error(err)
	suite.Nil(session)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ImportCoordinatorTestSuite) TestSubmitCandidate_InsertFailure() {
	ctx := context.Background()

	suite.mockDetector.On("FindMatches", ctx, mock.AnythingOfType("domain.Transaction")).
		Return([]domain.Transaction{}, nil).Once()
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction")).
		Return(nil, assert.AnError).Once()

	session, err := suite.coordinator.SubmitCandidate(ctx, "tenant-a", importCandidate(), "user-1")

	suite.Require().Error(err)
	suite.Nil(session)
	suite.ErrorIs(err, apperrors.ErrInsertFailed)
	suite.mockCache.AssertNotCalled(suite.T(), "Invalidate")
}

// --- Decide ---

func (suite *ImportCoordinatorTestSuite) TestDecide_AcceptInsertsAndRecordsDecision() {
	ctx := context.Background()
	session := awaitingSession("imp-1")

	stored := session.Candidate
	stored.TransactionID = "txn-new"

	suite.mockSessions.On("FindSessionByID", ctx, "imp-1").Return(session, nil).Once()
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction")).Return(&stored, nil).Once()
	suite.mockCache.On("Invalidate").Return().Once()
	suite.mockSessions.On("UpdateSession", ctx, mock.MatchedBy(func(s domain.ImportSession) bool {
		return s.State == domain.ImportInserted && s.InsertedTransactionID == "txn-new"
	})).Return(nil).Once()
	suite.mockDecisions.On("SaveDecision", ctx, mock.MatchedBy(func(d domain.DuplicateDecision) bool {
		return d.Decision == domain.DecisionAccept &&
			d.ImportID == "imp-1" &&
			d.MatchedTransactionID == "existing-9" &&
			d.DecidedBy == "user-2"
	})).Return(nil).Once()

	decided, err := suite.coordinator.Decide(ctx, "imp-1", domain.DecisionAccept, "user-2")

	suite.Require().NoError(err)
	suite.Equal(domain.ImportInserted, decided.State)
	suite.Equal("txn-new", decided.InsertedTransactionID)

	suite.mockSessions.AssertExpectations(suite.T())
	suite.mockDecisions.AssertExpectations(suite.T())
	// Cancel-side cleanup must not run on accept
	suite.mockArtifacts.AssertNotCalled(suite.T(), "Remove", mock.Anything, mock.Anything)
}

func (suite *ImportCoordinatorTestSuite) TestDecide_CancelCleansUpWithoutInserting() {
	ctx := context.Background()
	session := awaitingSession("imp-2")

	suite.mockSessions.On("FindSessionByID", ctx, "imp-2").Return(session, nil).Once()
	suite.mockArtifacts.On("Remove", ctx, "uploads/batch-17.csv").Return(nil).Once()
	suite.mockSessions.On("UpdateSession", ctx, mock.MatchedBy(func(s domain.ImportSession) bool {
		return s.State == domain.ImportCleanedUp
	})).Return(nil).Once()
	suite.mockDecisions.On("SaveDecision", ctx, mock.MatchedBy(func(d domain.DuplicateDecision) bool {
		return d.Decision == domain.DecisionCancel && d.DecidedBy == "user-2"
	})).Return(nil).Once()

	decided, err := suite.coordinator.Decide(ctx, "imp-2", domain.DecisionCancel, "user-2")

	suite.Require().NoError(err)
	suite.Equal(domain.ImportCleanedUp, decided.State)
	suite.Empty(decided.InsertedTransactionID)

	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything)
	suite.mockArtifacts.AssertExpectations(suite.T())
}

func (suite *ImportCoordinatorTestSuite) TestDecide_CancelSkipsCleanupWhenArtifactShared() {
	ctx := context.Background()
	session := awaitingSession("imp-3")
	// Both imports point at the same upload; deleting it would orphan the
	// surviving transaction's source document.
	session.Matches[0].SourceArtifactLocator = session.Candidate.SourceArtifactLocator

	suite.mockSessions.On("FindSessionByID", ctx, "imp-3").Return(session, nil).Once()
	suite.mockSessions.On("UpdateSession", ctx, mock.AnythingOfType("domain.ImportSession")).Return(nil).Once()
	suite.mockDecisions.On("SaveDecision", ctx, mock.AnythingOfType("domain.DuplicateDecision")).Return(nil).Once()

	decided, err := suite.coordinator.Decide(ctx, "imp-3", domain.DecisionCancel, "user-2")

	suite.Require().NoError(err)
	suite.Equal(domain.ImportCleanedUp, decided.State)
	suite.mockArtifacts.AssertNotCalled(suite.T(), "Remove", mock.Anything, mock.Anything)
}

func (suite *ImportCoordinatorTestSuite) TestDecide_CancelCompletesDespiteCleanupFailure() {
	ctx := context.Background()
	session := awaitingSession("imp-4")

	suite.mockSessions.On("FindSessionByID", ctx, "imp-4").Return(session, nil).Once()
	suite.mockArtifacts.On("Remove", ctx, "uploads/batch-17.csv").Return(assert.AnError).Once()
	suite.mockSessions.On("UpdateSession", ctx, mock.AnythingOfType("domain.ImportSession")).Return(nil).Once()
	suite.mockDecisions.On("SaveDecision", ctx, mock.AnythingOfType("domain.DuplicateDecision")).Return(nil).Once()

	decided, err := suite.coordinator.Decide(ctx, "imp-4", domain.DecisionCancel, "user-2")

	suite.Require().NoError(err)
	suite.Equal(domain.ImportCleanedUp, decided.State)
}

func (suite *ImportCoordinatorTestSuite) TestDecide_TerminalSessionIsIdempotent() {
	ctx := context.Background()
	session := awaitingSession("imp-5")
	session.State = domain.ImportInserted
	session.InsertedTransactionID = "txn-old"

	suite.mockSessions.On("FindSessionByID", ctx, "imp-5").Return(session, nil).Twice()

	// Repeating accept on a finished import must not insert again
	first, err := suite.coordinator.Decide(ctx, "imp-5", domain.DecisionAccept, "user-2")
	suite.Require().NoError(err)
	suite.Equal(domain.ImportInserted, first.State)

	second, err := suite.coordinator.Decide(ctx, "imp-5", domain.DecisionCancel, "user-2")
	suite.Require().NoError(err)
	suite.Equal(domain.ImportInserted, second.State)
	suite.Equal("txn-old", second.InsertedTransactionID)

	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything)
	suite.mockArtifacts.AssertNotCalled(suite.T(), "Remove", mock.Anything, mock.Anything)
	suite.mockSessions.AssertNotCalled(suite.T(), "UpdateSession", mock.Anything, mock.Anything)
}

func (suite *ImportCoordinatorTestSuite) TestDecide_ExpiredSessionIsCancelled() {
	ctx := context.Background()
	session := awaitingSession("imp-6")
	session.ExpiresAt = time.Now().Add(-time.Minute)

	suite.mockSessions.On("FindSessionByID", ctx, "imp-6").Return(session, nil).Once()
	suite.mockArtifacts.On("Remove", ctx, "uploads/batch-17.csv").Return(nil).Once()
	suite.mockSessions.On("UpdateSession", ctx, mock.MatchedBy(func(s domain.ImportSession) bool {
		return s.State == domain.ImportCleanedUp
	})).Return(nil).Once()
	suite.mockDecisions.On("SaveDecision", ctx, mock.MatchedBy(func(d domain.DuplicateDecision) bool {
		return d.Decision == domain.DecisionCancel && d.DecidedBy == "system:session-expiry"
	})).Return(nil).Once()

	decided, err := suite.coordinator.Decide(ctx, "imp-6", domain.DecisionAccept, "user-2")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDecisionExpired)
	suite.Require().NotNil(decided)
	suite.Equal(domain.ImportCleanedUp, decided.State)

	// The late accept must never insert
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything)
	suite.mockDecisions.AssertExpectations(suite.T())
}

func (suite *ImportCoordinatorTestSuite) TestDecide_UnknownDecision() {
	decided, err := suite.coordinator.Decide(context.Background(), "imp-7", domain.DecisionType("maybe"), "user-2")

	suite.Require().Error(err)
	suite.Nil(decided)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ImportCoordinatorTestSuite) TestDecide_UnknownImport() {
	ctx := context.Background()

	suite.mockSessions.On("FindSessionByID", ctx, "missing").Return(nil, apperrors.ErrNotFound).Once()

	decided, err := suite.coordinator.Decide(ctx, "missing", domain.DecisionAccept, "user-2")

	suite.Require().Error(err)
	suite.Nil(decided)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *ImportCoordinatorTestSuite) TestDecide_AcceptInsertFailureLeavesSessionRetryable() {
	ctx := context.Background()
	session := awaitingSession("imp-8")

	suite.mockSessions.On("FindSessionByID", ctx, "imp-8").Return(session, nil).Once()
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction")).
		Return(nil, assert.AnError).Once()

	decided, err := suite.coordinator.Decide(ctx, "imp-8", domain.DecisionAccept, "user-2")

	suite.Require().Error(err)
	suite.Nil(decided)
	suite.ErrorIs(err, apperrors.ErrInsertFailed)

	// Session stays AWAITING_DECISION so the decision can be retried
	suite.mockSessions.AssertNotCalled(suite.T(), "UpdateSession", mock.Anything, mock.Anything)
	suite.mockDecisions.AssertNotCalled(suite.T(), "SaveDecision", mock.Anything, mock.Anything)
}

// --- GetSession ---

func (suite *ImportCoordinatorTestSuite) TestGetSession_ReturnsLiveSession() {
	ctx := context.Background()
	session := awaitingSession("imp-9")

	suite.mockSessions.On("FindSessionByID", ctx, "imp-9").Return(session, nil).Once()

	got, err := suite.coordinator.GetSession(ctx, "imp-9")

	suite.Require().NoError(err)
	suite.Equal(domain.ImportAwaitingDecision, got.State)
}

func (suite *ImportCoordinatorTestSuite) TestGetSession_ExpiredSessionCancelledLazily() {
	ctx := context.Background()
	session := awaitingSession("imp-10")
	session.ExpiresAt = time.Now().Add(-time.Minute)

	suite.mockSessions.On("FindSessionByID", ctx, "imp-10").Return(session, nil).Once()
	suite.mockArtifacts.On("Remove", ctx, "uploads/batch-17.csv").Return(nil).Once()
	suite.mockSessions.On("UpdateSession", ctx, mock.AnythingOfType("domain.ImportSession")).Return(nil).Once()
	suite.mockDecisions.On("SaveDecision", ctx, mock.AnythingOfType("domain.DuplicateDecision")).Return(nil).Once()

	got, err := suite.coordinator.GetSession(ctx, "imp-10")

	suite.Require().NoError(err)
	suite.Equal(domain.ImportCleanedUp, got.State)
}

// --- ExpireStale ---

func (suite *ImportCoordinatorTestSuite) TestExpireStale_CancelsAllExpiredSessions() {
	ctx := context.Background()
	first := awaitingSession("imp-11")
	second := awaitingSession("imp-12")
	second.Candidate.SourceArtifactLocator = "uploads/batch-18.csv"

	suite.mockSessions.On("ListExpiredSessions", ctx, mock.AnythingOfType("time.Time")).
		Return([]domain.ImportSession{*first, *second}, nil).Once()
	suite.mockArtifacts.On("Remove", ctx, "uploads/batch-17.csv").Return(nil).Once()
	suite.mockArtifacts.On("Remove", ctx, "uploads/batch-18.csv").Return(nil).Once()
	suite.mockSessions.On("UpdateSession", ctx, mock.AnythingOfType("domain.ImportSession")).Return(nil).Twice()
	suite.mockDecisions.On("SaveDecision", ctx, mock.AnythingOfType("domain.DuplicateDecision")).Return(nil).Twice()

	cancelled, err := suite.coordinator.ExpireStale(ctx)

	suite.Require().NoError(err)
	suite.Equal(2, cancelled)
	suite.mockArtifacts.AssertExpectations(suite.T())
}

func (suite *ImportCoordinatorTestSuite) TestExpireStale_ListError() {
	ctx := context.Background()

	suite.mockSessions.On("ListExpiredSessions", ctx, mock.AnythingOfType("time.Time")).
		Return(nil, assert.AnError).Once()

	cancelled, err := suite.coordinator.ExpireStale(ctx)

	suite.Require().Error(err)
	suite.Zero(cancelled)
}

// --- ListDecisions ---

func (suite *ImportCoordinatorTestSuite) TestListDecisions() {
	ctx := context.Background()
	records := []domain.DuplicateDecision{
		{DecisionID: "dec-1", TenantID: "tenant-a", Decision: domain.DecisionCancel},
		{DecisionID: "dec-2", TenantID: "tenant-a", Decision: domain.DecisionAccept},
	}

	suite.mockDecisions.On("ListDecisionsByTenant", ctx, "tenant-a", 20).Return(records, nil).Once()

	decisions, err := suite.coordinator.ListDecisions(ctx, "tenant-a", 20)

	suite.Require().NoError(err)
	suite.Equal(records, decisions)
	suite.mockDecisions.AssertExpectations(suite.T())
}

func (suite *ImportCoordinatorTestSuite) TestListDecisions_MissingTenant() {
	decisions, err := suite.coordinator.ListDecisions(context.Background(), "", 20)

	suite.Require().Error(err)
	suite.Nil(decisions)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

// --- Run Test Suite ---

func TestImportCoordinator(t *testing.T) {
	suite.Run(t, new(ImportCoordinatorTestSuite))
}
