package services_test

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/openbooks/ledger_ingest_app/internal/core/domain"
	portsrepo "github.com/openbooks/ledger_ingest_app/internal/core/ports/repositories"
	portssvc "github.com/openbooks/ledger_ingest_app/internal/core/ports/services"
)

// MockTransactionRepository is a mock type for the TransactionRepositoryFacade interface
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) LoadAllTransactions(ctx context.Context) ([]domain.Transaction, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByReferenceDateAmount(ctx context.Context, tenantID, referenceNumber string, date time.Time, amount decimal.Decimal, since time.Time) ([]domain.Transaction, error) {
	args := m.Called(ctx, tenantID, referenceNumber, date, amount, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) (*domain.Transaction, error) {
	args := m.Called(ctx, txn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

// MockDecisionRepository is a mock type for the DecisionRepositoryFacade interface
type MockDecisionRepository struct {
	mock.Mock
}

func (m *MockDecisionRepository) SaveDecision(ctx context.Context, decision domain.DuplicateDecision) error {
	args := m.Called(ctx, decision)
	return args.Error(0)
}

func (m *MockDecisionRepository) ListDecisionsByTenant(ctx context.Context, tenantID string, limit int) ([]domain.DuplicateDecision, error) {
	args := m.Called(ctx, tenantID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DuplicateDecision), args.Error(1)
}

// MockSessionRepository is a mock type for the ImportSessionRepository interface
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) SaveSession(ctx context.Context, session domain.ImportSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) FindSessionByID(ctx context.Context, importID string) (*domain.ImportSession, error) {
	args := m.Called(ctx, importID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ImportSession), args.Error(1)
}

func (m *MockSessionRepository) UpdateSession(ctx context.Context, session domain.ImportSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) ListExpiredSessions(ctx context.Context, now time.Time) ([]domain.ImportSession, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ImportSession), args.Error(1)
}

// MockDuplicateDetector is a mock type for the DuplicateDetectorSvc interface
type MockDuplicateDetector struct {
	mock.Mock
}

func (m *MockDuplicateDetector) FindMatches(ctx context.Context, candidate domain.Transaction) ([]domain.Transaction, error) {
	args := m.Called(ctx, candidate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

// MockSnapshotCache is a mock type for the SnapshotCacheSvc interface
type MockSnapshotCache struct {
	mock.Mock
}

func (m *MockSnapshotCache) Get(ctx context.Context) (*domain.Snapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Snapshot), args.Error(1)
}

func (m *MockSnapshotCache) Refresh(ctx context.Context) (*domain.Snapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Snapshot), args.Error(1)
}

func (m *MockSnapshotCache) Invalidate() {
	m.Called()
}

func (m *MockSnapshotCache) Warm(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSnapshotCache) Stats() portssvc.CacheStats {
	args := m.Called()
	return args.Get(0).(portssvc.CacheStats)
}

// MockArtifactStore is a mock type for the ArtifactStore interface
type MockArtifactStore struct {
	mock.Mock
}

func (m *MockArtifactStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	args := m.Called(ctx, name, r)
	return args.String(0), args.Error(1)
}

func (m *MockArtifactStore) Remove(ctx context.Context, locator string) error {
	args := m.Called(ctx, locator)
	return args.Error(0)
}

// Compile-time checks that the mocks satisfy their ports.
var (
	_ portsrepo.TransactionRepositoryFacade = (*MockTransactionRepository)(nil)
	_ portsrepo.DecisionRepositoryFacade    = (*MockDecisionRepository)(nil)
	_ portsrepo.ImportSessionRepository     = (*MockSessionRepository)(nil)
	_ portssvc.DuplicateDetectorSvc         = (*MockDuplicateDetector)(nil)
	_ portssvc.SnapshotCacheSvc             = (*MockSnapshotCache)(nil)
	_ portssvc.ArtifactStore                = (*MockArtifactStore)(nil)
)
