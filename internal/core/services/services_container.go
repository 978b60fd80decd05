package services

import (
	portsrepo "github.com/openbooks/ledger_ingest_app/internal/core/ports/repositories"
	portssvc "github.com/openbooks/ledger_ingest_app/internal/core/ports/services"
	"github.com/openbooks/ledger_ingest_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly
// initialized dependencies.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, artifacts portssvc.ArtifactStore) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Cache = NewSnapshotCache(repos.TransactionRepo, cfg.CacheTTL)
	container.Detector = NewDuplicateDetector(repos.TransactionRepo, cfg.DuplicateLookback)
	container.Cleanup = NewCleanupService(artifacts)
	container.Importer = NewImportCoordinator(
		repos.TransactionRepo,
		repos.DecisionRepo,
		repos.SessionRepo,
		container.Detector,
		container.Cache,
		container.Cleanup,
		cfg.DecisionSessionTTL,
	)

	return container
}

// Compile-time checks that implementations satisfy their ports.
var (
	_ portssvc.SnapshotCacheSvc     = (*snapshotCache)(nil)
	_ portssvc.DuplicateDetectorSvc = (*duplicateDetector)(nil)
	_ portssvc.ImportSvcFacade      = (*importCoordinator)(nil)
	_ portssvc.CleanupSvc           = (*cleanupService)(nil)
)
