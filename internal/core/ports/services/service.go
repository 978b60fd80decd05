package services

// ServiceContainer holds all service interfaces the handlers depend on.
type ServiceContainer struct {
	Cache    SnapshotCacheSvc
	Detector DuplicateDetectorSvc
	Importer ImportSvcFacade
	Cleanup  CleanupSvc
}
