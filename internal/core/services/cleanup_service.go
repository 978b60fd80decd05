package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openbooks/ledger_ingest_app/internal/apperrors"
	portssvc "github.com/openbooks/ledger_ingest_app/internal/core/ports/services"
)

// cleanupService removes uploaded source artifacts tied to cancelled imports.
type cleanupService struct {
	BaseService

	store portssvc.ArtifactStore
}

// NewCleanupService creates a CleanupSvc backed by store.
func NewCleanupService(store portssvc.ArtifactStore) portssvc.CleanupSvc {
	return &cleanupService{store: store}
}

var _ portssvc.CleanupSvc = (*cleanupService)(nil)

// ShouldCleanup implements portssvc.CleanupSvc. False when the new locator is
// empty (nothing to delete) or when both imports point at the same file: the
// surviving transaction still references it.
func (s *cleanupService) ShouldCleanup(newLocator, existingLocator string) bool {
	if newLocator == "" {
		return false
	}
	return newLocator != existingLocator
}

// Cleanup implements portssvc.CleanupSvc. Deletion failures are soft errors:
// the decision workflow completes regardless, since a leaked upload is
// recoverable by hand while a wrongly deleted shared file is not.
func (s *cleanupService) Cleanup(ctx context.Context, newLocator, existingLocator string) error {
	if !s.ShouldCleanup(newLocator, existingLocator) {
		s.LogDebug(ctx, "Artifact cleanup skipped", slog.String("locator", newLocator))
		return nil
	}

	if err := s.store.Remove(ctx, newLocator); err != nil {
		s.LogError(ctx, err, "Failed to remove artifact", slog.String("locator", newLocator))
		return fmt.Errorf("%w: %s: %v", apperrors.ErrCleanupFailed, newLocator, err)
	}

	s.LogInfo(ctx, "Artifact removed", slog.String("locator", newLocator))
	return nil
}
