package services

import (
	"context"
	"io"
)

// ArtifactStore abstracts the storage holding uploaded source documents
// (bank CSV exports, scanned invoices). Remove must be idempotent: removing
// an absent artifact is not an error.
type ArtifactStore interface {
	// Save stores an uploaded document and returns its locator.
	Save(ctx context.Context, name string, r io.Reader) (string, error)

	// Remove deletes the artifact at locator.
	Remove(ctx context.Context, locator string) error
}

// CleanupSvc removes artifacts tied to a cancelled import while refusing to
// delete files still referenced by a surviving transaction.
type CleanupSvc interface {
	// ShouldCleanup reports whether the artifact at newLocator is safe to
	// delete given the surviving transaction's existingLocator. False when
	// the locators are identical or newLocator is empty.
	ShouldCleanup(newLocator, existingLocator string) bool

	// Cleanup deletes the artifact at newLocator when ShouldCleanup allows
	// it. Failures are logged and reported as apperrors.ErrCleanupFailed but
	// must not break the caller's control flow: a leaked upload is
	// recoverable, a wrongly deleted shared file is not.
	Cleanup(ctx context.Context, newLocator, existingLocator string) error
}
