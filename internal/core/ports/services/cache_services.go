package services

import (
	"context"
	"time"

	"github.com/openbooks/ledger_ingest_app/internal/core/domain"
)

// CacheStats describes the current state of the snapshot cache for
// monitoring and the admin endpoints.
type CacheStats struct {
	Loaded   bool      `json:"loaded"`
	Stale    bool      `json:"stale"`
	LoadedAt time.Time `json:"loadedAt"`
	RowCount int       `json:"rowCount"`
	TTL      string    `json:"ttl"`
}

// SnapshotCacheSvc serves the full cross-tenant transaction set with bounded
// staleness. Returned snapshots are immutable and unfiltered; callers must
// apply the tenant access filter before results cross any external boundary.
type SnapshotCacheSvc interface {
	// Get returns the current published snapshot, refreshing first if the
	// TTL has expired. Concurrent callers that observe an expired TTL
	// coalesce onto a single refresh. When no snapshot has ever loaded and
	// the load fails, Get returns apperrors.ErrCacheUnavailable; when a
	// previous snapshot exists it is served even if a refresh fails.
	Get(ctx context.Context) (*domain.Snapshot, error)

	// Refresh loads all transactions from the backing store, publishes a new
	// snapshot atomically and returns it. On failure the previous snapshot
	// stays published and the error is surfaced to this caller only.
	Refresh(ctx context.Context) (*domain.Snapshot, error)

	// Invalidate marks the current snapshot stale without blocking; the next
	// Get performs a refresh.
	Invalidate()

	// Warm proactively refreshes so the first real request does not pay the
	// load latency. Load times of tens of seconds at large row counts are
	// expected and tolerated.
	Warm(ctx context.Context) error

	// Stats reports cache state for monitoring.
	Stats() CacheStats
}
