package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/openbooks/ledger_ingest_app/internal/apperrors"
	"github.com/openbooks/ledger_ingest_app/internal/core/domain"
	portsrepo "github.com/openbooks/ledger_ingest_app/internal/core/ports/repositories"
	portssvc "github.com/openbooks/ledger_ingest_app/internal/core/ports/services"
)

// refreshCall is one in-flight snapshot load. Callers that observe an expired
// snapshot while a load is running wait on done instead of starting their
// own; they all receive the same result.
type refreshCall struct {
	done chan struct{}
	snap *domain.Snapshot
	err  error
}

// snapshotCache serves the full cross-tenant transaction set from memory.
// The only shared mutable state is the published snapshot pointer and its
// expiry deadline; both are swapped atomically, so steady-state reads are
// lock-free. The mutex guards only the in-flight refresh registration.
type snapshotCache struct {
	BaseService

	txnRepo portsrepo.TransactionReader
	ttl     time.Duration
	clock   func() time.Time

	current  atomic.Pointer[domain.Snapshot]
	expireAt atomic.Int64 // unix nanos; 0 means stale

	// invalidations counts Invalidate calls. A load samples it before the
	// bulk read; a change during the read means the loaded rows may predate
	// a write, so the snapshot must stay stale.
	invalidations atomic.Int64

	mu       sync.Mutex
	inflight *refreshCall

	lastRefreshFailed atomic.Bool
}

// NewSnapshotCache creates a SnapshotCacheSvc backed by txnRepo. A snapshot
// older than ttl is considered stale and refreshed on the next Get.
func NewSnapshotCache(txnRepo portsrepo.TransactionReader, ttl time.Duration) portssvc.SnapshotCacheSvc {
	return newSnapshotCache(txnRepo, ttl, time.Now)
}

func newSnapshotCache(txnRepo portsrepo.TransactionReader, ttl time.Duration, clock func() time.Time) *snapshotCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &snapshotCache{
		txnRepo: txnRepo,
		ttl:     ttl,
		clock:   clock,
	}
}

var _ portssvc.SnapshotCacheSvc = (*snapshotCache)(nil)

// Get implements portssvc.SnapshotCacheSvc.
func (c *snapshotCache) Get(ctx context.Context) (*domain.Snapshot, error) {
	if snap := c.current.Load(); snap != nil && !c.expired() {
		return snap, nil
	}

	snap, err := c.refresh(ctx)
	if err != nil {
		// Fail open: a previous snapshot keeps serving readers while the
		// refresh failure stays observable through Stats.
		if prev := c.current.Load(); prev != nil {
			c.LogWarn(ctx, "Snapshot refresh failed, serving stale snapshot",
				slog.String("error", err.Error()),
				slog.Time("loaded_at", prev.LoadedAt))
			return prev, nil
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrCacheUnavailable, err)
	}
	return snap, nil
}

// Refresh implements portssvc.SnapshotCacheSvc. Unlike Get it never falls
// back to the previous snapshot: the caller asked for a reload and gets the
// reload's outcome.
func (c *snapshotCache) Refresh(ctx context.Context) (*domain.Snapshot, error) {
	return c.refresh(ctx)
}

// Invalidate implements portssvc.SnapshotCacheSvc. Non-blocking; used on the
// write path after inserts.
func (c *snapshotCache) Invalidate() {
	c.invalidations.Add(1)
	c.expireAt.Store(0)
}

// Warm implements portssvc.SnapshotCacheSvc.
func (c *snapshotCache) Warm(ctx context.Context) error {
	_, err := c.refresh(ctx)
	return err
}

// Stats implements portssvc.SnapshotCacheSvc.
func (c *snapshotCache) Stats() portssvc.CacheStats {
	stats := portssvc.CacheStats{TTL: c.ttl.String()}
	snap := c.current.Load()
	if snap == nil {
		return stats
	}
	stats.Loaded = true
	stats.Stale = c.expired() || c.lastRefreshFailed.Load()
	stats.LoadedAt = snap.LoadedAt
	stats.RowCount = snap.RowCount
	return stats
}

func (c *snapshotCache) expired() bool {
	deadline := c.expireAt.Load()
	return deadline == 0 || c.clock().UnixNano() >= deadline
}

// refresh coalesces concurrent loads: exactly one backing-store read runs at
// a time and every caller that arrives while it is in flight receives its
// result.
func (c *snapshotCache) refresh(ctx context.Context) (*domain.Snapshot, error) {
	c.mu.Lock()
	if call := c.inflight; call != nil {
		c.mu.Unlock()
		select {
		case <-call.done:
			return call.snap, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	call := &refreshCall{done: make(chan struct{})}
	c.inflight = call
	c.mu.Unlock()

	// Waiters share this load's result, so it must outlive the starter's
	// request context.
	call.snap, call.err = c.load(context.WithoutCancel(ctx))

	c.mu.Lock()
	c.inflight = nil
	c.mu.Unlock()
	close(call.done)

	return call.snap, call.err
}

// load performs the bulk read and atomically publishes the new snapshot.
// On failure the previously published snapshot is left untouched.
func (c *snapshotCache) load(ctx context.Context) (*domain.Snapshot, error) {
	start := c.clock()
	genBefore := c.invalidations.Load()
	rows, err := c.txnRepo.LoadAllTransactions(ctx)
	if err != nil {
		c.lastRefreshFailed.Store(true)
		return nil, fmt.Errorf("failed to load transactions for snapshot: %w", err)
	}

	loadedAt := c.clock()
	snap := &domain.Snapshot{
		Transactions: rows,
		LoadedAt:     loadedAt,
		RowCount:     len(rows),
	}
	c.current.Store(snap)
	c.expireAt.Store(loadedAt.Add(c.ttl).UnixNano())
	c.lastRefreshFailed.Store(false)

	// An Invalidate that landed while the read was running refers to a write
	// these rows may not contain. Publish the snapshot but keep it stale so
	// the next Get reloads.
	if c.invalidations.Load() != genBefore {
		c.expireAt.Store(0)
	}

	c.LogInfo(ctx, "Snapshot refreshed",
		slog.Int("row_count", snap.RowCount),
		slog.Duration("load_time", loadedAt.Sub(start)))
	return snap, nil
}
