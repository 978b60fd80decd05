package domain

import "time"

// Snapshot is one immutable, fully loaded in-memory copy of all transactions
// across all tenants at a point in time. A refresh builds a new Snapshot and
// publishes it atomically; a published Snapshot is never mutated, so readers
// may share it freely without locking. The rows are unfiltered: tenant
// isolation is enforced by the tenant access filter at every read site, never
// by the snapshot itself.
type Snapshot struct {
	Transactions []Transaction `json:"-"`
	LoadedAt     time.Time     `json:"loadedAt"`
	RowCount     int           `json:"rowCount"`
}

// Age returns how long ago the snapshot was loaded.
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.LoadedAt)
}
