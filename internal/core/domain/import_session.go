package domain

import "time"

// ImportState is the coordinator state for one import candidate.
type ImportState string

const (
	// ImportChecked: duplicate check ran; insert not attempted yet. Only
	// observable transiently (an insert failure leaves the session here so
	// the caller can retry).
	ImportChecked ImportState = "CHECKED"
	// ImportAwaitingDecision: one or more matches found; waiting for an
	// external accept/cancel signal, possibly arriving in a later request.
	ImportAwaitingDecision ImportState = "AWAITING_DECISION"
	// ImportInserted: terminal; the candidate was persisted.
	ImportInserted ImportState = "INSERTED"
	// ImportCleanedUp: terminal; the import was cancelled (explicitly or by
	// session expiry) and its artifact cleaned up.
	ImportCleanedUp ImportState = "CLEANED_UP"
)

// Terminal reports whether the state admits no further transitions.
func (s ImportState) Terminal() bool {
	return s == ImportInserted || s == ImportCleanedUp
}

// ImportSession is the serialized AwaitingDecision context for one import
// candidate. It is addressable by ImportID so the decision can arrive in a
// separate request; ExpiresAt bounds how long an undecided import may linger
// before it is treated as cancelled.
type ImportSession struct {
	ImportID              string        `json:"importID"`
	TenantID              string        `json:"tenantID"`
	Candidate             Transaction   `json:"candidate"`
	Matches               []Transaction `json:"matches"`
	State                 ImportState   `json:"state"`
	InsertedTransactionID string        `json:"insertedTransactionID,omitempty"`
	CreatedAt             time.Time     `json:"createdAt"`
	ExpiresAt             time.Time     `json:"expiresAt"`
	CreatedBy             string        `json:"createdBy"`
}

// Expired reports whether the decision window has closed.
func (s *ImportSession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
