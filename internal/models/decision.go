package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DuplicateDecision is the persistence-layer row shape for the
// duplicate_decisions audit table. Rows are append-only.
type DuplicateDecision struct {
	DecisionID           string          `json:"decisionID"` // Primary key (UUID)
	ImportID             string          `json:"importID"`
	TenantID             string          `json:"tenantID"`
	MatchedTransactionID string          `json:"matchedTransactionID"`
	Decision             string          `json:"decision"` // ACCEPT or CANCEL
	ReferenceNumber      string          `json:"referenceNumber"`
	TransactionDate      time.Time       `json:"transactionDate"`
	Amount               decimal.Decimal `json:"amount"`
	IdentityKey1         string          `json:"identityKey1"`
	IdentityKey2         string          `json:"identityKey2"`
	IdentityKey3         string          `json:"identityKey3"`
	NewArtifactLocator   string          `json:"newArtifactLocator"`
	DecidedBy            string          `json:"decidedBy"`
	DecidedAt            time.Time       `json:"decidedAt"`
}
