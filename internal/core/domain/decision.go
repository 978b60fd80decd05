package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DecisionType is the outcome of a duplicate encounter.
type DecisionType string

const (
	DecisionAccept DecisionType = "ACCEPT"
	DecisionCancel DecisionType = "CANCEL"
)

// DuplicateDecision is the append-only audit record written whenever an
// import candidate matched an existing transaction and a decision (explicit
// or lazily enforced on expiry) resolved it.
type DuplicateDecision struct {
	DecisionID           string          `json:"decisionID"`
	ImportID             string          `json:"importID"`
	TenantID             string          `json:"tenantID"`
	MatchedTransactionID string          `json:"matchedTransactionID"`
	Decision             DecisionType    `json:"decision"`
	ReferenceNumber      string          `json:"referenceNumber"`
	TransactionDate      time.Time       `json:"transactionDate"`
	Amount               decimal.Decimal `json:"amount"`
	IdentityKeys         IdentityKeys    `json:"identityKeys"`
	NewArtifactLocator   string          `json:"newArtifactLocator"`
	DecidedBy            string          `json:"decidedBy"`
	DecidedAt            time.Time       `json:"decidedAt"`
}
