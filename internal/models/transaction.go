package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the persistence-layer row shape for the transactions table.
// Note: Amount uses a precise decimal type (github.com/shopspring/decimal);
// the sign encodes debit/credit direction.
type Transaction struct {
	TransactionID         string          `json:"transactionID"` // Primary key (UUID)
	TenantID              string          `json:"tenantID"`      // Owning tenant; immutable after creation
	TransactionDate       time.Time       `json:"transactionDate"`
	Amount                decimal.Decimal `json:"amount"`
	Description           string          `json:"description"`
	DebitAccount          string          `json:"debitAccount"`
	CreditAccount         string          `json:"creditAccount"`
	ReferenceNumber       string          `json:"referenceNumber"`
	IdentityKey1          string          `json:"identityKey1"`
	IdentityKey2          string          `json:"identityKey2"`
	IdentityKey3          string          `json:"identityKey3"`
	SourceArtifactLocator string          `json:"sourceArtifactLocator"`
	SourceFormat          string          `json:"sourceFormat"`
	AuditFields
}
