package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// IdentityKeys are up to three format-dependent strings carried alongside the
// reference number (e.g. bank entry reference, account IBAN, card product
// name). They identify the source line within its own format and are surfaced
// in duplicate-match details, but they are never used as match keys: the
// detector matches only on the (reference, date, amount) triple.
type IdentityKeys struct {
	Key1 string `json:"key1"`
	Key2 string `json:"key2"`
	Key3 string `json:"key3"`
}

// IsZero reports whether no identity key is populated.
func (k IdentityKeys) IsZero() bool {
	return k.Key1 == "" && k.Key2 == "" && k.Key3 == ""
}

// Transaction is the canonical ledger record every ingestion format is
// normalized into before insertion, and the row shape the snapshot cache
// serves.
//
// TransactionID is assigned by the backing store on insert and is empty on
// not-yet-inserted candidates. TransactionDate carries only the calendar date
// of the economic event (UTC midnight); Amount is signed, the sign encoding
// debit/credit direction relative to the configured accounts.
type Transaction struct {
	TransactionID         string          `json:"transactionID"`
	TenantID              string          `json:"tenantID"`
	TransactionDate       time.Time       `json:"transactionDate"`
	Amount                decimal.Decimal `json:"amount"`
	Description           string          `json:"description"`
	DebitAccount          string          `json:"debitAccount"`
	CreditAccount         string          `json:"creditAccount"`
	ReferenceNumber       string          `json:"referenceNumber"`
	IdentityKeys          IdentityKeys    `json:"identityKeys"`
	SourceArtifactLocator string          `json:"sourceArtifactLocator"`
	SourceFormat          string          `json:"sourceFormat"` // e.g. bank_csv, card_csv, invoice_pdf
	AuditFields
}

// IsPersisted reports whether the backing store has assigned an id.
func (t Transaction) IsPersisted() bool {
	return t.TransactionID != ""
}

// NormalizeDate truncates TransactionDate to its UTC calendar date. Duplicate
// matching compares calendar dates, not instants, so candidates are
// normalized before they reach the detector or the store.
func (t *Transaction) NormalizeDate() {
	t.TransactionDate = DateOnly(t.TransactionDate)
}

// DateOnly returns the UTC calendar date of ts (midnight, UTC).
func DateOnly(ts time.Time) time.Time {
	y, m, d := ts.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
