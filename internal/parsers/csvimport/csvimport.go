// Package csvimport parses the canonical CSV interchange format into import
// candidates. Per-bank column mappings are the job of the upstream export
// tooling; this parser only consumes the already-canonical shape.
package csvimport

import (
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/openbooks/ledger_ingest_app/internal/apperrors"
	"github.com/openbooks/ledger_ingest_app/internal/core/domain"
)

// dateFormat is the canonical date layout (ISO calendar date).
const dateFormat = "2006-01-02"

// SourceFormat tags candidates produced by this parser.
const SourceFormat = "canonical_csv"

// canonicalRow is one line of the canonical CSV interchange format.
type canonicalRow struct {
	Date          string          `csv:"Date"`          // Calendar date, YYYY-MM-DD
	Amount        decimal.Decimal `csv:"Amount"`        // Signed decimal amount
	Description   string          `csv:"Description"`   // Free text
	DebitAccount  string          `csv:"DebitAccount"`  // Ledger account code
	CreditAccount string          `csv:"CreditAccount"` // Ledger account code
	Reference     string          `csv:"Reference"`     // Primary business reference
	Key1          string          `csv:"Key1"`          // Optional identity key
	Key2          string          `csv:"Key2"`          // Optional identity key
	Key3          string          `csv:"Key3"`          // Optional identity key
}

// Parse reads canonical CSV from r and returns candidate transactions in file
// order. Candidates carry no tenant or artifact locator; the caller assigns
// both. A malformed row fails the whole batch with a row-numbered validation
// error rather than silently skipping lines.
func Parse(r io.Reader) ([]domain.Transaction, error) {
	rows := []*canonicalRow{}
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("%w: failed to parse CSV: %v", apperrors.ErrValidation, err)
	}

	candidates := make([]domain.Transaction, 0, len(rows))
	for i, row := range rows {
		candidate, err := toCandidate(row)
		if err != nil {
			// Row numbers are 1-based and account for the header line.
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

func toCandidate(row *canonicalRow) (domain.Transaction, error) {
	if row.Reference == "" {
		return domain.Transaction{}, fmt.Errorf("%w: Reference is required", apperrors.ErrValidation)
	}

	date, err := time.ParseInLocation(dateFormat, row.Date, time.UTC)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("%w: invalid Date %q, expected YYYY-MM-DD", apperrors.ErrValidation, row.Date)
	}

	return domain.Transaction{
		TransactionDate: date,
		Amount:          row.Amount,
		Description:     row.Description,
		DebitAccount:    row.DebitAccount,
		CreditAccount:   row.CreditAccount,
		ReferenceNumber: row.Reference,
		IdentityKeys: domain.IdentityKeys{
			Key1: row.Key1,
			Key2: row.Key2,
			Key3: row.Key3,
		},
		SourceFormat: SourceFormat,
	}, nil
}
