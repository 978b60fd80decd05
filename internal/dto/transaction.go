package dto

import (
	"time"

	"github.com/openbooks/ledger_ingest_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionResponse defines the data returned for a ledger transaction.
type TransactionResponse struct {
	TransactionID   string          `json:"transactionID"`
	TenantID        string          `json:"tenantID"`
	TransactionDate time.Time       `json:"transactionDate"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	DebitAccount    string          `json:"debitAccount"`
	CreditAccount   string          `json:"creditAccount"`
	ReferenceNumber string          `json:"referenceNumber"`
	SourceFormat    string          `json:"sourceFormat,omitempty"`
}

// ListTransactionsResponse wraps the filtered read result together with the
// snapshot metadata so callers can reason about staleness.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	RowCount     int                   `json:"rowCount"`
	SnapshotAt   time.Time             `json:"snapshotAt"`
}

// ToTransactionResponse converts a domain.Transaction to its response DTO.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:   txn.TransactionID,
		TenantID:        txn.TenantID,
		TransactionDate: txn.TransactionDate,
		Amount:          txn.Amount,
		Description:     txn.Description,
		DebitAccount:    txn.DebitAccount,
		CreditAccount:   txn.CreditAccount,
		ReferenceNumber: txn.ReferenceNumber,
		SourceFormat:    txn.SourceFormat,
	}
}

// ToTransactionResponses converts a slice of domain transactions.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i, txn := range txns {
		responses[i] = ToTransactionResponse(&txn)
	}
	return responses
}
