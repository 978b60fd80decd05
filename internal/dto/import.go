package dto

import (
	"time"

	"github.com/openbooks/ledger_ingest_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SubmitImportRequest is one parsed candidate submitted for import.
type SubmitImportRequest struct {
	TenantID        string          `json:"tenantID" binding:"required,tenantid"`
	TransactionDate time.Time       `json:"transactionDate" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	Description     string          `json:"description"`
	DebitAccount    string          `json:"debitAccount"`
	CreditAccount   string          `json:"creditAccount"`
	ReferenceNumber string          `json:"referenceNumber" binding:"required"`
	Key1            string          `json:"key1"`
	Key2            string          `json:"key2"`
	Key3            string          `json:"key3"`
	ArtifactLocator string          `json:"artifactLocator"`
	SourceFormat    string          `json:"sourceFormat"`
}

// ToCandidate converts the request to a domain candidate.
func (r SubmitImportRequest) ToCandidate() domain.Transaction {
	return domain.Transaction{
		TenantID:        r.TenantID,
		TransactionDate: r.TransactionDate,
		Amount:          r.Amount,
		Description:     r.Description,
		DebitAccount:    r.DebitAccount,
		CreditAccount:   r.CreditAccount,
		ReferenceNumber: r.ReferenceNumber,
		IdentityKeys: domain.IdentityKeys{
			Key1: r.Key1,
			Key2: r.Key2,
			Key3: r.Key3,
		},
		SourceArtifactLocator: r.ArtifactLocator,
		SourceFormat:          r.SourceFormat,
	}
}

// DecisionRequest carries the accept/cancel signal for an awaiting import.
type DecisionRequest struct {
	Decision string `json:"decision" binding:"required,oneof=accept cancel"`
}

// MatchDetail surfaces an existing transaction a candidate collided with.
// Only fields the importing user needs for the accept/cancel call are
// exposed.
type MatchDetail struct {
	TransactionID   string          `json:"transactionID"`
	TransactionDate time.Time       `json:"transactionDate"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	ReferenceNumber string          `json:"referenceNumber"`
}

// ImportSessionResponse is the state of one import workflow.
type ImportSessionResponse struct {
	ImportID              string        `json:"importID"`
	State                 string        `json:"state"`
	InsertedTransactionID string        `json:"insertedTransactionID,omitempty"`
	Matches               []MatchDetail `json:"matches,omitempty"`
	ExpiresAt             *time.Time    `json:"expiresAt,omitempty"`
}

// BatchImportResponse reports the outcome of a CSV batch submission.
type BatchImportResponse struct {
	Submitted int                     `json:"submitted"`
	Inserted  int                     `json:"inserted"`
	Awaiting  int                     `json:"awaitingDecision"`
	Sessions  []ImportSessionResponse `json:"sessions"`
}

// DecisionResponse is one duplicate decision audit record.
type DecisionResponse struct {
	DecisionID           string          `json:"decisionID"`
	ImportID             string          `json:"importID"`
	MatchedTransactionID string          `json:"matchedTransactionID"`
	Decision             string          `json:"decision"`
	ReferenceNumber      string          `json:"referenceNumber"`
	TransactionDate      time.Time       `json:"transactionDate"`
	Amount               decimal.Decimal `json:"amount"`
	DecidedBy            string          `json:"decidedBy"`
	DecidedAt            time.Time       `json:"decidedAt"`
}

// ListDecisionsResponse is a tenant's duplicate decision audit trail.
type ListDecisionsResponse struct {
	Decisions []DecisionResponse `json:"decisions"`
}

// ToDecisionResponses converts domain decision records to response DTOs.
func ToDecisionResponses(records []domain.DuplicateDecision) []DecisionResponse {
	out := make([]DecisionResponse, len(records))
	for i, r := range records {
		out[i] = DecisionResponse{
			DecisionID:           r.DecisionID,
			ImportID:             r.ImportID,
			MatchedTransactionID: r.MatchedTransactionID,
			Decision:             string(r.Decision),
			ReferenceNumber:      r.ReferenceNumber,
			TransactionDate:      r.TransactionDate,
			Amount:               r.Amount,
			DecidedBy:            r.DecidedBy,
			DecidedAt:            r.DecidedAt,
		}
	}
	return out
}

// ToImportSessionResponse converts a domain session to its response DTO.
func ToImportSessionResponse(session *domain.ImportSession) ImportSessionResponse {
	resp := ImportSessionResponse{
		ImportID:              session.ImportID,
		State:                 string(session.State),
		InsertedTransactionID: session.InsertedTransactionID,
	}
	if session.State == domain.ImportAwaitingDecision {
		expires := session.ExpiresAt
		resp.ExpiresAt = &expires
		resp.Matches = make([]MatchDetail, len(session.Matches))
		for i, m := range session.Matches {
			resp.Matches[i] = MatchDetail{
				TransactionID:   m.TransactionID,
				TransactionDate: m.TransactionDate,
				Amount:          m.Amount,
				Description:     m.Description,
				ReferenceNumber: m.ReferenceNumber,
			}
		}
	}
	return resp
}
