package mapping

import (
	"github.com/openbooks/ledger_ingest_app/internal/core/domain"
	"github.com/openbooks/ledger_ingest_app/internal/models"
)

// ToModelTransaction converts a domain.Transaction to its persistence model.
func ToModelTransaction(t domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:         t.TransactionID,
		TenantID:              t.TenantID,
		TransactionDate:       t.TransactionDate,
		Amount:                t.Amount,
		Description:           t.Description,
		DebitAccount:          t.DebitAccount,
		CreditAccount:         t.CreditAccount,
		ReferenceNumber:       t.ReferenceNumber,
		IdentityKey1:          t.IdentityKeys.Key1,
		IdentityKey2:          t.IdentityKeys.Key2,
		IdentityKey3:          t.IdentityKeys.Key3,
		SourceArtifactLocator: t.SourceArtifactLocator,
		SourceFormat:          t.SourceFormat,
		AuditFields:           toModelAuditFields(t.AuditFields),
	}
}

// ToDomainTransaction converts a persistence model to a domain.Transaction.
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:   m.TransactionID,
		TenantID:        m.TenantID,
		TransactionDate: m.TransactionDate,
		Amount:          m.Amount,
		Description:     m.Description,
		DebitAccount:    m.DebitAccount,
		CreditAccount:   m.CreditAccount,
		ReferenceNumber: m.ReferenceNumber,
		IdentityKeys: domain.IdentityKeys{
			Key1: m.IdentityKey1,
			Key2: m.IdentityKey2,
			Key3: m.IdentityKey3,
		},
		SourceArtifactLocator: m.SourceArtifactLocator,
		SourceFormat:          m.SourceFormat,
		AuditFields:           toDomainAuditFields(m.AuditFields),
	}
}

// ToDomainTransactionSlice converts a slice of persistence models.
func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		out[i] = ToDomainTransaction(m)
	}
	return out
}
