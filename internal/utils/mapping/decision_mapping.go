package mapping

import (
	"github.com/openbooks/ledger_ingest_app/internal/core/domain"
	"github.com/openbooks/ledger_ingest_app/internal/models"
)

// ToModelDecision converts a domain.DuplicateDecision to its persistence model.
func ToModelDecision(d domain.DuplicateDecision) models.DuplicateDecision {
	return models.DuplicateDecision{
		DecisionID:           d.DecisionID,
		ImportID:             d.ImportID,
		TenantID:             d.TenantID,
		MatchedTransactionID: d.MatchedTransactionID,
		Decision:             string(d.Decision),
		ReferenceNumber:      d.ReferenceNumber,
		TransactionDate:      d.TransactionDate,
		Amount:               d.Amount,
		IdentityKey1:         d.IdentityKeys.Key1,
		IdentityKey2:         d.IdentityKeys.Key2,
		IdentityKey3:         d.IdentityKeys.Key3,
		NewArtifactLocator:   d.NewArtifactLocator,
		DecidedBy:            d.DecidedBy,
		DecidedAt:            d.DecidedAt,
	}
}

// ToDomainDecision converts a persistence model to a domain.DuplicateDecision.
func ToDomainDecision(m models.DuplicateDecision) domain.DuplicateDecision {
	return domain.DuplicateDecision{
		DecisionID:           m.DecisionID,
		ImportID:             m.ImportID,
		TenantID:             m.TenantID,
		MatchedTransactionID: m.MatchedTransactionID,
		Decision:             domain.DecisionType(m.Decision),
		ReferenceNumber:      m.ReferenceNumber,
		TransactionDate:      m.TransactionDate,
		Amount:               m.Amount,
		IdentityKeys: domain.IdentityKeys{
			Key1: m.IdentityKey1,
			Key2: m.IdentityKey2,
			Key3: m.IdentityKey3,
		},
		NewArtifactLocator: m.NewArtifactLocator,
		DecidedBy:          m.DecidedBy,
		DecidedAt:          m.DecidedAt,
	}
}
