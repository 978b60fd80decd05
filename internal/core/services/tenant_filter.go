package services

import "github.com/openbooks/ledger_ingest_app/internal/core/domain"

// FilterByTenants restricts rows to the tenants the requesting principal is
// authorized for. It is a pure function and the single enforcement point for
// tenant isolation on the read path: the snapshot cache holds unfiltered
// cross-tenant data, so every read site must pass its rows through here
// before they reach any external boundary.
//
// Every returned row satisfies row.TenantID ∈ authorizedTenantIDs. An empty
// authorized set yields an empty result.
func FilterByTenants(rows []domain.Transaction, authorizedTenantIDs []string) []domain.Transaction {
	filtered := make([]domain.Transaction, 0, len(rows))
	if len(authorizedTenantIDs) == 0 {
		return filtered
	}

	authorized := make(map[string]struct{}, len(authorizedTenantIDs))
	for _, id := range authorizedTenantIDs {
		authorized[id] = struct{}{}
	}

	for _, row := range rows {
		if _, ok := authorized[row.TenantID]; ok {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// FilterSnapshot applies FilterByTenants to a snapshot's rows. A nil snapshot
// yields an empty result.
func FilterSnapshot(snap *domain.Snapshot, authorizedTenantIDs []string) []domain.Transaction {
	if snap == nil {
		return []domain.Transaction{}
	}
	return FilterByTenants(snap.Transactions, authorizedTenantIDs)
}
