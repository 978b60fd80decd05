package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openbooks/ledger_ingest_app/internal/apperrors"
	portssvc "github.com/openbooks/ledger_ingest_app/internal/core/ports/services"
	"github.com/openbooks/ledger_ingest_app/internal/core/services"
	"github.com/openbooks/ledger_ingest_app/internal/dto"
	"github.com/openbooks/ledger_ingest_app/internal/middleware"
)

// transactionHandler handles HTTP requests for the cached read path.
type transactionHandler struct {
	cache portssvc.SnapshotCacheSvc
}

func newTransactionHandler(cache portssvc.SnapshotCacheSvc) *transactionHandler {
	return &transactionHandler{cache: cache}
}

// registerTransactionRoutes registers the read-side routes.
func registerTransactionRoutes(rg *gin.RouterGroup, cache portssvc.SnapshotCacheSvc) {
	h := newTransactionHandler(cache)
	rg.GET("/transactions", h.listTransactions)
}

// listTransactions godoc
// @Summary List transactions for the principal's tenants
// @Description Serves the snapshot cache filtered to the principal's authorized tenants. An optional tenantId query narrows the result within that set.
// @Tags transactions
// @Produce json
// @Param tenantId query string false "Narrow to one authorized tenant"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 403 {object} map[string]string "Tenant not in the authorized set"
// @Failure 503 {object} map[string]string "Cache unavailable"
// @Router /transactions [get]
func (h *transactionHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	authorized, ok := middleware.GetAuthorizedTenantsFromContext(c)
	if !ok {
		logger.Error("Authorized tenants missing from context")
		c.JSON(http.StatusForbidden, gin.H{"error": "No authorized tenants"})
		return
	}

	// Optional narrowing; only within the authorized set.
	if tenantID := c.Query("tenantId"); tenantID != "" {
		narrowed := intersect(authorized, tenantID)
		if len(narrowed) == 0 {
			logger.Warn("Requested tenant outside authorized set")
			c.JSON(http.StatusForbidden, gin.H{"error": "Tenant not authorized"})
			return
		}
		authorized = narrowed
	}

	snap, err := h.cache.Get(c.Request.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrCacheUnavailable) {
			logger.Error("Snapshot cache unavailable", slog.String("error", err.Error()))
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Transaction data is temporarily unavailable"})
			return
		}
		logger.Error("Failed to read snapshot cache", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list transactions"})
		return
	}

	// The snapshot holds unfiltered cross-tenant rows; this filter is the
	// isolation boundary and must precede any serialization.
	rows := services.FilterSnapshot(snap, authorized)

	c.JSON(http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(rows),
		RowCount:     len(rows),
		SnapshotAt:   snap.LoadedAt,
	})
}

func intersect(authorized []string, tenantID string) []string {
	for _, id := range authorized {
		if id == tenantID {
			return []string{tenantID}
		}
	}
	return nil
}
