package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/openbooks/ledger_ingest_app/internal/core/ports/services"
	"github.com/openbooks/ledger_ingest_app/internal/middleware"
)

// adminHandler handles cache administration and import housekeeping.
type adminHandler struct {
	cache    portssvc.SnapshotCacheSvc
	importer portssvc.ImportSvcFacade
}

func newAdminHandler(cache portssvc.SnapshotCacheSvc, importer portssvc.ImportSvcFacade) *adminHandler {
	return &adminHandler{cache: cache, importer: importer}
}

// registerAdminRoutes registers cache administration routes.
func registerAdminRoutes(rg *gin.RouterGroup, cache portssvc.SnapshotCacheSvc, importer portssvc.ImportSvcFacade) {
	h := newAdminHandler(cache, importer)

	admin := rg.Group("/admin")
	{
		admin.POST("/cache/refresh", h.refreshCache)
		admin.POST("/cache/invalidate", h.invalidateCache)
		admin.GET("/cache/stats", h.cacheStats)
		admin.POST("/imports/expire", h.expireImports)
	}
}

// refreshCache godoc
// @Summary Synchronously reload the snapshot cache
// @Tags admin
// @Produce json
// @Success 200 {object} portssvc.CacheStats
// @Failure 502 {object} map[string]string "Backing store unavailable"
// @Router /admin/cache/refresh [post]
func (h *adminHandler) refreshCache(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	snap, err := h.cache.Refresh(c.Request.Context())
	if err != nil {
		// An explicit refresh surfaces its failure to this caller; other
		// readers keep the previous snapshot.
		logger.Error("Explicit cache refresh failed", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Cache refresh failed"})
		return
	}

	logger.Info("Cache refreshed on request", slog.Int("row_count", snap.RowCount))
	c.JSON(http.StatusOK, h.cache.Stats())
}

// invalidateCache godoc
// @Summary Mark the snapshot stale without blocking
// @Tags admin
// @Produce json
// @Success 202 {object} map[string]string
// @Router /admin/cache/invalidate [post]
func (h *adminHandler) invalidateCache(c *gin.Context) {
	h.cache.Invalidate()
	c.JSON(http.StatusAccepted, gin.H{"status": "invalidated"})
}

// cacheStats godoc
// @Summary Report snapshot cache state
// @Tags admin
// @Produce json
// @Success 200 {object} portssvc.CacheStats
// @Router /admin/cache/stats [get]
func (h *adminHandler) cacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.cache.Stats())
}

// expireImports godoc
// @Summary Cancel all imports whose decision window has closed
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]int
// @Router /admin/imports/expire [post]
func (h *adminHandler) expireImports(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	cancelled, err := h.importer.ExpireStale(c.Request.Context())
	if err != nil {
		logger.Error("Failed to expire stale imports", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to expire stale imports"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": cancelled})
}
