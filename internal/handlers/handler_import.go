package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openbooks/ledger_ingest_app/internal/apperrors"
	"github.com/openbooks/ledger_ingest_app/internal/core/domain"
	portssvc "github.com/openbooks/ledger_ingest_app/internal/core/ports/services"
	"github.com/openbooks/ledger_ingest_app/internal/dto"
	"github.com/openbooks/ledger_ingest_app/internal/middleware"
	"github.com/openbooks/ledger_ingest_app/internal/parsers/csvimport"
	"github.com/openbooks/ledger_ingest_app/internal/utils"
)

// importHandler handles HTTP requests for the import workflow.
type importHandler struct {
	importer  portssvc.ImportSvcFacade
	artifacts portssvc.ArtifactStore
	posthog   *utils.PosthogClientWrapper
}

func newImportHandler(importer portssvc.ImportSvcFacade, artifacts portssvc.ArtifactStore, posthog *utils.PosthogClientWrapper) *importHandler {
	return &importHandler{importer: importer, artifacts: artifacts, posthog: posthog}
}

// RegisterImportRoutes registers the import workflow routes.
func RegisterImportRoutes(rg *gin.RouterGroup, importer portssvc.ImportSvcFacade, artifacts portssvc.ArtifactStore, posthog *utils.PosthogClientWrapper) {
	h := newImportHandler(importer, artifacts, posthog)

	imports := rg.Group("/imports")
	{
		imports.POST("", h.submitImport)
		imports.POST("/csv", h.submitCSV)
		imports.GET("/:importID", h.getImport)
		imports.POST("/:importID/decision", h.decideImport)
	}

	rg.GET("/decisions", h.listDecisions)
}

// submitImport godoc
// @Summary Submit one parsed import candidate
// @Description Runs the duplicate check. With no matches the candidate is inserted immediately; with matches the import awaits an accept/cancel decision.
// @Tags imports
// @Accept json
// @Produce json
// @Param candidate body dto.SubmitImportRequest true "Import candidate"
// @Success 201 {object} dto.ImportSessionResponse "Inserted"
// @Success 202 {object} dto.ImportSessionResponse "Awaiting decision"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Tenant not authorized"
// @Router /imports [post]
func (h *importHandler) submitImport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.SubmitImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid import candidate payload", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	userID, tenantOK := h.authorizeTenant(c, req.TenantID)
	if !tenantOK {
		return
	}

	session, err := h.importer.SubmitCandidate(c.Request.Context(), req.TenantID, req.ToCandidate(), userID)
	if err != nil {
		h.renderImportError(c, err, "Failed to submit import candidate")
		return
	}

	h.renderSession(c, session)
}

// submitCSV godoc
// @Summary Submit a canonical CSV batch
// @Description Stores the uploaded file as the batch's source artifact, parses it into candidates and submits each through the duplicate check.
// @Tags imports
// @Accept multipart/form-data
// @Produce json
// @Param tenantId formData string true "Tenant the batch belongs to"
// @Param file formData file true "Canonical CSV file"
// @Success 200 {object} dto.BatchImportResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Tenant not authorized"
// @Router /imports/csv [post]
func (h *importHandler) submitCSV(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	tenantID := c.PostForm("tenantId")
	userID, tenantOK := h.authorizeTenant(c, tenantID)
	if !tenantOK {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "CSV file is required"})
		return
	}

	parseFile, err := fileHeader.Open()
	if err != nil {
		logger.Error("Failed to open uploaded CSV", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer parseFile.Close()

	// Parse before storing: a rejected batch must not leave an artifact
	// behind.
	candidates, err := csvimport.Parse(parseFile)
	if err != nil {
		logger.Warn("CSV parse failed", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Re-open for storage; Parse consumed the stream.
	storeFile, err := fileHeader.Open()
	if err != nil {
		logger.Error("Failed to reopen uploaded CSV", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer storeFile.Close()

	locator, err := h.artifacts.Save(c.Request.Context(), fileHeader.Filename, storeFile)
	if err != nil {
		logger.Error("Failed to store uploaded CSV", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store uploaded file"})
		return
	}

	resp := dto.BatchImportResponse{Sessions: make([]dto.ImportSessionResponse, 0, len(candidates))}
	for _, candidate := range candidates {
		candidate.SourceArtifactLocator = locator
		session, err := h.importer.SubmitCandidate(c.Request.Context(), tenantID, candidate, userID)
		if err != nil {
			logger.Error("Batch candidate submission failed",
				slog.Int("submitted", resp.Submitted),
				slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     "Batch import failed after " + strconv.Itoa(resp.Submitted) + " candidates",
				"submitted": resp.Submitted,
			})
			return
		}
		resp.Submitted++
		switch session.State {
		case domain.ImportInserted:
			resp.Inserted++
		case domain.ImportAwaitingDecision:
			resp.Awaiting++
		}
		resp.Sessions = append(resp.Sessions, dto.ToImportSessionResponse(session))
	}

	logger.Info("CSV batch processed",
		slog.Int("submitted", resp.Submitted),
		slog.Int("inserted", resp.Inserted),
		slog.Int("awaiting_decision", resp.Awaiting))
	c.JSON(http.StatusOK, resp)
}

// getImport godoc
// @Summary Get the state of an import
// @Tags imports
// @Produce json
// @Param importID path string true "Import ID"
// @Success 200 {object} dto.ImportSessionResponse
// @Failure 404 {object} map[string]string "Unknown import"
// @Router /imports/{importID} [get]
func (h *importHandler) getImport(c *gin.Context) {
	session, ok := h.loadAuthorizedSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.ToImportSessionResponse(session))
}

// decideImport godoc
// @Summary Resolve a duplicate with an accept or cancel decision
// @Description Accept inserts the candidate; cancel cleans up its artifact. Repeating a decision on a finished import returns the terminal state unchanged.
// @Tags imports
// @Accept json
// @Produce json
// @Param importID path string true "Import ID"
// @Param decision body dto.DecisionRequest true "accept or cancel"
// @Success 200 {object} dto.ImportSessionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Unknown import"
// @Failure 410 {object} map[string]string "Decision window expired"
// @Router /imports/{importID}/decision [post]
func (h *importHandler) decideImport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Decision must be accept or cancel"})
		return
	}
	decision := domain.DecisionAccept
	if req.Decision == "cancel" {
		decision = domain.DecisionCancel
	}

	session, ok := h.loadAuthorizedSession(c)
	if !ok {
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	decided, err := h.importer.Decide(c.Request.Context(), session.ImportID, decision, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrDecisionExpired) {
			logger.Warn("Decision arrived after session expiry", slog.String("import_id", session.ImportID))
			c.JSON(http.StatusGone, gin.H{"error": "Decision window expired; the import was cancelled"})
			return
		}
		h.renderImportError(c, err, "Failed to apply import decision")
		return
	}

	middleware.PosthogEvent(c, h.posthog, "duplicate_decision", map[string]any{
		"decision": string(decision),
		"state":    string(decided.State),
	})
	c.JSON(http.StatusOK, dto.ToImportSessionResponse(decided))
}

// listDecisions godoc
// @Summary List a tenant's duplicate decision audit trail
// @Tags imports
// @Produce json
// @Param tenantId query string true "Tenant to list decisions for"
// @Param limit query int false "Maximum records to return (default 50)"
// @Success 200 {object} dto.ListDecisionsResponse
// @Failure 403 {object} map[string]string "Tenant not authorized"
// @Router /decisions [get]
func (h *importHandler) listDecisions(c *gin.Context) {
	tenantID := c.Query("tenantId")
	if _, ok := h.authorizeTenant(c, tenantID); !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	records, err := h.importer.ListDecisions(c.Request.Context(), tenantID, limit)
	if err != nil {
		h.renderImportError(c, err, "Failed to list duplicate decisions")
		return
	}

	c.JSON(http.StatusOK, dto.ListDecisionsResponse{Decisions: dto.ToDecisionResponses(records)})
}

// loadAuthorizedSession fetches the session for the path's importID and
// verifies the principal may see it. Unknown and unauthorized sessions are
// both reported as 404 so ids cannot be probed across tenants.
func (h *importHandler) loadAuthorizedSession(c *gin.Context) (*domain.ImportSession, bool) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	importID := c.Param("importID")

	session, err := h.importer.GetSession(c.Request.Context(), importID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Import not found"})
		} else {
			logger.Error("Failed to load import session", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load import"})
		}
		return nil, false
	}

	authorized, ok := middleware.GetAuthorizedTenantsFromContext(c)
	if !ok || len(intersect(authorized, session.TenantID)) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Import not found"})
		return nil, false
	}
	return session, true
}

// authorizeTenant checks the target tenant against the principal's
// authorized set and returns the acting user id.
func (h *importHandler) authorizeTenant(c *gin.Context, tenantID string) (string, bool) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	if tenantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tenant ID is required"})
		return "", false
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}

	authorized, ok := middleware.GetAuthorizedTenantsFromContext(c)
	if !ok || len(intersect(authorized, tenantID)) == 0 {
		logger.Warn("Import attempted for unauthorized tenant")
		c.JSON(http.StatusForbidden, gin.H{"error": "Tenant not authorized"})
		return "", false
	}
	return userID, true
}

func (h *importHandler) renderImportError(c *gin.Context, err error, msg string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	switch {
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn(msg, slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInsertFailed):
		logger.Error(msg, slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Transaction could not be stored; please retry"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Import not found"})
	default:
		logger.Error(msg, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

func (h *importHandler) renderSession(c *gin.Context, session *domain.ImportSession) {
	status := http.StatusCreated
	if session.State == domain.ImportAwaitingDecision {
		status = http.StatusAccepted
	}
	c.JSON(status, dto.ToImportSessionResponse(session))
}
