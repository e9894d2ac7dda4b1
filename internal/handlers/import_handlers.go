package handlers

import (
	"net/http"

	"github.com/equitywire/research/internal/cache"
	"github.com/equitywire/research/internal/models"
	"github.com/equitywire/research/internal/services"
	"github.com/gin-gonic/gin"
)

// ImportHandler exposes the batch importer over the admin API
type ImportHandler struct {
	importSvc *services.ImportService
	reportDir string
	memCache  *cache.MemoryCache
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(importSvc *services.ImportService, reportDir string, memCache *cache.MemoryCache) *ImportHandler {
	return &ImportHandler{
		importSvc: importSvc,
		reportDir: reportDir,
		memCache:  memCache,
	}
}

// Import handles POST /admin/import?dry_run=1. Skipped records never fail
// the request; document-level failures do.
func (h *ImportHandler) Import(c *gin.Context) {
	dryRun := c.Query("dry_run") == "1" || c.Query("dry_run") == "true"

	summary, err := h.importSvc.ImportDir(c.Request.Context(), h.reportDir, dryRun, 1)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "import_failed",
			Message: err.Error(),
		})
		return
	}

	if !dryRun && summary.Created > 0 {
		h.memCache.Invalidate()
	}
	c.JSON(http.StatusOK, summary)
}
