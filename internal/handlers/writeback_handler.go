package handlers

import (
	"fmt"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/seqcentral/metior/internal/models"
	"github.com/seqcentral/metior/internal/services/writeback"
)

// WritebackHandler exposes the metrics write-back pipeline to admin tooling.
type WritebackHandler struct {
	writebackService *writeback.Service
	logger           arbor.ILogger
}

// NewWritebackHandler creates a new WritebackHandler
func NewWritebackHandler(writebackService *writeback.Service, logger arbor.ILogger) *WritebackHandler {
	return &WritebackHandler{
		writebackService: writebackService,
		logger:           logger,
	}
}

// RunHandler handles POST /api/writeback/run. Admin only; the run executes
// synchronously and returns its stats.
func (h *WritebackHandler) RunHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	caller, admin := CallerIdentity(r)
	if !admin {
		WriteServiceError(w, fmt.Errorf("%w: write-back requires admin", models.ErrPermission))
		return
	}

	stats, err := h.writebackService.Run(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Str("caller", caller).Msg("Write-back run failed")
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, stats)
}
