package rest

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"receivables-desk/internal/service"

	"github.com/go-chi/chi/v5"
)

type ExportListService interface {
	GetExports(ctx context.Context, subscriber string) ([]service.ExportStatus, error)
	GetExport(ctx context.Context, exportID, subscriber string) (service.ExportStatus, error)
}

func (h *Handler) listExports(w http.ResponseWriter, r *http.Request) {
	sub := subscriber(r)
	if sub == "" {
		ErrorBadRequest(w, "subscriber is required")
		return
	}

	exports, err := h.exportList.GetExports(r.Context(), sub)
	if err != nil {
		log.Printf("[HTTP] listExports error: %v", err)
		ErrorInternal(w, "failed to get exports")
		return
	}

	Success(w, "", exports)
}

func (h *Handler) getExport(w http.ResponseWriter, r *http.Request) {
	sub := subscriber(r)
	if sub == "" {
		ErrorBadRequest(w, "subscriber is required")
		return
	}

	exportIDParam := chi.URLParam(r, "export_id")
	if exportIDParam == "" {
		ErrorBadRequest(w, "export_id is required")
		return
	}
	exportID := exportIDParam
	if !strings.HasPrefix(exportID, h.exportPrefix) {
		exportID = h.exportPrefix + exportIDParam
	}

	export, err := h.exportList.GetExport(r.Context(), exportID, sub)
	if errors.Is(err, service.ErrExportNotFound) {
		ErrorNotFound(w, "export not found")
		return
	}
	if err != nil {
		log.Printf("[HTTP] getExport error: %v", err)
		ErrorInternal(w, "failed to get export")
		return
	}

	Success(w, "", export)
}
