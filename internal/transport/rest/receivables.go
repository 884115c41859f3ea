package rest

import (
	"errors"
	"log"
	"net/http"

	"receivables-desk/internal/validation"
)

func (h *Handler) createReceivable(w http.ResponseWriter, r *http.Request) {
	req, err := DecodeReceivableRequest(r)
	if err != nil {
		ErrorBadRequest(w, "invalid JSON")
		return
	}

	rcv, err := h.receivables.Submit(r.Context(), subscriber(r), req.Assembler())
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		ErrorValidation(w, "receivable is invalid", verrs)
		return
	case err != nil:
		log.Printf("[HTTP] createReceivable error: %v", err)
		ErrorInternal(w, "failed to submit receivable")
		return
	}

	SuccessCreated(w, "receivable submitted", rcv)
}

func (h *Handler) exportReceivables(w http.ResponseWriter, r *http.Request) {
	req, err := ValidateExportRequest(r)
	if err != nil {
		if _, ok := err.(*RequestError); ok {
			ErrorBadRequest(w, err.Error())
			return
		}
		ErrorBadRequest(w, "invalid JSON")
		return
	}

	sub := subscriber(r)
	if sub == "" {
		ErrorBadRequest(w, "subscriber is required")
		return
	}

	exportID, err := h.receivables.StartReceivablesExport(r.Context(), req.Fields, req.Filter, sub)
	if err != nil {
		log.Printf("[HTTP] startReceivablesExport error: %v", err)
		ErrorInternal(w, "failed to start export")
		return
	}

	SuccessAccepted(w, "export queued", map[string]interface{}{
		"export_id": exportID,
	})
}
