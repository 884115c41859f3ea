package rest

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"receivables-desk/internal/service"
)

// uploadAttachment stores one multipart file and returns the reference the
// client appends to its photo or document list.
func (h *Handler) uploadAttachment(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+1<<20)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ErrorTooLarge(w, fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		ErrorBadRequest(w, "invalid form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		ErrorBadRequest(w, "file required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		ErrorInternal(w, "failed to read file")
		return
	}

	kind := service.AttachmentKind(r.FormValue("kind"))
	if kind == "" {
		kind = service.AttachmentDocument
	}

	att, err := h.attachments.Upload(r.Context(), kind, header.Filename, data)
	switch {
	case errors.Is(err, service.ErrAttachmentTooLarge):
		ErrorTooLarge(w, err.Error())
		return
	case errors.Is(err, service.ErrUnknownAttachmentKind),
		errors.Is(err, service.ErrAttachmentEmpty),
		errors.Is(err, service.ErrNotAnImage):
		ErrorBadRequest(w, err.Error())
		return
	case err != nil:
		log.Printf("[HTTP] uploadAttachment error: %v", err)
		ErrorInternal(w, "failed to save file")
		return
	}

	SuccessCreated(w, "", att)
}
