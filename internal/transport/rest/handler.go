package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"receivables-desk/internal/checkout"
	"receivables-desk/internal/domain"
	"receivables-desk/internal/receivable"
	"receivables-desk/internal/repository"
	"receivables-desk/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type ReceivableService interface {
	Submit(ctx context.Context, subscriber string, a *receivable.Assembler) (domain.Receivable, error)
	StartReceivablesExport(
		ctx context.Context,
		selected []string,
		filter repository.ReceivablesFilter,
		subscriber string,
	) (string, error)
}

type AttachmentService interface {
	Upload(ctx context.Context, kind service.AttachmentKind, fileName string, data []byte) (service.Attachment, error)
}

type CheckoutService interface {
	Security(ctx context.Context, id string) (domain.Security, error)
	Quote(ctx context.Context, securityID string) (service.Quote, error)
	Pay(ctx context.Context, subscriber string, co *checkout.Checkout) (domain.Payment, error)
}

type Handler struct {
	receivables ReceivableService
	attachments AttachmentService
	checkout    CheckoutService
	exportList  ExportListService

	exportPrefix  string
	maxUploadSize int64
}

func NewHandler(receivables ReceivableService, attachments AttachmentService, payments CheckoutService, exportList ExportListService, exportPrefix string, maxUploadSize int64) *Handler {
	if maxUploadSize <= 0 {
		maxUploadSize = 10 << 20
	}
	return &Handler{
		receivables:   receivables,
		attachments:   attachments,
		checkout:      payments,
		exportList:    exportList,
		exportPrefix:  exportPrefix,
		maxUploadSize: maxUploadSize,
	}
}

func (h *Handler) InitRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
	)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "receivables-desk")
	})

	r.Post("/receivables", h.createReceivable)
	r.Post("/attachments", h.uploadAttachment)

	r.Route("/securities/{id}", func(r chi.Router) {
		r.Get("/quote", h.quote)
		r.Post("/checkout", h.checkoutSecurity)
	})

	r.Route("/export", func(r chi.Router) {
		r.Get("/", h.listExports)
		r.Get("/{export_id}", h.getExport)
		r.Post("/receivables", h.exportReceivables)
	})

	return r
}

// subscriber identifies who receives websocket events for a request.
func subscriber(r *http.Request) string {
	if s := r.Header.Get("X-Subscriber"); s != "" {
		return s
	}
	return r.URL.Query().Get("subscriber")
}
