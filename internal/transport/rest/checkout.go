package rest

import (
	"errors"
	"log"
	"net/http"

	"receivables-desk/internal/checkout"
	"receivables-desk/internal/repository"
	"receivables-desk/internal/validation"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) quote(w http.ResponseWriter, r *http.Request) {
	q, err := h.checkout.Quote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.checkoutError(w, "quote", err)
		return
	}
	Success(w, "", q)
}

func (h *Handler) checkoutSecurity(w http.ResponseWriter, r *http.Request) {
	req, err := DecodeCheckoutRequest(r)
	if err != nil {
		ErrorBadRequest(w, "invalid JSON")
		return
	}

	sec, err := h.checkout.Security(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.checkoutError(w, "checkout", err)
		return
	}

	co := checkout.New(sec)
	if err := co.SelectMethod(req.PaymentMethod); err != nil {
		ErrorValidation(w, "payment is invalid", map[string]string{"payment_method": err.Error()})
		return
	}
	co.SetCard(req.Card)

	payment, err := h.checkout.Pay(r.Context(), subscriber(r), co)
	if err != nil {
		h.checkoutError(w, "checkout", err)
		return
	}

	SuccessCreated(w, "payment submitted", payment)
}

func (h *Handler) checkoutError(w http.ResponseWriter, op string, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		ErrorValidation(w, "payment is invalid", verrs)
	case errors.Is(err, repository.ErrNotFound):
		ErrorNotFound(w, "security not found")
	case errors.Is(err, checkout.ErrInvalidSecurityAmount):
		ErrorValidation(w, "security cannot be priced", map[string]string{"total_value": err.Error()})
	default:
		log.Printf("[HTTP] %s error: %v", op, err)
		ErrorInternal(w, "failed to process payment")
	}
}
