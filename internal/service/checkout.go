package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"receivables-desk/internal/checkout"
	"receivables-desk/internal/domain"
	"receivables-desk/internal/validation"
	"receivables-desk/pkg/metrics"

	"github.com/google/uuid"
)

type SecurityRepository interface {
	Get(ctx context.Context, id string) (domain.Security, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) error
}

// Quote is what the checkout form shows before confirm.
type Quote struct {
	Security     domain.Security                 `json:"security"`
	Totals       checkout.Display                `json:"totals"`
	Commission   string                          `json:"commission_rate"`
	Methods      []domain.PaymentMethod          `json:"payment_methods"`
	Instructions map[domain.PaymentMethod]string `json:"instructions"`
}

type CheckoutService struct {
	securities SecurityRepository
	payments   PaymentRepository
	cache      Cache
	cacheTTL   time.Duration
	ws         Notifier
	metrics    Metrics
}

func NewCheckoutService(securities SecurityRepository, payments PaymentRepository, cache Cache, cacheTTL time.Duration, ws Notifier, m Metrics) *CheckoutService {
	return &CheckoutService{
		securities: securities,
		payments:   payments,
		cache:      cache,
		cacheTTL:   cacheTTL,
		ws:         ws,
		metrics:    m,
	}
}

func securityCacheKey(id string) string {
	return "securities:" + id
}

// Security loads a security record, read-through cached. Cache errors fall
// back to the repository.
func (s *CheckoutService) Security(ctx context.Context, id string) (domain.Security, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, securityCacheKey(id)); err == nil {
			var sec domain.Security
			if err := json.Unmarshal([]byte(raw), &sec); err == nil {
				return sec, nil
			}
		}
	}

	sec, err := s.securities.Get(ctx, id)
	if err != nil {
		return domain.Security{}, err
	}

	if s.cache != nil && s.cacheTTL > 0 {
		if data, err := json.Marshal(sec); err == nil {
			if err := s.cache.Set(ctx, securityCacheKey(id), string(data), s.cacheTTL); err != nil {
				log.Printf("[CHECKOUT] cache security %s: %v", id, err)
			}
		}
	}
	return sec, nil
}

func (s *CheckoutService) Quote(ctx context.Context, securityID string) (Quote, error) {
	sec, err := s.Security(ctx, securityID)
	if err != nil {
		return Quote{}, err
	}

	totals, err := checkout.ComputeTotals(sec)
	if err != nil {
		return Quote{}, err
	}

	instructions := make(map[domain.PaymentMethod]string)
	for _, m := range domain.PaymentMethods {
		if text := checkout.Instructions(m); text != "" {
			instructions[m] = text
		}
	}

	return Quote{
		Security:     sec,
		Totals:       totals.Display(),
		Commission:   checkout.CommissionRate.String(),
		Methods:      domain.PaymentMethods,
		Instructions: instructions,
	}, nil
}

// Pay confirms the checkout form and records the payment.
func (s *CheckoutService) Pay(ctx context.Context, subscriber string, co *checkout.Checkout) (domain.Payment, error) {
	var stored domain.Payment
	sec := co.Security()
	method := string(co.Method())

	err := co.Confirm(ctx, func(ctx context.Context, sub domain.PaymentSubmission) error {
		totals, err := checkout.ComputeTotals(sec)
		if err != nil {
			return err
		}

		p := domain.Payment{
			ID:                uuid.NewString(),
			SecurityID:        sec.ID,
			PaymentSubmission: sub,
			Commission:        totals.CommissionAmount.String(),
			Total:             totals.TotalAmount.String(),
		}
		if sub.PaymentMethod == domain.MethodCreditCard {
			p.CardLast4 = lastFour(co.Card().Number)
		}

		if err := s.payments.Create(ctx, &p); err != nil {
			return err
		}
		stored = p
		return nil
	})

	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs), errors.Is(err, checkout.ErrInvalidSecurityAmount):
		s.record(method, metrics.ResultInvalid, 0)
		return domain.Payment{}, err
	case err != nil:
		s.record(method, metrics.ResultFailed, 0)
		log.Printf("[CHECKOUT] store payment for %s failed: %v", sec.ID, err)
		return domain.Payment{}, fmt.Errorf("store payment: %w", err)
	}

	totals, _ := checkout.ComputeTotals(sec)
	s.record(method, metrics.ResultAccepted, totals.TotalAmount.InexactFloat64())
	log.Printf("[CHECKOUT] stored %s security=%s method=%s total=%s", stored.ID, sec.ID, method, stored.Total)

	if s.ws != nil {
		_ = s.ws.NotifyPaymentSubmitted(ctx, subscriber, stored.ID, sec.ID, method, stored.Total)
	}
	return stored, nil
}

func (s *CheckoutService) record(method, result string, total float64) {
	if s.metrics != nil {
		s.metrics.RecordPayment(method, result, total)
	}
}

func lastFour(number string) *string {
	digits := validation.NormalizeCardNumber(number)
	if len(digits) < 4 {
		return nil
	}
	last := digits[len(digits)-4:]
	return &last
}
