// Package checkout computes what a security purchase costs and assembles the
// payment submission for the selected method.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"receivables-desk/internal/domain"
	"receivables-desk/internal/validation"
)

var ErrUnknownMethod = errors.New("unknown payment method")

// SubmitFunc receives the payment submission on a successful Confirm.
type SubmitFunc func(ctx context.Context, sub domain.PaymentSubmission) error

// Checkout holds the state of one payment form for a single security.
type Checkout struct {
	security domain.Security
	method   domain.PaymentMethod
	card     validation.Card
	now      func() time.Time
	onCancel func()
}

type Option func(*Checkout)

// WithClock overrides the time used to check card expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Checkout) { c.now = now }
}

func WithCancel(fn func()) Option {
	return func(c *Checkout) { c.onCancel = fn }
}

func New(sec domain.Security, opts ...Option) *Checkout {
	c := &Checkout{
		security: sec,
		method:   domain.MethodCreditCard,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Checkout) Security() domain.Security {
	return c.security
}

func (c *Checkout) Method() domain.PaymentMethod {
	return c.method
}

// SelectMethod switches the payment method. Switching to a different method
// starts its detail form from scratch.
func (c *Checkout) SelectMethod(m domain.PaymentMethod) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownMethod, m)
	}
	if m != c.method {
		c.card = validation.Card{}
	}
	c.method = m
	return nil
}

// SetCard fills the credit card form. It is a no-op for other methods since
// their forms have no fields.
func (c *Checkout) SetCard(card validation.Card) {
	if c.method != domain.MethodCreditCard {
		return
	}
	c.card = card
}

func (c *Checkout) Card() validation.Card {
	return c.card
}

func (c *Checkout) Totals() (Totals, error) {
	return ComputeTotals(c.security)
}

// Confirm validates the method-specific fields and submits. The amount is
// always the security's total value.
func (c *Checkout) Confirm(ctx context.Context, submit SubmitFunc) error {
	if _, err := c.Totals(); err != nil {
		return err
	}

	if c.method == domain.MethodCreditCard {
		if err := validation.ValidateCard(c.card, c.now()); err != nil {
			return err
		}
	}

	return submit(ctx, domain.PaymentSubmission{
		PaymentMethod: c.method,
		Amount:        c.security.TotalValue,
	})
}

// Cancel discards the form; nothing is submitted.
func (c *Checkout) Cancel() {
	if c.onCancel != nil {
		c.onCancel()
	}
	c.method = domain.MethodCreditCard
	c.card = validation.Card{}
}

var instructions = map[domain.PaymentMethod]string{
	domain.MethodBankTransfer:  "Transfer the total amount to the account shown on your order confirmation. Use the security ID as the payment reference.",
	domain.MethodCrypto:        "A wallet address and exchange rate are issued after confirmation. The quote is valid for 15 minutes.",
	domain.MethodDigitalWallet: "You will be redirected to your digital wallet provider to approve the payment.",
}

// Instructions returns the static text shown for methods without a form.
// It is empty for credit_card.
func Instructions(m domain.PaymentMethod) string {
	return instructions[m]
}
