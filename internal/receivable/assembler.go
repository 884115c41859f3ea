// Package receivable assembles a receivable submission from form state: the
// required fields plus optional due-diligence sections.
package receivable

import (
	"context"

	"receivables-desk/internal/domain"
	"receivables-desk/internal/validation"
)

// SubmitFunc receives the finished submission. It is called once per
// successful Confirm and never when validation fails.
type SubmitFunc func(ctx context.Context, sub domain.ReceivableSubmission) error

// ValidateFunc is the schema check for the required fields.
type ValidateFunc func(f domain.ReceivableFields) error

// Assembler owns the state of one receivable form.
type Assembler struct {
	fields   domain.ReceivableFields
	photos   ResourceList
	docs     ResourceList
	contact  domain.DebtorContact
	order    domain.OrderDetails
	validate ValidateFunc
	onCancel func()
}

type Option func(*Assembler)

// WithValidator replaces the default schema check.
func WithValidator(fn ValidateFunc) Option {
	return func(a *Assembler) { a.validate = fn }
}

// WithCancel registers a callback for explicit user cancellation.
func WithCancel(fn func()) Option {
	return func(a *Assembler) { a.onCancel = fn }
}

func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{validate: validation.ValidateReceivable}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Assembler) SetFields(f domain.ReceivableFields) {
	a.fields = f
}

func (a *Assembler) Fields() domain.ReceivableFields {
	return a.fields
}

func (a *Assembler) AddPhotos(refs ...string) {
	a.photos.Append(refs...)
}

func (a *Assembler) RemovePhoto(i int) error {
	return a.photos.RemoveAt(i)
}

func (a *Assembler) Photos() []string {
	return a.photos.Refs()
}

func (a *Assembler) AddDocuments(refs ...string) {
	a.docs.Append(refs...)
}

func (a *Assembler) RemoveDocument(i int) error {
	return a.docs.RemoveAt(i)
}

func (a *Assembler) Documents() []string {
	return a.docs.Refs()
}

func (a *Assembler) UpdateContact(p ContactPatch) {
	p.apply(&a.contact)
}

func (a *Assembler) Contact() domain.DebtorContact {
	return a.contact
}

func (a *Assembler) UpdateOrder(p OrderPatch) {
	p.apply(&a.order)
}

func (a *Assembler) Order() domain.OrderDetails {
	return a.order
}

// Submission builds the payload from current state without validating it.
func (a *Assembler) Submission() domain.ReceivableSubmission {
	return domain.ReceivableSubmission{
		ReceivableFields: a.fields,
		DueDiligence:     buildDueDiligence(a.photos.Refs(), a.docs.Refs(), a.contact, a.order),
	}
}

// Confirm validates the required fields and hands the submission to submit.
// Validation failures come back as validation.Errors.
func (a *Assembler) Confirm(ctx context.Context, submit SubmitFunc) error {
	if err := a.validate(a.fields); err != nil {
		return err
	}
	return submit(ctx, a.Submission())
}

// Cancel discards all local state. Nothing is submitted.
func (a *Assembler) Cancel() {
	if a.onCancel != nil {
		a.onCancel()
	}
	*a = Assembler{validate: a.validate, onCancel: a.onCancel}
}
