package receivable

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"receivables-desk/internal/domain"
	"receivables-desk/internal/validation"

	"github.com/shopspring/decimal"
)

func acmeFields() domain.ReceivableFields {
	return domain.ReceivableFields{
		DebtorName:  "Acme Corp",
		Amount:      "5000",
		Currency:    "USD",
		DueDate:     "2025-06-01",
		Description: "Invoice #123",
		Category:    "Services",
		RiskLevel:   "Medium",
	}
}

type recorder struct {
	calls []domain.ReceivableSubmission
}

func (r *recorder) submit(_ context.Context, sub domain.ReceivableSubmission) error {
	r.calls = append(r.calls, sub)
	return nil
}

func strp(s string) *string { return &s }

func TestConfirm_NoDueDiligence(t *testing.T) {
	a := NewAssembler()
	a.SetFields(acmeFields())

	var rec recorder
	if err := a.Confirm(context.Background(), rec.submit); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if len(rec.calls) != 1 {
		t.Fatalf("expected one submission, got %d", len(rec.calls))
	}

	sub := rec.calls[0]
	if sub.ReceivableFields != acmeFields() {
		t.Fatalf("fields changed: %+v", sub.ReceivableFields)
	}
	if sub.DueDiligence != nil {
		t.Fatalf("expected no due diligence, got %+v", sub.DueDiligence)
	}

	raw, err := json.Marshal(sub)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "due_diligence") {
		t.Fatalf("due_diligence must be absent from payload: %s", raw)
	}
}

func TestConfirm_SingleDocument(t *testing.T) {
	a := NewAssembler()
	a.SetFields(acmeFields())
	a.AddDocuments("/files/abc_contract.pdf")

	var rec recorder
	if err := a.Confirm(context.Background(), rec.submit); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	dd := rec.calls[0].DueDiligence
	if dd == nil {
		t.Fatal("expected due diligence block")
	}
	if !reflect.DeepEqual(dd.LegalDocuments, []string{"/files/abc_contract.pdf"}) {
		t.Fatalf("unexpected documents: %v", dd.LegalDocuments)
	}
	if dd.OrderPhotos != nil || dd.DebtorContact != nil || dd.OrderDetails != nil {
		t.Fatalf("expected only legal documents, got %+v", dd)
	}

	raw, _ := json.Marshal(dd)
	want := `{"legal_documents":["/files/abc_contract.pdf"]}`
	if string(raw) != want {
		t.Fatalf("expected %s, got %s", want, raw)
	}
}

func TestConfirm_ValidationFailureSkipsSubmit(t *testing.T) {
	a := NewAssembler()
	f := acmeFields()
	f.Amount = "-1"
	f.Currency = ""
	a.SetFields(f)

	var rec recorder
	err := a.Confirm(context.Background(), rec.submit)

	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation errors, got %v", err)
	}
	if got := verrs.Fields(); !reflect.DeepEqual(got, []string{"amount", "currency"}) {
		t.Fatalf("unexpected invalid fields: %v", got)
	}
	if len(rec.calls) != 0 {
		t.Fatalf("submit must not be called on validation failure")
	}
}

func TestConfirm_SubmitErrorPropagates(t *testing.T) {
	a := NewAssembler()
	a.SetFields(acmeFields())

	boom := errors.New("db down")
	calls := 0
	err := a.Confirm(context.Background(), func(context.Context, domain.ReceivableSubmission) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected submit error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected submit once, got %d", calls)
	}
}

func TestConfirm_CustomValidator(t *testing.T) {
	a := NewAssembler(WithValidator(func(domain.ReceivableFields) error { return nil }))

	var rec recorder
	if err := a.Confirm(context.Background(), rec.submit); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if len(rec.calls) != 1 {
		t.Fatalf("expected one submission")
	}
}

func TestContactGatedByName(t *testing.T) {
	a := NewAssembler()
	a.UpdateContact(ContactPatch{Email: strp("ap@acme.test"), Phone: strp("555-0100")})

	if dd := a.Submission().DueDiligence; dd != nil {
		t.Fatalf("contact without name must be omitted, got %+v", dd)
	}

	a.UpdateContact(ContactPatch{Name: strp("Jane Roe")})
	dd := a.Submission().DueDiligence
	if dd == nil || dd.DebtorContact == nil {
		t.Fatal("expected contact once the name is set")
	}
	want := domain.DebtorContact{Name: "Jane Roe", Email: "ap@acme.test", Phone: "555-0100"}
	if *dd.DebtorContact != want {
		t.Fatalf("merge lost fields: %+v", *dd.DebtorContact)
	}
}

func TestOrderGatedByNumber(t *testing.T) {
	a := NewAssembler()
	a.UpdateOrder(OrderPatch{ProductDescription: strp("Widgets"), Quantity: strp("4")})
	if a.Submission().DueDiligence != nil {
		t.Fatal("order without number must be omitted")
	}

	a.UpdateOrder(OrderPatch{OrderNumber: strp("PO-77"), UnitPrice: strp("2.50")})
	dd := a.Submission().DueDiligence
	if dd == nil || dd.OrderDetails == nil {
		t.Fatal("expected order details")
	}
	o := dd.OrderDetails
	if o.OrderNumber != "PO-77" || o.ProductDescription != "Widgets" || o.Quantity != 4 {
		t.Fatalf("merge lost fields: %+v", o)
	}
	if !o.UnitPrice.Equal(decimal.RequireFromString("2.5")) {
		t.Fatalf("unexpected unit price %s", o.UnitPrice)
	}
}

func TestOrderNumericCoercion(t *testing.T) {
	a := NewAssembler()
	a.UpdateOrder(OrderPatch{Quantity: strp("12"), UnitPrice: strp("9.99"), TotalAmount: strp("119.88")})
	a.UpdateOrder(OrderPatch{Quantity: strp("twelve"), UnitPrice: strp("n/a"), TotalAmount: strp("")})

	o := a.Order()
	if o.Quantity != 0 {
		t.Fatalf("expected quantity coerced to 0, got %d", o.Quantity)
	}
	if !o.UnitPrice.IsZero() || !o.TotalAmount.IsZero() {
		t.Fatalf("expected prices coerced to 0, got %s / %s", o.UnitPrice, o.TotalAmount)
	}
}

func TestAllSectionsPresent(t *testing.T) {
	a := NewAssembler()
	a.SetFields(acmeFields())
	a.AddPhotos("p1", "p2")
	a.AddDocuments("d1")
	a.UpdateContact(ContactPatch{Name: strp("Jane")})
	a.UpdateOrder(OrderPatch{OrderNumber: strp("PO-1")})

	dd := a.Submission().DueDiligence
	if dd == nil || len(dd.OrderPhotos) != 2 || len(dd.LegalDocuments) != 1 || dd.DebtorContact == nil || dd.OrderDetails == nil {
		t.Fatalf("expected every section, got %+v", dd)
	}
}

func TestPhotosRemovedToEmptyAreOmitted(t *testing.T) {
	a := NewAssembler()
	a.AddPhotos("p1")
	if err := a.RemovePhoto(0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if a.Submission().DueDiligence != nil {
		t.Fatal("empty photo list must not produce a block")
	}
}

func TestCancelResetsState(t *testing.T) {
	cancelled := 0
	a := NewAssembler(WithCancel(func() { cancelled++ }))
	a.SetFields(acmeFields())
	a.AddPhotos("p1")
	a.UpdateContact(ContactPatch{Name: strp("Jane")})

	a.Cancel()

	if cancelled != 1 {
		t.Fatalf("expected cancel callback once, got %d", cancelled)
	}
	if a.Fields() != (domain.ReceivableFields{}) || a.Photos() != nil || a.Contact() != (domain.DebtorContact{}) {
		t.Fatal("expected state to be discarded")
	}

	var rec recorder
	if err := a.Confirm(context.Background(), rec.submit); err == nil {
		t.Fatal("expected validation to fail after cancel")
	}
}
