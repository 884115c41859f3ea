package rest

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"receivables-desk/internal/domain"
	"receivables-desk/internal/receivable"
	"receivables-desk/internal/repository"
	"receivables-desk/internal/validation"
)

type RequestError struct {
	Field   string
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

// ReceivableRequest is the receivable form as posted by the client. The
// due-diligence parts are all optional.
type ReceivableRequest struct {
	domain.ReceivableFields

	OrderPhotos    []string                 `json:"order_photos"`
	LegalDocuments []string                 `json:"legal_documents"`
	DebtorContact  *receivable.ContactPatch `json:"debtor_contact"`
	OrderDetails   *rawOrderPatch           `json:"order_details"`
}

// rawOrderPatch accepts numbers or text for the numeric order fields.
type rawOrderPatch struct {
	OrderNumber        *string     `json:"order_number"`
	ProductDescription *string     `json:"product_description"`
	Quantity           interface{} `json:"quantity"`
	UnitPrice          interface{} `json:"unit_price"`
	TotalAmount        interface{} `json:"total_amount"`
	DeliveryDate       *string     `json:"delivery_date"`
}

func (p *rawOrderPatch) patch() receivable.OrderPatch {
	return receivable.OrderPatch{
		OrderNumber:        p.OrderNumber,
		ProductDescription: p.ProductDescription,
		Quantity:           toTextPtr(p.Quantity),
		UnitPrice:          toTextPtr(p.UnitPrice),
		TotalAmount:        toTextPtr(p.TotalAmount),
		DeliveryDate:       p.DeliveryDate,
	}
}

func DecodeReceivableRequest(r *http.Request) (*ReceivableRequest, error) {
	var req ReceivableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// Assembler replays the posted form into a fresh assembler.
func (req *ReceivableRequest) Assembler() *receivable.Assembler {
	a := receivable.NewAssembler()
	a.SetFields(req.ReceivableFields)
	a.AddPhotos(req.OrderPhotos...)
	a.AddDocuments(req.LegalDocuments...)
	if req.DebtorContact != nil {
		a.UpdateContact(*req.DebtorContact)
	}
	if req.OrderDetails != nil {
		a.UpdateOrder(req.OrderDetails.patch())
	}
	return a
}

// CheckoutRequest is the payment form. Any amount the client sends is
// ignored; the charge always comes from the security record.
type CheckoutRequest struct {
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	Card          validation.Card      `json:"card"`
}

func DecodeCheckoutRequest(r *http.Request) (*CheckoutRequest, error) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		return nil, err
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = domain.MethodCreditCard
	}
	return &req, nil
}

type ExportRequest struct {
	Fields []string
	Filter repository.ReceivablesFilter
}

type rawExportRequest struct {
	Fields      []string    `json:"fields"`
	Currency    interface{} `json:"currency"`
	RiskLevel   interface{} `json:"risk_level"`
	Category    interface{} `json:"category"`
	CreatedFrom interface{} `json:"created_from"`
	CreatedTo   interface{} `json:"created_to"`
}

func ValidateExportRequest(r *http.Request) (*ExportRequest, error) {
	var raw rawExportRequest

	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil && err != io.EOF {
		return nil, err
	}

	if len(raw.Fields) == 0 {
		return nil, &RequestError{Field: "fields", Message: "fields is required and must be an array"}
	}

	var f repository.ReceivablesFilter
	var err error

	if f.Currency, err = toStringPtr(raw.Currency); err != nil {
		return nil, &RequestError{Field: "currency", Message: "currency must be string or empty"}
	}
	if f.RiskLevel, err = toStringPtr(raw.RiskLevel); err != nil {
		return nil, &RequestError{Field: "risk_level", Message: "risk_level must be string or empty"}
	}
	if f.Category, err = toStringPtr(raw.Category); err != nil {
		return nil, &RequestError{Field: "category", Message: "category must be string or empty"}
	}
	if f.CreatedFrom, err = toDatePtr(raw.CreatedFrom); err != nil {
		return nil, &RequestError{Field: "created_from", Message: "created_from must be YYYY-MM-DD or empty"}
	}
	if f.CreatedTo, err = toDatePtr(raw.CreatedTo); err != nil {
		return nil, &RequestError{Field: "created_to", Message: "created_to must be YYYY-MM-DD or empty"}
	}

	return &ExportRequest{Fields: raw.Fields, Filter: f}, nil
}

func toStringPtr(v interface{}) (*string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		if t == "" {
			return nil, nil
		}
		return &t, nil
	default:
		return nil, &RequestError{Message: "invalid type for string field"}
	}
}

// toTextPtr renders whatever was typed as text for the lenient parsers.
// Values that are neither text nor numbers become empty text.
func toTextPtr(v interface{}) *string {
	var s string
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		s = t
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	}
	return &s
}

func toDatePtr(v interface{}) (*time.Time, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		if t == "" {
			return nil, nil
		}
		parsed, err := time.Parse("2006-01-02", t)
		if err != nil {
			return nil, err
		}
		return &parsed, nil
	default:
		return nil, &RequestError{Message: "invalid type for date field"}
	}
}
