package receivable

import (
	"strconv"
	"strings"

	"receivables-desk/internal/domain"

	"github.com/shopspring/decimal"
)

// ContactPatch updates only the non-nil fields of the debtor contact.
type ContactPatch struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

// OrderPatch updates only the non-nil fields of the order details. Numeric
// fields arrive as typed text and go through the lenient parsers.
type OrderPatch struct {
	OrderNumber        *string `json:"order_number,omitempty"`
	ProductDescription *string `json:"product_description,omitempty"`
	Quantity           *string `json:"quantity,omitempty"`
	UnitPrice          *string `json:"unit_price,omitempty"`
	TotalAmount        *string `json:"total_amount,omitempty"`
	DeliveryDate       *string `json:"delivery_date,omitempty"`
}

func (p ContactPatch) apply(c *domain.DebtorContact) {
	setIf(&c.Name, p.Name)
	setIf(&c.Email, p.Email)
	setIf(&c.Phone, p.Phone)
	setIf(&c.Address, p.Address)
}

func (p OrderPatch) apply(o *domain.OrderDetails) {
	setIf(&o.OrderNumber, p.OrderNumber)
	setIf(&o.ProductDescription, p.ProductDescription)
	setIf(&o.DeliveryDate, p.DeliveryDate)
	if p.Quantity != nil {
		o.Quantity = lenientInt(*p.Quantity)
	}
	if p.UnitPrice != nil {
		o.UnitPrice = lenientDecimal(*p.UnitPrice)
	}
	if p.TotalAmount != nil {
		o.TotalAmount = lenientDecimal(*p.TotalAmount)
	}
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// lenientInt never fails: anything that is not an integer becomes zero.
func lenientInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// lenientDecimal never fails: anything that is not a number becomes zero.
func lenientDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func hasPhotos(photos []string) bool {
	return len(photos) > 0
}

func hasDocuments(docs []string) bool {
	return len(docs) > 0
}

func hasContact(c domain.DebtorContact) bool {
	return c.Name != ""
}

func hasOrder(o domain.OrderDetails) bool {
	return o.OrderNumber != ""
}

// buildDueDiligence gates each part on its anchor field and returns nil when
// nothing qualifies.
func buildDueDiligence(photos, docs []string, contact domain.DebtorContact, order domain.OrderDetails) *domain.DueDiligence {
	var dd domain.DueDiligence
	included := false

	if hasPhotos(photos) {
		dd.OrderPhotos = photos
		included = true
	}
	if hasDocuments(docs) {
		dd.LegalDocuments = docs
		included = true
	}
	if hasContact(contact) {
		c := contact
		dd.DebtorContact = &c
		included = true
	}
	if hasOrder(order) {
		o := order
		dd.OrderDetails = &o
		included = true
	}

	if !included {
		return nil
	}
	return &dd
}
