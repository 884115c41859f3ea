package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyJPY Currency = "JPY"
)

var Currencies = []Currency{CurrencyUSD, CurrencyEUR, CurrencyGBP, CurrencyJPY}

type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

var RiskLevels = []RiskLevel{RiskLow, RiskMedium, RiskHigh}

var Categories = []string{
	"Services",
	"Goods",
	"Manufacturing",
	"Technology",
	"Healthcare",
	"Construction",
	"Retail",
	"Other",
}

// ReceivableFields is the required part of a receivable form. Values are kept
// exactly as entered; the validator decides whether they are acceptable.
type ReceivableFields struct {
	DebtorName  string `json:"debtor_name"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	DueDate     string `json:"due_date"`
	Description string `json:"description"`
	Category    string `json:"category"`
	RiskLevel   string `json:"risk_level"`
}

type DebtorContact struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type OrderDetails struct {
	OrderNumber        string          `json:"order_number"`
	ProductDescription string          `json:"product_description"`
	Quantity           int             `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	DeliveryDate       string          `json:"delivery_date"`
}

// DueDiligence holds optional supporting evidence. Each part is present only
// when it carries data.
type DueDiligence struct {
	OrderPhotos    []string       `json:"order_photos,omitempty"`
	LegalDocuments []string       `json:"legal_documents,omitempty"`
	DebtorContact  *DebtorContact `json:"debtor_contact,omitempty"`
	OrderDetails   *OrderDetails  `json:"order_details,omitempty"`
}

type ReceivableSubmission struct {
	ReceivableFields
	DueDiligence *DueDiligence `json:"due_diligence,omitempty"`
}

// Receivable is a stored submission.
type Receivable struct {
	ID string `json:"id"`
	ReceivableSubmission

	CreatedAt *time.Time `json:"created_at,omitempty"`
}
