package validation

import (
	"time"

	"receivables-desk/internal/domain"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// ValidateReceivable is the strict schema for the required receivable fields.
// It blocks submission on any invalid input.
func ValidateReceivable(f domain.ReceivableFields) error {
	v := New()

	v.Required("debtor_name", f.DebtorName)

	if v.Required("amount", f.Amount) {
		amount, err := decimal.NewFromString(f.Amount)
		switch {
		case err != nil:
			v.AddError("amount", "must be a number")
		case !amount.IsPositive():
			v.AddError("amount", "must be greater than zero")
		}
	}

	if v.Required("currency", f.Currency) {
		v.OneOf("currency", f.Currency, currencyNames())
	}

	if v.Required("due_date", f.DueDate) {
		if _, err := time.Parse(dateLayout, f.DueDate); err != nil {
			v.AddError("due_date", "must be YYYY-MM-DD")
		}
	}

	v.Required("description", f.Description)

	if v.Required("category", f.Category) {
		v.OneOf("category", f.Category, domain.Categories)
	}

	if v.Required("risk_level", f.RiskLevel) {
		v.OneOf("risk_level", f.RiskLevel, riskNames())
	}

	return v.Err()
}

func currencyNames() []string {
	out := make([]string, len(domain.Currencies))
	for i, c := range domain.Currencies {
		out[i] = string(c)
	}
	return out
}

func riskNames() []string {
	out := make([]string, len(domain.RiskLevels))
	for i, r := range domain.RiskLevels {
		out[i] = string(r)
	}
	return out
}
