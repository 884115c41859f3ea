package checkout

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// Display is the rendered form of Totals. Rounding happens only here.
type Display struct {
	SecurityAmount   string `json:"security_amount"`
	CommissionAmount string `json:"commission_amount"`
	TotalAmount      string `json:"total_amount"`
}

func (t Totals) Display() Display {
	return Display{
		SecurityAmount:   grouped(t.SecurityAmount),
		CommissionAmount: t.CommissionAmount.StringFixed(2),
		TotalAmount:      grouped(t.TotalAmount),
	}
}

// grouped renders with thousands separators and at most three fraction digits.
func grouped(d decimal.Decimal) string {
	return printer.Sprintf("%v", number.Decimal(d.InexactFloat64(), number.MaxFractionDigits(3)))
}
