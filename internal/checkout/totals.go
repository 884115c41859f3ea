package checkout

import (
	"errors"
	"fmt"
	"strings"

	"receivables-desk/internal/domain"

	"github.com/shopspring/decimal"
)

var ErrInvalidSecurityAmount = errors.New("security total value is not a number")

// CommissionRate is the platform fee charged on top of the security value.
var CommissionRate = decimal.RequireFromString("0.01")

type Totals struct {
	SecurityAmount   decimal.Decimal
	CommissionAmount decimal.Decimal
	TotalAmount      decimal.Decimal
}

// ComputeTotals derives the commission and total from the security value.
// An empty or non-numeric value is rejected rather than treated as zero.
func ComputeTotals(sec domain.Security) (Totals, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(sec.TotalValue))
	if err != nil {
		return Totals{}, fmt.Errorf("security %s total value %q: %w", sec.ID, sec.TotalValue, ErrInvalidSecurityAmount)
	}

	commission := amount.Mul(CommissionRate)
	return Totals{
		SecurityAmount:   amount,
		CommissionAmount: commission,
		TotalAmount:      amount.Add(commission),
	}, nil
}
