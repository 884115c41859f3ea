package validation

import (
	"strconv"
	"strings"
	"time"
)

// Card is the credit card sub-form as typed by the user.
type Card struct {
	Number string `json:"card_number"`
	Expiry string `json:"expiry_date"`
	CVV    string `json:"cvv"`
}

// ValidateCard checks the card fields. now decides whether the expiry is in
// the past; a card stays valid through the last day of its expiry month.
func ValidateCard(c Card, now time.Time) error {
	v := New()

	if v.Required("card_number", c.Number) {
		digits := NormalizeCardNumber(c.Number)
		switch {
		case !allDigits(digits) || len(digits) < 13 || len(digits) > 19:
			v.AddError("card_number", "must be 13 to 19 digits")
		case !luhn(digits):
			v.AddError("card_number", "is not a valid card number")
		}
	}

	if v.Required("expiry_date", c.Expiry) {
		month, year, ok := parseExpiry(c.Expiry)
		if !ok {
			v.AddError("expiry_date", "must be MM/YY")
		} else {
			firstAfter := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
			v.Check(now.UTC().Before(firstAfter), "expiry_date", "card has expired")
		}
	}

	if v.Required("cvv", c.CVV) {
		v.Check(allDigits(c.CVV) && (len(c.CVV) == 3 || len(c.CVV) == 4), "cvv", "must be 3 or 4 digits")
	}

	return v.Err()
}

// NormalizeCardNumber strips the spaces and dashes people type between groups.
func NormalizeCardNumber(s string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(s))
}

func parseExpiry(s string) (month, year int, ok bool) {
	mm, yy, found := strings.Cut(strings.TrimSpace(s), "/")
	if !found || len(mm) != 2 || len(yy) != 2 || !allDigits(mm) || !allDigits(yy) {
		return 0, 0, false
	}
	month, _ = strconv.Atoi(mm)
	year, _ = strconv.Atoi(yy)
	if month < 1 || month > 12 {
		return 0, 0, false
	}
	return month, 2000 + year, true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// luhn reports whether a digit string passes the mod-10 checksum.
func luhn(number string) bool {
	var sum int
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		digit := int(number[i] - '0')
		if double {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		double = !double
	}
	return sum%10 == 0
}
