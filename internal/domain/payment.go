package domain

import "time"

type PaymentMethod string

const (
	MethodCreditCard    PaymentMethod = "credit_card"
	MethodBankTransfer  PaymentMethod = "bank_transfer"
	MethodCrypto        PaymentMethod = "crypto"
	MethodDigitalWallet PaymentMethod = "digital_wallet"
)

var PaymentMethods = []PaymentMethod{
	MethodCreditCard,
	MethodBankTransfer,
	MethodCrypto,
	MethodDigitalWallet,
}

func (m PaymentMethod) Valid() bool {
	for _, known := range PaymentMethods {
		if m == known {
			return true
		}
	}
	return false
}

// PaymentSubmission is what checkout hands over on confirm. Amount always
// mirrors the security's total value.
type PaymentSubmission struct {
	PaymentMethod PaymentMethod `json:"payment_method"`
	Amount        string        `json:"amount"`
}

// Payment is a recorded purchase of a security.
type Payment struct {
	ID         string `json:"id"`
	SecurityID string `json:"security_id"`
	PaymentSubmission

	Commission string  `json:"commission"`
	Total      string  `json:"total"`
	CardLast4  *string `json:"card_last4,omitempty"`

	CreatedAt *time.Time `json:"created_at,omitempty"`
}
