package payment

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yulishop/storefront/pkg/validation"
)

// InvalidCardMessage is shown when any card field fails.
const InvalidCardMessage = "Please fill valid card details."

// Card is the payment form. Past expiry dates are not rejected; only the
// MM/YY shape and month range are checked.
type Card struct {
	HolderName string `json:"cardholderName" validate:"trimmed_min=3"`
	Number     string `json:"cardNumber" validate:"luhn"`
	Expiry     string `json:"expiry" validate:"card_expiry"`
	CVC        string `json:"cvc" validate:"cvc"`
}

// Last4 is safe to log.
func (c Card) Last4() string {
	digits := strings.Join(strings.Fields(c.Number), "")
	if len(digits) < 4 {
		return ""
	}
	return digits[len(digits)-4:]
}

func validateCard(v *validator.Validate, card Card) error {
	if err := v.Struct(card); err != nil {
		return validation.Format(err, InvalidCardMessage)
	}
	return nil
}

// ValidateCard checks the payment form without contacting anything.
func ValidateCard(card Card) error {
	return validateCard(validation.Default(), card)
}
