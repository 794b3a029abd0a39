package checkout

import (
	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/yulishop/storefront/pkg/errors"
	"github.com/yulishop/storefront/pkg/types"
	"github.com/yulishop/storefront/pkg/validation"
)

// InvalidFormMessage is the single message shown while the form is blocked.
const InvalidFormMessage = "Please fill all required fields correctly."

// Validator applies the checkout form rules. Each rule is evaluated on its
// own; the form passes only when all of them do.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validation.Default()}
}

// Validate returns nil or a CodeValidation error whose details map each
// failing json field (and "cart") to a message.
func (v *Validator) Validate(customer types.Customer, items []types.CartLine) error {
	details := map[string]string{}
	if err := v.validate.Struct(customer); err != nil {
		fields := validation.FieldMessages(err)
		if fields == nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "validate customer")
		}
		for field, msg := range fields {
			details[field] = msg
		}
	}
	if len(items) == 0 {
		details["cart"] = "must contain at least one item"
	}
	if len(details) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, InvalidFormMessage).WithDetails(details)
}

// IsValid reports whether the form may be submitted.
func (v *Validator) IsValid(customer types.Customer, items []types.CartLine) bool {
	return v.Validate(customer, items) == nil
}
