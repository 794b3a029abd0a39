// Package validation holds the shared validator instance and the storefront's
// custom field rules.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/yulishop/storefront/pkg/errors"
)

var (
	emailRe  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	expiryRe = regexp.MustCompile(`^(\d{2})/(\d{2})$`)
	cvcRe    = regexp.MustCompile(`^\d{3,4}$`)
	digitsRe = regexp.MustCompile(`^\d{12,19}$`)
)

var shared = New()

// Default returns the process-wide validator.
func Default() *validator.Validate {
	return shared
}

// New builds a validator that reports json field names and knows the custom rules.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	mustRegister(v, "not_blank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, "trimmed_min", trimmedMin)
	mustRegister(v, "shop_email", func(fl validator.FieldLevel) bool {
		return IsEmail(fl.Field().String())
	})
	mustRegister(v, "luhn", func(fl validator.FieldLevel) bool {
		return IsCardNumber(fl.Field().String())
	})
	mustRegister(v, "card_expiry", func(fl validator.FieldLevel) bool {
		return IsExpiry(fl.Field().String())
	})
	mustRegister(v, "cvc", func(fl validator.FieldLevel) bool {
		return IsCVC(fl.Field().String())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s: %v", tag, err))
	}
}

func trimmedMin(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= n
}

// IsEmail checks the local@domain.tld shape.
func IsEmail(value string) bool {
	return emailRe.MatchString(strings.TrimSpace(value))
}

// IsCardNumber strips whitespace and runs a Luhn check over 12-19 digits.
func IsCardNumber(value string) bool {
	digits := strings.Join(strings.Fields(value), "")
	if !digitsRe.MatchString(digits) {
		return false
	}
	return Luhn(digits)
}

// Luhn reports whether an all-digit string passes the mod-10 checksum.
func Luhn(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		c := digits[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// IsExpiry accepts MM/YY with a month in 01..12. Past dates are not rejected.
func IsExpiry(value string) bool {
	m := expiryRe.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return false
	}
	month, err := strconv.Atoi(m[1])
	if err != nil {
		return false
	}
	return month >= 1 && month <= 12
}

// IsCVC accepts three or four digits.
func IsCVC(value string) bool {
	return cvcRe.MatchString(strings.TrimSpace(value))
}

// FieldMessages maps json field names to human readable messages. It returns
// nil when err is not a validator error.
func FieldMessages(err error) map[string]string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return nil
	}
	details := make(map[string]string, len(errs))
	for _, fieldErr := range errs {
		details[fieldErr.Field()] = Message(fieldErr)
	}
	return details
}

// Format converts a validator error into a CodeValidation error with field details.
func Format(err error, message string) *pkgerrors.Error {
	if details := FieldMessages(err); details != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, message).WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, message)
}

// Message renders one field error.
func Message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "not_blank":
		return "is required"
	case "min", "trimmed_min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email", "shop_email":
		return "must be a valid email"
	case "luhn":
		return "card number is invalid"
	case "card_expiry":
		return "expiry must be MM/YY with a month between 01 and 12"
	case "cvc":
		return "must be 3 or 4 digits"
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	}
	return "is invalid"
}
