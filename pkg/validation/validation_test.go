package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pkgerrors "github.com/yulishop/storefront/pkg/errors"
)

func TestLuhn(t *testing.T) {
	assert.True(t, IsCardNumber("4242424242424242"))
	assert.True(t, IsCardNumber("4242 4242 4242 4242"))
	assert.False(t, IsCardNumber("4242424242424241"))
	assert.False(t, IsCardNumber("42424242424"), "fewer than 12 digits")
	assert.False(t, IsCardNumber("42424242424242424242"), "more than 19 digits")
	assert.False(t, IsCardNumber("4242-4242-4242-4242"))
	assert.False(t, IsCardNumber(""))
}

func TestExpiryRejectsOutOfRangeMonths(t *testing.T) {
	cases := map[string]bool{
		"01/29":   true,
		"12/29":   true,
		"00/29":   false,
		"13/29":   false,
		"1/29":    false,
		"01/2029": false,
		"ab/cd":   false,
	}
	for input, want := range cases {
		assert.Equal(t, want, IsExpiry(input), input)
	}
}

func TestCVC(t *testing.T) {
	assert.True(t, IsCVC("123"))
	assert.True(t, IsCVC("1234"))
	assert.False(t, IsCVC("12"))
	assert.False(t, IsCVC("12345"))
	assert.False(t, IsCVC("12a"))
}

func TestEmail(t *testing.T) {
	assert.True(t, IsEmail("anna@example.de"))
	assert.False(t, IsEmail("anna@example"))
	assert.False(t, IsEmail("anna example@x.de"))
	assert.False(t, IsEmail(""))
}

type sample struct {
	Name   string `json:"name" validate:"not_blank,trimmed_min=2"`
	Email  string `json:"email" validate:"shop_email"`
	Number string `json:"number" validate:"luhn"`
}

func TestStructRulesReportJSONNames(t *testing.T) {
	err := Default().Struct(sample{Name: " a ", Email: "nope", Number: "4242424242424242"})
	require.Error(t, err)

	details := FieldMessages(err)
	assert.Contains(t, details, "name")
	assert.Contains(t, details, "email")
	assert.NotContains(t, details, "number")

	formatted := Format(err, "please fix the form")
	assert.Equal(t, pkgerrors.CodeValidation, formatted.Code())
	assert.Equal(t, "please fix the form", formatted.Message())
}

func TestStructRulesPass(t *testing.T) {
	require.NoError(t, Default().Struct(sample{Name: "Jo", Email: "jo@example.com", Number: "4242424242424242"}))
}
