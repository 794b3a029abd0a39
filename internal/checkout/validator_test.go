package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pkgerrors "github.com/yulishop/storefront/pkg/errors"
	"github.com/yulishop/storefront/pkg/types"
)

func validCustomer() types.Customer {
	return types.Customer{
		FirstName:  "Lena",
		LastName:   "Vogel",
		Email:      "lena@example.de",
		Street:     "Lindenstr. 4",
		City:       "Berlin",
		PostalCode: "10115",
		Country:    "Germany",
	}
}

func oneLine() []types.CartLine {
	return []types.CartLine{{ID: "l1", SKU: "P1-50", UnitPriceCents: 7900, Quantity: 1, MaxQuantity: 6}}
}

func TestValidatorAcceptsCompleteForm(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Validate(validCustomer(), oneLine()))
	assert.True(t, v.IsValid(validCustomer(), oneLine()))
}

func TestValidatorFieldRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.Customer)
		field  string
	}{
		{name: "first name blank", mutate: func(c *types.Customer) { c.FirstName = "   " }, field: "firstName"},
		{name: "first name too short after trim", mutate: func(c *types.Customer) { c.FirstName = " L " }, field: "firstName"},
		{name: "last name too short", mutate: func(c *types.Customer) { c.LastName = "V" }, field: "lastName"},
		{name: "email without tld", mutate: func(c *types.Customer) { c.Email = "lena@example" }, field: "email"},
		{name: "email with space", mutate: func(c *types.Customer) { c.Email = "le na@example.de" }, field: "email"},
		{name: "street blank", mutate: func(c *types.Customer) { c.Street = " " }, field: "street"},
		{name: "city blank", mutate: func(c *types.Customer) { c.City = "" }, field: "city"},
		{name: "postal code blank", mutate: func(c *types.Customer) { c.PostalCode = "\t" }, field: "postalCode"},
		{name: "country blank", mutate: func(c *types.Customer) { c.Country = "" }, field: "country"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCustomer()
			tt.mutate(&c)
			err := NewValidator().Validate(c, oneLine())
			require.Error(t, err)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
			assert.Equal(t, InvalidFormMessage, typed.Message())
			details, ok := typed.Details().(map[string]string)
			require.True(t, ok)
			assert.Contains(t, details, tt.field)
			assert.Len(t, details, 1, "rules are independent")
		})
	}
}

func TestValidatorRequiresCartLines(t *testing.T) {
	err := NewValidator().Validate(validCustomer(), nil)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	details := pkgerrors.As(err).Details().(map[string]string)
	assert.Equal(t, "must contain at least one item", details["cart"])
}

func TestValidatorReportsEveryFailure(t *testing.T) {
	err := NewValidator().Validate(types.Customer{}, nil)
	require.Error(t, err)
	details := pkgerrors.As(err).Details().(map[string]string)
	for _, field := range []string{"firstName", "lastName", "email", "street", "city", "postalCode", "country", "cart"} {
		assert.Contains(t, details, field)
	}
	assert.NotContains(t, details, "phone")
	assert.NotContains(t, details, "notes")
}
