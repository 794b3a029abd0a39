package types

// DefaultCountry is used when no saved profile exists.
const DefaultCountry = "Germany"

// Customer holds the contact and shipping details entered at checkout.
type Customer struct {
	FirstName  string `json:"firstName" validate:"not_blank,trimmed_min=2"`
	LastName   string `json:"lastName" validate:"not_blank,trimmed_min=2"`
	Email      string `json:"email" validate:"shop_email"`
	Phone      string `json:"phone,omitempty"`
	Street     string `json:"street" validate:"not_blank"`
	City       string `json:"city" validate:"not_blank"`
	PostalCode string `json:"postalCode" validate:"not_blank"`
	Country    string `json:"country" validate:"not_blank"`
	Notes      string `json:"notes,omitempty"`
	SaveInfo   bool   `json:"saveInfo"`
}

// DefaultCustomer is the blank checkout form.
func DefaultCustomer() Customer {
	return Customer{Country: DefaultCountry, SaveInfo: true}
}
