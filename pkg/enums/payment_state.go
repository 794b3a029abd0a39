package enums

import "fmt"

// PaymentState tracks where a payment attempt is in its lifecycle.
type PaymentState string

const (
	PaymentStateIdle       PaymentState = "idle"
	PaymentStateValidating PaymentState = "validating"
	PaymentStateConfirming PaymentState = "confirming"
	PaymentStateSubmitting PaymentState = "submitting"
	PaymentStateSucceeded  PaymentState = "succeeded"
	PaymentStateFailed     PaymentState = "failed"
)

var validPaymentStates = []PaymentState{
	PaymentStateIdle,
	PaymentStateValidating,
	PaymentStateConfirming,
	PaymentStateSubmitting,
	PaymentStateSucceeded,
	PaymentStateFailed,
}

// String implements fmt.Stringer.
func (p PaymentState) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentState.
func (p PaymentState) IsValid() bool {
	for _, candidate := range validPaymentStates {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentState converts raw input into a PaymentState.
func ParsePaymentState(value string) (PaymentState, error) {
	for _, candidate := range validPaymentStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment state %q", value)
}

// IsTerminal reports whether no further transitions follow without a new attempt.
func (p PaymentState) IsTerminal() bool {
	return p == PaymentStateSucceeded || p == PaymentStateFailed
}

// IsBusy is true while an attempt is in flight and the pay action must stay disabled.
func (p PaymentState) IsBusy() bool {
	switch p {
	case PaymentStateValidating, PaymentStateConfirming, PaymentStateSubmitting:
		return true
	}
	return false
}
