package models

import "fmt"

// PaymentMethod is the settlement mode for an appointment.
// credit_card defers payment across installments; pix and cash settle
// immediately as a single payment.
type PaymentMethod string

const (
	MethodCreditCard PaymentMethod = "credit_card"
	MethodPix        PaymentMethod = "pix"
	MethodCash       PaymentMethod = "cash"
)

// ParsePaymentMethod validates a raw string against the closed set of methods
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case MethodCreditCard, MethodPix, MethodCash:
		return PaymentMethod(s), nil
	}
	return "", fmt.Errorf("unknown payment method %q", s)
}

// Valid reports whether the method is one of the enumerated values
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCreditCard, MethodPix, MethodCash:
		return true
	}
	return false
}

// Immediate reports whether the method settles on the procedure date itself
func (m PaymentMethod) Immediate() bool {
	switch m {
	case MethodPix, MethodCash:
		return true
	case MethodCreditCard:
		return false
	}
	return false
}
