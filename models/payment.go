package models

import "time"

type PaymentMethod string

const (
	PaymentMethodCard PaymentMethod = "card"
	PaymentMethodCash PaymentMethod = "cash"
)

// PaymentRequest asks the payment handler to capture a booking fee or a
// subscription charge. Exactly one of BookingID and SubscriptionID is set.
type PaymentRequest struct {
	BookingID      string        `json:"bookingId,omitempty"`
	SubscriptionID string        `json:"subscriptionId,omitempty"`
	ClientID       string        `json:"clientId"`
	Amount         float64       `json:"amount"`
	Currency       string        `json:"currency"`
	Method         PaymentMethod `json:"method"`
}

// Invoice is the result of a (simulated) capture.
type Invoice struct {
	InvoiceID      string        `json:"invoiceId"`
	PaymentID      string        `json:"paymentId"`
	BookingID      string        `json:"bookingId,omitempty"`
	SubscriptionID string        `json:"subscriptionId,omitempty"`
	ClientID       string        `json:"clientId"`
	Amount         float64       `json:"amount"`
	Currency       string        `json:"currency"`
	Method         PaymentMethod `json:"method"`
	Status         PaymentStatus `json:"status"`
	CreatedAt      time.Time     `json:"createdAt"`
}
