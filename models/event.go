package models

// Payment event kinds that produce state changes. Every other kind is
// acknowledged and ignored.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventPaymentSucceeded  = "payment_intent.succeeded"
)

// PaymentEvent is the decoded wire form of a payment-provider event.
type PaymentEvent struct {
	EventID string      `json:"id"`
	Type    string      `json:"type"`
	Created int64       `json:"created"`
	Data    PaymentData `json:"data"`
}

// PaymentData wraps the provider's nested event payload.
type PaymentData struct {
	Object PaymentObject `json:"object"`
}

// PaymentObject is the payment itself. The provider populates different
// subsets of these fields depending on the event kind; extraction
// normalizes them into [PaymentDetails].
type PaymentObject struct {
	ID            string        `json:"id"`
	CustomerEmail string        `json:"customer_email"`
	ReceiptEmail  string        `json:"receipt_email"`
	CustomerName  string        `json:"customer_name"`
	Phone         string        `json:"phone"`
	AmountTotal   int64         `json:"amount_total"`
	Amount        int64         `json:"amount"`
	Currency      string        `json:"currency"`
	Shipping      EventShipping `json:"shipping"`
}

// EventShipping is the optional shipping block of a payment object.
type EventShipping struct {
	Name    string       `json:"name"`
	Address EventAddress `json:"address"`
}

// EventAddress is the provider's address shape.
type EventAddress struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// PaymentDetails is the normalized extraction of a payment event:
// everything the ingestion pipeline needs, with the amount converted
// from minor to major currency units and the email lowercased.
type PaymentDetails struct {
	Email      string
	Name       string
	Phone      string
	PaymentRef string
	Amount     float64
	Currency   string
	Address    ShippingAddress
	HasAddress bool
}

// IngestResult reports the outcome of processing one payment event.
// AlreadyProcessed is true when the idempotency gate matched an existing
// order for the same payment reference and no writes were performed.
type IngestResult struct {
	AlreadyProcessed bool   `json:"already_processed"`
	OrderID          string `json:"order_id,omitempty"`
	UserID           string `json:"user_id,omitempty"`

	// Ignored marks an event kind outside the handled set: acknowledged
	// to the sender, no state change performed.
	Ignored bool `json:"-"`
}
