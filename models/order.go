package models

import "time"

// Order statuses. An order enters the system already paid (it is created
// from a payment-completion event); later fulfilment transitions are
// applied by the shipping workflow outside this core.
const (
	OrderStatusPaid    = "paid"
	OrderStatusShipped = "shipped"
)

// Order is the record of a completed payment. PaymentRef is the
// provider-assigned payment reference and serves as the idempotency key:
// the table carries a unique constraint on it, so exactly one order row
// can ever exist per reference.
type Order struct {
	OrderID string `json:"order_id"`

	// UserID links the order to its owning account. Nullable at the
	// schema level for historical imports; events processed by this core
	// always set it.
	UserID string `json:"-"`

	// Email is a snapshot of the purchaser address at time of purchase.
	// It is kept even if the account email changes later.
	Email string `json:"email"`

	// Amount is the order total in major currency units.
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`

	Status string `json:"status"`

	// Provider identifies the payment provider that produced the event.
	Provider string `json:"provider"`

	// PaymentRef is the provider-assigned payment reference (idempotency key).
	PaymentRef string `json:"payment_ref"`

	// TrackingNumber and Carrier are filled by the shipping workflow.
	TrackingNumber string `json:"tracking_number,omitempty"`
	Carrier        string `json:"carrier,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the Order model.
func (o Order) TableName() string {
	return "orders"
}
