package models

import "time"

// ShippingAddress is a postal address attached to a user. Addresses are
// deduplicated per user by the (Line1, PostalCode, Country) triple; an
// incoming address matching the triple updates the mutable remainder
// instead of inserting a duplicate row.
type ShippingAddress struct {
	AddressID string `json:"-"`
	UserID    string `json:"-"`

	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Empty reports whether the address carries no dedup-key data at all,
// i.e. the event had no shipping block worth persisting.
func (a ShippingAddress) Empty() bool {
	return a.Line1 == "" && a.PostalCode == "" && a.Country == ""
}

// TableName returns the name of the database table
// associated with the ShippingAddress model.
func (a ShippingAddress) TableName() string {
	return "shipping_addresses"
}
