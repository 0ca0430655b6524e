package model

import (
	"time"
)

type Listing struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"` // Owner, never changes after creation
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	PriceCents  int64     `db:"price_cents" json:"price"`
	IsNew       bool      `db:"is_new" json:"is_new"`
	AcceptTrade bool      `db:"accept_trade" json:"accept_trade"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`

	// Loaded separately (not columns of listings)
	PaymentMethods []PaymentMethod `db:"-" json:"payment_methods"`
	Images         []ListingImage  `db:"-" json:"product_images"`
	Seller         *Seller         `db:"-" json:"user,omitempty"`
}

// PaymentMethodKeys returns the keys of the loaded payment methods.
func (l *Listing) PaymentMethodKeys() []string {
	keys := make([]string, 0, len(l.PaymentMethods))
	for _, pm := range l.PaymentMethods {
		keys = append(keys, pm.Key)
	}
	return keys
}

// Seller is the public part of a listing owner's account.
type Seller struct {
	Name   string  `db:"name" json:"name"`
	Tel    string  `db:"tel" json:"tel"`
	Avatar *string `db:"avatar" json:"avatar"`

	AvatarURL string `db:"-" json:"avatar_url,omitempty"`
}

// ListingFilter narrows the public listing index. Nil fields do not filter.
type ListingFilter struct {
	ExcludeUserID  string
	IsNew          *bool
	AcceptTrade    *bool
	PaymentMethods []string
	Query          string
}

// ListingChanges is a write set for one listing update. Nil fields keep their
// stored value; Connect/Disconnect are payment method keys.
type ListingChanges struct {
	Name        *string
	Description *string
	PriceCents  *int64
	IsNew       *bool
	AcceptTrade *bool
	IsActive    *bool
	Connect     []string
	Disconnect  []string
	UpdatedAt   time.Time
}
