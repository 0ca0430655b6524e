package model

import (
	"time"
)

// ListingImage is one stored picture of a listing. Path is the identifier
// returned by the attachment store when the staged upload was saved.
type ListingImage struct {
	ID        string    `db:"id" json:"id"`
	ListingID string    `db:"listing_id" json:"product_id"`
	Path      string    `db:"path" json:"path"`
	SortOrder int       `db:"sort_order" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	URL string `db:"-" json:"url,omitempty"`
}

// OwnedImage is a ListingImage joined with the owner of its listing.
type OwnedImage struct {
	ListingImage
	OwnerID string `db:"owner_id"`
}
