package models

import (
	"time"

	"google.golang.org/genproto/googleapis/type/latlng"
)

// Post kinds.
const (
	PostTypeMusician  = "musician"
	PostTypeBand      = "band"
	PostTypeVenueSale = "venueSale"
)

// Post represents a marketplace post stored in Firestore. Proximity matching
// runs once, at creation time.
type Post struct {
	ID              string         `firestore:"-" json:"id"`
	AuthorUID       string         `firestore:"authorUid" json:"authorUid"`
	AuthorProfileID string         `firestore:"authorProfileId" json:"authorProfileId"`
	AuthorName      string         `firestore:"authorName,omitempty" json:"authorName,omitempty"`
	AuthorPhotoURL  string         `firestore:"authorPhotoUrl,omitempty" json:"authorPhotoUrl,omitempty"`
	Type            string         `firestore:"type" json:"type"`
	City            string         `firestore:"city,omitempty" json:"city,omitempty"`
	Location        *latlng.LatLng `firestore:"location,omitempty" json:"location,omitempty"`
	Images          []string       `firestore:"images,omitempty" json:"images,omitempty"`
	CreatedAt       time.Time      `firestore:"createdAt" json:"createdAt"`
}

// TypeLabel returns the human-readable label used in notification bodies.
func (p *Post) TypeLabel() string {
	switch p.Type {
	case PostTypeBand:
		return "a band"
	case PostTypeVenueSale:
		return "a venue"
	default:
		return "a musician"
	}
}
