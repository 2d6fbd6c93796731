package models

import (
	"time"

	"google.golang.org/genproto/googleapis/type/latlng"
)

// DefaultNotificationRadiusKm is applied when a profile has no radius set.
const DefaultNotificationRadiusKm = 20.0

// Profile represents a musician, band or venue profile stored in Firestore.
type Profile struct {
	ID                        string         `firestore:"-" json:"id"`
	Name                      string         `firestore:"name" json:"name"`
	PhotoURL                  string         `firestore:"photoUrl,omitempty" json:"photoUrl,omitempty"`
	City                      string         `firestore:"city,omitempty" json:"city,omitempty"`
	Location                  *latlng.LatLng `firestore:"location,omitempty" json:"location,omitempty"`
	NotificationRadius        float64        `firestore:"notificationRadius,omitempty" json:"notificationRadius,omitempty"`
	NotificationRadiusEnabled bool           `firestore:"notificationRadiusEnabled" json:"notificationRadiusEnabled"`
	CreatedAt                 time.Time      `firestore:"createdAt" json:"createdAt"`
}

// RadiusKm returns the configured notification radius, falling back to the default.
func (p *Profile) RadiusKm() float64 {
	if p.NotificationRadius <= 0 {
		return DefaultNotificationRadiusKm
	}
	return p.NotificationRadius
}

// PushToken is one FCM device token, stored in the profile's fcmTokens
// sub-collection keyed by the token string itself.
type PushToken struct {
	Token     string    `firestore:"token" json:"token"`
	Platform  string    `firestore:"platform,omitempty" json:"platform,omitempty"`
	UpdatedAt time.Time `firestore:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// TokenRef addresses a token document for deletion.
type TokenRef struct {
	ProfileID string
	Token     string
}
