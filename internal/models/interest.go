package models

import "time"

// Interest records one profile's interest in a post. Immutable once created.
type Interest struct {
	ID                         string    `firestore:"-" json:"id"`
	PostID                     string    `firestore:"postId" json:"postId"`
	PostAuthorProfileID        string    `firestore:"postAuthorProfileId" json:"postAuthorProfileId"`
	ProfileID                  string    `firestore:"profileId" json:"profileId"`
	InterestedProfileID        string    `firestore:"interestedProfileId" json:"interestedProfileId"`
	InterestedProfileName      string    `firestore:"interestedProfileName,omitempty" json:"interestedProfileName,omitempty"`
	InterestedProfilePhotoURL  string    `firestore:"interestedProfilePhotoUrl,omitempty" json:"interestedProfilePhotoUrl,omitempty"`
	CreatedAt                  time.Time `firestore:"createdAt" json:"createdAt"`
}
