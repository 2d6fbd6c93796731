package models

import "time"

// Conversation is the parent document of the messages sub-collection.
type Conversation struct {
	ID                  string    `firestore:"-" json:"id"`
	ParticipantProfiles []string  `firestore:"participantProfiles" json:"participantProfiles"`
	UpdatedAt           time.Time `firestore:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// Recipient returns the participant that is not the sender, or "" when the
// sender is not part of a two-sided conversation.
func (c *Conversation) Recipient(senderProfileID string) string {
	for _, id := range c.ParticipantProfiles {
		if id != senderProfileID {
			return id
		}
	}
	return ""
}

// Message is one chat message nested under a conversation.
type Message struct {
	ID              string    `firestore:"-" json:"id"`
	SenderProfileID string    `firestore:"senderProfileId" json:"senderProfileId"`
	SenderName      string    `firestore:"senderName,omitempty" json:"senderName,omitempty"`
	Text            string    `firestore:"text,omitempty" json:"text,omitempty"`
	CreatedAt       time.Time `firestore:"createdAt" json:"createdAt"`
}
