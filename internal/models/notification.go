package models

import "time"

// Notification kinds.
const (
	NotificationNearbyPost = "nearbyPost"
	NotificationInterest   = "interest"
	NotificationNewMessage = "newMessage"
)

// Notification priorities.
const (
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Action types understood by the mobile client.
const (
	ActionViewPost         = "viewPost"
	ActionOpenConversation = "openConversation"
)

// Notification is an in-app notification record. Exactly one of ActionData
// (nearbyPost, interest) or Data (newMessage) is set, matching the kind.
// ActionData holds one of the typed payload structs below; the concrete type
// is fixed by Type before the record reaches storage.
type Notification struct {
	ID                 string       `firestore:"-" json:"id"`
	RecipientProfileID string       `firestore:"recipientProfileId" json:"recipientProfileId"`
	Type               string       `firestore:"type" json:"type"`
	Priority           string       `firestore:"priority" json:"priority"`
	Title              string       `firestore:"title" json:"title"`
	Body               string       `firestore:"body" json:"body"`
	ActionType         string       `firestore:"actionType,omitempty" json:"actionType,omitempty"`
	ActionData         any          `firestore:"actionData,omitempty" json:"actionData,omitempty"`
	Data               *MessageData `firestore:"data,omitempty" json:"data,omitempty"`
	SenderName         string       `firestore:"senderName,omitempty" json:"senderName,omitempty"`
	SenderPhoto        string       `firestore:"senderPhoto,omitempty" json:"senderPhoto,omitempty"`
	// Sender-side cascade deletion filters on this field.
	PostAuthorProfileID string    `firestore:"postAuthorProfileId,omitempty" json:"postAuthorProfileId,omitempty"`
	CreatedAt           time.Time `firestore:"createdAt" json:"createdAt"`
	Read                bool      `firestore:"read" json:"read"`
	ExpiresAt           time.Time `firestore:"expiresAt" json:"expiresAt"`
}

// NearbyPostData is the action payload for nearbyPost notifications.
type NearbyPostData struct {
	PostID          string `firestore:"postId" json:"postId"`
	Distance        string `firestore:"distance" json:"distance"`
	City            string `firestore:"city" json:"city"`
	PostType        string `firestore:"postType" json:"postType"`
	AuthorName      string `firestore:"authorName" json:"authorName"`
	AuthorProfileID string `firestore:"authorProfileId" json:"authorProfileId"`
}

// InterestData is the action payload for interest notifications.
type InterestData struct {
	PostID                string `firestore:"postId" json:"postId"`
	InterestedProfileID   string `firestore:"interestedProfileId" json:"interestedProfileId"`
	InterestedProfileName string `firestore:"interestedProfileName" json:"interestedProfileName"`
}

// MessageData carries the mergeable fields of a newMessage notification.
type MessageData struct {
	ConversationID  string `firestore:"conversationId" json:"conversationId"`
	MessagePreview  string `firestore:"messagePreview" json:"messagePreview"`
	MessageCount    int    `firestore:"messageCount" json:"messageCount"`
	SenderName      string `firestore:"senderName" json:"senderName"`
	SenderProfileID string `firestore:"senderProfileId" json:"senderProfileId"`
}
