package models

import "time"

// RateLimitCounter is a fixed-window counter document, keyed
// "<subjectID>_<action>" in the rateLimits collection. The document is reused
// across windows and never deleted.
type RateLimitCounter struct {
	Count       int64     `firestore:"count" json:"count"`
	LastReset   time.Time `firestore:"lastReset" json:"lastReset"`
	WindowStart time.Time `firestore:"windowStart" json:"windowStart"`
}
