package entity

import "time"

// Notification is a stored in-app notification record. Delivery beyond
// the store is out of scope.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	Link      string    `json:"link,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
