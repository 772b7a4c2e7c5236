package notification

import "time"

// Notification is a message shown in a user's inbox.
// GroupID is set for every notification raised by activity in a group.
type Notification struct {
	ID                int64     `json:"id"`
	RecipientID       int64     `json:"recipient_id"`
	GroupID           *int64    `json:"group_id,omitempty"`
	Message           string    `json:"message"`
	IsRead            bool      `json:"is_read"`
	RelatedEntityType *string   `json:"related_entity_type,omitempty"`
	RelatedEntityID   *int64    `json:"related_entity_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// Entity types a notification can point at
const (
	EntityGroup      = "GROUP"
	EntityExpense    = "EXPENSE"
	EntitySettlement = "SETTLEMENT"
)

// Filter narrows an inbox listing
type Filter struct {
	// GroupID limits the listing to one group's activity
	GroupID    *int64
	UnreadOnly bool
}
