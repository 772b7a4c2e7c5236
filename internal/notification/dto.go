package notification

import "strconv"

// NotificationResponse represents the response for a notification
type NotificationResponse struct {
	ID                int64   `json:"id"`
	GroupID           *int64  `json:"group_id,omitempty"`
	Message           string  `json:"message"`
	IsRead            bool    `json:"is_read"`
	RelatedEntityType *string `json:"related_entity_type,omitempty"`
	RelatedEntityID   *int64  `json:"related_entity_id,omitempty"`
	CreatedAt         string  `json:"created_at"`
}

// UnreadCountResponse carries the unread total and, across all groups, its split per group
type UnreadCountResponse struct {
	UnreadCount int            `json:"unread_count"`
	ByGroup     map[string]int `json:"by_group,omitempty"`
}

// ReadAllResponse reports how many notifications were marked as read
type ReadAllResponse struct {
	Marked int64 `json:"marked"`
}

// ToResponse converts a Notification model to a NotificationResponse DTO
func (n *Notification) ToResponse() *NotificationResponse {
	return &NotificationResponse{
		ID:                n.ID,
		GroupID:           n.GroupID,
		Message:           n.Message,
		IsRead:            n.IsRead,
		RelatedEntityType: n.RelatedEntityType,
		RelatedEntityID:   n.RelatedEntityID,
		CreatedAt:         n.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func newUnreadCountResponse(total int, byGroup map[int64]int) *UnreadCountResponse {
	resp := &UnreadCountResponse{UnreadCount: total}
	if len(byGroup) > 0 {
		resp.ByGroup = make(map[string]int, len(byGroup))
		for id, n := range byGroup {
			resp.ByGroup[strconv.FormatInt(id, 10)] = n
		}
	}
	return resp
}
