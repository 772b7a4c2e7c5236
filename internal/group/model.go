package group

import "time"

// MemberRole represents the role of a group member
type MemberRole string

const (
	MemberRoleAdmin  MemberRole = "ADMIN"
	MemberRoleMember MemberRole = "MEMBER"
)

// Category is a display label for a group
type Category string

const (
	CategoryTrip  Category = "TRIP"
	CategoryHome  Category = "HOME"
	CategoryEvent Category = "EVENT"
	CategoryOther Category = "OTHER"
)

// DefaultCurrency labels amounts of groups created without one. It is display only.
const DefaultCurrency = "INR"

// Group represents a set of people sharing expenses
type Group struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Currency    string    `json:"currency"`
	Category    Category  `json:"category"`
	InviteToken *string   `json:"-"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// GroupMember represents a user's membership in a group
type GroupMember struct {
	GroupID  int64      `json:"group_id"`
	UserID   int64      `json:"user_id"`
	Role     MemberRole `json:"role"`
	JoinedAt time.Time  `json:"joined_at"`

	// Populated from JOIN
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}
