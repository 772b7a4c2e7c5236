package group

// CreateGroupRequest represents the request to create a new group
type CreateGroupRequest struct {
	Name      string   `json:"name" validate:"required,min=1,max=100"`
	Currency  string   `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	Category  Category `json:"category,omitempty" validate:"omitempty,oneof=TRIP HOME EVENT OTHER"`
	MemberIDs []int64  `json:"member_ids,omitempty" validate:"omitempty,dive,gt=0"`
}

// UpdateGroupRequest represents the request to update a group
type UpdateGroupRequest struct {
	Name     *string   `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Category *Category `json:"category,omitempty" validate:"omitempty,oneof=TRIP HOME EVENT OTHER"`
}

// AddMemberRequest represents the request to add a member to a group
type AddMemberRequest struct {
	UserID int64      `json:"user_id" validate:"required,gt=0"`
	Role   MemberRole `json:"role,omitempty" validate:"omitempty,oneof=ADMIN MEMBER"`
}

// GroupResponse represents the response for a group
type GroupResponse struct {
	ID        int64             `json:"id"`
	Name      string            `json:"name"`
	Currency  string            `json:"currency"`
	Category  Category          `json:"category"`
	CreatedBy int64             `json:"created_by"`
	CreatedAt string            `json:"created_at"`
	Members   []*MemberResponse `json:"members,omitempty"`
}

// MemberResponse represents a member in a group response
type MemberResponse struct {
	UserID   int64      `json:"user_id"`
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Role     MemberRole `json:"role"`
	JoinedAt string     `json:"joined_at"`
}

// InviteResponse carries the token used to join a group
type InviteResponse struct {
	Token    string `json:"token"`
	JoinPath string `json:"join_path"`
}

// ToResponse converts a Group model to a GroupResponse DTO
func (g *Group) ToResponse() *GroupResponse {
	return &GroupResponse{
		ID:        g.ID,
		Name:      g.Name,
		Currency:  g.Currency,
		Category:  g.Category,
		CreatedBy: g.CreatedBy,
		CreatedAt: g.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ToResponse converts a GroupMember model to a MemberResponse DTO
func (m *GroupMember) ToResponse() *MemberResponse {
	return &MemberResponse{
		UserID:   m.UserID,
		Name:     m.Name,
		Email:    m.Email,
		Role:     m.Role,
		JoinedAt: m.JoinedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// UpdateMemberRequest represents the request to change a member's role
type UpdateMemberRequest struct {
	Role MemberRole `json:"role" validate:"required,oneof=ADMIN MEMBER"`
}

// LeaveResponse reports the outcome of leaving a group
type LeaveResponse struct {
	Message  string          `json:"message"`
	NewAdmin *MemberResponse `json:"new_admin,omitempty"`
}
