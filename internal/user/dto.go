package user

// SignupRequest represents the request body for creating an account
type SignupRequest struct {
	Name     string  `json:"name" validate:"required,min=2,max=50"`
	Email    string  `json:"email" validate:"required,email"`
	Mobile   *string `json:"mobile,omitempty" validate:"omitempty,len=10,numeric"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserRequest represents the request body for updating the current user
type UpdateUserRequest struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	Mobile *string `json:"mobile,omitempty" validate:"omitempty,len=10,numeric"`
}

// UserResponse represents the response for a single user
type UserResponse struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Mobile    *string `json:"mobile,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// AuthResponse is returned by signup and login
type AuthResponse struct {
	Token     string        `json:"token"`
	ExpiresAt string        `json:"expires_at"`
	User      *UserResponse `json:"user"`
}

// ToResponse converts a User model to a UserResponse DTO
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Mobile:    u.Mobile,
		CreatedAt: u.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
