package settlement

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CreateSettlementRequest represents a payment from the caller to another member
type CreateSettlementRequest struct {
	ToUserID int64           `json:"to_user_id" validate:"required,gt=0"`
	Amount   decimal.Decimal `json:"amount" validate:"required"`
	Note     *string         `json:"note,omitempty" validate:"omitempty,max=255"`
}

// SettlementResponse represents the response for a settlement
type SettlementResponse struct {
	ID         int64   `json:"id"`
	GroupID    int64   `json:"group_id"`
	FromUserID int64   `json:"from_user_id"`
	FromName   string  `json:"from_name,omitempty"`
	ToUserID   int64   `json:"to_user_id"`
	ToName     string  `json:"to_name,omitempty"`
	Amount     string  `json:"amount"`
	Note       *string `json:"note,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

// ToResponse converts a Settlement model to a SettlementResponse DTO
func (s *Settlement) ToResponse() *SettlementResponse {
	return &SettlementResponse{
		ID:         s.ID,
		GroupID:    s.GroupID,
		FromUserID: s.FromUserID,
		FromName:   s.FromName,
		ToUserID:   s.ToUserID,
		ToName:     s.ToName,
		Amount:     s.Amount.StringFixed(2),
		Note:       s.Note,
		CreatedAt:  s.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// BalanceResponse represents the net balance with another member.
// Amount is positive when the caller owes and negative when they are owed.
type BalanceResponse struct {
	UserID     int64  `json:"user_id"`
	Name       string `json:"name"`
	Amount     string `json:"amount"`
	MaxPayable string `json:"max_payable"`
	Message    string `json:"message"` // e.g. "You owe Bob 20.00" or "Bob owes you 30.00"
}

// ToResponse converts a PairBalance to a BalanceResponse DTO
func (b *PairBalance) ToResponse() *BalanceResponse {
	amount := b.YouOwe.Sub(b.OwesYou)

	var message string
	switch {
	case amount.IsPositive():
		message = fmt.Sprintf("You owe %s %s", b.Name, amount.StringFixed(2))
	case amount.IsNegative():
		message = fmt.Sprintf("%s owes you %s", b.Name, amount.Neg().StringFixed(2))
	default:
		message = fmt.Sprintf("You and %s are settled up", b.Name)
	}

	return &BalanceResponse{
		UserID:     b.UserID,
		Name:       b.Name,
		Amount:     amount.StringFixed(2),
		MaxPayable: b.YouOwe.StringFixed(2),
		Message:    message,
	}
}
