package settlement

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/settleup/internal/ledger"
)

// Settlement represents a payment from one member to another that reduces
// what the payer owes
type Settlement struct {
	ID         int64           `json:"id"`
	GroupID    int64           `json:"group_id"`
	FromUserID int64           `json:"from_user_id"`
	ToUserID   int64           `json:"to_user_id"`
	Amount     decimal.Decimal `json:"amount"`
	Note       *string         `json:"note,omitempty"`
	CreatedBy  int64           `json:"created_by"`
	CreatedAt  time.Time       `json:"created_at"`

	// Populated via JOIN
	FromName string `json:"from_name,omitempty"`
	ToName   string `json:"to_name,omitempty"`
}

// Ledger returns the settlement as the ledger sees it
func (s *Settlement) Ledger() ledger.Settlement {
	return ledger.Settlement{From: s.FromUserID, To: s.ToUserID, Amount: s.Amount}
}
