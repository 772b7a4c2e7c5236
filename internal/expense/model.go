package expense

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/settleup/internal/ledger"
)

// Expense represents a payment made by one member and split equally among
// the included members
type Expense struct {
	ID          int64           `json:"id"`
	GroupID     int64           `json:"group_id"`
	PayerID     int64           `json:"payer_id"`
	CreatedBy   int64           `json:"created_by"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Included    []int64         `json:"included_members"`
	CreatedAt   time.Time       `json:"created_at"`

	// Populated via JOIN
	PayerName string `json:"payer_name,omitempty"`
}

// Ledger returns the expense as the ledger sees it
func (e *Expense) Ledger() ledger.Expense {
	return ledger.Expense{
		ID:       e.ID,
		PayerID:  e.PayerID,
		Amount:   e.Amount,
		Included: e.Included,
	}
}
