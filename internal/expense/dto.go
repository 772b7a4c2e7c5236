package expense

import (
	"github.com/shopspring/decimal"

	"github.com/fkhayef/settleup/internal/ledger"
)

// CreateExpenseRequest represents the request to add an expense to a group.
// With included_members omitted, every current member not in
// excluded_members shares the expense.
type CreateExpenseRequest struct {
	Description     string          `json:"description" validate:"required,min=1,max=255"`
	Amount          decimal.Decimal `json:"amount" validate:"required"`
	PaidBy          int64           `json:"paid_by,omitempty" validate:"omitempty,gt=0"`
	IncludedMembers []int64         `json:"included_members,omitempty" validate:"omitempty,dive,gt=0"`
	ExcludedMembers []int64         `json:"excluded_members,omitempty" validate:"omitempty,dive,gt=0"`
}

// ExpenseResponse represents the response for an expense
type ExpenseResponse struct {
	ID              int64            `json:"id"`
	GroupID         int64            `json:"group_id"`
	PaidBy          int64            `json:"paid_by"`
	PayerName       string           `json:"payer_name,omitempty"`
	Description     string           `json:"description"`
	Amount          string           `json:"amount"`
	IncludedMembers []int64          `json:"included_members"`
	CreatedBy       int64            `json:"created_by"`
	CreatedAt       string           `json:"created_at"`
	Entries         []*EntryResponse `json:"entries,omitempty"`
}

// EntryResponse is one debt derived from an expense
type EntryResponse struct {
	DebtorID   int64  `json:"debtor_id"`
	CreditorID int64  `json:"creditor_id"`
	Amount     string `json:"amount"`
}

// ToResponse converts an Expense model to an ExpenseResponse DTO
func (e *Expense) ToResponse() *ExpenseResponse {
	return &ExpenseResponse{
		ID:              e.ID,
		GroupID:         e.GroupID,
		PaidBy:          e.PayerID,
		PayerName:       e.PayerName,
		Description:     e.Description,
		Amount:          e.Amount.StringFixed(2),
		IncludedMembers: e.Included,
		CreatedBy:       e.CreatedBy,
		CreatedAt:       e.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// NewEntryResponses converts ledger entries to their DTOs
func NewEntryResponses(entries []ledger.Entry) []*EntryResponse {
	out := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		out[i] = &EntryResponse{
			DebtorID:   e.Debtor,
			CreditorID: e.Creditor,
			Amount:     e.Amount.StringFixed(2),
		}
	}
	return out
}
