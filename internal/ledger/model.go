// Package ledger turns a group's expenses and recorded settlements into a
// per-member statement of who owes whom.
//
// Every step of the pipeline is a pure function over its inputs and returns a
// fresh value, so callers can compute summaries concurrently without sharing
// mutable state:
//
//	expenses -> DeriveEntries -> BuildMatrix -> ApplySettlements -> Net -> ProjectView
package ledger

import "github.com/shopspring/decimal"

// Member is a participant of a group
type Member struct {
	ID   int64
	Name string
}

// Expense is a payment made by one member on behalf of the included members
type Expense struct {
	ID       int64
	PayerID  int64
	Amount   decimal.Decimal
	Included []int64
}

// Entry is a single derived debt: Debtor owes Creditor Amount.
// Entries are computed from expenses and never stored.
type Entry struct {
	ExpenseID int64
	Debtor    int64
	Creditor  int64
	Amount    decimal.Decimal
}

// Settlement is a payment From one member To another that reduces what From owes To
type Settlement struct {
	From   int64
	To     int64
	Amount decimal.Decimal
}

// MemberIDs returns the ids of members in input order
func MemberIDs(members []Member) []int64 {
	ids := make([]int64, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	return ids
}

// uniqueIDs drops duplicate ids, keeping first occurrences in order
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
