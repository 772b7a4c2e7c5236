package ledger

import "github.com/shopspring/decimal"

// Share returns the equal share of amount among n members, rounded to 2 decimal places.
// The quotient is computed once and rounded only when it is written into an entry.
func Share(amount decimal.Decimal, n int) decimal.Decimal {
	if n <= 0 {
		return decimal.Zero
	}
	return amount.Div(decimal.NewFromInt(int64(n))).Round(2)
}

// DeriveEntries produces one entry per included member other than the payer.
// A payer that is not included still receives an entry from every included member.
func DeriveEntries(e Expense) []Entry {
	included := uniqueIDs(e.Included)
	if len(included) == 0 {
		return nil
	}

	share := Share(e.Amount, len(included))
	entries := make([]Entry, 0, len(included))
	for _, id := range included {
		if id == e.PayerID {
			continue
		}
		entries = append(entries, Entry{
			ExpenseID: e.ID,
			Debtor:    id,
			Creditor:  e.PayerID,
			Amount:    share,
		})
	}
	return entries
}
