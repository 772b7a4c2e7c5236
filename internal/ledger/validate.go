package ledger

import "github.com/shopspring/decimal"

// MinIncluded is the smallest number of members an expense can be split among
const MinIncluded = 2

func checkAmount(kind error, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return reject(kind, "amount must be greater than zero")
	}
	if !amount.Round(2).Equal(amount) {
		return reject(kind, "amount must have at most 2 decimal places")
	}
	return nil
}

// ValidateExpenseInput checks a new expense against the group's current members
func ValidateExpenseInput(payer int64, included []int64, amount decimal.Decimal, currentMembers []int64) error {
	if err := checkAmount(ErrInvalidExpense, amount); err != nil {
		return err
	}

	included = uniqueIDs(included)
	if len(included) < MinIncluded {
		return reject(ErrInvalidExpense, "at least %d members must be included", MinIncluded)
	}
	if !containsID(currentMembers, payer) {
		return reject(ErrInvalidExpense, "payer %d is not a member of the group", payer)
	}
	for _, id := range included {
		if !containsID(currentMembers, id) {
			return reject(ErrInvalidExpense, "member %d is not a member of the group", id)
		}
	}
	return nil
}

// ValidateSettlementInput checks a new settlement against the group's current members
func ValidateSettlementInput(from, to int64, amount decimal.Decimal, currentMembers []int64) error {
	if err := checkAmount(ErrInvalidSettlement, amount); err != nil {
		return err
	}
	if from == to {
		return reject(ErrInvalidSettlement, "cannot settle with yourself")
	}
	if !containsID(currentMembers, from) {
		return reject(ErrInvalidSettlement, "member %d is not a member of the group", from)
	}
	if !containsID(currentMembers, to) {
		return reject(ErrInvalidSettlement, "member %d is not a member of the group", to)
	}
	return nil
}

// Owed returns what from currently owes to in a netted matrix, rounded to 2 decimal places
func Owed(netted *Matrix, from, to int64) decimal.Decimal {
	return netted.Get(from, to).Round(2)
}

// CheckSettlementWithinOwed rejects a settlement larger than what from owes to.
// The rejection carries the owed amount as MaxPayable.
func CheckSettlementWithinOwed(from, to int64, amount decimal.Decimal, netted *Matrix) error {
	owed := Owed(netted, from, to)
	if amount.GreaterThan(owed) {
		r := reject(ErrOverpayment, "at most %s can be paid", owed.StringFixed(2))
		r.MaxPayable = owed
		return r
	}
	return nil
}

// ResolveIncluded returns the explicit included list when given, otherwise every
// current member not listed in excluded
func ResolveIncluded(included, excluded, currentMembers []int64) []int64 {
	if len(included) > 0 {
		return uniqueIDs(included)
	}
	out := make([]int64, 0, len(currentMembers))
	for _, id := range uniqueIDs(currentMembers) {
		if !containsID(excluded, id) {
			out = append(out, id)
		}
	}
	return out
}
