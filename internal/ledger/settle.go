package ledger

import "github.com/shopspring/decimal"

// ApplySettlements returns a copy of m with every settlement subtracted from its
// From->To cell. Cells are clamped at zero and the opposite direction is never touched.
func ApplySettlements(m *Matrix, settlements []Settlement) *Matrix {
	out := m.Clone()
	for _, s := range settlements {
		if s.From == s.To || !s.Amount.IsPositive() {
			continue
		}
		next := out.Get(s.From, s.To).Sub(s.Amount)
		if next.IsNegative() {
			next = decimal.Zero
		}
		out.set(s.From, s.To, next)
	}
	return out
}

// Net returns a copy of m where, for every pair, the smaller direction has been
// subtracted from the larger one and zeroed. Net(Net(m)) equals Net(m).
func Net(m *Matrix) *Matrix {
	out := m.Clone()
	done := make(map[Pair]struct{}, len(out.cells))
	for _, p := range out.Pairs() {
		a, b := p.Debtor, p.Creditor
		if a > b {
			a, b = b, a
		}
		key := Pair{Debtor: a, Creditor: b}
		if _, ok := done[key]; ok {
			continue
		}
		done[key] = struct{}{}

		ab, ba := out.Get(a, b), out.Get(b, a)
		if ab.IsZero() || ba.IsZero() {
			continue
		}
		if ab.GreaterThanOrEqual(ba) {
			out.set(a, b, ab.Sub(ba))
			out.set(b, a, decimal.Zero)
		} else {
			out.set(b, a, ba.Sub(ab))
			out.set(a, b, decimal.Zero)
		}
	}
	return out
}

// Compute runs the matrix half of the pipeline: build, apply settlements, net
func Compute(members []int64, expenses []Expense, settlements []Settlement) *Matrix {
	return Net(ApplySettlements(BuildMatrix(members, expenses), settlements))
}
