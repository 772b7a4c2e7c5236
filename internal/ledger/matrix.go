package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Pair is an ordered (debtor, creditor) key into a Matrix
type Pair struct {
	Debtor   int64
	Creditor int64
}

// Cell is the serialisable form of one matrix cell
type Cell struct {
	Debtor   int64           `json:"debtor"`
	Creditor int64           `json:"creditor"`
	Amount   decimal.Decimal `json:"amount"`
}

// Matrix holds what each debtor owes each creditor.
// Missing cells read as zero and no cell is ever negative.
type Matrix struct {
	cells map[Pair]decimal.Decimal
}

// NewMatrix returns a matrix with a zero cell for every ordered pair of distinct members
func NewMatrix(members []int64) *Matrix {
	members = uniqueIDs(members)
	m := &Matrix{cells: make(map[Pair]decimal.Decimal, len(members)*len(members))}
	for _, a := range members {
		for _, b := range members {
			if a != b {
				m.cells[Pair{Debtor: a, Creditor: b}] = decimal.Zero
			}
		}
	}
	return m
}

// FromCells rebuilds a matrix from its serialised cells
func FromCells(cells []Cell) *Matrix {
	m := &Matrix{cells: make(map[Pair]decimal.Decimal, len(cells))}
	for _, c := range cells {
		m.cells[Pair{Debtor: c.Debtor, Creditor: c.Creditor}] = c.Amount
	}
	return m
}

// BuildMatrix accumulates the entries of every expense into a fresh matrix.
// Entries naming members outside the current set are kept under their ids.
func BuildMatrix(members []int64, expenses []Expense) *Matrix {
	m := NewMatrix(members)
	for _, e := range expenses {
		for _, entry := range DeriveEntries(e) {
			m.add(entry.Debtor, entry.Creditor, entry.Amount)
		}
	}
	return m
}

// Get returns what debtor owes creditor
func (m *Matrix) Get(debtor, creditor int64) decimal.Decimal {
	if m == nil {
		return decimal.Zero
	}
	return m.cells[Pair{Debtor: debtor, Creditor: creditor}]
}

func (m *Matrix) set(debtor, creditor int64, amount decimal.Decimal) {
	m.cells[Pair{Debtor: debtor, Creditor: creditor}] = amount
}

func (m *Matrix) add(debtor, creditor int64, amount decimal.Decimal) {
	if debtor == creditor {
		return
	}
	key := Pair{Debtor: debtor, Creditor: creditor}
	m.cells[key] = m.cells[key].Add(amount)
}

// Clone returns an independent copy. A nil matrix clones to an empty one.
func (m *Matrix) Clone() *Matrix {
	if m == nil {
		return NewMatrix(nil)
	}
	out := &Matrix{cells: make(map[Pair]decimal.Decimal, len(m.cells))}
	for k, v := range m.cells {
		out.cells[k] = v
	}
	return out
}

// Pairs returns every stored pair ordered by debtor, then creditor
func (m *Matrix) Pairs() []Pair {
	pairs := make([]Pair, 0, len(m.cells))
	for k := range m.cells {
		pairs = append(pairs, k)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Debtor != pairs[j].Debtor {
			return pairs[i].Debtor < pairs[j].Debtor
		}
		return pairs[i].Creditor < pairs[j].Creditor
	})
	return pairs
}

// Cells returns the non-zero cells in Pairs order
func (m *Matrix) Cells() []Cell {
	var cells []Cell
	for _, p := range m.Pairs() {
		amount := m.cells[p]
		if amount.IsZero() {
			continue
		}
		cells = append(cells, Cell{Debtor: p.Debtor, Creditor: p.Creditor, Amount: amount})
	}
	return cells
}

// Counterparts returns, in ascending order, every id sharing a non-zero cell with id
func (m *Matrix) Counterparts(id int64) []int64 {
	seen := make(map[int64]struct{})
	for k, v := range m.cells {
		if v.IsZero() {
			continue
		}
		switch id {
		case k.Debtor:
			seen[k.Creditor] = struct{}{}
		case k.Creditor:
			seen[k.Debtor] = struct{}{}
		}
	}
	ids := make([]int64, 0, len(seen))
	for other := range seen {
		ids = append(ids, other)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Total returns the sum of all cells
func (m *Matrix) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range m.cells {
		total = total.Add(v)
	}
	return total
}
