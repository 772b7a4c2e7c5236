package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Status describes the direction of a balance line relative to the viewer
type Status string

const (
	StatusOwedToViewer Status = "owed to viewer"
	StatusOwedByViewer Status = "owed by viewer"
)

// Epsilon is the smallest net amount that still produces a view line
var Epsilon = decimal.New(1, -4)

// ViewLine is one counterpart's balance as seen by the viewer
type ViewLine struct {
	CounterpartID int64
	Status        Status
	Amount        decimal.Decimal
}

// ProjectView reduces a netted matrix to the lines concerning viewer, sorted by counterpart id.
// Counterparts whose net amount is below Epsilon are omitted.
func ProjectView(netted *Matrix, members []int64, viewer int64) []ViewLine {
	ids := uniqueIDs(members)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var lines []ViewLine
	for _, m := range ids {
		if m == viewer {
			continue
		}
		net := netted.Get(m, viewer).Sub(netted.Get(viewer, m))
		if net.Abs().LessThan(Epsilon) {
			continue
		}
		line := ViewLine{CounterpartID: m, Status: StatusOwedToViewer, Amount: net.Round(2)}
		if net.IsNegative() {
			line.Status = StatusOwedByViewer
			line.Amount = net.Neg().Round(2)
		}
		lines = append(lines, line)
	}
	return lines
}

// Totals sums view lines per direction
func Totals(lines []ViewLine) (owedToViewer, owedByViewer decimal.Decimal) {
	for _, l := range lines {
		switch l.Status {
		case StatusOwedToViewer:
			owedToViewer = owedToViewer.Add(l.Amount)
		case StatusOwedByViewer:
			owedByViewer = owedByViewer.Add(l.Amount)
		}
	}
	return owedToViewer, owedByViewer
}
