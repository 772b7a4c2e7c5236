package ledger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

const (
	alice int64 = 1
	bob   int64 = 2
	carol int64 = 3
	dave  int64 = 4
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// linesEqual compares two views by counterpart, status and amount
func linesEqual(a, b []ViewLine) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].CounterpartID != b[i].CounterpartID || a[i].Status != b[i].Status || !a[i].Amount.Equal(b[i].Amount) {
			return false
		}
	}
	return true
}

func TestDeriveEntries(t *testing.T) {
	tests := []struct {
		name    string
		expense Expense
		want    map[int64]string
	}{
		{
			name:    "payer included",
			expense: Expense{PayerID: alice, Amount: d("300"), Included: []int64{alice, bob, carol}},
			want:    map[int64]string{bob: "100", carol: "100"},
		},
		{
			name:    "payer not included",
			expense: Expense{PayerID: alice, Amount: d("100"), Included: []int64{bob, carol}},
			want:    map[int64]string{bob: "50", carol: "50"},
		},
		{
			name:    "duplicates collapse",
			expense: Expense{PayerID: alice, Amount: d("100"), Included: []int64{alice, bob, bob}},
			want:    map[int64]string{bob: "50"},
		},
		{
			name:    "share rounded to cents",
			expense: Expense{PayerID: alice, Amount: d("100"), Included: []int64{alice, bob, carol}},
			want:    map[int64]string{bob: "33.33", carol: "33.33"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := DeriveEntries(tt.expense)
			if len(entries) != len(tt.want) {
				t.Fatalf("expected %d entries, got %d", len(tt.want), len(entries))
			}
			for _, e := range entries {
				if e.Creditor != tt.expense.PayerID {
					t.Errorf("entry creditor = %d, want payer %d", e.Creditor, tt.expense.PayerID)
				}
				want, ok := tt.want[e.Debtor]
				if !ok {
					t.Errorf("unexpected debtor %d", e.Debtor)
					continue
				}
				if !e.Amount.Equal(d(want)) {
					t.Errorf("debtor %d owes %s, want %s", e.Debtor, e.Amount, want)
				}
			}
		})
	}
}

func TestConservation(t *testing.T) {
	tolerance := d("0.005")
	expenses := []Expense{
		{PayerID: alice, Amount: d("300"), Included: []int64{alice, bob, carol}},
		{PayerID: alice, Amount: d("100"), Included: []int64{alice, bob, carol}},
		{PayerID: bob, Amount: d("10.01"), Included: []int64{alice, bob, carol, dave}},
		{PayerID: carol, Amount: d("99.99"), Included: []int64{alice, bob}},
		{PayerID: dave, Amount: d("0.07"), Included: []int64{alice, bob, carol}},
	}

	for _, e := range expenses {
		sum := decimal.Zero
		for _, entry := range DeriveEntries(e) {
			sum = sum.Add(entry.Amount)
		}
		if containsID(e.Included, e.PayerID) {
			sum = sum.Add(Share(e.Amount, len(e.Included)))
		}
		limit := tolerance.Mul(decimal.NewFromInt(int64(len(e.Included))))
		if diff := sum.Sub(e.Amount).Abs(); diff.GreaterThan(limit) {
			t.Errorf("expense %s among %v: entries sum to %s (diff %s > %s)", e.Amount, e.Included, sum, diff, limit)
		}
	}
}

func TestScenarioA(t *testing.T) {
	members := []int64{alice, bob, carol}
	expenses := []Expense{{ID: 1, PayerID: alice, Amount: d("300"), Included: members}}

	netted := Compute(members, expenses, nil)
	if got := netted.Get(bob, alice); !got.Equal(d("100")) {
		t.Errorf("bob owes alice %s, want 100", got)
	}
	if got := netted.Get(carol, alice); !got.Equal(d("100")) {
		t.Errorf("carol owes alice %s, want 100", got)
	}

	got := ProjectView(netted, members, alice)
	want := []ViewLine{
		{CounterpartID: bob, Status: StatusOwedToViewer, Amount: d("100")},
		{CounterpartID: carol, Status: StatusOwedToViewer, Amount: d("100")},
	}
	if !linesEqual(got, want) {
		t.Errorf("alice's view = %+v, want %+v", got, want)
	}
}

func TestScenarioB(t *testing.T) {
	members := []int64{alice, bob, carol}
	expenses := []Expense{{ID: 1, PayerID: alice, Amount: d("300"), Included: members}}
	settlements := []Settlement{{From: bob, To: alice, Amount: d("100")}}

	netted := Compute(members, expenses, settlements)
	if got := netted.Get(bob, alice); !got.IsZero() {
		t.Errorf("bob owes alice %s after settling, want 0", got)
	}

	got := ProjectView(netted, members, alice)
	want := []ViewLine{{CounterpartID: carol, Status: StatusOwedToViewer, Amount: d("100")}}
	if !linesEqual(got, want) {
		t.Errorf("alice's view = %+v, want %+v", got, want)
	}
}

func TestScenarioC(t *testing.T) {
	members := []int64{alice, bob}
	expenses := []Expense{
		{ID: 1, PayerID: alice, Amount: d("100"), Included: members},
		{ID: 2, PayerID: bob, Amount: d("60"), Included: members},
	}

	raw := BuildMatrix(members, expenses)
	if !raw.Get(bob, alice).Equal(d("50")) || !raw.Get(alice, bob).Equal(d("30")) {
		t.Fatalf("raw matrix = bob->alice %s, alice->bob %s; want 50 and 30", raw.Get(bob, alice), raw.Get(alice, bob))
	}

	netted := Net(raw)
	if got := netted.Get(bob, alice); !got.Equal(d("20")) {
		t.Errorf("bob owes alice %s net, want 20", got)
	}
	if got := netted.Get(alice, bob); !got.IsZero() {
		t.Errorf("alice owes bob %s net, want 0", got)
	}
	if !raw.Get(alice, bob).Equal(d("30")) {
		t.Error("Net modified its input")
	}
}

func TestScenarioD(t *testing.T) {
	members := []int64{alice, bob}
	expenses := []Expense{
		{ID: 1, PayerID: alice, Amount: d("100"), Included: members},
		{ID: 2, PayerID: bob, Amount: d("60"), Included: members},
	}
	netted := Compute(members, expenses, nil)

	err := CheckSettlementWithinOwed(bob, alice, d("500"), netted)
	if !errors.Is(err, ErrOverpayment) {
		t.Fatalf("expected ErrOverpayment, got %v", err)
	}
	r, ok := AsRejection(err)
	if !ok {
		t.Fatalf("expected a Rejection, got %T", err)
	}
	if !r.MaxPayable.Equal(d("20")) {
		t.Errorf("max payable = %s, want 20", r.MaxPayable)
	}

	if err := CheckSettlementWithinOwed(bob, alice, d("20"), netted); err != nil {
		t.Errorf("paying exactly the owed amount should be allowed, got %v", err)
	}
	if err := CheckSettlementWithinOwed(alice, bob, d("1"), netted); !errors.Is(err, ErrOverpayment) {
		t.Errorf("paying a creditor who owes you should be rejected, got %v", err)
	}
}

func TestZeroAfterFullSettlement(t *testing.T) {
	members := []int64{alice, bob, carol}
	expenses := []Expense{
		{PayerID: alice, Amount: d("100"), Included: members},
		{PayerID: bob, Amount: d("45.50"), Included: members},
		{PayerID: carol, Amount: d("12.34"), Included: []int64{alice, carol}},
	}

	netted := Compute(members, expenses, nil)
	for _, p := range netted.Pairs() {
		owed := Owed(netted, p.Debtor, p.Creditor)
		if owed.IsZero() {
			continue
		}
		settlements := []Settlement{{From: p.Debtor, To: p.Creditor, Amount: owed}}
		after := Compute(members, expenses, settlements)
		if got := after.Get(p.Debtor, p.Creditor); !got.IsZero() {
			t.Errorf("%d->%d still owes %s after paying %s", p.Debtor, p.Creditor, got, owed)
		}
		if got := after.Get(p.Creditor, p.Debtor); !got.IsZero() {
			t.Errorf("%d->%d owes %s after the opposite side paid", p.Creditor, p.Debtor, got)
		}
	}
}

func TestNetIdempotent(t *testing.T) {
	members := []int64{alice, bob, carol, dave}
	expenses := []Expense{
		{PayerID: alice, Amount: d("120"), Included: members},
		{PayerID: bob, Amount: d("80"), Included: []int64{alice, bob}},
		{PayerID: carol, Amount: d("33.33"), Included: []int64{bob, carol, dave}},
		{PayerID: dave, Amount: d("120"), Included: members},
	}
	settlements := []Settlement{{From: carol, To: alice, Amount: d("10")}}

	once := Net(ApplySettlements(BuildMatrix(members, expenses), settlements))
	twice := Net(once)
	for _, p := range once.Pairs() {
		if !once.Get(p.Debtor, p.Creditor).Equal(twice.Get(p.Debtor, p.Creditor)) {
			t.Errorf("cell %d->%d changed on second net: %s vs %s", p.Debtor, p.Creditor,
				once.Get(p.Debtor, p.Creditor), twice.Get(p.Debtor, p.Creditor))
		}
		if once.Get(p.Debtor, p.Creditor).IsPositive() && once.Get(p.Creditor, p.Debtor).IsPositive() {
			t.Errorf("pair %d/%d has debts in both directions after netting", p.Debtor, p.Creditor)
		}
	}
}

func TestViewSymmetry(t *testing.T) {
	members := []int64{alice, bob, carol, dave}
	expenses := []Expense{
		{PayerID: alice, Amount: d("100"), Included: members},
		{PayerID: bob, Amount: d("75.25"), Included: []int64{bob, carol}},
		{PayerID: dave, Amount: d("10"), Included: []int64{alice, bob, dave}},
	}
	settlements := []Settlement{{From: carol, To: bob, Amount: d("5")}}
	netted := Compute(members, expenses, settlements)

	for _, viewer := range members {
		for _, line := range ProjectView(netted, members, viewer) {
			mirrored := ProjectView(netted, members, line.CounterpartID)
			found := false
			for _, m := range mirrored {
				if m.CounterpartID != viewer {
					continue
				}
				found = true
				if m.Status == line.Status {
					t.Errorf("%d and %d both see status %q", viewer, line.CounterpartID, m.Status)
				}
				if !m.Amount.Equal(line.Amount) {
					t.Errorf("%d sees %s, %d sees %s", viewer, line.Amount, line.CounterpartID, m.Amount)
				}
			}
			if !found {
				t.Errorf("%d's view of %d has no mirror", viewer, line.CounterpartID)
			}
		}
	}
}

func TestApplySettlementsClamps(t *testing.T) {
	members := []int64{alice, bob}
	expenses := []Expense{{PayerID: alice, Amount: d("100"), Included: members}}
	raw := BuildMatrix(members, expenses)

	tests := []struct {
		name        string
		settlements []Settlement
		bobOwes     string
		aliceOwes   string
	}{
		{"partial", []Settlement{{From: bob, To: alice, Amount: d("20")}}, "30", "0"},
		{"overpaid", []Settlement{{From: bob, To: alice, Amount: d("500")}}, "0", "0"},
		{"wrong direction", []Settlement{{From: alice, To: bob, Amount: d("10")}}, "50", "0"},
		{"overpaid then more", []Settlement{
			{From: bob, To: alice, Amount: d("60")},
			{From: bob, To: alice, Amount: d("10")},
		}, "0", "0"},
		{"self and non-positive ignored", []Settlement{
			{From: bob, To: bob, Amount: d("10")},
			{From: bob, To: alice, Amount: d("-10")},
		}, "50", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ApplySettlements(raw, tt.settlements)
			for _, p := range out.Pairs() {
				if out.Get(p.Debtor, p.Creditor).IsNegative() {
					t.Errorf("cell %d->%d is negative", p.Debtor, p.Creditor)
				}
			}
			if got := out.Get(bob, alice); !got.Equal(d(tt.bobOwes)) {
				t.Errorf("bob owes %s, want %s", got, tt.bobOwes)
			}
			if got := out.Get(alice, bob); !got.Equal(d(tt.aliceOwes)) {
				t.Errorf("alice owes %s, want %s", got, tt.aliceOwes)
			}
		})
	}

	if !raw.Get(bob, alice).Equal(d("50")) {
		t.Error("ApplySettlements modified its input")
	}
}

func TestProjectViewOmitsDust(t *testing.T) {
	m := FromCells([]Cell{
		{Debtor: bob, Creditor: alice, Amount: d("0.00005")},
		{Debtor: alice, Creditor: carol, Amount: d("12.345")},
	})

	got := ProjectView(m, []int64{carol, alice, bob}, alice)
	want := []ViewLine{{CounterpartID: carol, Status: StatusOwedByViewer, Amount: d("12.35")}}
	if !linesEqual(got, want) {
		t.Errorf("view = %+v, want %+v", got, want)
	}
}

func TestFormerMemberKeepsBalance(t *testing.T) {
	expenses := []Expense{{PayerID: alice, Amount: d("90"), Included: []int64{alice, bob, carol}}}
	// carol has left the group
	current := []int64{alice, bob}

	lines, err := Summarize(Compute(current, expenses, nil), current, alice)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	want := []ViewLine{
		{CounterpartID: bob, Status: StatusOwedToViewer, Amount: d("30")},
		{CounterpartID: carol, Status: StatusOwedToViewer, Amount: d("30")},
	}
	if !linesEqual(lines, want) {
		t.Errorf("view = %+v, want %+v", lines, want)
	}

	if got := ProjectView(Compute(current, expenses, nil), current, alice); len(got) != 1 {
		t.Errorf("view over current members only should have 1 line, got %d", len(got))
	}
}

func TestSummarizeUnknownViewer(t *testing.T) {
	_, err := Summarize(NewMatrix([]int64{alice, bob}), []int64{alice, bob}, dave)
	if !errors.Is(err, ErrUnknownMember) {
		t.Errorf("expected ErrUnknownMember, got %v", err)
	}
}

func TestValidateExpenseInput(t *testing.T) {
	members := []int64{alice, bob, carol}

	tests := []struct {
		name     string
		payer    int64
		included []int64
		amount   string
		wantErr  bool
	}{
		{"valid", alice, []int64{alice, bob}, "10", false},
		{"payer outside split", alice, []int64{bob, carol}, "10", false},
		{"one member", alice, []int64{alice}, "10", true},
		{"duplicate collapses to one", alice, []int64{bob, bob}, "10", true},
		{"zero amount", alice, []int64{alice, bob}, "0", true},
		{"negative amount", alice, []int64{alice, bob}, "-5", true},
		{"sub-cent amount", alice, []int64{alice, bob}, "1.005", true},
		{"payer not a member", dave, []int64{alice, bob}, "10", true},
		{"included not a member", alice, []int64{alice, dave}, "10", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateExpenseInput(tt.payer, tt.included, d(tt.amount), members)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidExpense) {
					t.Errorf("expected ErrInvalidExpense, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateSettlementInput(t *testing.T) {
	members := []int64{alice, bob}

	tests := []struct {
		name     string
		from, to int64
		amount   string
		wantErr  bool
	}{
		{"valid", bob, alice, "10", false},
		{"self", bob, bob, "10", true},
		{"zero", bob, alice, "0", true},
		{"from not a member", carol, alice, "10", true},
		{"to not a member", bob, carol, "10", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSettlementInput(tt.from, tt.to, d(tt.amount), members)
			if tt.wantErr != (err != nil) {
				t.Fatalf("wantErr %v, got %v", tt.wantErr, err)
			}
			if err != nil && !errors.Is(err, ErrInvalidSettlement) {
				t.Errorf("expected ErrInvalidSettlement, got %v", err)
			}
		})
	}
}

func TestResolveIncluded(t *testing.T) {
	members := []int64{alice, bob, carol}

	tests := []struct {
		name               string
		included, excluded []int64
		want               []int64
	}{
		{"explicit wins", []int64{bob, alice}, []int64{bob}, []int64{bob, alice}},
		{"everyone", nil, nil, []int64{alice, bob, carol}},
		{"minus excluded", nil, []int64{carol}, []int64{alice, bob}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveIncluded(tt.included, tt.excluded, members)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestMatrixCellsRoundTrip(t *testing.T) {
	members := []int64{alice, bob, carol}
	netted := Compute(members, []Expense{{PayerID: alice, Amount: d("30"), Included: members}}, nil)

	restored := FromCells(netted.Cells())
	for _, p := range netted.Pairs() {
		if !restored.Get(p.Debtor, p.Creditor).Equal(netted.Get(p.Debtor, p.Creditor)) {
			t.Errorf("cell %d->%d differs after restore", p.Debtor, p.Creditor)
		}
	}
	if !restored.Total().Equal(d("20")) {
		t.Errorf("total = %s, want 20", restored.Total())
	}
}

func TestNilMatrix(t *testing.T) {
	var m *Matrix

	if got := m.Clone(); got == nil || len(got.Pairs()) != 0 {
		t.Errorf("Clone of nil matrix = %+v, want empty matrix", got)
	}

	out := ApplySettlements(m, []Settlement{{From: alice, To: bob, Amount: d("5")}})
	if !out.Get(alice, bob).IsZero() {
		t.Errorf("settling against nil matrix should clamp at 0, got %s", out.Get(alice, bob))
	}
	if got := Net(m); len(got.Pairs()) != 0 {
		t.Errorf("Net of nil matrix should be empty, got %d pairs", len(got.Pairs()))
	}
}
