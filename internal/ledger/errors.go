package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Rejection kinds
var (
	ErrInvalidExpense    = errors.New("invalid expense")
	ErrInvalidSettlement = errors.New("invalid settlement")
	ErrOverpayment       = errors.New("settlement exceeds amount owed")
	ErrUnknownMember     = errors.New("unknown member")
)

// Rejection is returned when an input is refused before it is recorded.
// It unwraps to one of the Err* kinds above.
type Rejection struct {
	Kind   error
	Reason string
	// MaxPayable is set for ErrOverpayment to what From currently owes To
	MaxPayable decimal.Decimal
}

func (r *Rejection) Error() string {
	if r.Reason == "" {
		return r.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", r.Kind, r.Reason)
}

func (r *Rejection) Unwrap() error {
	return r.Kind
}

func reject(kind error, format string, args ...any) *Rejection {
	return &Rejection{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// AsRejection reports whether err carries a Rejection and returns it
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}
