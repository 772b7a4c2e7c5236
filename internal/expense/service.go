package expense

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/settleup/internal/group"
	"github.com/fkhayef/settleup/internal/ledger"
	"github.com/fkhayef/settleup/internal/lock"
)

// Common errors
var (
	ErrExpenseNotFound = errors.New("expense not found")
)

// Store is the persistence the expense service needs
type Store interface {
	Create(ctx context.Context, expense *Expense) error
	GetByID(ctx context.Context, id int64) (*Expense, error)
	ListByGroup(ctx context.Context, groupID int64, limit, offset int) ([]*Expense, int, error)
}

// MemberSource lists the current members of a group
type MemberSource interface {
	GetGroupMembers(ctx context.Context, groupID int64) ([]ledger.Member, error)
}

// Invalidator drops cached balances of a group
type Invalidator interface {
	Invalidate(ctx context.Context, groupID int64)
}

// Notifier tells debtors about a new expense
type Notifier interface {
	NotifyExpenseAdded(ctx context.Context, recipientID, groupID int64, payerName, description string, share decimal.Decimal, expenseID int64) error
}

// Service handles expense business logic
type Service struct {
	repo     Store
	members  MemberSource
	balances Invalidator
	locker   lock.Locker
	notifier Notifier
}

// NewService creates a new expense service
func NewService(repo Store, members MemberSource, balances Invalidator, locker lock.Locker, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		members:  members,
		balances: balances,
		locker:   locker,
		notifier: notifier,
	}
}

// Create records an expense in a group on behalf of creatorID.
// The payer defaults to the creator. The insert holds the group's write lock.
func (s *Service) Create(ctx context.Context, groupID, creatorID int64, req *CreateExpenseRequest) (*Expense, error) {
	members, err := s.currentMembers(ctx, groupID, creatorID)
	if err != nil {
		return nil, err
	}
	ids := ledger.MemberIDs(members)

	payerID := req.PaidBy
	if payerID == 0 {
		payerID = creatorID
	}
	included := ledger.ResolveIncluded(req.IncludedMembers, req.ExcludedMembers, ids)

	if err := ledger.ValidateExpenseInput(payerID, included, req.Amount, ids); err != nil {
		slog.Warn("expense rejected", "group_id", groupID, "created_by", creatorID, "error", err)
		return nil, err
	}

	release, err := s.locker.Obtain(ctx, lock.GroupKey(groupID), lock.DefaultTTL)
	if err != nil {
		return nil, err
	}
	defer release()

	expense := &Expense{
		GroupID:     groupID,
		PayerID:     payerID,
		CreatedBy:   creatorID,
		Description: strings.TrimSpace(req.Description),
		Amount:      req.Amount,
		Included:    included,
	}
	if err := s.repo.Create(ctx, expense); err != nil {
		return nil, err
	}
	expense.PayerName = nameOf(members, payerID)

	s.balances.Invalidate(ctx, groupID)

	entries := ledger.DeriveEntries(expense.Ledger())
	for _, entry := range entries {
		s.notify(ctx, entry, expense)
	}

	slog.Info("expense added",
		"group_id", groupID,
		"expense_id", expense.ID,
		"payer_id", payerID,
		"amount", expense.Amount.StringFixed(2),
		"included", len(included),
	)
	return expense, nil
}

// Get returns an expense of the group with the entries derived from it
func (s *Service) Get(ctx context.Context, groupID, expenseID, viewerID int64) (*Expense, []ledger.Entry, error) {
	if _, err := s.currentMembers(ctx, groupID, viewerID); err != nil {
		return nil, nil, err
	}

	expense, err := s.repo.GetByID(ctx, expenseID)
	if err != nil {
		return nil, nil, err
	}
	if expense == nil || expense.GroupID != groupID {
		return nil, nil, ErrExpenseNotFound
	}

	return expense, ledger.DeriveEntries(expense.Ledger()), nil
}

// List retrieves a page of a group's expense history
func (s *Service) List(ctx context.Context, groupID, viewerID int64, page, perPage int) ([]*Expense, int, error) {
	if _, err := s.currentMembers(ctx, groupID, viewerID); err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByGroup(ctx, groupID, perPage, offset)
}

// currentMembers returns the group's members, or group.ErrNotMember unless userID is one of them
func (s *Service) currentMembers(ctx context.Context, groupID, userID int64) ([]ledger.Member, error) {
	members, err := s.members.GetGroupMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(ledger.MemberIDs(members), userID) {
		return nil, group.ErrNotMember
	}
	return members, nil
}

func (s *Service) notify(ctx context.Context, entry ledger.Entry, expense *Expense) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyExpenseAdded(ctx, entry.Debtor, expense.GroupID, expense.PayerName, expense.Description, entry.Amount, expense.ID); err != nil {
		slog.Warn("failed to send notification", "expense_id", expense.ID, "user_id", entry.Debtor, "error", err)
	}
}

func nameOf(members []ledger.Member, id int64) string {
	for _, m := range members {
		if m.ID == id {
			return m.Name
		}
	}
	return ""
}
