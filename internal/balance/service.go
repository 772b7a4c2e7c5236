// Package balance runs the ledger pipeline for a group and serves each
// member's settle-up summary.
package balance

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/settleup/internal/cache"
	"github.com/fkhayef/settleup/internal/group"
	"github.com/fkhayef/settleup/internal/ledger"
	"github.com/fkhayef/settleup/internal/metrics"
)

// MemberSource lists the current members of a group
type MemberSource interface {
	GetGroupMembers(ctx context.Context, groupID int64) ([]ledger.Member, error)
}

// ExpenseSource lists every expense recorded in a group
type ExpenseSource interface {
	ListGroupExpenses(ctx context.Context, groupID int64) ([]ledger.Expense, error)
}

// SettlementSource lists every settlement recorded in a group
type SettlementSource interface {
	ListGroupSettlements(ctx context.Context, groupID int64) ([]ledger.Settlement, error)
}

// UserDirectory resolves names of users who are no longer group members
type UserDirectory interface {
	GetNamesByIDs(ctx context.Context, ids []int64) (map[int64]string, error)
}

// Line is one counterpart's balance in a summary
type Line struct {
	UserID  int64
	Name    string
	Status  ledger.Status
	Amount  decimal.Decimal
	Message string
	// Former is set when the counterpart has left the group
	Former bool
}

// Summary is a viewer's settle-up position in a group
type Summary struct {
	GroupID      int64
	ViewerID     int64
	Lines        []Line
	OwedToViewer decimal.Decimal
	OwedByViewer decimal.Decimal
}

// Service computes netted balances
type Service struct {
	members     MemberSource
	expenses    ExpenseSource
	settlements SettlementSource
	users       UserDirectory
	cache       cache.Cache
	ttl         time.Duration
}

// NewService creates a new balance service. A nil cache disables caching.
func NewService(members MemberSource, expenses ExpenseSource, settlements SettlementSource, users UserDirectory, c cache.Cache, ttl time.Duration) *Service {
	return &Service{
		members:     members,
		expenses:    expenses,
		settlements: settlements,
		users:       users,
		cache:       c,
		ttl:         ttl,
	}
}

// Netted returns the group's netted debt matrix. With fresh set the cache is
// neither read nor written, so the result reflects every committed write.
func (s *Service) Netted(ctx context.Context, groupID int64, memberIDs []int64, fresh bool) (*ledger.Matrix, error) {
	key := cache.GroupSummaryKey(groupID)
	useCache := s.cache != nil && !fresh

	if useCache {
		var cells []ledger.Cell
		found, err := s.cache.Get(ctx, key, &cells)
		if err != nil {
			slog.Warn("failed to read summary cache", "group_id", groupID, "error", err)
		}
		if found {
			metrics.Summaries.WithLabelValues(metrics.CacheHit).Inc()
			return ledger.FromCells(cells), nil
		}
	}

	expenses, err := s.expenses.ListGroupExpenses(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}
	settlements, err := s.settlements.ListGroupSettlements(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load settlements: %w", err)
	}
	netted := ledger.Compute(memberIDs, expenses, settlements)

	if !useCache {
		metrics.Summaries.WithLabelValues(metrics.CacheBypass).Inc()
		return netted, nil
	}

	metrics.Summaries.WithLabelValues(metrics.CacheMiss).Inc()
	if err := s.cache.Set(ctx, key, netted.Cells(), s.ttl); err != nil {
		slog.Warn("failed to write summary cache", "group_id", groupID, "error", err)
	}
	return netted, nil
}

// Invalidate drops the cached matrix of a group after a write
func (s *Service) Invalidate(ctx context.Context, groupID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.GroupSummaryKey(groupID)); err != nil {
		slog.Warn("failed to invalidate summary cache", "group_id", groupID, "error", err)
	}
}

// SettleSummary returns what viewerID owes and is owed in a group.
// Former members who still have a balance with the viewer are included.
func (s *Service) SettleSummary(ctx context.Context, groupID, viewerID int64) (*Summary, error) {
	members, err := s.members.GetGroupMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}

	ids := ledger.MemberIDs(members)
	if !slices.Contains(ids, viewerID) {
		return nil, group.ErrNotMember
	}

	netted, err := s.Netted(ctx, groupID, ids, false)
	if err != nil {
		return nil, err
	}

	viewLines, err := ledger.Summarize(netted, ids, viewerID)
	if err != nil {
		return nil, err
	}

	names := make(map[int64]string, len(members))
	for _, m := range members {
		names[m.ID] = m.Name
	}
	var former []int64
	for _, l := range viewLines {
		if _, ok := names[l.CounterpartID]; !ok {
			former = append(former, l.CounterpartID)
		}
	}
	if len(former) > 0 {
		formerNames, err := s.users.GetNamesByIDs(ctx, former)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve member names: %w", err)
		}
		for id, name := range formerNames {
			names[id] = name
		}
	}

	summary := &Summary{GroupID: groupID, ViewerID: viewerID, Lines: make([]Line, len(viewLines))}
	for i, l := range viewLines {
		name := names[l.CounterpartID]
		if name == "" {
			name = fmt.Sprintf("User %d", l.CounterpartID)
		}
		summary.Lines[i] = Line{
			UserID:  l.CounterpartID,
			Name:    name,
			Status:  l.Status,
			Amount:  l.Amount,
			Message: message(name, l),
			Former:  slices.Contains(former, l.CounterpartID),
		}
	}
	summary.OwedToViewer, summary.OwedByViewer = ledger.Totals(viewLines)

	return summary, nil
}

func message(name string, l ledger.ViewLine) string {
	if l.Status == ledger.StatusOwedByViewer {
		return fmt.Sprintf("You owe %s %s", name, l.Amount.StringFixed(2))
	}
	return fmt.Sprintf("%s owes you %s", name, l.Amount.StringFixed(2))
}
