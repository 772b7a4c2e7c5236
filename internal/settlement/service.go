package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/settleup/internal/group"
	"github.com/fkhayef/settleup/internal/ledger"
	"github.com/fkhayef/settleup/internal/lock"
	"github.com/fkhayef/settleup/internal/metrics"
)

// ErrSelfBalance is returned when a member asks for their balance with themselves
var ErrSelfBalance = errors.New("cannot get a balance with yourself")

// Store is the persistence the settlement service needs
type Store interface {
	Create(ctx context.Context, settlement *Settlement) error
	ListByGroup(ctx context.Context, groupID int64, limit, offset int) ([]*Settlement, int, error)
}

// MemberSource lists the current members of a group
type MemberSource interface {
	GetGroupMembers(ctx context.Context, groupID int64) ([]ledger.Member, error)
}

// Balances computes and invalidates a group's netted matrix
type Balances interface {
	Netted(ctx context.Context, groupID int64, memberIDs []int64, fresh bool) (*ledger.Matrix, error)
	Invalidate(ctx context.Context, groupID int64)
}

// Notifier tells the receiver about a payment
type Notifier interface {
	NotifySettlementRecorded(ctx context.Context, recipientID, groupID int64, payerName string, amount decimal.Decimal, settlementID int64) error
}

// Service handles settlement business logic
type Service struct {
	repo     Store
	members  MemberSource
	balances Balances
	locker   lock.Locker
	lockTTL  time.Duration
	notifier Notifier
}

// NewService creates a new settlement service
func NewService(repo Store, members MemberSource, balances Balances, locker lock.Locker, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		members:  members,
		balances: balances,
		locker:   locker,
		lockTTL:  lock.DefaultTTL,
		notifier: notifier,
	}
}

// Record stores a payment from fromID to req.ToUserID. It is rejected with
// ledger.ErrOverpayment when the amount exceeds what fromID currently owes.
// The check and the insert run under the group's write lock.
func (s *Service) Record(ctx context.Context, groupID, fromID int64, req *CreateSettlementRequest) (*Settlement, error) {
	members, err := s.members.GetGroupMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	ids := ledger.MemberIDs(members)
	if !slices.Contains(ids, fromID) {
		return nil, group.ErrNotMember
	}

	if err := ledger.ValidateSettlementInput(fromID, req.ToUserID, req.Amount, ids); err != nil {
		metrics.Settlements.WithLabelValues(metrics.SettlementInvalid).Inc()
		return nil, err
	}

	release, err := s.locker.Obtain(ctx, lock.GroupKey(groupID), s.lockTTL)
	if err != nil {
		return nil, err
	}
	defer release()

	netted, err := s.balances.Netted(ctx, groupID, ids, true)
	if err != nil {
		return nil, err
	}
	if err := ledger.CheckSettlementWithinOwed(fromID, req.ToUserID, req.Amount, netted); err != nil {
		metrics.Settlements.WithLabelValues(metrics.SettlementOverpayment).Inc()
		slog.Warn("settlement rejected",
			"group_id", groupID,
			"from", fromID,
			"to", req.ToUserID,
			"amount", req.Amount.StringFixed(2),
			"error", err,
		)
		return nil, err
	}

	settlement := &Settlement{
		GroupID:    groupID,
		FromUserID: fromID,
		ToUserID:   req.ToUserID,
		Amount:     req.Amount,
		Note:       req.Note,
		CreatedBy:  fromID,
		FromName:   nameOf(members, fromID),
		ToName:     nameOf(members, req.ToUserID),
	}
	if err := s.repo.Create(ctx, settlement); err != nil {
		return nil, err
	}

	s.balances.Invalidate(ctx, groupID)
	s.notify(ctx, settlement)
	metrics.Settlements.WithLabelValues(metrics.SettlementRecorded).Inc()

	slog.Info("settlement recorded",
		"group_id", groupID,
		"settlement_id", settlement.ID,
		"from", fromID,
		"to", req.ToUserID,
		"amount", settlement.Amount.StringFixed(2),
	)
	return settlement, nil
}

// List retrieves a page of a group's settlement history
func (s *Service) List(ctx context.Context, groupID, viewerID int64, page, perPage int) ([]*Settlement, int, error) {
	members, err := s.members.GetGroupMembers(ctx, groupID)
	if err != nil {
		return nil, 0, err
	}
	if !slices.Contains(ledger.MemberIDs(members), viewerID) {
		return nil, 0, group.ErrNotMember
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

// PairBalance is the netted position between the caller and one counterpart
type PairBalance struct {
	UserID  int64
	Name    string
	YouOwe  decimal.Decimal
	OwesYou decimal.Decimal
}

// BalanceWith returns what viewerID and otherID owe each other after netting.
// YouOwe is the most viewerID can currently settle with otherID.
// otherID may be a former member who still has a balance in the group.
func (s *Service) BalanceWith(ctx context.Context, groupID, viewerID, otherID int64) (*PairBalance, error) {
	if viewerID == otherID {
		return nil, ErrSelfBalance
	}

	members, err := s.members.GetGroupMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	ids := ledger.MemberIDs(members)
	if !slices.Contains(ids, viewerID) {
		return nil, group.ErrNotMember
	}

	netted, err := s.balances.Netted(ctx, groupID, ids, false)
	if err != nil {
		return nil, err
	}

	name := nameOf(members, otherID)
	if name == "" {
		name = fmt.Sprintf("User %d", otherID)
	}
	return &PairBalance{
		UserID:  otherID,
		Name:    name,
		YouOwe:  ledger.Owed(netted, viewerID, otherID),
		OwesYou: ledger.Owed(netted, otherID, viewerID),
	}, nil
}

func (s *Service) notify(ctx context.Context, settlement *Settlement) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.NotifySettlementRecorded(ctx, settlement.ToUserID, settlement.GroupID, settlement.FromName, settlement.Amount, settlement.ID)
	if err != nil {
		slog.Warn("failed to send notification", "settlement_id", settlement.ID, "user_id", settlement.ToUserID, "error", err)
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

// isBusy reports whether err means the group's lock could not be taken in time
func isBusy(err error) bool {
	return errors.Is(err, lock.ErrNotObtained)
}
