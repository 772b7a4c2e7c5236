package group

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/fkhayef/settleup/internal/ledger"
	"github.com/fkhayef/settleup/internal/lock"
)

// Common errors
var (
	ErrGroupNotFound       = errors.New("group not found")
	ErrMemberNotFound      = errors.New("member not found")
	ErrMemberAlreadyExists = errors.New("user is already a member of this group")
	ErrNotAuthorized       = errors.New("not authorized to perform this action")
	ErrNotMember           = errors.New("you are not a member of this group")
	ErrUserNotFound        = errors.New("user not found")
	ErrLastAdmin           = errors.New("a group must keep at least one admin")
	ErrOutstandingBalances = errors.New("group still has unsettled balances")
	ErrRemoveSelf          = errors.New("use leave to remove yourself")
	ErrInvalidInvite       = errors.New("invite link is invalid")
)

// Store is the persistence the group service needs
type Store interface {
	Create(ctx context.Context, group *Group, memberIDs []int64) error
	GetByID(ctx context.Context, id int64) (*Group, error)
	GetByInviteToken(ctx context.Context, token string) (*Group, error)
	ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*Group, int, error)
	Update(ctx context.Context, id int64, req *UpdateGroupRequest) (*Group, error)
	SetInviteToken(ctx context.Context, id int64, token string) (string, error)
	AddMember(ctx context.Context, groupID, userID int64, role MemberRole) (*GroupMember, error)
	GetMembers(ctx context.Context, groupID int64) ([]*GroupMember, error)
	GetMember(ctx context.Context, groupID, userID int64) (*GroupMember, error)
	RemoveMember(ctx context.Context, groupID, userID int64) error
	UpdateMemberRole(ctx context.Context, groupID, userID int64, role MemberRole) (*GroupMember, error)
	HandOver(ctx context.Context, groupID, leavingID, successorID int64) error
	Delete(ctx context.Context, id int64) error
}

// Balances computes and invalidates a group's netted matrix
type Balances interface {
	Netted(ctx context.Context, groupID int64, memberIDs []int64, fresh bool) (*ledger.Matrix, error)
	Invalidate(ctx context.Context, groupID int64)
}

// Notifier tells users about membership changes
type Notifier interface {
	NotifyAddedToGroup(ctx context.Context, recipientID int64, groupName string, groupID int64) error
}

// Service handles group business logic
type Service struct {
	repo     Store
	notifier Notifier
	balances Balances
	locker   lock.Locker
}

// NewService creates a new group service
func NewService(repo Store, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

// UseBalances wires the balance computation Delete checks against.
// The balance service itself reads members through this service, so it is set after construction.
func (s *Service) UseBalances(balances Balances, locker lock.Locker) {
	s.balances = balances
	s.locker = locker
}

// Create creates a new group with the creator as admin
func (s *Service) Create(ctx context.Context, creatorID int64, req *CreateGroupRequest) (*Group, error) {
	group := &Group{
		Name:      strings.TrimSpace(req.Name),
		Currency:  strings.ToUpper(req.Currency),
		Category:  req.Category,
		CreatedBy: creatorID,
	}
	if group.Currency == "" {
		group.Currency = DefaultCurrency
	}
	if group.Category == "" {
		group.Category = CategoryOther
	}

	var others []int64
	for _, id := range req.MemberIDs {
		if id != creatorID {
			others = append(others, id)
		}
	}

	if err := s.repo.Create(ctx, group, others); err != nil {
		return nil, err
	}

	for _, id := range others {
		s.notify(ctx, id, group)
	}
	slog.Info("group created", "group_id", group.ID, "created_by", creatorID, "members", len(others)+1)
	return group, nil
}

// GetByID retrieves a group by its ID
func (s *Service) GetByID(ctx context.Context, id int64) (*Group, error) {
	group, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// GetWithMembers retrieves a group and its members for one of those members
func (s *Service) GetWithMembers(ctx context.Context, id, viewerID int64) (*Group, []*GroupMember, error) {
	group, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	members, err := s.repo.GetMembers(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !hasMember(members, viewerID) {
		return nil, nil, ErrNotMember
	}

	return group, members, nil
}

// ListByUserID retrieves all groups for a user
func (s *Service) ListByUserID(ctx context.Context, userID int64, page, perPage int) ([]*Group, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByUserID(ctx, userID, perPage, offset)
}

// Update modifies an existing group. Only admins may do so.
func (s *Service) Update(ctx context.Context, id, actorID int64, req *UpdateGroupRequest) (*Group, error) {
	if _, err := s.requireAdmin(ctx, id, actorID); err != nil {
		return nil, err
	}

	group, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// AddMember adds a user to a group. Only admins may do so.
func (s *Service) AddMember(ctx context.Context, groupID, actorID int64, req *AddMemberRequest) (*GroupMember, error) {
	group, err := s.requireAdmin(ctx, groupID, actorID)
	if err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = MemberRoleMember
	}

	member, err := s.repo.AddMember(ctx, groupID, req.UserID, role)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, req.UserID, group)
	slog.Info("member added", "group_id", groupID, "user_id", req.UserID, "by", actorID)
	return member, nil
}

// RemoveMember removes another user from a group. Only admins may do so.
// The removed member's balances stay in the group's ledger.
func (s *Service) RemoveMember(ctx context.Context, groupID, actorID, userID int64) error {
	if actorID == userID {
		return ErrRemoveSelf
	}
	if _, err := s.requireAdmin(ctx, groupID, actorID); err != nil {
		return err
	}
	if err := s.repo.RemoveMember(ctx, groupID, userID); err != nil {
		return err
	}

	slog.Info("member removed", "group_id", groupID, "user_id", userID, "by", actorID)
	return nil
}

// Leave removes the caller from a group. When the last admin leaves, the
// longest-standing remaining member is promoted and returned as the new admin.
func (s *Service) Leave(ctx context.Context, groupID, userID int64) (*GroupMember, error) {
	if _, err := s.GetByID(ctx, groupID); err != nil {
		return nil, err
	}

	members, err := s.repo.GetMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}

	var self, successor *GroupMember
	for _, m := range members {
		if m.UserID == userID {
			self = m
		} else if successor == nil {
			successor = m
		}
	}
	if self == nil {
		return nil, ErrNotMember
	}

	if self.Role != MemberRoleAdmin || countAdmins(members) > 1 || successor == nil {
		if err := s.repo.RemoveMember(ctx, groupID, userID); err != nil {
			return nil, err
		}
		slog.Info("member left", "group_id", groupID, "user_id", userID)
		return nil, nil
	}

	if err := s.repo.HandOver(ctx, groupID, userID, successor.UserID); err != nil {
		return nil, err
	}
	successor.Role = MemberRoleAdmin

	slog.Info("admin left", "group_id", groupID, "user_id", userID, "new_admin", successor.UserID)
	return successor, nil
}

// UpdateMember changes another member's role. Only admins may do so, and
// the last admin cannot be demoted.
func (s *Service) UpdateMember(ctx context.Context, groupID, actorID, userID int64, req *UpdateMemberRequest) (*GroupMember, error) {
	if _, err := s.requireAdmin(ctx, groupID, actorID); err != nil {
		return nil, err
	}

	members, err := s.repo.GetMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	var target *GroupMember
	for _, m := range members {
		if m.UserID == userID {
			target = m
		}
	}
	if target == nil {
		return nil, ErrMemberNotFound
	}
	if target.Role == req.Role {
		return target, nil
	}
	if target.Role == MemberRoleAdmin && countAdmins(members) == 1 {
		return nil, ErrLastAdmin
	}

	member, err := s.repo.UpdateMemberRole(ctx, groupID, userID, req.Role)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}

	slog.Info("member role changed", "group_id", groupID, "user_id", userID, "role", member.Role, "by", actorID)
	return member, nil
}

// Delete removes a group with its history. Only admins may do so, and only
// once every balance in the group is settled. The check and the delete run
// under the group's write lock.
func (s *Service) Delete(ctx context.Context, groupID, actorID int64) error {
	if s.balances == nil || s.locker == nil {
		return errors.New("group deletion needs balances")
	}

	if _, err := s.requireAdmin(ctx, groupID, actorID); err != nil {
		return err
	}

	release, err := s.locker.Obtain(ctx, lock.GroupKey(groupID), lock.DefaultTTL)
	if err != nil {
		return err
	}
	defer release()

	members, err := s.GetGroupMembers(ctx, groupID)
	if err != nil {
		return err
	}
	netted, err := s.balances.Netted(ctx, groupID, ledger.MemberIDs(members), true)
	if err != nil {
		return err
	}
	for _, c := range netted.Cells() {
		if ledger.Owed(netted, c.Debtor, c.Creditor).IsPositive() {
			slog.Warn("group delete refused", "group_id", groupID, "by", actorID, "debtor", c.Debtor, "creditor", c.Creditor)
			return ErrOutstandingBalances
		}
	}

	if err := s.repo.Delete(ctx, groupID); err != nil {
		return err
	}
	s.balances.Invalidate(ctx, groupID)

	slog.Info("group deleted", "group_id", groupID, "by", actorID)
	return nil
}

// InviteToken returns the group's invite token, creating it on first use
func (s *Service) InviteToken(ctx context.Context, groupID, userID int64) (string, error) {
	group, err := s.GetByID(ctx, groupID)
	if err != nil {
		return "", err
	}
	if err := s.RequireMember(ctx, groupID, userID); err != nil {
		return "", err
	}
	if group.InviteToken != nil {
		return *group.InviteToken, nil
	}
	return s.repo.SetInviteToken(ctx, groupID, uuid.NewString())
}

// JoinByToken adds the caller to the group the token belongs to.
// Joining a group one already belongs to is not an error.
func (s *Service) JoinByToken(ctx context.Context, token string, userID int64) (*Group, error) {
	if _, err := uuid.Parse(token); err != nil {
		return nil, ErrInvalidInvite
	}

	group, err := s.repo.GetByInviteToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrInvalidInvite
	}

	if _, err := s.repo.AddMember(ctx, group.ID, userID, MemberRoleMember); err != nil {
		if errors.Is(err, ErrMemberAlreadyExists) {
			return group, nil
		}
		return nil, err
	}

	slog.Info("member joined by invite", "group_id", group.ID, "user_id", userID)
	return group, nil
}

// GetGroupMembers returns the current members of a group as ledger members
func (s *Service) GetGroupMembers(ctx context.Context, groupID int64) ([]ledger.Member, error) {
	if _, err := s.GetByID(ctx, groupID); err != nil {
		return nil, err
	}

	members, err := s.repo.GetMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}

	out := make([]ledger.Member, len(members))
	for i, m := range members {
		out[i] = ledger.Member{ID: m.UserID, Name: m.Name}
	}
	return out, nil
}

// RequireMember returns ErrGroupNotFound or ErrNotMember unless userID currently belongs to the group
func (s *Service) RequireMember(ctx context.Context, groupID, userID int64) error {
	if _, err := s.GetByID(ctx, groupID); err != nil {
		return err
	}

	member, err := s.repo.GetMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrNotMember
	}
	return nil
}

func (s *Service) requireAdmin(ctx context.Context, groupID, userID int64) (*Group, error) {
	group, err := s.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	member, err := s.repo.GetMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrNotMember
	}
	if member.Role != MemberRoleAdmin {
		return nil, ErrNotAuthorized
	}
	return group, nil
}

func (s *Service) notify(ctx context.Context, userID int64, group *Group) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyAddedToGroup(ctx, userID, group.Name, group.ID); err != nil {
		slog.Warn("failed to send notification", "group_id", group.ID, "user_id", userID, "error", err)
	}
}

func countAdmins(members []*GroupMember) int {
	n := 0
	for _, m := range members {
		if m.Role == MemberRoleAdmin {
			n++
		}
	}
	return n
}

func hasMember(members []*GroupMember, userID int64) bool {
	for _, m := range members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
