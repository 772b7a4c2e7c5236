package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotRecipient         = errors.New("not the recipient of this notification")
)

// Store is the persistence the notification service needs
type Store interface {
	Create(ctx context.Context, notification *Notification) error
	GetByID(ctx context.Context, id int64) (*Notification, error)
	List(ctx context.Context, recipientID int64, filter Filter, limit, offset int) ([]*Notification, int, error)
	MarkAsRead(ctx context.Context, id, recipientID int64) (bool, error)
	MarkAllAsRead(ctx context.Context, recipientID int64, groupID *int64) (int64, error)
	CountUnread(ctx context.Context, recipientID int64, groupID *int64) (int, error)
	CountUnreadByGroup(ctx context.Context, recipientID int64) (map[int64]int, error)
}

// Service handles notification business logic
type Service struct {
	repo Store
}

// NewService creates a new notification service
func NewService(repo Store) *Service {
	return &Service{repo: repo}
}

// List retrieves a page of a user's inbox, newest first
func (s *Service) List(ctx context.Context, recipientID int64, filter Filter, page, perPage int) ([]*Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.List(ctx, recipientID, filter, perPage, offset)
}

// MarkAsRead marks a notification as read
func (s *Service) MarkAsRead(ctx context.Context, id, userID int64) error {
	updated, err := s.repo.MarkAsRead(ctx, id, userID)
	if err != nil {
		return err
	}
	if updated {
		return nil
	}

	notification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if notification == nil {
		return ErrNotificationNotFound
	}
	return ErrNotRecipient
}

// MarkAllAsRead marks a user's unread notifications as read, optionally only one group's.
// It returns how many were marked.
func (s *Service) MarkAllAsRead(ctx context.Context, userID int64, groupID *int64) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, userID, groupID)
}

// UnreadCount returns the user's unread total. Without a group it also
// returns the total split by group.
func (s *Service) UnreadCount(ctx context.Context, userID int64, groupID *int64) (int, map[int64]int, error) {
	total, err := s.repo.CountUnread(ctx, userID, groupID)
	if err != nil {
		return 0, nil, err
	}
	if groupID != nil {
		return total, nil, nil
	}

	byGroup, err := s.repo.CountUnreadByGroup(ctx, userID)
	if err != nil {
		return 0, nil, err
	}
	return total, byGroup, nil
}

// NotifyAddedToGroup tells a user they were added to a group
func (s *Service) NotifyAddedToGroup(ctx context.Context, recipientID int64, groupName string, groupID int64) error {
	return s.send(ctx, recipientID, groupID, "You were added to the group "+groupName, EntityGroup, groupID)
}

// NotifyExpenseAdded tells an included member their share of a new expense
func (s *Service) NotifyExpenseAdded(ctx context.Context, recipientID, groupID int64, payerName, description string, share decimal.Decimal, expenseID int64) error {
	message := fmt.Sprintf("%s added %q and your share is %s", payerName, description, share.StringFixed(2))
	return s.send(ctx, recipientID, groupID, message, EntityExpense, expenseID)
}

// NotifySettlementRecorded tells the receiver that a payment to them was recorded
func (s *Service) NotifySettlementRecorded(ctx context.Context, recipientID, groupID int64, payerName string, amount decimal.Decimal, settlementID int64) error {
	message := fmt.Sprintf("%s paid you %s", payerName, amount.StringFixed(2))
	return s.send(ctx, recipientID, groupID, message, EntitySettlement, settlementID)
}

func (s *Service) send(ctx context.Context, recipientID, groupID int64, message, entityType string, entityID int64) error {
	return s.repo.Create(ctx, &Notification{
		RecipientID:       recipientID,
		GroupID:           &groupID,
		Message:           message,
		RelatedEntityType: &entityType,
		RelatedEntityID:   &entityID,
	})
}
