package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/fkhayef/settleup/pkg/middleware"
)

type memStore struct {
	items  []*Notification
	nextID int64
}

func inScope(n *Notification, recipientID int64, groupID *int64) bool {
	if n.RecipientID != recipientID {
		return false
	}
	return groupID == nil || (n.GroupID != nil && *n.GroupID == *groupID)
}

func (m *memStore) Create(_ context.Context, n *Notification) error {
	m.nextID++
	n.ID = m.nextID
	n.CreatedAt = time.Now()
	m.items = append(m.items, n)
	return nil
}

func (m *memStore) GetByID(_ context.Context, id int64) (*Notification, error) {
	for _, n := range m.items {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, nil
}

func (m *memStore) List(_ context.Context, recipientID int64, filter Filter, limit, offset int) ([]*Notification, int, error) {
	var matched []*Notification
	for i := len(m.items) - 1; i >= 0; i-- {
		n := m.items[i]
		if inScope(n, recipientID, filter.GroupID) && (!filter.UnreadOnly || !n.IsRead) {
			matched = append(matched, n)
		}
	}
	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (m *memStore) MarkAsRead(_ context.Context, id, recipientID int64) (bool, error) {
	for _, n := range m.items {
		if n.ID == id && n.RecipientID == recipientID {
			n.IsRead = true
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) MarkAllAsRead(_ context.Context, recipientID int64, groupID *int64) (int64, error) {
	var marked int64
	for _, n := range m.items {
		if inScope(n, recipientID, groupID) && !n.IsRead {
			n.IsRead = true
			marked++
		}
	}
	return marked, nil
}

func (m *memStore) CountUnread(_ context.Context, recipientID int64, groupID *int64) (int, error) {
	count := 0
	for _, n := range m.items {
		if inScope(n, recipientID, groupID) && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *memStore) CountUnreadByGroup(_ context.Context, recipientID int64) (map[int64]int, error) {
	counts := make(map[int64]int)
	for _, n := range m.items {
		if n.RecipientID == recipientID && !n.IsRead && n.GroupID != nil {
			counts[*n.GroupID]++
		}
	}
	return counts, nil
}

func ptr(id int64) *int64 {
	return &id
}

// newInbox gives user 1 two notifications from group 7 and one from group 8,
// and user 2 one from group 7
func newInbox(t *testing.T) (*Service, *memStore) {
	t.Helper()
	ctx := context.Background()
	store := &memStore{}
	svc := NewService(store)

	steps := []error{
		svc.NotifyAddedToGroup(ctx, 1, "Trip", 7),
		svc.NotifyExpenseAdded(ctx, 1, 7, "Bob", "Taxi", decimal.RequireFromString("12.5"), 30),
		svc.NotifySettlementRecorded(ctx, 1, 8, "Carol", decimal.NewFromInt(20), 4),
		svc.NotifyAddedToGroup(ctx, 2, "Trip", 7),
	}
	for i, err := range steps {
		if err != nil {
			t.Fatalf("notify %d: %v", i, err)
		}
	}
	return svc, store
}

func TestNotifyHelpers(t *testing.T) {
	_, store := newInbox(t)

	tests := []struct {
		idx        int
		recipient  int64
		group      int64
		entityType string
		entityID   int64
		contains   string
	}{
		{0, 1, 7, EntityGroup, 7, "added to the group Trip"},
		{1, 1, 7, EntityExpense, 30, "your share is 12.50"},
		{2, 1, 8, EntitySettlement, 4, "Carol paid you 20.00"},
	}
	for _, tt := range tests {
		n := store.items[tt.idx]
		if n.RecipientID != tt.recipient || *n.GroupID != tt.group {
			t.Errorf("notification %d = %+v", tt.idx, n)
		}
		if *n.RelatedEntityType != tt.entityType || *n.RelatedEntityID != tt.entityID {
			t.Errorf("notification %d points at %s %d", tt.idx, *n.RelatedEntityType, *n.RelatedEntityID)
		}
		if !strings.Contains(n.Message, tt.contains) {
			t.Errorf("message %q does not contain %q", n.Message, tt.contains)
		}
	}
}

func TestMarkAsRead(t *testing.T) {
	ctx := context.Background()
	svc, _ := newInbox(t)

	if err := svc.MarkAsRead(ctx, 1, 2); !errors.Is(err, ErrNotRecipient) {
		t.Errorf("other user: expected ErrNotRecipient, got %v", err)
	}
	if err := svc.MarkAsRead(ctx, 99, 1); !errors.Is(err, ErrNotificationNotFound) {
		t.Errorf("missing: expected ErrNotificationNotFound, got %v", err)
	}
	if err := svc.MarkAsRead(ctx, 1, 1); err != nil {
		t.Fatalf("MarkAsRead: %v", err)
	}

	total, byGroup, err := svc.UnreadCount(ctx, 1, nil)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if total != 2 || byGroup[7] != 1 || byGroup[8] != 1 {
		t.Errorf("unread = %d %v, want 2 split 7:1 8:1", total, byGroup)
	}
}

func TestGroupScoping(t *testing.T) {
	ctx := context.Background()
	svc, _ := newInbox(t)

	list, total, err := svc.List(ctx, 1, Filter{GroupID: ptr(7)}, 1, 20)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(list) != 2 || list[0].ID != 2 {
		t.Errorf("group 7 inbox = %d items of %d, first %+v", len(list), total, list[0])
	}

	marked, err := svc.MarkAllAsRead(ctx, 1, ptr(7))
	if err != nil || marked != 2 {
		t.Fatalf("MarkAllAsRead(group 7) = %d, %v", marked, err)
	}
	if count, _, _ := svc.UnreadCount(ctx, 1, ptr(8)); count != 1 {
		t.Errorf("group 8 unread = %d, want 1", count)
	}
	if count, _, _ := svc.UnreadCount(ctx, 2, ptr(7)); count != 1 {
		t.Errorf("another recipient's group 7 unread = %d, want 1", count)
	}

	unread, total, _ := svc.List(ctx, 1, Filter{UnreadOnly: true}, 0, 500)
	if total != 1 || len(unread) != 1 || *unread[0].GroupID != 8 {
		t.Errorf("unread inbox = %+v", unread)
	}

	if marked, _ := svc.MarkAllAsRead(ctx, 1, nil); marked != 1 {
		t.Errorf("MarkAllAsRead = %d, want 1", marked)
	}
}

func TestHandlers(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		check      func(t *testing.T, data json.RawMessage)
	}{
		{"list group", http.MethodGet, "/notifications?group_id=8", http.StatusOK, func(t *testing.T, data json.RawMessage) {
			var items []NotificationResponse
			json.Unmarshal(data, &items)
			if len(items) != 1 || items[0].GroupID == nil || *items[0].GroupID != 8 {
				t.Errorf("items = %+v", items)
			}
		}},
		{"unread split", http.MethodGet, "/notifications/unread-count", http.StatusOK, func(t *testing.T, data json.RawMessage) {
			var resp UnreadCountResponse
			json.Unmarshal(data, &resp)
			if resp.UnreadCount != 3 || resp.ByGroup["7"] != 2 || resp.ByGroup["8"] != 1 {
				t.Errorf("unread = %+v", resp)
			}
		}},
		{"unread one group", http.MethodGet, "/notifications/unread-count?group_id=7", http.StatusOK, func(t *testing.T, data json.RawMessage) {
			var resp UnreadCountResponse
			json.Unmarshal(data, &resp)
			if resp.UnreadCount != 2 || resp.ByGroup != nil {
				t.Errorf("unread = %+v", resp)
			}
		}},
		{"read all in group", http.MethodPost, "/notifications/read-all?group_id=7", http.StatusOK, func(t *testing.T, data json.RawMessage) {
			var resp ReadAllResponse
			json.Unmarshal(data, &resp)
			if resp.Marked != 2 {
				t.Errorf("marked = %d, want 2", resp.Marked)
			}
		}},
		{"bad group", http.MethodGet, "/notifications?group_id=abc", http.StatusBadRequest, nil},
		{"not recipient", http.MethodPost, "/notifications/4/read", http.StatusForbidden, nil},
		{"missing", http.MethodPost, "/notifications/99/read", http.StatusNotFound, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newInbox(t)
			r := chi.NewRouter()
			r.Mount("/notifications", NewHandler(svc).Routes())

			req := httptest.NewRequest(tt.method, tt.path, nil)
			req = req.WithContext(middleware.WithUserID(req.Context(), 1))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.check == nil {
				return
			}

			var body struct {
				Data json.RawMessage `json:"data"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			tt.check(t, body.Data)
		})
	}
}
