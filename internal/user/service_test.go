package user

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fkhayef/settleup/internal/auth"
)

// memStore is an in-memory Store
type memStore struct {
	users  map[int64]*User
	nextID int64
}

func newMemStore() *memStore {
	return &memStore{users: make(map[int64]*User)}
}

func (m *memStore) Create(_ context.Context, u *User) error {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return ErrEmailAlreadyInUse
		}
	}
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memStore) GetByID(_ context.Context, id int64) (*User, error) {
	return m.users[id], nil
}

func (m *memStore) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memStore) GetByIDs(_ context.Context, ids []int64) ([]*User, error) {
	var out []*User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memStore) Update(_ context.Context, id int64, req *UpdateUserRequest) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Mobile != nil {
		u.Mobile = req.Mobile
	}
	return u, nil
}

func newTestService() (*Service, *auth.JWTManager) {
	jwt := auth.NewJWTManager("test", time.Hour)
	return NewService(newMemStore(), jwt), jwt
}

func TestSignupAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, jwt := newTestService()

	res, err := svc.Signup(ctx, &SignupRequest{Name: " Alice ", Email: "Alice@Example.com", Password: "password1"})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if res.User.Email != "alice@example.com" || res.User.Name != "Alice" {
		t.Errorf("user = %+v", res.User)
	}
	claims, err := jwt.Validate(res.Token)
	if err != nil {
		t.Fatalf("token invalid: %v", err)
	}
	if claims.UserID != res.User.ID {
		t.Errorf("token user = %d, want %d", claims.UserID, res.User.ID)
	}

	if _, err := svc.Signup(ctx, &SignupRequest{Name: "Al", Email: "alice@example.com", Password: "password2"}); !errors.Is(err, ErrEmailAlreadyInUse) {
		t.Errorf("duplicate signup: expected ErrEmailAlreadyInUse, got %v", err)
	}

	if _, err := svc.Login(ctx, &LoginRequest{Email: "alice@example.com", Password: "password1"}); err != nil {
		t.Errorf("Login: %v", err)
	}
	if _, err := svc.Login(ctx, &LoginRequest{Email: "alice@example.com", Password: "wrong-pass"}); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, &LoginRequest{Email: "nobody@example.com", Password: "password1"}); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSignupWeakPassword(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Signup(context.Background(), &SignupRequest{Name: "Bob", Email: "bob@example.com", Password: "short"})
	if !errors.Is(err, auth.ErrWeakPassword) {
		t.Errorf("expected ErrWeakPassword, got %v", err)
	}
}

func TestGetNamesByIDs(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	a, _ := svc.Signup(ctx, &SignupRequest{Name: "Alice", Email: "a@example.com", Password: "password1"})
	b, _ := svc.Signup(ctx, &SignupRequest{Name: "Bob", Email: "b@example.com", Password: "password1"})

	names, err := svc.GetNamesByIDs(ctx, []int64{a.User.ID, b.User.ID, 999})
	if err != nil {
		t.Fatalf("GetNamesByIDs: %v", err)
	}
	if len(names) != 2 || names[a.User.ID] != "Alice" || names[b.User.ID] != "Bob" {
		t.Errorf("names = %v", names)
	}

	if _, err := svc.GetByID(ctx, 999); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
