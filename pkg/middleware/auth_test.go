package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/fkhayef/settleup/internal/auth"
)

// echoUser writes the context user ID, or 0 when absent
func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := GetUserID(r.Context())
		w.Write([]byte(strconv.FormatInt(id, 10)))
	})
}

func TestAuth(t *testing.T) {
	jwt := auth.NewJWTManager("secret", time.Hour)
	token, _, err := jwt.Generate(7, "g@example.com")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	handler := Auth(jwt)(echoUser())

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid", "Bearer " + token, http.StatusOK, "7"},
		{"lowercase scheme", "bearer " + token, http.StatusOK, "7"},
		{"missing", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, ""},
		{"bad token", "Bearer abc", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.body != "" && rec.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.body)
			}
		})
	}
}

func TestDevAuthFallsBackToToken(t *testing.T) {
	jwt := auth.NewJWTManager("secret", time.Hour)
	token, _, _ := jwt.Generate(9, "n@example.com")
	handler := TestUserMiddleware(RequireUser(Auth(jwt))(echoUser()))

	tests := []struct {
		name    string
		headers map[string]string
		status  int
		body    string
	}{
		{"test header", map[string]string{"X-Test-User-ID": "3"}, http.StatusOK, "3"},
		{"bad test header", map[string]string{"X-Test-User-ID": "abc"}, http.StatusUnauthorized, ""},
		{"token", map[string]string{"Authorization": "Bearer " + token}, http.StatusOK, "9"},
		{"nothing", nil, http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.body != "" && rec.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.body)
			}
		})
	}
}
