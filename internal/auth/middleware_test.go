package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAuthenticateMiddleware(t *testing.T) {
	d := testDB(t)
	users := NewUserStore(d)
	tokens := NewTokenStore(d)
	p := NewProvider(users, tokens)

	u, err := users.Create(context.Background(), "leo", "correct-horse")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	raw, _, err := tokens.Create(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}

	var seen *User
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := Authenticate(p, inner)

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantUser string
	}{
		{"anonymous", "", http.StatusOK, ""},
		{"bearer scheme", "Bearer " + raw, http.StatusOK, "leo"},
		{"token scheme", "Token " + raw, http.StatusOK, "leo"},
		{"unknown token", "Bearer yt_nope", http.StatusUnauthorized, ""},
		{"missing token", "Bearer", http.StatusUnauthorized, ""},
		{"unsupported scheme", "Basic abc", http.StatusUnauthorized, ""},
		{"token with spaces", "Bearer a b", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			r := httptest.NewRequest("GET", "/api/v1/posts/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantCode)
			}
			if tt.wantCode == http.StatusUnauthorized && w.Header().Get("WWW-Authenticate") == "" {
				t.Error("expected WWW-Authenticate header on 401")
			}
			got := ""
			if seen != nil {
				got = seen.Username
			}
			if got != tt.wantUser {
				t.Errorf("user = %q, want %q", got, tt.wantUser)
			}
		})
	}
}

func TestLoginLimiter(t *testing.T) {
	l := NewLoginLimiter(3, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if l.Blocked("10.0.0.1") {
			t.Fatalf("blocked after %d failures", i)
		}
		l.RecordFailure("10.0.0.1")
	}
	if !l.Blocked("10.0.0.1") {
		t.Error("expected IP to be blocked after 3 failures")
	}
	if l.Blocked("10.0.0.2") {
		t.Error("other IPs should not be blocked")
	}

	now = now.Add(2 * time.Minute)
	if l.Blocked("10.0.0.1") {
		t.Error("expected block to expire after the window")
	}
}

func TestLoginLimiterReset(t *testing.T) {
	l := NewLoginLimiter(1, time.Minute)
	l.RecordFailure("10.0.0.1")
	if !l.Blocked("10.0.0.1") {
		t.Fatal("expected block")
	}
	l.Reset("10.0.0.1")
	if l.Blocked("10.0.0.1") {
		t.Error("expected reset to clear failures")
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "192.0.2.7:51234"
	if got := ClientIP(r); got != "192.0.2.7" {
		t.Errorf("ClientIP = %q, want 192.0.2.7", got)
	}
}
