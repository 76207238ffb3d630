package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/evcraddock/yatube-api/internal/db"
)

func testDB(t *testing.T) *sqlx.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	d, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if cerr := d.Close(); cerr != nil {
			t.Errorf("close db: %v", cerr)
		}
	})
	return d
}

func testUserStore(t *testing.T) *UserStore {
	t.Helper()
	return NewUserStore(testDB(t))
}

func TestCreateAndGetUser(t *testing.T) {
	s := testUserStore(t)
	ctx := context.Background()

	u, err := s.Create(ctx, "leo", "correct-horse")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.ID == 0 {
		t.Error("expected non-zero ID")
	}
	if u.PasswordHash == "correct-horse" {
		t.Error("password stored in plain text")
	}

	byName, err := s.GetByUsername(ctx, "leo")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if byName.ID != u.ID {
		t.Errorf("id = %d, want %d", byName.ID, u.ID)
	}
}

func TestCreateUserValidation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
	}{
		{"empty username", "  ", "correct-horse"},
		{"short password", "leo", "short"},
	}

	s := testUserStore(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Create(context.Background(), tt.username, tt.password); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestCreateDuplicateUser(t *testing.T) {
	s := testUserStore(t)
	ctx := context.Background()

	if _, err := s.Create(ctx, "leo", "correct-horse"); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := s.Create(ctx, "leo", "another-password")
	if !errors.Is(err, ErrUserExists) {
		t.Errorf("err = %v, want ErrUserExists", err)
	}
}

func TestAuthenticate(t *testing.T) {
	s := testUserStore(t)
	ctx := context.Background()

	if _, err := s.Create(ctx, "leo", "correct-horse"); err != nil {
		t.Fatalf("create: %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"valid", "leo", "correct-horse", nil},
		{"wrong password", "leo", "wrong-horse", ErrInvalidCredentials},
		{"unknown user", "mia", "correct-horse", ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := s.Authenticate(ctx, tt.username, tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if u.LastLogin == nil {
				t.Error("expected last_login to be set")
			}
		})
	}
}

func TestListUsers(t *testing.T) {
	s := testUserStore(t)
	ctx := context.Background()

	for _, name := range []string{"mia", "leo"} {
		if _, err := s.Create(ctx, name, "correct-horse"); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	users, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("got %d users, want 2", len(users))
	}
	if users[0].Username != "leo" {
		t.Errorf("first user = %q, want leo", users[0].Username)
	}
}

func TestGetUserNotFound(t *testing.T) {
	s := testUserStore(t)

	if _, err := s.GetByID(context.Background(), 9999); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
