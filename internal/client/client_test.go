package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/evcraddock/yatube-api/internal/auth"
	"github.com/evcraddock/yatube-api/internal/config"
	"github.com/evcraddock/yatube-api/internal/db"
	"github.com/evcraddock/yatube-api/internal/group"
	"github.com/evcraddock/yatube-api/internal/web"
)

func TestListPosts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/posts/" {
			t.Errorf("path = %q, want /api/v1/posts/", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer testtoken" {
			t.Error("expected Bearer testtoken")
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode([]*Post{{ID: 1, Text: "hello", Author: "leo"}}); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "testtoken")
	posts, err := c.ListPosts(ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("got %d posts, want 1", len(posts))
	}
	if posts[0].Author != "leo" {
		t.Errorf("author = %q", posts[0].Author)
	}
}

func TestListPostsByGroup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("group") != "3" {
			t.Errorf("group = %q, want 3", r.URL.Query().Get("group"))
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte("[]")); err != nil {
			t.Fatalf("write: %v", err)
		}
	}))
	defer srv.Close()

	c := New(srv.URL+"/", "")
	if _, err := c.ListPosts(ListOptions{GroupID: 3}); err != nil {
		t.Fatalf("list: %v", err)
	}
}

func TestAnonymousRequestHasNoAuthorization(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h := r.Header.Get("Authorization"); h != "" {
			t.Errorf("Authorization = %q, want none", h)
		}
		if _, err := w.Write([]byte("[]")); err != nil {
			t.Fatalf("write: %v", err)
		}
	}))
	defer srv.Close()

	if _, err := New(srv.URL, "").ListGroups(); err != nil {
		t.Fatalf("list groups: %v", err)
	}
}

func TestErrorDecoding(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		body    string
		wantMsg string
	}{
		{"detail", http.StatusForbidden, `{"detail":"You do not have permission to perform this action."}`, "You do not have permission to perform this action."},
		{"fields", http.StatusBadRequest, `{"text":["This field is required."],"group":["Invalid pk \"9\" - object does not exist."]}`, `group: Invalid pk "9" - object does not exist.; text: This field is required.`},
		{"no body", http.StatusBadGateway, ``, "server error: Bad Gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
				if _, err := w.Write([]byte(tt.body)); err != nil {
					t.Fatalf("write: %v", err)
				}
			}))
			defer srv.Close()

			_, err := New(srv.URL, "k").GetPost(1)
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("error = %q, want %q", err.Error(), tt.wantMsg)
			}
			if !IsStatus(err, tt.code) {
				t.Errorf("IsStatus(%d) = false", tt.code)
			}
		})
	}
}

func TestDeletePostMethod(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s, want DELETE", r.Method)
		}
		if r.URL.Path != "/api/v1/posts/7/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	if err := New(srv.URL, "k").DeletePost(7); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestUpdateCommentRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s, want PATCH", r.Method)
		}
		if r.URL.Path != "/api/v1/posts/3/comments/9/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(Comment{ID: 9, Post: 3, Text: body["text"]}); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}))
	defer srv.Close()

	comm, err := New(srv.URL, "k").UpdateComment(3, 9, "fixed typo")
	if err != nil {
		t.Fatalf("update comment: %v", err)
	}
	if comm.ID != 9 || comm.Text != "fixed typo" {
		t.Errorf("comment = %+v", comm)
	}
}

// TestAgainstServer drives the real API end to end.
func TestAgainstServer(t *testing.T) {
	dir := t.TempDir()
	d, err := db.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer func() { _ = d.Close() }()

	ctx := context.Background()
	users := auth.NewUserStore(d)
	for _, name := range []string{"alice", "bob"} {
		if _, err := users.Create(ctx, name, "secret-"+name); err != nil {
			t.Fatalf("create user: %v", err)
		}
	}
	g, err := group.NewRepository(d).Create(ctx, "Cats", "cats", "")
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	api, err := web.NewServer(d, config.Config{
		MediaDir:         filepath.Join(dir, "media"),
		LoginMaxFailures: 5,
		LoginWindow:      time.Minute,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	srv := httptest.NewServer(api)
	defer srv.Close()

	if _, err := New(srv.URL, "").ObtainToken("alice", "wrong-password"); !IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("bad login err = %v, want 401", err)
	}

	aliceToken, err := New(srv.URL, "").ObtainToken("alice", "secret-alice")
	if err != nil {
		t.Fatalf("obtain token: %v", err)
	}
	bobToken, err := New(srv.URL, "").ObtainToken("bob", "secret-bob")
	if err != nil {
		t.Fatalf("obtain token: %v", err)
	}
	alice, bob := New(srv.URL, aliceToken), New(srv.URL, bobToken)

	p, err := alice.CreatePost(PostInput{Text: "hello", GroupID: &g.ID})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if p.Author != "alice" || p.Group == nil || *p.Group != g.ID {
		t.Errorf("post = %+v", p)
	}

	if _, err := bob.UpdatePost(p.ID, PostInput{Text: "mine now"}); !IsStatus(err, http.StatusForbidden) {
		t.Errorf("foreign update err = %v, want 403", err)
	}

	updated, err := alice.UpdatePost(p.ID, PostInput{Text: "edited"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Text != "edited" || updated.Group == nil {
		t.Errorf("updated = %+v", updated)
	}

	c, err := bob.AddComment(p.ID, "nice")
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}
	if _, err := bob.AddComment(999, "lost"); !IsStatus(err, http.StatusNotFound) {
		t.Errorf("comment on missing post err = %v, want 404", err)
	}

	comments, err := New(srv.URL, "").ListComments(p.ID)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(comments) != 1 || comments[0].Author != "bob" {
		t.Errorf("comments = %+v", comments)
	}

	if _, err := alice.UpdateComment(p.ID, c.ID, "not yours"); !IsStatus(err, http.StatusForbidden) {
		t.Errorf("foreign comment update err = %v, want 403", err)
	}
	edited, err := bob.UpdateComment(p.ID, c.ID, "very nice")
	if err != nil {
		t.Fatalf("update comment: %v", err)
	}
	if edited.Text != "very nice" || edited.Author != "bob" {
		t.Errorf("edited comment = %+v", edited)
	}

	if err := alice.DeleteComment(p.ID, c.ID); !IsStatus(err, http.StatusForbidden) {
		t.Errorf("foreign comment delete err = %v, want 403", err)
	}
	if err := bob.DeleteComment(p.ID, c.ID); err != nil {
		t.Fatalf("delete comment: %v", err)
	}

	groups, err := New(srv.URL, "").ListGroups()
	if err != nil {
		t.Fatalf("list groups: %v", err)
	}
	if len(groups) != 1 || groups[0].Slug != "cats" {
		t.Errorf("groups = %+v", groups)
	}

	posts, err := New(srv.URL, "").ListPosts(ListOptions{GroupID: g.ID})
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if len(posts) != 1 {
		t.Errorf("got %d posts, want 1", len(posts))
	}

	if err := alice.DeletePost(p.ID); err != nil {
		t.Fatalf("delete post: %v", err)
	}
	_, err = alice.GetPost(p.ID)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("get deleted post err = %v, want 404", err)
	}
}
