// Package web provides the HTTP API: routing, request handling, and the
// wire representation of posts, groups, and comments.
package web

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"

	"github.com/evcraddock/yatube-api/internal/auth"
	"github.com/evcraddock/yatube-api/internal/comment"
	"github.com/evcraddock/yatube-api/internal/config"
	"github.com/evcraddock/yatube-api/internal/group"
	"github.com/evcraddock/yatube-api/internal/logging"
	"github.com/evcraddock/yatube-api/internal/media"
	"github.com/evcraddock/yatube-api/internal/post"
)

// APIPrefix is the versioned path prefix of every API route.
const APIPrefix = "/api/v1"

// Server is the API HTTP server.
type Server struct {
	cfg         config.Config
	postRepo    *post.Repository
	commentRepo *comment.Repository
	groupRepo   *group.Repository
	auth        *auth.Provider
	limiter     *auth.LoginLimiter
	media       *media.Store
	handler     http.Handler
}

// NewServer creates an API server with the given database.
func NewServer(db *sqlx.DB, cfg config.Config) (*Server, error) {
	if cfg.MediaDir == "" {
		return nil, fmt.Errorf("media directory is required")
	}
	if cfg.LoginMaxFailures <= 0 {
		cfg.LoginMaxFailures = 10
	}
	if cfg.LoginWindow <= 0 {
		cfg.LoginWindow = time.Minute
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 8 << 20
	}

	s := &Server{
		cfg:         cfg,
		postRepo:    post.NewRepository(db),
		commentRepo: comment.NewRepository(db),
		groupRepo:   group.NewRepository(db),
		auth:        auth.NewProvider(auth.NewUserStore(db), auth.NewTokenStore(db)),
		limiter:     auth.NewLoginLimiter(cfg.LoginMaxFailures, cfg.LoginWindow),
		media:       media.NewStore(cfg.MediaDir),
	}

	s.handler = logging.Recover(
		logging.RequestID(
			logging.RequestLogger(
				appendSlash(
					limitBody(cfg.MaxBodyBytes,
						auth.Authenticate(s.auth, s.routes()))))))

	return s, nil
}

// routes builds the router. Paths end with a slash; appendSlash adds one
// when the client leaves it off.
func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	r.HandleFunc("/health/", s.handleHealth).Methods(http.MethodGet)
	r.PathPrefix("/media/").
		Handler(http.StripPrefix("/media/", s.media.Handler())).
		Methods(http.MethodGet, http.MethodHead)

	api := r.PathPrefix(APIPrefix).Subrouter()
	api.NotFoundHandler = r.NotFoundHandler
	api.MethodNotAllowedHandler = r.MethodNotAllowedHandler

	api.HandleFunc("/api-token-auth/", s.handleObtainToken).Methods(http.MethodPost)

	api.HandleFunc("/posts/", s.handleListPosts).Methods(http.MethodGet)
	api.HandleFunc("/posts/", s.handleCreatePost).Methods(http.MethodPost)
	api.HandleFunc("/posts/{id:[0-9]+}/", s.handleGetPost).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id:[0-9]+}/", s.handleUpdatePost).Methods(http.MethodPut, http.MethodPatch)
	api.HandleFunc("/posts/{id:[0-9]+}/", s.handleDeletePost).Methods(http.MethodDelete)

	api.HandleFunc("/groups/", s.handleListGroups).Methods(http.MethodGet)
	api.HandleFunc("/groups/{id:[0-9]+}/", s.handleGetGroup).Methods(http.MethodGet)

	api.HandleFunc("/posts/{post_id:[0-9]+}/comments/", s.handleListComments).Methods(http.MethodGet)
	api.HandleFunc("/posts/{post_id:[0-9]+}/comments/", s.handleCreateComment).Methods(http.MethodPost)
	api.HandleFunc("/posts/{post_id:[0-9]+}/comments/{id:[0-9]+}/", s.handleGetComment).Methods(http.MethodGet)
	api.HandleFunc("/posts/{post_id:[0-9]+}/comments/{id:[0-9]+}/", s.handleUpdateComment).Methods(http.MethodPut, http.MethodPatch)
	api.HandleFunc("/posts/{post_id:[0-9]+}/comments/{id:[0-9]+}/", s.handleDeleteComment).Methods(http.MethodDelete)

	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	apiJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// appendSlash rewrites "/api/v1/posts/1" to "/api/v1/posts/1/" so both forms
// reach the same route.
func appendSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Path
		if !strings.HasSuffix(p, "/") && !strings.HasPrefix(p, "/media/") {
			r2 := r.Clone(r.Context())
			r2.URL.Path = p + "/"
			r2.URL.RawPath = ""
			r = r2
		}
		next.ServeHTTP(w, r)
	})
}

// limitBody caps request bodies at n bytes.
func limitBody(n int64, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, n)
		}
		next.ServeHTTP(w, r)
	})
}
