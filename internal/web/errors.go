package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/evcraddock/yatube-api/internal/auth"
	"github.com/evcraddock/yatube-api/internal/db"
	"github.com/evcraddock/yatube-api/internal/logging"
)

// Error details shared by several handlers.
const (
	detailNotFound         = "Not found."
	detailMethodNotAllowed = "Method not allowed."
	detailNotAuthenticated = "Authentication credentials were not provided."
	detailPermissionDenied = "You do not have permission to perform this action."
	detailServerError      = "Internal server error."
)

// ValidationError maps field names to messages. It is rendered as the
// response body of a 400.
type ValidationError map[string][]string

func (v ValidationError) Error() string {
	return "validation failed"
}

// add records a message for a field.
func (v ValidationError) add(field, msg string) {
	v[field] = append(v[field], msg)
}

// orNil returns nil when no field failed.
func (v ValidationError) orNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// apiJSON writes a JSON response with the given status code.
func apiJSON(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

// apiError writes a {"detail": msg} response.
func apiError(w http.ResponseWriter, msg string, code int) {
	apiJSON(w, map[string]string{"detail": msg}, code)
}

// writeError maps a handler error to a response. Unknown errors are logged
// and reported as 500 without leaking their text.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr ValidationError
	var rerr *requestError
	switch {
	case errors.As(err, &verr):
		apiJSON(w, verr, http.StatusBadRequest)
	case errors.As(err, &rerr):
		apiError(w, rerr.detail, rerr.status)
	case errors.Is(err, db.ErrNotFound):
		apiError(w, detailNotFound, http.StatusNotFound)
	default:
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", logging.RequestIDFromContext(r.Context()),
			"error", err,
		)
		apiError(w, detailServerError, http.StatusInternalServerError)
	}
}

func notFound(w http.ResponseWriter, r *http.Request) {
	apiError(w, detailNotFound, http.StatusNotFound)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	apiError(w, detailMethodNotAllowed, http.StatusMethodNotAllowed)
}

// requireUser returns the authenticated user or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request) (*auth.User, bool) {
	u := auth.UserFromContext(r.Context())
	if u == nil {
		auth.Unauthorized(w, detailNotAuthenticated)
		return nil, false
	}
	return u, true
}

// requireOwner writes a 403 unless the authenticated user wrote the object.
func requireOwner(w http.ResponseWriter, u *auth.User, authorID int64) bool {
	if !auth.CanModify(u, authorID) {
		apiError(w, detailPermissionDenied, http.StatusForbidden)
		return false
	}
	return true
}

// allowRead enforces the optional authenticated-reads policy.
func (s *Server) allowRead(w http.ResponseWriter, r *http.Request) bool {
	if !s.cfg.ReadRequiresAuth {
		return true
	}
	_, ok := requireUser(w, r)
	return ok
}

// requestError is a client error reported as {"detail": msg}.
type requestError struct {
	status int
	detail string
}

func (e *requestError) Error() string {
	return e.detail
}

func badRequest(detail string) error {
	return &requestError{status: http.StatusBadRequest, detail: detail}
}

func isNotFound(err error) bool {
	return errors.Is(err, db.ErrNotFound)
}
