package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/evcraddock/yatube-api/internal/auth"
)

// handleObtainToken exchanges a username and password for a bearer token.
// The body may be JSON or a form.
func (s *Server) handleObtainToken(w http.ResponseWriter, r *http.Request) {
	ip := auth.ClientIP(r)
	if s.limiter.Blocked(ip) {
		apiError(w, "Too many failed login attempts. Try again later.", http.StatusTooManyRequests)
		return
	}

	username, password, err := decodeCredentials(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, err := s.auth.ObtainToken(r.Context(), username, password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		s.limiter.RecordFailure(ip)
		slog.Warn("failed login", "username", username, "ip", ip)
		auth.Unauthorized(w, "Unable to log in with provided credentials.")
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.limiter.Reset(ip)
	slog.Info("token issued", "username", username, "ip", ip)
	apiJSON(w, map[string]string{"token": token}, http.StatusOK)
}

func decodeCredentials(r *http.Request) (string, string, error) {
	fields, err := decodeObject(r)
	if err != nil {
		return "", "", err
	}

	verr := ValidationError{}
	username := credentialField(fields, "username", verr)
	password := credentialField(fields, "password", verr)
	if err := verr.orNil(); err != nil {
		return "", "", err
	}
	return username, password, nil
}

func credentialField(fields map[string]json.RawMessage, name string, verr ValidationError) string {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		verr.add(name, msgRequired)
		return ""
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		verr.add(name, msgNotString)
		return ""
	}
	if v == "" {
		verr.add(name, msgBlank)
	}
	return v
}
