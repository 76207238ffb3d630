package web

import (
	"net/http"
)

// Groups are managed from the CLI; the API exposes them read-only and to
// anonymous callers.

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.groupRepo.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]groupRecord, 0, len(groups))
	for _, g := range groups {
		out = append(out, toGroupRecord(g))
	}
	apiJSON(w, out, http.StatusOK)
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		notFound(w, r)
		return
	}
	g, err := s.groupRepo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	apiJSON(w, toGroupRecord(g), http.StatusOK)
}
