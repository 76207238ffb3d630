package web

import (
	"log/slog"
	"net/http"

	"github.com/evcraddock/yatube-api/internal/comment"
	"github.com/evcraddock/yatube-api/internal/post"
)

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	if !s.allowRead(w, r) {
		return
	}
	p, ok := s.lookupPost(w, r, "post_id")
	if !ok {
		return
	}

	comments, err := s.commentRepo.ListByPostID(r.Context(), p.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]commentRecord, 0, len(comments))
	for _, c := range comments {
		out = append(out, toCommentRecord(c))
	}
	apiJSON(w, out, http.StatusOK)
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	u, ok := requireUser(w, r)
	if !ok {
		return
	}
	// The post must exist before the payload is looked at.
	p, ok := s.lookupPost(w, r, "post_id")
	if !ok {
		return
	}

	text, err := decodeComment(r, false)
	if err != nil {
		writeError(w, r, err)
		return
	}

	c, err := s.commentRepo.Add(r.Context(), p.ID, u.ID, text)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("comment created", "id", c.ID, "post", p.ID, "author", u.Username)
	apiJSON(w, toCommentRecord(c), http.StatusCreated)
}

func (s *Server) handleGetComment(w http.ResponseWriter, r *http.Request) {
	if !s.allowRead(w, r) {
		return
	}
	_, c, ok := s.lookupComment(w, r)
	if !ok {
		return
	}
	apiJSON(w, toCommentRecord(c), http.StatusOK)
}

func (s *Server) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
	u, ok := requireUser(w, r)
	if !ok {
		return
	}
	_, c, ok := s.lookupComment(w, r)
	if !ok {
		return
	}
	if !requireOwner(w, u, c.AuthorID) {
		return
	}

	text, err := decodeComment(r, r.Method == http.MethodPatch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if text == "" {
		apiJSON(w, toCommentRecord(c), http.StatusOK)
		return
	}

	updated, err := s.commentRepo.UpdateText(r.Context(), c.ID, text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	apiJSON(w, toCommentRecord(updated), http.StatusOK)
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	u, ok := requireUser(w, r)
	if !ok {
		return
	}
	_, c, ok := s.lookupComment(w, r)
	if !ok {
		return
	}
	if !requireOwner(w, u, c.AuthorID) {
		return
	}

	if err := s.commentRepo.Delete(r.Context(), c.ID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// lookupComment loads the parent post and the comment. A comment that
// belongs to a different post is reported as not found.
func (s *Server) lookupComment(w http.ResponseWriter, r *http.Request) (*post.Post, *comment.Comment, bool) {
	p, ok := s.lookupPost(w, r, "post_id")
	if !ok {
		return nil, nil, false
	}
	id, ok := pathID(r, "id")
	if !ok {
		notFound(w, r)
		return nil, nil, false
	}
	c, err := s.commentRepo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return nil, nil, false
	}
	if c.PostID != p.ID {
		notFound(w, r)
		return nil, nil, false
	}
	return p, c, true
}

// decodeComment validates a comment payload and returns its text. With
// partial set an absent text yields "".
func decodeComment(r *http.Request, partial bool) (string, error) {
	fields, err := decodeObject(r)
	if err != nil {
		return "", err
	}
	verr := ValidationError{}
	text, _ := textField(fields, "text", partial, verr)
	if err := verr.orNil(); err != nil {
		return "", err
	}
	return text, nil
}
