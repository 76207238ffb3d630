package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/evcraddock/yatube-api/internal/media"
	"github.com/evcraddock/yatube-api/internal/post"
)

// pathID parses a numeric route variable. The router only matches digits,
// so a failure means the value overflowed and cannot name a row.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return id, err == nil
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	if !s.allowRead(w, r) {
		return
	}

	q := r.URL.Query()
	opts := post.ListOptions{}
	if v := q.Get("group"); v != "" {
		gid, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			apiJSON(w, ValidationError{"group": {"A valid integer is required."}}, http.StatusBadRequest)
			return
		}
		opts.GroupID = &gid
	}

	limit, paginate := queryInt(q, "limit")
	if !paginate {
		posts, err := s.postRepo.List(r.Context(), opts)
		if err != nil {
			writeError(w, r, err)
			return
		}
		apiJSON(w, toPostRecords(r, posts), http.StatusOK)
		return
	}

	offset, _ := queryInt(q, "offset")
	opts.Limit, opts.Offset = limit, offset

	count, err := s.postRepo.Count(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	posts, err := s.postRepo.List(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := page{Count: count, Results: toPostRecords(r, posts)}
	if offset+limit < count {
		resp.Next = pageURL(r, limit, offset+limit)
	}
	if offset > 0 {
		resp.Previous = pageURL(r, limit, max(offset-limit, 0))
	}
	apiJSON(w, resp, http.StatusOK)
}

// queryInt returns a positive integer query parameter. Invalid values are
// treated as absent.
func queryInt(q url.Values, name string) (int, bool) {
	n, err := strconv.Atoi(q.Get(name))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func pageURL(r *http.Request, limit, offset int) *string {
	q := r.URL.Query()
	q.Set("limit", strconv.Itoa(limit))
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	} else {
		q.Del("offset")
	}
	u := baseURL(r) + r.URL.Path + "?" + q.Encode()
	return &u
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	u, ok := requireUser(w, r)
	if !ok {
		return
	}

	in, err := s.decodePost(r, false, nil)
	if err != nil {
		writeError(w, r, err)
		return
	}

	p := &post.Post{Text: in.text, AuthorID: u.ID, GroupID: in.group}
	if in.hasImage {
		if p.Image, err = s.saveImage(r, in); err != nil {
			writeError(w, r, err)
			return
		}
	}

	created, err := s.postRepo.Insert(r.Context(), p)
	if err != nil {
		s.discardImage(p.Image)
		writeError(w, r, err)
		return
	}

	slog.Info("post created", "id", created.ID, "author", u.Username)
	apiJSON(w, toPostRecord(r, created), http.StatusCreated)
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	if !s.allowRead(w, r) {
		return
	}
	p, ok := s.lookupPost(w, r, "id")
	if !ok {
		return
	}
	apiJSON(w, toPostRecord(r, p), http.StatusOK)
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	u, ok := requireUser(w, r)
	if !ok {
		return
	}
	current, ok := s.lookupPost(w, r, "id")
	if !ok {
		return
	}
	if !requireOwner(w, u, current.AuthorID) {
		return
	}

	in, err := s.decodePost(r, r.Method == http.MethodPatch, current)
	if err != nil {
		writeError(w, r, err)
		return
	}

	next := *current
	if in.hasText {
		next.Text = in.text
	}
	if in.hasGroup {
		next.GroupID = in.group
	}
	if in.hasImage {
		if next.Image, err = s.saveImage(r, in); err != nil {
			writeError(w, r, err)
			return
		}
	}

	updated, err := s.postRepo.Update(r.Context(), &next)
	if err != nil {
		if in.hasImage {
			s.discardImage(next.Image)
		}
		writeError(w, r, err)
		return
	}
	if in.hasImage {
		s.discardImage(current.Image)
	}

	apiJSON(w, toPostRecord(r, updated), http.StatusOK)
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	u, ok := requireUser(w, r)
	if !ok {
		return
	}
	p, ok := s.lookupPost(w, r, "id")
	if !ok {
		return
	}
	if !requireOwner(w, u, p.AuthorID) {
		return
	}

	if err := s.postRepo.Delete(r.Context(), p.ID); err != nil {
		writeError(w, r, err)
		return
	}
	s.discardImage(p.Image)

	slog.Info("post deleted", "id", p.ID, "author", u.Username)
	w.WriteHeader(http.StatusNoContent)
}

// lookupPost loads the post named by a route variable or writes the error.
func (s *Server) lookupPost(w http.ResponseWriter, r *http.Request, name string) (*post.Post, bool) {
	id, ok := pathID(r, name)
	if !ok {
		notFound(w, r)
		return nil, false
	}
	p, err := s.postRepo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return p, true
}

// saveImage stores the image carried by a payload. It returns nil when the
// payload clears the image.
func (s *Server) saveImage(r *http.Request, in *postInput) (*string, error) {
	var ref string
	var err error
	switch {
	case in.imageFile != nil:
		ref, err = s.media.Save(r.Context(), in.imageFile)
	case in.imageData != "":
		ref, err = s.media.SaveDataURI(r.Context(), in.imageData)
	default:
		return nil, nil
	}
	if errors.Is(err, media.ErrInvalidImage) {
		return nil, ValidationError{"image": {msgBadImage}}
	}
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// discardImage removes a stored image that is no longer referenced.
func (s *Server) discardImage(ref *string) {
	if ref == nil || *ref == "" {
		return
	}
	if err := s.media.Remove(*ref); err != nil {
		slog.Warn("removing image", "ref", *ref, "error", err)
	}
}
