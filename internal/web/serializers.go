package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/evcraddock/yatube-api/internal/comment"
	"github.com/evcraddock/yatube-api/internal/group"
	"github.com/evcraddock/yatube-api/internal/media"
	"github.com/evcraddock/yatube-api/internal/post"
)

// Field messages, worded the way API clients of this service expect them.
const (
	msgRequired  = "This field is required."
	msgBlank     = "This field may not be blank."
	msgNull      = "This field may not be null."
	msgNotString = "Not a valid string."
	msgBadImage  = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
)

type postRecord struct {
	ID      int64     `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	Image   *string   `json:"image"`
	Group   *int64    `json:"group"`
	PubDate time.Time `json:"pub_date"`
}

type groupRecord struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

type commentRecord struct {
	ID      int64     `json:"id"`
	Author  string    `json:"author"`
	Post    int64     `json:"post"`
	Text    string    `json:"text"`
	Created time.Time `json:"created"`
}

// page is the envelope of a paginated list.
type page struct {
	Count    int         `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

func toPostRecord(r *http.Request, p *post.Post) postRecord {
	rec := postRecord{
		ID:      p.ID,
		Text:    p.Text,
		Author:  p.Author,
		Group:   p.GroupID,
		PubDate: p.PubDate,
	}
	if p.Image != nil && *p.Image != "" {
		u := mediaURL(r, *p.Image)
		rec.Image = &u
	}
	return rec
}

func toPostRecords(r *http.Request, posts []*post.Post) []postRecord {
	out := make([]postRecord, 0, len(posts))
	for _, p := range posts {
		out = append(out, toPostRecord(r, p))
	}
	return out
}

func toGroupRecord(g *group.Group) groupRecord {
	return groupRecord{ID: g.ID, Title: g.Title, Slug: g.Slug, Description: g.Description}
}

func toCommentRecord(c *comment.Comment) commentRecord {
	return commentRecord{ID: c.ID, Author: c.Author, Post: c.PostID, Text: c.Text, Created: c.Created}
}

// baseURL returns scheme://host of the request as seen by the client.
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

// mediaURL renders a stored media reference as an absolute URL.
func mediaURL(r *http.Request, ref string) string {
	return baseURL(r) + "/media/" + ref
}

// mediaRef converts an image value echoed back by a client into a stored
// reference. It accepts the bare reference, "/media/<ref>", or the absolute URL.
func mediaRef(r *http.Request, v string) string {
	v = strings.TrimPrefix(v, baseURL(r))
	return strings.TrimPrefix(v, "/media/")
}

// maxFormMemory is how much of a multipart body is held in memory before
// file parts spill to disk.
const maxFormMemory = 1 << 20

// payload is a decoded request body. Fields holds every value as raw JSON so
// handlers can tell an absent field from an explicit null; form values are
// carried as JSON strings. Files holds uploaded file parts by field name.
type payload struct {
	fields map[string]json.RawMessage
	files  map[string][]byte
}

// decodeObject reads a request body into raw fields.
func decodeObject(r *http.Request) (map[string]json.RawMessage, error) {
	body, err := decodePayload(r)
	if err != nil {
		return nil, err
	}
	return body.fields, nil
}

// decodePayload reads a JSON, urlencoded, or multipart body.
func decodePayload(r *http.Request) (*payload, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			return nil, bodyError("Multipart form parse error", err)
		}
		return formPayload(r)
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, bodyError("Form parse error", err)
		}
		return formPayload(r)
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, bodyError("Read error", err)
	}

	body := &payload{fields: map[string]json.RawMessage{}}
	if len(bytes.TrimSpace(raw)) == 0 {
		return body, nil
	}
	if err := json.Unmarshal(raw, &body.fields); err != nil {
		return nil, badRequest("JSON parse error - " + err.Error())
	}
	return body, nil
}

func formPayload(r *http.Request) (*payload, error) {
	body := &payload{fields: map[string]json.RawMessage{}, files: map[string][]byte{}}
	for name, values := range r.PostForm {
		if len(values) == 0 {
			continue
		}
		raw, err := json.Marshal(values[0])
		if err != nil {
			return nil, fmt.Errorf("encoding form field %s: %w", name, err)
		}
		body.fields[name] = raw
	}

	if r.MultipartForm == nil {
		return body, nil
	}
	for name, headers := range r.MultipartForm.File {
		if len(headers) == 0 {
			continue
		}
		f, err := headers[0].Open()
		if err != nil {
			return nil, fmt.Errorf("opening upload %s: %w", name, err)
		}
		data, err := io.ReadAll(io.LimitReader(f, media.MaxImageBytes+1))
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("reading upload %s: %w", name, err)
		}
		body.files[name] = data
	}
	return body, nil
}

// bodyError maps a body read failure to 413 when the size limit was hit and
// 400 otherwise.
func bodyError(prefix string, err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &requestError{status: http.StatusRequestEntityTooLarge, detail: "Request body too large."}
	}
	return badRequest(prefix + " - " + err.Error())
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// textField validates a required, non-blank string field. When partial is
// set an absent field is accepted and reported as not present.
func textField(fields map[string]json.RawMessage, name string, partial bool, verr ValidationError) (string, bool) {
	raw, ok := fields[name]
	if !ok {
		if !partial {
			verr.add(name, msgRequired)
		}
		return "", false
	}
	if isNull(raw) {
		verr.add(name, msgNull)
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		verr.add(name, msgNotString)
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		verr.add(name, msgBlank)
		return "", false
	}
	return s, true
}

// postInput is the validated writable part of a post payload.
type postInput struct {
	text     string
	hasText  bool
	group    *int64
	hasGroup bool

	// hasImage is set when the payload changes the image. imageFile holds
	// uploaded bytes, imageData a data URI; both empty clears the image.
	hasImage  bool
	imageData string
	imageFile []byte
}

// decodePost validates a post payload. Read-only fields are ignored.
// current is the existing post on update, nil on create.
func (s *Server) decodePost(r *http.Request, partial bool, current *post.Post) (*postInput, error) {
	body, err := decodePayload(r)
	if err != nil {
		return nil, err
	}
	fields := body.fields

	in := &postInput{}
	verr := ValidationError{}

	in.text, in.hasText = textField(fields, "text", partial, verr)

	if raw, ok := fields["group"]; ok {
		in.hasGroup = true
		if !isNull(raw) {
			in.group, err = s.groupField(r, raw, verr)
			if err != nil {
				return nil, err
			}
		}
	}

	if data, ok := body.files["image"]; ok {
		in.hasImage = true
		in.imageFile = data
		if len(data) == 0 {
			verr.add("image", "The submitted file is empty.")
		}
	} else if raw, ok := fields["image"]; ok {
		s.imageField(r, raw, current, in, verr)
	}

	if err := verr.orNil(); err != nil {
		return nil, err
	}
	return in, nil
}

// groupField resolves a group primary key, which must name an existing group.
// Numeric strings are accepted, as form bodies send them; a blank string
// means no group.
func (s *Server) groupField(r *http.Request, raw json.RawMessage, verr ValidationError) (*int64, error) {
	id, ok, blank := parsePK(raw)
	if blank {
		return nil, nil
	}
	if !ok {
		verr.add("group", fmt.Sprintf("Incorrect type. Expected pk value, received %s.", jsonKind(raw)))
		return nil, nil
	}
	g, err := s.groupRepo.GetByID(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			verr.add("group", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id))
			return nil, nil
		}
		return nil, err
	}
	return &g.ID, nil
}

// parsePK reads an integer or a string holding one.
func parsePK(raw json.RawMessage) (id int64, ok, blank bool) {
	if err := json.Unmarshal(raw, &id); err == nil {
		return id, true, false
	}
	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return 0, false, false
	}
	str = strings.TrimSpace(str)
	if str == "" {
		return 0, false, true
	}
	id, err := strconv.ParseInt(str, 10, 64)
	return id, err == nil, false
}

// imageField accepts null, a base64 data URI, or the current image echoed back.
func (s *Server) imageField(r *http.Request, raw json.RawMessage, current *post.Post, in *postInput, verr ValidationError) {
	if isNull(raw) {
		in.hasImage = true
		return
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		verr.add("image", msgBadImage)
		return
	}
	switch {
	case v == "":
		in.hasImage = true
	case strings.HasPrefix(v, "data:"):
		in.hasImage = true
		in.imageData = v
	case current != nil && current.Image != nil && mediaRef(r, v) == *current.Image:
		// unchanged
	default:
		verr.add("image", msgBadImage)
	}
}

func jsonKind(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "nothing"
	}
	switch trimmed[0] {
	case '"':
		return "str"
	case '{':
		return "dict"
	case '[':
		return "list"
	case 't', 'f':
		return "bool"
	default:
		return "float"
	}
}
