// Package client provides an HTTP client for the yatube REST API.
package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// APIPrefix is the path prefix of the versioned API.
const APIPrefix = "/api/v1"

// Client is an HTTP client for the yatube API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a new API client. An empty token makes anonymous requests.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Post is a post as returned by the API.
type Post struct {
	ID      int64     `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	Image   *string   `json:"image"`
	Group   *int64    `json:"group"`
	PubDate time.Time `json:"pub_date"`
}

// Group is a group as returned by the API.
type Group struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// Comment is a comment as returned by the API.
type Comment struct {
	ID      int64     `json:"id"`
	Author  string    `json:"author"`
	Post    int64     `json:"post"`
	Text    string    `json:"text"`
	Created time.Time `json:"created"`
}

// APIError is a non-2xx response. Detail is set for {"detail": ...}
// bodies, Fields for validation failures.
type APIError struct {
	StatusCode int
	Detail     string
	Fields     map[string][]string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	if len(e.Fields) > 0 {
		names := make([]string, 0, len(e.Fields))
		for name := range e.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, name+": "+strings.Join(e.Fields[name], " "))
		}
		return strings.Join(parts, "; ")
	}
	return "server error: " + http.StatusText(e.StatusCode)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// ObtainToken exchanges credentials for a bearer token.
func (c *Client) ObtainToken(username, password string) (string, error) {
	body := map[string]string{"username": username, "password": password}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.send(http.MethodPost, "/api-token-auth/", body, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// ListOptions controls filtering for ListPosts.
type ListOptions struct {
	GroupID int64 // 0 = all groups
}

// ListPosts returns all posts, optionally limited to one group.
func (c *Client) ListPosts(opts ListOptions) ([]*Post, error) {
	path := "/posts/"
	if opts.GroupID > 0 {
		path += "?" + url.Values{"group": {strconv.FormatInt(opts.GroupID, 10)}}.Encode()
	}
	var posts []*Post
	if err := c.send(http.MethodGet, path, nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPost returns a single post.
func (c *Client) GetPost(id int64) (*Post, error) {
	var p Post
	if err := c.send(http.MethodGet, fmt.Sprintf("/posts/%d/", id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// PostInput is the writable part of a post. Image, when set, is a base64
// data URI.
type PostInput struct {
	Text    string
	GroupID *int64
	Image   string
}

func (in PostInput) body() map[string]interface{} {
	body := map[string]interface{}{"text": in.Text}
	if in.GroupID != nil {
		body["group"] = *in.GroupID
	}
	if in.Image != "" {
		body["image"] = in.Image
	}
	return body
}

// CreatePost publishes a new post.
func (c *Client) CreatePost(in PostInput) (*Post, error) {
	var p Post
	if err := c.send(http.MethodPost, "/posts/", in.body(), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePost changes the text and, when given, the group or image of a post.
func (c *Client) UpdatePost(id int64, in PostInput) (*Post, error) {
	var p Post
	if err := c.send(http.MethodPatch, fmt.Sprintf("/posts/%d/", id), in.body(), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeletePost removes a post and its comments.
func (c *Client) DeletePost(id int64) error {
	return c.send(http.MethodDelete, fmt.Sprintf("/posts/%d/", id), nil, nil)
}

// ListGroups returns all groups.
func (c *Client) ListGroups() ([]*Group, error) {
	var groups []*Group
	if err := c.send(http.MethodGet, "/groups/", nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// ListComments returns the comments on a post.
func (c *Client) ListComments(postID int64) ([]*Comment, error) {
	var comments []*Comment
	if err := c.send(http.MethodGet, fmt.Sprintf("/posts/%d/comments/", postID), nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// AddComment comments on a post.
func (c *Client) AddComment(postID int64, text string) (*Comment, error) {
	body := map[string]string{"text": text}
	var comm Comment
	if err := c.send(http.MethodPost, fmt.Sprintf("/posts/%d/comments/", postID), body, &comm); err != nil {
		return nil, err
	}
	return &comm, nil
}

// UpdateComment replaces the text of a comment.
func (c *Client) UpdateComment(postID, id int64, text string) (*Comment, error) {
	body := map[string]string{"text": text}
	var comm Comment
	if err := c.send(http.MethodPatch, fmt.Sprintf("/posts/%d/comments/%d/", postID, id), body, &comm); err != nil {
		return nil, err
	}
	return &comm, nil
}

// DeleteComment removes a comment from a post.
func (c *Client) DeleteComment(postID, id int64) error {
	return c.send(http.MethodDelete, fmt.Sprintf("/posts/%d/comments/%d/", postID, id), nil, nil)
}

// send performs a request against the API with an optional JSON body and
// decodes the response into result.
func (c *Client) send(method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+APIPrefix+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, result)
}

// do executes an HTTP request with auth header and handles errors.
func (c *Client) do(req *http.Request, result interface{}) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			fmt.Printf("warning: closing response body: %v\n", cerr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return decodeError(resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}

func decodeError(code int, body []byte) error {
	apiErr := &APIError{StatusCode: code}

	var detail struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &detail) == nil && detail.Detail != "" {
		apiErr.Detail = detail.Detail
		return apiErr
	}

	var fields map[string][]string
	if json.Unmarshal(body, &fields) == nil && len(fields) > 0 {
		apiErr.Fields = fields
	}
	return apiErr
}
