// Package api is the HTTP transport for the clients REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"greenlight-cli/internal/model"
)

const DefaultLimit = 50

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// StatusError is a non-2xx response. Detail is the server's "detail" message when present.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = http.StatusText(e.Code)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, msg)
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Code == http.StatusNotFound
	case ErrUnauthorized:
		return e.Code == http.StatusUnauthorized
	}
	return false
}

// TokenSource supplies the bearer token for each request; an empty token sends no header.
type TokenSource interface {
	Token() string
}

type StaticToken string

func (t StaticToken) Token() string { return string(t) }

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New returns a client rooted at baseURL (e.g. http://localhost:8001). Requests
// have no timeout; callers bound them with ctx.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{},
		tokens:  tokens,
		log:     slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

type ListParams struct {
	Search string
	// Type is all|person|company; all (or empty) sends no filter.
	Type  string
	Limit int
	Skip  int
}

func (p ListParams) query() url.Values {
	q := url.Values{}
	if s := strings.TrimSpace(p.Search); s != "" {
		q.Set("search", s)
	}
	if t := strings.TrimSpace(p.Type); t != "" && t != "all" {
		q.Set("client_type", t)
	}
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("skip", strconv.Itoa(max(p.Skip, 0)))
	return q
}

func (c *Client) ListClients(ctx context.Context, p ListParams) ([]model.Client, error) {
	var out []model.Client
	if err := c.do(ctx, http.MethodGet, "/api/clients", p.query(), nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Client{}
	}
	return out, nil
}

func (c *Client) GetClient(ctx context.Context, id string) (model.Client, error) {
	var out model.Client
	err := c.do(ctx, http.MethodGet, "/api/clients/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

func (c *Client) CreateClient(ctx context.Context, in model.NewClient) (model.Client, error) {
	var out model.Client
	err := c.do(ctx, http.MethodPost, "/api/clients", nil, in, &out)
	return out, err
}

func (c *Client) UpdateClient(ctx context.Context, id string, in model.ClientUpdate) (model.Client, error) {
	var out model.Client
	err := c.do(ctx, http.MethodPut, "/api/clients/"+url.PathEscape(id), nil, in, &out)
	return out, err
}

func (c *Client) DeleteClient(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/clients/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) AddNote(ctx context.Context, id, content string) (model.Note, error) {
	var out model.Note
	q := url.Values{"note_content": {content}}
	err := c.do(ctx, http.MethodPost, "/api/clients/"+url.PathEscape(id)+"/notes", q, nil, &out)
	return out, err
}

type TrackingInput struct {
	ActivityType model.ActivityType
	Description  string
	Outcome      string
}

func (c *Client) AddTrackingEntry(ctx context.Context, id string, in TrackingInput) (model.TrackingEntry, error) {
	var out model.TrackingEntry
	q := url.Values{
		"activity_type": {string(in.ActivityType)},
		"description":   {in.Description},
	}
	if o := strings.TrimSpace(in.Outcome); o != "" {
		q.Set("outcome", o)
	}
	err := c.do(ctx, http.MethodPost, "/api/clients/"+url.PathEscape(id)+"/tracking", q, nil, &out)
	return out, err
}

func (c *Client) SharePointURL(ctx context.Context, id string) (string, error) {
	var out struct {
		URL string `json:"sharepoint_url"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/clients/"+url.PathEscape(id)+"/sharepoint-url", nil, nil, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

type Health struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	err := c.do(ctx, http.MethodGet, "/api/health", nil, nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body any, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("api request failed", "method", method, "path", path, "err", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{Method: method, Path: path, Code: resp.StatusCode, Detail: readDetail(resp.Body)}
		c.log.Warn("api request rejected", "method", method, "path", path, "status", resp.StatusCode, "detail", se.Detail)
		return se
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func readDetail(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(b) == 0 {
		return ""
	}
	var e struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(b, &e) == nil && e.Detail != "" {
		return e.Detail
	}
	return strings.TrimSpace(string(b))
}
