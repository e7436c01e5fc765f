// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api is the HTTP client for the journal backend. The backend
// is a black box: it owns validation, persistence, and authorization;
// this client only shapes requests and classifies responses.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/Ricardo-A-Zapata/team-asare-spring-2025/internal/httputil"
	"github.com/Ricardo-A-Zapata/team-asare-spring-2025/pkg/types"
)

// Client talks to the journal backend. The acting user's email is sent
// as the X-User-Email header on every identity-bearing call; it is the
// only authorization signal the backend receives from this client.
type Client struct {
	BaseURL   string
	HTTP      *http.Client
	UserAgent string
	UserEmail string
}

// New builds a Client from config. The base URL is normalized to have
// no trailing slash.
func New(cfg types.BackendConfig, userEmail string) *Client {
	return &Client{
		BaseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		HTTP:      &http.Client{Timeout: cfg.Timeout},
		UserAgent: cfg.UserAgent,
		UserEmail: userEmail,
	}
}

// manuscriptsEnvelope is the GET /manuscripts response shape.
type manuscriptsEnvelope struct {
	Manuscripts map[string]types.Manuscript `json:"manuscripts"`
}

// usersEnvelope is the GET /user/read response shape. The backend keys
// the map under "Users" with a capital U.
type usersEnvelope struct {
	Users map[string]types.User `json:"Users"`
}

// Manuscripts fetches every manuscript, keyed by ID. Each record's ID
// field is filled from its map key since the backend omits it from the
// record body.
func (c *Client) Manuscripts(ctx context.Context) (map[string]types.Manuscript, error) {
	resp, err := c.do(ctx, http.MethodGet, "/manuscripts", nil, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env manuscriptsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("parsing manuscripts response: %w", err)
	}

	for id, m := range env.Manuscripts {
		if m.ID == "" {
			m.ID = id
			env.Manuscripts[id] = m
		}
	}
	return env.Manuscripts, nil
}

// Manuscript fetches a single manuscript by ID. The backend exposes no
// per-manuscript read, so this reads the full set and selects; a
// missing ID is ErrNotFound.
func (c *Client) Manuscript(ctx context.Context, id string) (*types.Manuscript, error) {
	all, err := c.Manuscripts(ctx)
	if err != nil {
		return nil, err
	}
	m, ok := all[id]
	if !ok {
		return nil, fmt.Errorf("manuscript %q: %w", id, ErrNotFound)
	}
	return &m, nil
}

// Users fetches every user record, keyed by the backend's storage key.
func (c *Client) Users(ctx context.Context) (map[string]types.User, error) {
	resp, err := c.do(ctx, http.MethodGet, "/user/read", nil, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env usersEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("parsing users response: %w", err)
	}
	return env.Users, nil
}

// ChangeState requests a manuscript state transition. The current
// version rides along so the backend can reject stale writes with 409.
func (c *Client) ChangeState(ctx context.Context, id string, target types.State, version int) error {
	body := map[string]any{"state": target}
	if version > 0 {
		body["version"] = version
	}
	return c.mutate(ctx, http.MethodPut, "/manuscript/state/"+url.PathEscape(id), body)
}

// Withdraw retracts the acting user's own manuscript through the
// dedicated withdraw endpoint.
func (c *Client) Withdraw(ctx context.Context, id string) error {
	return c.mutate(ctx, http.MethodPut, "/manuscript/withdraw/"+url.PathEscape(id), map[string]any{})
}

// AssignReferee attaches a referee to a manuscript.
func (c *Client) AssignReferee(ctx context.Context, id, refereeEmail string) error {
	body := map[string]any{"referee_email": refereeEmail}
	return c.mutate(ctx, http.MethodPut, "/manuscript/referee/"+url.PathEscape(id), body)
}

// RemoveReferee detaches a referee. The email travels as a query
// parameter since DELETE bodies are not reliably honored.
func (c *Client) RemoveReferee(ctx context.Context, id, refereeEmail string) error {
	path := "/manuscript/referee/" + url.PathEscape(id) + "?referee_email=" + url.QueryEscape(refereeEmail)
	return c.mutate(ctx, http.MethodDelete, path, nil)
}

// SubmitReview posts a referee report through the dedicated review
// endpoint.
func (c *Client) SubmitReview(ctx context.Context, id, report string, verdict types.Verdict) error {
	body := map[string]any{"report": report, "verdict": verdict}
	return c.mutate(ctx, http.MethodPost, "/manuscript/review/"+url.PathEscape(id), body)
}

// Create submits a new manuscript. The backend assigns the ID.
func (c *Client) Create(ctx context.Context, m *types.Manuscript) error {
	body := map[string]any{
		"title":        m.Title,
		"author":       m.Author,
		"author_email": m.AuthorEmail,
		"abstract":     m.Abstract,
		"text":         m.Text,
		"state":        types.StateSubmitted,
	}
	if m.AuthorAffiliation != "" {
		body["author_affiliation"] = m.AuthorAffiliation
	}
	return c.mutate(ctx, http.MethodPut, "/manuscript/create", body)
}

// UpdateText saves new text and abstract for a manuscript under author
// revisions.
func (c *Client) UpdateText(ctx context.Context, id, newText, newAbstract string) error {
	body := map[string]any{
		"new_text":     newText,
		"new_abstract": newAbstract,
		"author_email": c.UserEmail,
	}
	return c.mutate(ctx, http.MethodPut, "/manuscript/text/"+url.PathEscape(id), body)
}

// Update writes an arbitrary manuscript payload to the generic
// manuscripts resource. Used as a fallback when a dedicated endpoint is
// missing on the backend's schema-of-the-day.
func (c *Client) Update(ctx context.Context, id string, payload map[string]any) error {
	return c.mutate(ctx, http.MethodPut, "/manuscripts/"+url.PathEscape(id), payload)
}

// Post writes a minimal manuscript payload via POST /manuscripts, the
// last-resort write path.
func (c *Client) Post(ctx context.Context, payload map[string]any) error {
	return c.mutate(ctx, http.MethodPost, "/manuscripts", payload)
}

// mutate issues an identity-bearing request and drains the response.
func (c *Client) mutate(ctx context.Context, method, path string, body any) error {
	resp, err := c.do(ctx, method, path, body, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return nil
}

// errorBody is the backend's error response shape.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// do issues one request. Non-2xx responses become a *StatusError
// carrying any server-provided message. Each request gets a fresh
// X-Request-ID so ambiguous outcomes can be traced server-side.
func (c *Client) do(ctx context.Context, method, path string, body any, identity bool) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if identity && c.UserEmail != "" {
		req.Header.Set("X-User-Email", c.UserEmail)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, 0)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		var eb errorBody
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		if json.Unmarshal(data, &eb) != nil || (eb.Error == "" && eb.Message == "") {
			eb.Error = strings.TrimSpace(string(data))
		}
		msg := eb.Error
		if msg == "" {
			msg = eb.Message
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: msg}
	}
	return resp, nil
}
