// Package opencode is a minimal HTTP client for an opencode server, used for
// short-lived text generation sessions.
package opencode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/taskforge/transmute/internal/domain"
)

// Ensure Client implements domain.TextGenerator interface.
var _ domain.TextGenerator = (*Client)(nil)

// Retry policy for transient server errors.
const (
	DefaultRetryMax = 2
	DefaultTimeout  = 30 * time.Second
)

// Client talks to the opencode session API.
type Client struct {
	http    *retryablehttp.Client
	baseURL string
}

// New creates a client for the server at baseURL.
func New(baseURL string, log domain.Logger) *Client {
	if log == nil {
		log = domain.NopLogger{}
	}
	hc := retryablehttp.NewClient()
	hc.RetryMax = DefaultRetryMax
	hc.RetryWaitMin = 100 * time.Millisecond
	hc.RetryWaitMax = time.Second
	hc.HTTPClient.Timeout = DefaultTimeout
	hc.Logger = leveledLogger{log: log}
	return &Client{http: hc, baseURL: strings.TrimRight(baseURL, "/")}
}

type createSessionRequest struct {
	Title string `json:"title,omitempty"`
}

type sessionResponse struct {
	ID string `json:"id"`
}

type part struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type messageRequest struct {
	Parts []part `json:"parts"`
}

type messageResponse struct {
	Parts []part `json:"parts"`
}

// CreateSession starts a new conversation and returns its id.
func (c *Client) CreateSession(ctx context.Context, title string) (string, error) {
	var out sessionResponse
	if err := c.do(ctx, http.MethodPost, "/session", createSessionRequest{Title: title}, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("%w: create session returned no id", domain.ErrAIUnavailable)
	}
	return out.ID, nil
}

// Prompt sends text to a session and returns the concatenated text parts of
// the reply.
func (c *Client) Prompt(ctx context.Context, sessionID, text string) (string, error) {
	req := messageRequest{Parts: []part{{Type: "text", Text: text}}}
	var out messageResponse
	if err := c.do(ctx, http.MethodPost, "/session/"+url.PathEscape(sessionID)+"/message", req, &out); err != nil {
		return "", err
	}

	var b strings.Builder
	for _, p := range out.Parts {
		if p.Type == "text" {
			b.WriteString(p.Text)
		}
	}
	return b.String(), nil
}

// DeleteSession removes a session.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodDelete, "/session/"+url.PathEscape(sessionID), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", domain.ErrAIUnavailable, method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s: status %d: %s", domain.ErrAIUnavailable, method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s response: %v", domain.ErrAIUnavailable, path, err)
	}
	return nil
}

// leveledLogger routes retryablehttp's logging to the domain logger.
type leveledLogger struct {
	log domain.Logger
}

func (l leveledLogger) Error(msg string, kv ...any) { l.log.Error("", "opencode", format(msg, kv)) }
func (l leveledLogger) Info(msg string, kv ...any)  { l.log.Debug("", "opencode", format(msg, kv)) }
func (l leveledLogger) Debug(msg string, kv ...any) { l.log.Debug("", "opencode", format(msg, kv)) }
func (l leveledLogger) Warn(msg string, kv ...any)  { l.log.Warn("", "opencode", format(msg, kv)) }

func format(msg string, kv []any) string {
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
	}
	return b.String()
}
