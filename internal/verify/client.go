package verify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
)

const (
	// CheckAnswerPath is the verification endpoint relative to the server URL.
	CheckAnswerPath = "/api/check-answer/"

	csrfCookieName = "csrftoken"
	csrfHeaderName = "X-CSRFToken"

	maxErrorBody = 256
)

// Client talks to the check-answer endpoint over HTTP.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger

	mu     sync.Mutex
	token  string
	primed bool
}

var _ Verifier = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its cookie jar, if
// any, is used for the anti-forgery cookie.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithCSRFToken fixes the anti-forgery token instead of priming it from
// the server's cookie.
func WithCSRFToken(token string) Option {
	return func(c *Client) {
		c.token = token
		c.primed = token != ""
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a Client for the server at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q: scheme must be http or https", baseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	c := &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		client:  &http.Client{Jar: jar},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the server URL without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// Prime fetches the server root so the anti-forgery cookie lands in the
// jar, then remembers its value for the request header.
func (c *Client) Prime(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	token := tokenFromCookies(resp.Cookies())
	if token == "" && c.client.Jar != nil {
		token = tokenFromCookies(c.client.Jar.Cookies(req.URL))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.primed = true
	if token != "" {
		c.token = token
	}
	return nil
}

func tokenFromCookies(cookies []*http.Cookie) string {
	for _, ck := range cookies {
		if ck.Name == csrfCookieName {
			return ck.Value
		}
	}
	return ""
}

func (c *Client) csrfToken(ctx context.Context) string {
	c.mu.Lock()
	primed, token := c.primed, c.token
	c.mu.Unlock()
	if primed {
		return token
	}
	if err := c.Prime(ctx); err != nil {
		c.logger.Warn("csrf priming failed", "error", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Verify posts the payload as a form and decodes the verdict.
func (c *Client) Verify(ctx context.Context, p Payload) (Result, error) {
	form := url.Values{}
	form.Set("question_id", p.QuestionID)
	form.Set("question_type", string(p.Kind))
	for _, l := range p.Letters {
		form.Add("answer", l)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+CheckAnswerPath, strings.NewReader(form.Encode()))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	if token := c.csrfToken(ctx); token != "" {
		req.Header.Set(csrfHeaderName, token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, &TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, &TransportError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, &StatusError{StatusCode: resp.StatusCode, Body: truncate(strings.TrimSpace(string(body)), maxErrorBody)}
	}
	return decodeResult(body)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
