// Package client talks to the remote secret-sharing API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vaultpass/sharepass-go/internal/model"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "sharepass-go"

	maxErrorBody = 64 << 10
)

var (
	ErrMissingBaseURL = errors.New("api base url is not configured")
	ErrMissingID      = errors.New("pwdId is required")
	ErrNotFound       = errors.New("secret not found")
	ErrGone           = errors.New("secret expired or reached its view limit")
	ErrTimeout        = errors.New("request timed out")
)

// APIError is returned for any non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

// Is lets callers match status codes with errors.Is(err, ErrNotFound) and
// errors.Is(err, ErrGone).
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrGone:
		return e.StatusCode == http.StatusGone
	}
	return false
}

// Client is an HTTP client for the secret API.
type Client struct {
	baseURL   string
	http      *http.Client
	limiter   *rate.Limiter
	timeout   time.Duration
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds every request, including the wait for the rate limiter.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithRateLimit limits outgoing requests to rps per second with the given burst.
// A burst below 1 is raised to 1.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// New creates a Client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrMissingBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q", baseURL)
	}

	c := &Client{
		baseURL:   baseURL,
		http:      &http.Client{},
		limiter:   rate.NewLimiter(5, 10),
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CreateSecret stores a secret and returns its id.
func (c *Client) CreateSecret(ctx context.Context, req model.CreateSecretRequest) (model.CreateSecretResponse, error) {
	var resp model.CreateSecretResponse
	if err := c.do(ctx, http.MethodPost, "/pwd", req, &resp); err != nil {
		return model.CreateSecretResponse{}, err
	}
	if resp.PwdID == "" {
		return model.CreateSecretResponse{}, errors.New("api returned an empty pwdId")
	}
	return resp, nil
}

// GetSecret reveals a secret, consuming one of its views.
func (c *Client) GetSecret(ctx context.Context, pwdID string) (model.GetSecretResponse, error) {
	if pwdID == "" {
		return model.GetSecretResponse{}, ErrMissingID
	}

	var resp model.GetSecretResponse
	if err := c.do(ctx, http.MethodGet, "/pwd/"+url.PathEscape(pwdID), nil, &resp); err != nil {
		return model.GetSecretResponse{}, err
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		// With burst >= 1 Wait only fails on the context: either it is done, or
		// the next token would arrive after its deadline.
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("waiting for rate limiter: %w", err)
		}
		return ErrTimeout
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("User-Agent", c.userAgent)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// decodeAPIError prefers the API's {"message": ...} body, then the raw body
// text, then the status text.
func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	text := strings.TrimSpace(string(raw))

	msg := text
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		msg = body.Message
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d", resp.StatusCode)
	}

	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
