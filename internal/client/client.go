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
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/flightdesk/internal/logger"
	"golang.org/x/oauth2"
)

const maxResponseBody = 4 << 20

// Config holds common client configuration
type Config struct {
	ServerURL string
	Timeout   time.Duration
	CacheDir  string
	NoCache   bool
	Debug     bool
	Logger    *zerolog.Logger
}

// DefaultConfig returns a default client configuration
func DefaultConfig() Config {
	return Config{
		ServerURL: "http://localhost:9000",
		Timeout:   30 * time.Second,
	}
}

// TokenSource supplies the bearer token for protected endpoints.
// An empty token means there is no session.
type TokenSource interface {
	Token() string
}

// Client wraps the auth, flight and booking REST endpoints.
type Client struct {
	baseURL string
	public  *http.Client
	authed  *http.Client

	mu     sync.RWMutex
	tokens TokenSource
}

// New creates a client for the server in cfg. tokens may be nil, in which
// case protected endpoints fail with ErrNotAuthenticated.
func New(cfg Config, tokens TokenSource) (*Client, error) {
	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultConfig().ServerURL
	}

	u, err := url.Parse(cfg.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server URL %q: scheme must be http or https", cfg.ServerURL)
	}

	lg := log.Logger
	if cfg.Logger != nil {
		lg = *cfg.Logger
	}

	base := gzhttp.Transport(http.DefaultTransport)

	// logging sits above the cache so hits are visible
	traced := func(next http.RoundTripper) http.RoundTripper {
		return &requestIDTransport{next: logger.NewHTTPRequests(lg, next)}
	}

	public := base
	if !cfg.NoCache {
		public = NewCachingTransport(cfg.CacheDir, base)
	}
	public = traced(public)

	c := &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		tokens:  tokens,
		public: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: public,
		},
	}
	c.authed = &http.Client{
		Timeout: cfg.Timeout,
		Transport: &oauth2.Transport{
			Source: bearerSource{client: c},
			Base:   traced(base),
		},
	}

	return c, nil
}

// SetTokenSource replaces the source of bearer tokens. The session manager
// depends on the client for login, so it is usually attached after construction.
func (c *Client) SetTokenSource(tokens TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = tokens
}

func (c *Client) tokenSource() TokenSource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokens
}

// BaseURL returns the server URL requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type bearerSource struct {
	client *Client
}

func (b bearerSource) Token() (*oauth2.Token, error) {
	tokens := b.client.tokenSource()
	if tokens == nil {
		return nil, ErrNotAuthenticated
	}

	token := tokens.Token()
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}

// requestIDTransport tags each request with a fresh X-Request-ID.
type requestIDTransport struct {
	next http.RoundTripper
}

func (t *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("X-Request-ID") != "" {
		return t.next.RoundTrip(req)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return t.next.RoundTrip(req)
	}

	req = req.Clone(req.Context())
	req.Header.Set("X-Request-ID", id.String())

	return t.next.RoundTrip(req)
}

type response struct {
	StatusCode int
	Body       []byte
}

// send issues a single request; non-2xx statuses are returned as *Error.
func (c *Client) send(ctx context.Context, hc *http.Client, method, path string, body any) (*response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json, text/plain, */*")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		if errors.Is(err, ErrNotAuthenticated) {
			return nil, ErrNotAuthenticated
		}
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, transportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, rejectedError(resp.StatusCode, data)
	}

	return &response{StatusCode: resp.StatusCode, Body: data}, nil
}

// decodeList decodes a JSON array body. Any other JSON value yields an empty list.
func decodeList[T any](resp *response) ([]T, error) {
	trimmed := bytes.TrimSpace(resp.Body)
	if len(trimmed) == 0 {
		return []T{}, nil
	}

	if !json.Valid(trimmed) {
		return nil, unexpectedError(resp.StatusCode, "response is not valid JSON", nil)
	}

	if trimmed[0] != '[' {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, unexpectedError(resp.StatusCode, "unexpected response shape", err)
	}

	return items, nil
}

func pathSegment(s string) string {
	return url.PathEscape(s)
}
