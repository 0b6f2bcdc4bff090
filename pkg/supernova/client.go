package supernova

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

	"golang.org/x/time/rate"
)

const (
	maxRetries = 3

	// DefaultRequestsPerSecond bounds the request rate of a single client.
	DefaultRequestsPerSecond = 10
)

// Client represents an authenticated client of the Supernova design system API.
// Requests are rate limited and retried on 429 (rate limit) and 5xx responses.
type Client struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
	limiter     *rate.Limiter
	backoff     time.Duration
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit sets the maximum number of requests per second. Zero or a negative
// value disables limiting.
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithRetryBackoff sets the base delay between retries. The delay grows linearly
// with the attempt number.
func WithRetryBackoff(d time.Duration) ClientOption {
	return func(c *Client) {
		c.backoff = d
	}
}

// WithProxy routes every request through the given proxy instead of the one
// named by HTTP_PROXY, HTTPS_PROXY and NO_PROXY.
func WithProxy(proxy *url.URL) ClientOption {
	return func(c *Client) {
		c.httpClient = &http.Client{
			Timeout:   c.httpClient.Timeout,
			Transport: NewTransport(proxy),
		}
	}
}

// NewTransport returns the pooled transport the client uses. A nil proxy means
// the proxy is taken from the environment.
func NewTransport(proxy *url.URL) *http.Transport {
	t := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConnsPerHost: 10,
	}
	if proxy != nil {
		t.Proxy = http.ProxyURL(proxy)
	}
	return t
}

// ParseProxyURL parses an http, https or socks5 proxy URL.
func ParseProxyURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy URL %q: %w", raw, err)
	}
	switch u.Scheme {
	case "http", "https", "socks5":
	default:
		return nil, fmt.Errorf("invalid proxy URL %q: scheme must be http, https or socks5", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid proxy URL %q: missing host", raw)
	}
	return u, nil
}

// NewClient creates a new API client for the given access token and base URL
// (see EnvironmentAPI). The client is configured with connection pooling and
// a 2-minute timeout for large token sets.
func NewClient(accessToken, baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		accessToken: accessToken,
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   2 * time.Minute,
			Transport: NewTransport(nil),
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), 1),
		backoff: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API base URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIError is returned when the service answers with a non-2xx status.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: API request failed with status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// envelope is the wrapper every API response comes in.
type envelope[T any] struct {
	Result T `json:"result"`
}

// DesignSystem retrieves a design system by id.
func (c *Client) DesignSystem(ctx context.Context, designSystemID string) (*DesignSystem, error) {
	var resp envelope[struct {
		DesignSystem DesignSystem `json:"designSystem"`
	}]
	if err := c.do(ctx, http.MethodGet, "/design-systems/"+url.PathEscape(designSystemID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Result.DesignSystem, nil
}

// Versions lists all versions of a design system.
func (c *Client) Versions(ctx context.Context, designSystemID string) ([]Version, error) {
	var resp envelope[struct {
		Versions []Version `json:"designSystemVersions"`
	}]
	if err := c.do(ctx, http.MethodGet, "/design-systems/"+url.PathEscape(designSystemID)+"/versions", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Result.Versions, nil
}

// ActiveVersion returns the writable version of a design system.
func (c *Client) ActiveVersion(ctx context.Context, designSystemID string) (*Version, error) {
	versions, err := c.Versions(ctx, designSystemID)
	if err != nil {
		return nil, err
	}
	for i := range versions {
		if !versions[i].IsReadonly {
			return &versions[i], nil
		}
	}
	return nil, fmt.Errorf("design system %s writable version not found or not available under provided API key", designSystemID)
}

// Brands lists the brands of a version.
func (c *Client) Brands(ctx context.Context, ref VersionRef) ([]Brand, error) {
	var resp envelope[struct {
		Brands []Brand `json:"brands"`
	}]
	if err := c.do(ctx, http.MethodGet, versionPath(ref, "brands"), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Result.Brands, nil
}

// Themes lists the token themes of a version across all brands.
func (c *Client) Themes(ctx context.Context, ref VersionRef) ([]Theme, error) {
	var resp envelope[struct {
		Themes []Theme `json:"themes"`
	}]
	if err := c.do(ctx, http.MethodGet, versionPath(ref, "token-themes"), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Result.Themes, nil
}

// Tokens lists the tokens of a version across all brands.
func (c *Client) Tokens(ctx context.Context, ref VersionRef) ([]Token, error) {
	var resp envelope[struct {
		Tokens []Token `json:"tokens"`
	}]
	if err := c.do(ctx, http.MethodGet, versionPath(ref, "tokens"), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Result.Tokens, nil
}

// TokenGroups lists the token groups of a version across all brands.
func (c *Client) TokenGroups(ctx context.Context, ref VersionRef) ([]TokenGroup, error) {
	var resp envelope[struct {
		Groups []TokenGroup `json:"groups"`
	}]
	if err := c.do(ctx, http.MethodGet, versionPath(ref, "token-groups"), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Result.Groups, nil
}

// PublishDocumentation starts a documentation build for the version.
func (c *Client) PublishDocumentation(ctx context.Context, ref VersionRef, env DocumentationEnvironment) (*PublishJob, error) {
	body := map[string]string{"environment": string(env)}
	var resp envelope[struct {
		Job PublishJob `json:"job"`
	}]
	if err := c.do(ctx, http.MethodPost, versionPath(ref, "documentation/publish"), body, &resp); err != nil {
		return nil, err
	}
	return &resp.Result.Job, nil
}

// PublishJob retrieves the current state of a documentation publish job.
func (c *Client) PublishJob(ctx context.Context, ref VersionRef, jobID string) (*PublishJob, error) {
	var resp envelope[struct {
		Job PublishJob `json:"job"`
	}]
	if err := c.do(ctx, http.MethodGet, versionPath(ref, "documentation/jobs/"+url.PathEscape(jobID)), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Result.Job, nil
}

func versionPath(ref VersionRef, suffix string) string {
	return fmt.Sprintf("/design-systems/%s/versions/%s/%s",
		url.PathEscape(ref.DesignSystemID), url.PathEscape(ref.VersionID), suffix)
}

// do performs a request with retry logic (up to maxRetries attempts) and a linear
// backoff. Only transport errors, 429 and 5xx responses are retried.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		retry, err := c.roundTrip(req, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry || attempt == maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * c.backoff):
		}
	}

	return lastErr
}

func (c *Client) roundTrip(req *http.Request, out any) (retry bool, err error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if req.Context().Err() != nil {
			return false, req.Context().Err()
		}
		return true, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return true, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			Method:     req.Method,
			Path:       req.URL.Path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
		return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500, apiErr
	}

	if out == nil {
		return false, nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return false, fmt.Errorf("failed to parse response: %w", err)
	}
	return false, nil
}
