package swapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/latoulicious/holocron/internal/version"
	"github.com/latoulicious/holocron/pkg/logging"
)

const (
	// DefaultBaseURL is the public SWAPI root
	DefaultBaseURL = "https://swapi.dev/api"
	defaultTimeout = 10 * time.Second
)

// Client issues read-only requests against the SWAPI REST API
type Client struct {
	baseURL *url.URL
	http    *http.Client
	metrics *FetchMetrics
	logger  logging.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default http.Client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithMetrics records every upstream call into m
func WithMetrics(m *FetchMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithLogger sets the component logger
func WithLogger(l logging.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient constructs an API client rooted at baseURL
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	raw := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if raw == "" {
		raw = DefaultBaseURL
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("swapi: invalid base url %q: %w", baseURL, err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("swapi: invalid base url %q: absolute http(s) url required", baseURL)
	}

	c := &Client{
		baseURL: parsed,
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  logging.GetGlobalLoggerFactory().CreateLogger("swapi"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured API root
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Metrics returns the attached metrics collector, which may be nil
func (c *Client) Metrics() *FetchMetrics {
	return c.metrics
}

// ListPeople fetches one page of the people listing
func (c *Client) ListPeople(ctx context.Context, page int) (PeoplePage, error) {
	if page < 1 {
		return PeoplePage{}, ErrInvalidPage
	}

	endpoint := c.baseURL.JoinPath("people").String() + "/?page=" + strconv.Itoa(page)
	var payload listPayload
	if err := c.getJSON(ctx, "people_list", endpoint, &payload); err != nil {
		return PeoplePage{}, err
	}
	return payload.toPage(endpoint)
}

// GetPerson fetches a single character by its numeric id
func (c *Client) GetPerson(ctx context.Context, id int) (Person, error) {
	if id < 1 {
		return Person{}, &StatusError{URL: "people/" + strconv.Itoa(id), StatusCode: http.StatusNotFound}
	}

	endpoint := c.baseURL.JoinPath("people", strconv.Itoa(id)).String() + "/"
	var payload personPayload
	if err := c.getJSON(ctx, "person", endpoint, &payload); err != nil {
		return Person{}, err
	}
	return payload.toPerson(endpoint)
}

// GetFilm follows a film reference URL
func (c *Client) GetFilm(ctx context.Context, ref string) (Film, error) {
	endpoint, err := c.resolveRef(ref)
	if err != nil {
		return Film{}, err
	}

	var payload filmPayload
	if err := c.getJSON(ctx, "film", endpoint, &payload); err != nil {
		return Film{}, err
	}
	return payload.toFilm(endpoint)
}

// GetNamed follows any reference URL whose record carries a name field
func (c *Client) GetNamed(ctx context.Context, ref string) (NamedResource, error) {
	endpoint, err := c.resolveRef(ref)
	if err != nil {
		return NamedResource{}, err
	}

	var payload namedPayload
	if err := c.getJSON(ctx, "named", endpoint, &payload); err != nil {
		return NamedResource{}, err
	}
	return payload.toNamed(endpoint)
}

// Ping checks that the API root answers
func (c *Client) Ping(ctx context.Context) error {
	var payload map[string]interface{}
	return c.getJSON(ctx, "root", c.baseURL.String()+"/", &payload)
}

// resolveRef only accepts absolute references on the configured API host
func (c *Client) resolveRef(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	parsed, err := url.Parse(ref)
	if err != nil || parsed.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrForeignReference, ref)
	}
	if !strings.EqualFold(parsed.Host, c.baseURL.Host) {
		return "", fmt.Errorf("%w: %q", ErrForeignReference, ref)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("%w: %q", ErrForeignReference, ref)
	}
	return parsed.String(), nil
}

func (c *Client) getJSON(ctx context.Context, kind, endpoint string, v interface{}) (err error) {
	start := time.Now()
	defer func() {
		c.metrics.RecordRequest(time.Since(start), err)
		fields := map[string]interface{}{
			"kind":        kind,
			"url":         endpoint,
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if err != nil {
			fields["error_class"] = Classify(err)
			c.logger.Warn("Upstream request failed", fields)
			return
		}
		c.logger.Debug("Upstream request completed", fields)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &TransportError{URL: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return &TransportError{URL: endpoint, Err: ctxErr}
		}
		return &TransportError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{URL: endpoint, StatusCode: resp.StatusCode, Body: drainError(resp.Body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &DecodeError{URL: endpoint, Err: err}
	}
	return nil
}

func drainError(r io.Reader) string {
	if r == nil {
		return ""
	}
	b, _ := io.ReadAll(io.LimitReader(r, 256))
	return strings.TrimSpace(string(b))
}

// IDFromURL extracts the trailing numeric id of a SWAPI record URL
func IDFromURL(ref string) (int, bool) {
	trimmed := strings.TrimRight(strings.TrimSpace(ref), "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return 0, false
	}
	id, err := strconv.Atoi(trimmed[idx+1:])
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
