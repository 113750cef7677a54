package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/five82/quotebox/internal/quote"
)

// Syncer defines the operations the sync cycle needs from the remote.
// This interface is implemented by *Client and can be faked in tests.
type Syncer interface {
	FetchRemote(ctx context.Context) ([]quote.Record, error)
	PushRecord(ctx context.Context, r quote.Record) error
}

// Ensure Client implements Syncer at compile time.
var _ Syncer = (*Client)(nil)

// Client talks to the remote quote endpoint.
type Client struct {
	endpoint  *url.URL
	http      *http.Client
	userAgent string
	limit     int
	category  string
	now       func() time.Time
}

const (
	defaultUserAgent = "quotebox/0.1"
	defaultLimit     = 5
	defaultCategory  = "Server"
	requestTimeout   = 10 * time.Second
)

// Options configure a Client.
type Options struct {
	Endpoint string // full collection URL, e.g. https://host/posts
	Limit    int    // items requested per fetch
	Category string // category given to remote items that carry none
	Timeout  time.Duration
	Now      func() time.Time
}

// NewClient builds a Client for the given endpoint.
func NewClient(opts Options) (*Client, error) {
	endpoint, err := parseEndpoint(opts.Endpoint)
	if err != nil {
		return nil, err
	}
	c := &Client{
		endpoint:  endpoint,
		http:      &http.Client{Timeout: requestTimeout},
		userAgent: defaultUserAgent,
		limit:     opts.Limit,
		category:  strings.TrimSpace(opts.Category),
		now:       opts.Now,
	}
	if opts.Timeout > 0 {
		c.http.Timeout = opts.Timeout
	}
	if c.limit <= 0 {
		c.limit = defaultLimit
	}
	if c.category == "" {
		c.category = defaultCategory
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c, nil
}

// Endpoint returns the collection URL the client talks to.
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

// FetchRemote retrieves the full remote collection mapped to local records.
func (c *Client) FetchRemote(ctx context.Context) ([]quote.Record, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	u := *c.endpoint
	values := u.Query()
	values.Set("limit", strconv.Itoa(c.limit))
	u.RawQuery = values.Encode()

	var posts []Post
	if err := c.do(ctx, "fetch", http.MethodGet, &u, nil, &posts); err != nil {
		return nil, err
	}

	fetchedAt := c.now()
	records := make([]quote.Record, 0, len(posts))
	seen := make(map[string]struct{}, len(posts))
	for _, p := range posts {
		rec, ok := p.ToRecord(c.category, fetchedAt)
		if !ok {
			continue
		}
		if _, dup := seen[rec.ID]; dup {
			continue
		}
		seen[rec.ID] = struct{}{}
		records = append(records, rec)
	}
	return records, nil
}

// PushRecord posts a single record. The response body is ignored.
func (c *Client) PushRecord(ctx context.Context, r quote.Record) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	body, err := json.Marshal(payloadFor(r))
	if err != nil {
		return fmt.Errorf("encode push payload: %w", err)
	}
	u := *c.endpoint
	return c.do(ctx, "push", http.MethodPost, &u, body, nil)
}

func (c *Client) do(ctx context.Context, op, method string, u *url.URL, body []byte, dest any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: op, URL: u.String(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return &NetworkError{
			Op:         op,
			URL:        u.String(),
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("status %d", resp.StatusCode),
		}
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &NetworkError{Op: op, URL: u.String(), Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func parseEndpoint(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("remote endpoint is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse remote endpoint %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("remote endpoint %q has no host", raw)
	}
	u.Fragment = ""
	return u, nil
}
