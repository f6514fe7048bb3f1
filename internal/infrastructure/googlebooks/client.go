package googlebooks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/avatarctic/bookshelf/internal/core/domain/catalog"
	"github.com/avatarctic/bookshelf/internal/core/ports"
)

const (
	DefaultBaseURL = "https://www.googleapis.com/books/v1/volumes"

	// maxBodyBytes bounds a single catalog response.
	maxBodyBytes = 4 << 20
)

// Config configures the volumes client.
type Config struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Client talks to the Google Books volumes API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
	logger  *logrus.Logger
}

// StatusError is returned for non-2xx responses other than 404.
type StatusError struct {
	StatusCode int
	Op         string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("googlebooks: %s: unexpected status %d", e.Op, e.StatusCode)
}

type volumesResponse struct {
	TotalItems int            `json:"totalItems"`
	Items      []catalog.Item `json:"items"`
}

func NewClient(cfg Config, logger *logrus.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
	}
}

var _ ports.CatalogClient = (*Client)(nil)

// Search runs a volumes query. An empty query returns no items without a request.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]catalog.Item, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []catalog.Item{}, nil
	}
	params := url.Values{}
	params.Set("q", query)
	if maxResults > 0 {
		params.Set("maxResults", strconv.Itoa(maxResults))
	}

	var resp volumesResponse
	if err := c.getJSON(ctx, "search", c.baseURL, params, &resp); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return []catalog.Item{}, nil
		}
		return nil, err
	}
	if resp.Items == nil {
		resp.Items = []catalog.Item{}
	}
	if c.logger != nil {
		c.logger.WithFields(logrus.Fields{"query": query, "items": len(resp.Items), "total": resp.TotalItems}).Debug("googlebooks: search")
	}
	return resp.Items, nil
}

// Volume fetches a single volume by id. A record without volumeInfo counts as missing.
func (c *Client) Volume(ctx context.Context, id string) (*catalog.Item, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, catalog.ErrNotFound
	}
	var item catalog.Item
	if err := c.getJSON(ctx, "volume", c.baseURL+"/"+url.PathEscape(id), url.Values{}, &item); err != nil {
		return nil, err
	}
	if !item.HasVolumeInfo() {
		return nil, catalog.ErrNotFound
	}
	return &item, nil
}

// LookupBook resolves bookID as a volume id and falls back to an ISBN search.
func (c *Client) LookupBook(ctx context.Context, bookID string) (*catalog.Item, error) {
	item, err := c.Volume(ctx, bookID)
	if err == nil {
		return item, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}
	if c.logger != nil {
		c.logger.WithFields(logrus.Fields{"book_id": bookID}).WithError(err).Debug("googlebooks: volume lookup failed, trying isbn")
	}

	items, serr := c.Search(ctx, "isbn:"+strings.TrimSpace(bookID), 1)
	if serr != nil {
		return nil, errors.Join(err, serr)
	}
	for i := range items {
		if items[i].HasVolumeInfo() {
			return &items[i], nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (c *Client) getJSON(ctx context.Context, op, endpoint string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("googlebooks: %s: rate limiter: %w", op, err)
	}
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	u := endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("googlebooks: %s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("googlebooks: %s: %w", op, redact(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return catalog.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return &StatusError{StatusCode: resp.StatusCode, Op: op}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("googlebooks: %s: decode: %w", op, err)
	}
	return nil
}

// redact strips the request URL, which carries the API key, from transport errors.
func redact(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s: %w", uerr.Op, uerr.Err)
	}
	return err
}
