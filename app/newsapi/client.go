// Package newsapi implements a client for the newsapi.org v2 API.
package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Semior001/newsbook/app/store"
	"github.com/Semior001/newsbook/pkg/logx"
	cache "github.com/go-pkgz/expirable-cache/v2"
	"github.com/go-pkgz/requester"
	"github.com/go-pkgz/requester/middleware"
	"golang.org/x/exp/slog"
)

// DefaultBaseURL is the base URL of the news API.
const DefaultBaseURL = "https://newsapi.org/v2"

const apiKeyHeader = "X-Api-Key"

// ErrQueryTooShort is returned when the search query has less than two characters.
var ErrQueryTooShort = errors.New("search query must be at least 2 characters long")

// APIError is an error reported by the news API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

// Error implements error interface.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("news api responded with status %d", e.StatusCode)
	}
	return e.Message
}

// Opts defines parameters of the client.
type Opts struct {
	BaseURL       string
	APIKey        string
	Country       string
	Language      string
	PageSize      int
	MaxConcurrent int
	// CacheTTL is the time to keep responses, zero disables caching.
	CacheTTL time.Duration
}

// Client is a news API client.
type Client struct {
	log   *slog.Logger
	rq    *requester.Requester
	opts  Opts
	cache cache.Cache[string, store.Page]
}

// NewClient makes a new news API client.
func NewClient(lg *slog.Logger, cl http.Client, opts Opts) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 20
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 4
	}
	opts.BaseURL = strings.TrimSuffix(opts.BaseURL, "/")

	c := &Client{
		log:  lg,
		opts: opts,
		rq: requester.New(cl,
			middleware.Header(apiKeyHeader, opts.APIKey),
			middleware.MaxConcurrent(opts.MaxConcurrent),
			logx.LoggingRoundTripper(lg, logx.RoundTripperOpts{
				Level:         slog.LevelDebug,
				SecretHeaders: []string{apiKeyHeader},
			}),
		),
	}

	if opts.CacheTTL > 0 {
		c.cache = cache.NewCache[string, store.Page]().
			WithLRU().
			WithMaxKeys(500).
			WithTTL(opts.CacheTTL)
	}

	return c
}

// PageSize returns the number of articles per page.
func (c *Client) PageSize() int { return c.opts.PageSize }

// CacheStat returns response cache stats.
func (c *Client) CacheStat() cache.Stats {
	if c.cache == nil {
		return cache.Stats{}
	}
	return c.cache.Stat()
}

// FetchHeadlines returns a page of top headlines.
func (c *Client) FetchHeadlines(ctx context.Context, page int) (store.Page, error) {
	q := url.Values{}
	if c.opts.Country != "" {
		q.Set("country", c.opts.Country)
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(c.opts.PageSize))

	res, err := c.get(ctx, "/top-headlines", q)
	if err != nil {
		return store.Page{}, fmt.Errorf("fetch top headlines: %w", err)
	}

	return res, nil
}

// SearchArticles returns a page of articles matching the query,
// newest first.
func (c *Client) SearchArticles(ctx context.Context, query string, page int) (store.Page, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < 2 {
		return store.Page{}, ErrQueryTooShort
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(c.opts.PageSize))
	q.Set("sortBy", "publishedAt")
	if c.opts.Language != "" {
		q.Set("language", c.opts.Language)
	}

	res, err := c.get(ctx, "/everything", q)
	if err != nil {
		return store.Page{}, fmt.Errorf("search articles: %w", err)
	}

	return res, nil
}

type response struct {
	Status       string          `json:"status"`
	Code         string          `json:"code"`
	Message      string          `json:"message"`
	TotalResults int             `json:"totalResults"`
	Articles     []store.Article `json:"articles"`
}

func (c *Client) get(ctx context.Context, endpoint string, q url.Values) (store.Page, error) {
	u := c.opts.BaseURL + endpoint + "?" + q.Encode()

	if c.cache != nil {
		if page, ok := c.cache.Get(u); ok {
			return page, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return store.Page{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.rq.Do(req)
	if err != nil {
		return store.Page{}, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.WarnCtx(ctx, "failed to close response body", slog.Any("err", err))
		}
	}()

	var body response
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if resp.StatusCode != http.StatusOK {
			return store.Page{}, &APIError{StatusCode: resp.StatusCode}
		}
		return store.Page{}, fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || body.Status == "error" {
		return store.Page{}, &APIError{StatusCode: resp.StatusCode, Code: body.Code, Message: body.Message}
	}

	page := store.Page{Articles: body.Articles, TotalResults: body.TotalResults}
	if page.Articles == nil {
		page.Articles = []store.Article{}
	}

	if c.cache != nil {
		c.cache.Set(u, page, 0)
	}

	return page, nil
}
