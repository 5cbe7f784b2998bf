// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package openalex is a client for the OpenAlex REST API covering the
// lookups the resolution pipeline needs: author and institution search,
// DOI to work, work authorships, author details and author works.
package openalex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/juanceresa/BigQuery/internal/httputil"
	"github.com/juanceresa/BigQuery/internal/logging"
	"github.com/juanceresa/BigQuery/pkg/types"
)

// apiBase is the OpenAlex API root. Declared as a var so tests can
// substitute an httptest server.
var apiBase = "https://api.openalex.org"

// filterBatch bounds the number of values OR-ed into one filter.
const filterBatch = 50

// Observer receives one event per API request. metrics.Recorder implements it.
type Observer interface {
	APIRequest(endpoint, outcome string)
}

// Client queries the OpenAlex API.
type Client struct {
	HTTP *http.Client

	// Email is sent as mailto parameter for polite pool access.
	Email     string
	APIKey    string
	UserAgent string

	// PerPage bounds author search pages.
	PerPage int

	// MaxRetries is the total number of attempts per request.
	MaxRetries int

	// Cache, when set, serves repeated author and work requests. Institution
	// searches always go to the network.
	Cache ResponseCache

	Logger   *logging.Logger
	Observer Observer
}

// NewClient builds a Client from configuration.
func NewClient(cfg types.OpenAlexConfig, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Nop()
	}
	perPage := cfg.PerPage
	if perPage <= 0 {
		perPage = 25
	}
	return &Client{
		HTTP:       &http.Client{Timeout: cfg.Timeout},
		Email:      cfg.Email,
		APIKey:     cfg.APIKey,
		UserAgent:  cfg.UserAgent,
		PerPage:    perPage,
		MaxRetries: cfg.MaxRetries,
		Logger:     logger,
	}
}

// get requests apiBase+path with params and decodes the JSON response into
// out. Cacheable responses are read from and written to c.Cache.
func (c *Client) get(ctx context.Context, path string, params url.Values, cacheable bool, out any) error {
	endpoint := strings.TrimPrefix(path, "/")
	if i := strings.Index(endpoint, "/"); i >= 0 {
		endpoint = endpoint[:i]
	}

	// The cache key leaves out credentials so it is stable across users.
	key := path + "?" + params.Encode()

	if cacheable && c.Cache != nil {
		if data, ok := c.Cache.Get(key); ok {
			if err := json.Unmarshal(data, out); err == nil {
				c.observe(endpoint, "cache_hit")
				return nil
			}
		}
	}

	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	if c.Email != "" {
		q.Set("mailto", c.Email)
	}
	if c.APIKey != "" {
		q.Set("api_key", c.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiBase+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	data, err := httputil.DoWithRetry(ctx, c.client(), req, c.MaxRetries, func(n uint, err error) {
		c.Logger.Debug("retrying OpenAlex request", "endpoint", endpoint, "attempt", n+1, "error", err)
	})
	if err != nil {
		c.observe(endpoint, "error")
		return fmt.Errorf("OpenAlex %s request: %w", endpoint, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		c.observe(endpoint, "error")
		return fmt.Errorf("parsing OpenAlex %s response: %w", endpoint, err)
	}
	c.observe(endpoint, "ok")

	if cacheable && c.Cache != nil {
		if err := c.Cache.Set(key, data); err != nil {
			c.Logger.Warn("caching OpenAlex response failed", "endpoint", endpoint, "error", err)
		}
	}
	return nil
}

// skipBatch logs a failed batch of a bridge lookup so the caller can move on
// to the next one. It returns the context error once ctx is done.
func (c *Client) skipBatch(ctx context.Context, endpoint string, size int, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	c.Logger.Warn("OpenAlex batch failed, skipping", "endpoint", endpoint, "ids", size, "error", err)
	return nil
}

func (c *Client) client() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func (c *Client) observe(endpoint, outcome string) {
	if c.Observer != nil {
		c.Observer.APIRequest(endpoint, outcome)
	}
}

// batches splits values into chunks of at most n.
func batches(values []string, n int) [][]string {
	var out [][]string
	for len(values) > n {
		out = append(out, values[:n])
		values = values[n:]
	}
	if len(values) > 0 {
		out = append(out, values)
	}
	return out
}

// unique drops empty and repeated values, keeping first-seen order.
func unique(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
