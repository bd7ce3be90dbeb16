package stacapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	gostac "github.com/planetlabs/go-stac"
)

// ErrNoScenes is returned when a search matches nothing in the discovery
// catalog. The run fails; callers may retry with a widened window.
var ErrNoScenes = errors.New("no scenes found for AOI and time window")

// Client handles communication with a STAC API search endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new STAC API client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: slog.Default(),
	}
}

// WithLogger sets a custom logger for the client.
func (c *Client) WithLogger(logger *slog.Logger) *Client {
	c.logger = logger
	return c
}

// maxSearchPages bounds pagination so a misbehaving server cannot keep the
// client looping on self-referencing next links.
const maxSearchPages = 50

// Search performs an item search against the STAC API, following the
// server's next links so the returned collection spans every result page.
func (c *Client) Search(ctx context.Context, params SearchParams) (*ItemCollection, error) {
	searchURL, err := c.buildSearchURL(params)
	if err != nil {
		return nil, fmt.Errorf("failed to build search URL: %w", err)
	}

	out := &ItemCollection{Type: "FeatureCollection"}
	for page := 0; searchURL != ""; page++ {
		if page == maxSearchPages {
			return nil, fmt.Errorf("STAC search exceeded %d result pages", maxSearchPages)
		}

		result, err := c.fetchPage(ctx, searchURL)
		if err != nil {
			return nil, err
		}
		out.Features = append(out.Features, result.Features...)

		searchURL, err = nextPageURL(searchURL, result.Links)
		if err != nil {
			return nil, err
		}
	}

	c.logger.DebugContext(ctx, "STAC search completed",
		slog.Int("item_count", len(out.Features)),
	)

	return out, nil
}

// fetchPage retrieves and decodes a single result page.
func (c *Client) fetchPage(ctx context.Context, pageURL string) (*ItemCollection, error) {
	c.logger.DebugContext(ctx, "executing STAC search",
		slog.String("url", pageURL),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json")
	req.Header.Set("User-Agent", "s1rgb/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "STAC search request failed",
			slog.String("error", err.Error()),
			slog.String("url", pageURL),
		)
		return nil, fmt.Errorf("STAC search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.ErrorContext(ctx, "STAC API returned non-200 status",
			slog.Int("status_code", resp.StatusCode),
			slog.String("response_body", string(body)),
		)
		return nil, fmt.Errorf("STAC API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result ItemCollection
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode STAC response: %w", err)
	}

	return &result, nil
}

// nextPageURL extracts the next pagination link, resolved against the page
// that carried it. Returns "" when the page is the last one.
func nextPageURL(current string, links []*gostac.Link) (string, error) {
	for _, link := range links {
		if link == nil || link.Rel != "next" || link.Href == "" {
			continue
		}
		base, err := url.Parse(current)
		if err != nil {
			return "", fmt.Errorf("invalid page URL %q: %w", current, err)
		}
		ref, err := url.Parse(link.Href)
		if err != nil {
			return "", fmt.Errorf("invalid next link %q: %w", link.Href, err)
		}
		return base.ResolveReference(ref).String(), nil
	}
	return "", nil
}

// LatestItem searches with the given parameters and returns the item with
// the most recent acquisition datetime. Items whose datetime property cannot
// be parsed sort last rather than failing the search.
func (c *Client) LatestItem(ctx context.Context, params SearchParams) (*Item, error) {
	result, err := c.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(result.Features) == 0 {
		return nil, ErrNoScenes
	}

	items := make([]*Item, len(result.Features))
	copy(items, result.Features)
	sort.SliceStable(items, func(i, j int) bool {
		ti, erri := ItemDatetime(items[i])
		tj, errj := ItemDatetime(items[j])
		if erri != nil {
			return false
		}
		if errj != nil {
			return true
		}
		return ti.After(tj)
	})

	latest := items[0]
	c.logger.InfoContext(ctx, "selected latest scene",
		slog.String("item_id", latest.Id),
		slog.Int("candidates", len(items)),
	)
	return latest, nil
}

// buildSearchURL constructs the full search URL with query parameters.
func (c *Client) buildSearchURL(params SearchParams) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	base.Path = strings.TrimSuffix(base.Path, "/") + "/search"
	base.RawQuery = params.ToURLValues().Encode()

	return base.String(), nil
}
