package odata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ProductQuery carries the OData system query options for a Products request.
type ProductQuery struct {
	Filter  string
	OrderBy string
	Select  []string
	Top     int
}

// Client handles communication with the product catalog's OData endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new OData catalog client.
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

// Products executes a Products query and returns the candidate records.
func (c *Client) Products(ctx context.Context, query ProductQuery) ([]Product, error) {
	queryURL, err := c.buildProductsURL(query)
	if err != nil {
		return nil, fmt.Errorf("failed to build products URL: %w", err)
	}

	c.logger.DebugContext(ctx, "executing OData products query",
		slog.String("url", queryURL),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "s1rgb/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "OData request failed",
			slog.String("error", err.Error()),
			slog.String("url", queryURL),
		)
		return nil, fmt.Errorf("OData request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.ErrorContext(ctx, "OData catalog returned non-200 status",
			slog.Int("status_code", resp.StatusCode),
			slog.String("response_body", string(body)),
		)
		return nil, fmt.Errorf("OData catalog returned status %d: %s", resp.StatusCode, string(body))
	}

	var result productsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode OData response: %w", err)
	}

	c.logger.DebugContext(ctx, "OData products query completed",
		slog.Int("product_count", len(result.Value)),
	)

	return result.Value, nil
}

// buildProductsURL constructs the Products URL with system query options.
func (c *Client) buildProductsURL(query ProductQuery) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	base.Path = strings.TrimSuffix(base.Path, "/") + "/Products"

	values := url.Values{}
	if query.Filter != "" {
		values.Set("$filter", query.Filter)
	}
	if query.OrderBy != "" {
		values.Set("$orderby", query.OrderBy)
	}
	if len(query.Select) > 0 {
		values.Set("$select", strings.Join(query.Select, ","))
	}
	if query.Top > 0 {
		values.Set("$top", strconv.Itoa(query.Top))
	}
	base.RawQuery = values.Encode()

	return base.String(), nil
}
