package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/amberpine/flicker/internal/config"
	"github.com/amberpine/flicker/pkg/types"
)

// Client talks to the metadata proxy backend: content detail, season
// lists, and episode lists. It is a consumer of an external collaborator;
// callers decide how to degrade when a lookup fails.
type Client struct {
	baseURL string
	resty   *resty.Client
	logger  *slog.Logger
}

// NewClient creates a metadata client from configuration
func NewClient(cfg *config.MetadataConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "flicker/1.0"
	}

	restyClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetRetryCount(maxRetries).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")

	restyClient.AddRetryCondition(func(r *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		return r.StatusCode() >= 500 || r.StatusCode() == 429
	})

	return &Client{
		baseURL: cfg.BaseURL,
		resty:   restyClient,
		logger:  logger,
	}
}

// GetDetails fetches the content-detail document for a title
func (c *Client) GetDetails(ctx context.Context, contentType types.ContentType, id string) (*Details, error) {
	endpoint := fmt.Sprintf("/api/%s/%s", contentType, url.PathEscape(id))

	var details Details
	if err := c.get(ctx, endpoint, nil, &details); err != nil {
		return nil, fmt.Errorf("get details failed: %w", err)
	}

	return &details, nil
}

// GetSeasons fetches the season list for a series
func (c *Client) GetSeasons(ctx context.Context, id string) ([]Season, error) {
	endpoint := fmt.Sprintf("/api/tv/%s/seasons", url.PathEscape(id))

	var response seasonsResponse
	if err := c.get(ctx, endpoint, nil, &response); err != nil {
		return nil, fmt.Errorf("get seasons failed: %w", err)
	}

	return response.Seasons, nil
}

// GetEpisodes fetches the episode list for one season of a series
func (c *Client) GetEpisodes(ctx context.Context, id string, season int) ([]Episode, error) {
	endpoint := fmt.Sprintf("/api/tv/%s/season/%d", url.PathEscape(id), season)

	var response episodesResponse
	if err := c.get(ctx, endpoint, nil, &response); err != nil {
		return nil, fmt.Errorf("get episodes failed: %w", err)
	}

	return response.Episodes, nil
}

// get performs a GET request against the backend and decodes the JSON
// response into result
func (c *Client) get(ctx context.Context, endpoint string, params map[string]string, result interface{}) error {
	req := c.resty.R().SetContext(ctx)
	for key, value := range params {
		req.SetQueryParam(key, value)
	}

	resp, err := req.Get(endpoint)
	if err != nil {
		return fmt.Errorf("HTTP request failed (is the metadata backend running at %s?): %w", c.baseURL, err)
	}

	if resp.StatusCode() >= 400 {
		var errorResp ErrorResponse
		if err := json.Unmarshal(resp.Body(), &errorResp); err == nil && errorResp.Error != "" {
			return fmt.Errorf("backend error (%d): %s", resp.StatusCode(), errorResp.Error)
		}
		return fmt.Errorf("backend error: HTTP %d", resp.StatusCode())
	}

	if err := json.Unmarshal(resp.Body(), result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}
