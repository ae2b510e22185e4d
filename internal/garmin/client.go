package garmin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/oauth2"
)

// BaseURL is the API host; each call carries its own service prefix
// (activitylist-service for listing, activity-service for per-activity
// operations).
const BaseURL = "https://connectapi.garmin.com"

// Client is a Garmin Connect API client
type Client struct {
	httpClient  *http.Client
	rateLimiter *RateLimiter
	baseURL     string
}

// NewClient creates a new Garmin Connect API client
func NewClient(tokenSource oauth2.TokenSource) *Client {
	return &Client{
		httpClient:  oauth2.NewClient(context.Background(), tokenSource),
		rateLimiter: NewRateLimiter(),
		baseURL:     BaseURL,
	}
}

// GetActivities fetches one page of activity summary documents.
// Documents are returned raw so the caller can keep the full payload.
func (c *Client) GetActivities(ctx context.Context, start, limit int) ([]json.RawMessage, error) {
	params := url.Values{}
	params.Set("start", strconv.Itoa(start))
	params.Set("limit", strconv.Itoa(limit))

	resp, err := c.do(ctx, "GET", "/activitylist-service/activities/search/activities", params, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var activities []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&activities); err != nil {
		return nil, fmt.Errorf("decoding activities: %w", err)
	}

	return activities, nil
}

// GetAllActivities fetches all activity summaries, paging until the
// platform returns a short page. Respects rate limits.
func (c *Client) GetAllActivities(ctx context.Context, onProgress func(fetched int)) ([]json.RawMessage, error) {
	var all []json.RawMessage
	start := 0
	limit := 100

	for {
		page, err := c.GetActivities(ctx, start, limit)
		if err != nil {
			return all, fmt.Errorf("fetching activities from offset %d: %w", start, err)
		}

		if len(page) == 0 {
			break
		}

		all = append(all, page...)

		if onProgress != nil {
			onProgress(len(all))
		}

		if len(page) < limit {
			break // Last page
		}

		start += len(page)
	}

	return all, nil
}

// GetActivityDetails fetches the raw details document for an activity.
func (c *Client) GetActivityDetails(ctx context.Context, activityID int64) (json.RawMessage, error) {
	path := fmt.Sprintf("/activity-service/activity/%d/details", activityID)
	resp, err := c.do(ctx, "GET", path, nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading details body: %w", err)
	}

	return json.RawMessage(body), nil
}

// DeleteActivity removes an activity from the platform.
func (c *Client) DeleteActivity(ctx context.Context, activityID int64) error {
	path := fmt.Sprintf("/activity-service/activity/%d", activityID)
	resp, err := c.do(ctx, "DELETE", path, nil, nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// SetActivityName renames an activity on the platform.
func (c *Client) SetActivityName(ctx context.Context, activityID int64, name string) error {
	path := fmt.Sprintf("/activity-service/activity/%d", activityID)
	payload, err := json.Marshal(map[string]any{
		"activityId":   activityID,
		"activityName": name,
	})
	if err != nil {
		return fmt.Errorf("encoding rename payload: %w", err)
	}

	resp, err := c.do(ctx, "PUT", path, nil, payload)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// RateLimitStatus returns the current rate limit status
func (c *Client) RateLimitStatus() (minuteRemaining, dailyRemaining int) {
	return c.rateLimiter.Status()
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body []byte) (*http.Response, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	// Update rate limiter from response headers
	c.rateLimiter.UpdateFromHeaders(resp.Header)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(respBody))
	}

	return resp, nil
}
