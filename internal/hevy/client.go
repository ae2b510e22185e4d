package hevy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const BaseURL = "https://api.hevyapp.com/v1"

// Client is a Hevy API client. Authentication is a static API key
// sent on every request.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

// NewClient creates a new Hevy API client
func NewClient(apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiKey:     apiKey,
		baseURL:    BaseURL,
	}
}

// GetWorkouts fetches one page of workouts.
func (c *Client) GetWorkouts(ctx context.Context, page, pageSize int) ([]Workout, int, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(pageSize))

	resp, err := c.get(ctx, "/workouts", params)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var envelope workoutsPage
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, 0, fmt.Errorf("decoding workouts: %w", err)
	}

	workouts := make([]Workout, 0, len(envelope.Workouts))
	for _, raw := range envelope.Workouts {
		var w Workout
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, 0, fmt.Errorf("decoding workout: %w", err)
		}
		w.Raw = raw
		workouts = append(workouts, w)
	}

	return workouts, envelope.PageCount, nil
}

// GetAllWorkouts fetches every workout, paging until done.
func (c *Client) GetAllWorkouts(ctx context.Context, onProgress func(fetched int)) ([]Workout, error) {
	var all []Workout
	page := 1
	pageSize := 10 // Max allowed by the API

	for {
		workouts, pageCount, err := c.GetWorkouts(ctx, page, pageSize)
		if err != nil {
			return all, fmt.Errorf("fetching page %d: %w", page, err)
		}

		all = append(all, workouts...)

		if onProgress != nil {
			onProgress(len(all))
		}

		if page >= pageCount || len(workouts) == 0 {
			break
		}
		page++
	}

	return all, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	return resp, nil
}
