// Package ml provides a client for the song-search ML sidecar service.
package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// requestTimeout bounds every sidecar call so a stalled model service cannot
// stall the request that triggered it.
const requestTimeout = 10 * time.Second

// ErrUnavailable is returned when the sidecar is not configured or cannot be
// reached. Callers degrade to Spotify-only search results.
var ErrUnavailable = errors.New("ml service unavailable")

// Song is one search hit returned by the sidecar, scored by relevance.
type Song struct {
	Title  string  `json:"title"`
	Artist string  `json:"artist"`
	Score  float64 `json:"score"`
}

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Query   string `json:"query"`
	Results []Song `json:"results"`
}

// Client calls the ML search sidecar over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the sidecar at baseURL. An empty baseURL
// produces a client whose calls return ErrUnavailable.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// Enabled reports whether a sidecar URL is configured.
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

// Search asks the sidecar for songs matching the query. Returns an empty
// slice (not nil) when the sidecar finds nothing.
func (c *Client) Search(ctx context.Context, query string) ([]Song, error) {
	if !c.Enabled() {
		return nil, ErrUnavailable
	}

	payload, err := json.Marshal(searchRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("encoding search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading search response: %w", err)
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}

	if result.Results == nil {
		return []Song{}, nil
	}
	return result.Results, nil
}
