package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/statline/matchup-sim/pkg/matchup"
)

const (
	// DefaultBaseURL is the simulation API base URL.
	DefaultBaseURL = "https://api.versusgame.io"

	// Conservative limits; the simulator backend throttles aggressively.
	defaultRateLimit = 5.0 // requests per second
	defaultBurst     = 3
)

// Client is a simulation API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithRateLimit sets custom rate limiting.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewClient creates a new simulation API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(defaultRateLimit), defaultBurst),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ListTeams fetches the team catalog for a sport.
func (c *Client) ListTeams(ctx context.Context, sport matchup.Sport) ([]Team, error) {
	if !sport.Valid() {
		return nil, fmt.Errorf("unsupported sport: %q", sport)
	}

	params := url.Values{}
	params.Set("sport", string(sport))

	var teams []Team
	if err := c.get(ctx, "/teams", params, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// Simulate requests a baseline simulation for a matchup.
func (c *Client) Simulate(ctx context.Context, req SimulationRequest) (*SimulationResponse, error) {
	if !req.Sport.Valid() {
		return nil, fmt.Errorf("unsupported sport: %q", req.Sport)
	}
	if req.AwayTeamID == "" || req.HomeTeamID == "" {
		return nil, fmt.Errorf("both team ids are required")
	}

	var resp SimulationResponse
	if err := c.post(ctx, "/simulation", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Team) == 0 {
		return nil, fmt.Errorf("simulation response has no team entries")
	}
	return &resp, nil
}

// get performs a GET request with rate limiting.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req, result)
}

// post performs a JSON POST request with rate limiting.
func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.do(req, result)
}

func (c *Client) do(req *http.Request, result interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("api error %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
