// Package hfsource enriches benchmark models from the HuggingFace catalog:
// config.json for architecture details and the models API for the published
// safetensors parameter count.
package hfsource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/sgl-project/modelcost/pkg/logging"
	"github.com/sgl-project/modelcost/pkg/paramcount"
)

const (
	// DefaultEndpoint is the HuggingFace hub root.
	DefaultEndpoint = "https://huggingface.co"

	// DefaultRequestTimeout bounds a single catalog request.
	DefaultRequestTimeout = 30 * time.Second

	// DefaultFetchDelay spaces out requests to stay under rate limits.
	DefaultFetchDelay = 2 * time.Second
)

// Client fetches model metadata from the HuggingFace hub.
type Client struct {
	endpoint       string
	requestTimeout time.Duration
	fetchDelay     time.Duration
	httpClient     *http.Client
	logger         logging.Interface
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithEndpoint overrides the hub root (tests point this at a local server).
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithRequestTimeout overrides the per-request timeout.
func WithRequestTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) { c.requestTimeout = timeout }
}

// WithFetchDelay overrides the inter-request delay used by FetchAll.
func WithFetchDelay(delay time.Duration) ClientOption {
	return func(c *Client) { c.fetchDelay = delay }
}

// NewClient builds a hub client over the shared pooled HTTP transport.
func NewClient(logger logging.Interface, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:       DefaultEndpoint,
		requestTimeout: DefaultRequestTimeout,
		fetchDelay:     DefaultFetchDelay,
		httpClient:     getHTTPClient(),
		logger:         logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrapf(err, "building request for %s", url)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "requesting %s", url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GET %s: status %d: %s", url, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decoding response from %s", url)
	}
	return nil
}

// FetchConfig fetches a model's config.json.
func (c *Client) FetchConfig(ctx context.Context, hfID string) (paramcount.Config, error) {
	url := fmt.Sprintf("%s/%s/raw/main/config.json", c.endpoint, hfID)

	var config paramcount.Config
	if err := c.getJSON(ctx, url, &config); err != nil {
		return nil, errors.Wrapf(err, "no config.json available for %s", hfID)
	}

	c.logger.WithField("hf_id", hfID).Info("Fetched config.json")
	return config, nil
}

type modelsAPIResponse struct {
	Safetensors struct {
		Parameters map[string]int64 `json:"parameters"`
	} `json:"safetensors"`
}

// FetchPublishedParams fetches the safetensors element count from the models
// API — the parameter count shown on the HF model page — in billions, rounded
// to one decimal. Returns nil when the API has no safetensors metadata; this
// is advisory data and its absence is not an error.
func (c *Client) FetchPublishedParams(ctx context.Context, hfID string) *float64 {
	url := fmt.Sprintf("%s/api/models/%s", c.endpoint, hfID)

	var data modelsAPIResponse
	if err := c.getJSON(ctx, url, &data); err != nil {
		c.logger.WithField("hf_id", hfID).WithError(err).
			Debug("Could not fetch published param count")
		return nil
	}

	var total int64
	for _, count := range data.Safetensors.Parameters {
		total += count
	}
	if total == 0 {
		return nil
	}

	paramsB := roundB(total)
	c.logger.WithField("hf_id", hfID).
		WithField("published_b", paramsB).
		Info("Fetched published param count")
	return &paramsB
}

// roundB converts a raw parameter count to billions at one decimal place.
func roundB(params int64) float64 {
	return float64((params+50_000_000)/100_000_000) / 10
}
