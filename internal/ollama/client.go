// Package ollama is a minimal client for the Ollama generate API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hugo-lorenzo-mato/flowrunner/internal/core"
	"github.com/hugo-lorenzo-mato/flowrunner/internal/logging"
)

const (
	// DefaultHost matches the reference deployment's service address.
	DefaultHost = "http://ollama:11434"
	// DefaultModel is the model shipped with the reference deployment.
	DefaultModel = "tinyllama"
	// DefaultTimeout bounds the single blocking generation call.
	DefaultTimeout = 60 * time.Second

	generatePath = "/api/generate"
	tagsPath     = "/api/tags"
)

// Config configures the client.
type Config struct {
	Host    string
	Model   string
	Timeout time.Duration
}

// Client issues synchronous generation requests to one Ollama host.
type Client struct {
	host       string
	model      string
	httpClient *http.Client
	logger     *logging.Logger
}

// New creates a client. Zero-valued config fields fall back to defaults.
func New(cfg Config, logger *logging.Logger) *Client {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Client{
		host:       strings.TrimRight(cfg.Host, "/"),
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With("component", "ollama"),
	}
}

// Host returns the configured backend address.
func (c *Client) Host() string {
	return c.host
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate issues one POST to /api/generate and returns the generated text.
// Transport failures surface as BACKEND_UNAVAILABLE, non-200 responses as
// BACKEND_ERROR with the status code and body. No retry is performed.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+generatePath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("sending generation request", "host", c.host, "model", c.model)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", core.ErrBackendUnavailable(
			fmt.Sprintf("generation backend connection error: %v", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", core.ErrBackendUnavailable(
			fmt.Sprintf("reading generation response: %v", err))
	}

	if resp.StatusCode != http.StatusOK {
		return "", core.ErrBackendError(resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", core.ErrBackendError(resp.StatusCode, "malformed generation response body").WithCause(err)
	}

	c.logger.Debug("generation complete", "bytes", len(parsed.Response))
	return parsed.Response, nil
}

// tagsResponse is the subset of /api/tags we consume.
type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Models lists the model tags available on the backend. Used by doctor to
// verify reachability and model presence; failures map to the same taxonomy
// as Generate.
func (c *Client) Models(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+tagsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("building tags request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, core.ErrBackendUnavailable(
			fmt.Sprintf("generation backend connection error: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, core.ErrBackendError(resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, core.ErrBackendError(resp.StatusCode, "malformed tags response body").WithCause(err)
	}

	names := make([]string, 0, len(parsed.Models))
	for _, m := range parsed.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// HasModel reports whether the configured model (or the given name) is
// present on the backend.
func (c *Client) HasModel(ctx context.Context, name string) (bool, error) {
	models, err := c.Models(ctx)
	if err != nil {
		return false, err
	}
	for _, m := range models {
		if m == name || strings.SplitN(m, ":", 2)[0] == name {
			return true, nil
		}
	}
	return false, nil
}

// Verify interface compliance.
var _ core.Generator = (*Client)(nil)
