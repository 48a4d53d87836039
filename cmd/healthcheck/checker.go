package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const probeRequest = `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"healthcheck","version":"1.0.0"}}}`

// ErrAPIKeyNotConfigured is returned when the server runs without an FMP key
var ErrAPIKeyNotConfigured = errors.New("API key is not configured")

// Checker probes a running server
type Checker struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewChecker creates a new checker for the server at baseURL.
// A non-empty token is sent as a bearer token to the MCP endpoint.
func NewChecker(baseURL, token string, httpClient *http.Client, logger *zap.Logger) *Checker {
	return &Checker{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
		logger:     logger,
	}
}

type healthResponse struct {
	Status           string `json:"status"`
	APIKeyConfigured bool   `json:"api_key_configured"`
}

// CheckHealth verifies /health reports healthy with the API key configured
func (c *Checker) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server responded with code %d", resp.StatusCode)
	}

	var health healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("failed to decode health response: %w", err)
	}

	if health.Status != "healthy" {
		return fmt.Errorf("server status is not healthy: %s", health.Status)
	}
	c.logger.Info("Server is healthy")

	if !health.APIKeyConfigured {
		return ErrAPIKeyNotConfigured
	}
	c.logger.Info("API key is configured")
	return nil
}

// CheckMCP verifies the MCP endpoint answers an initialize request
func (c *Checker) CheckMCP(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/mcp", strings.NewReader(probeRequest))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to MCP endpoint: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusUnauthorized {
		return errors.New("MCP endpoint rejected the request (401), set --token or HEALTHCHECK_TOKEN")
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("MCP endpoint responded with code %d", resp.StatusCode)
	}

	c.logger.Info("MCP endpoint is responding")
	return nil
}

// Check runs every probe once and joins the failures
func (c *Checker) Check(ctx context.Context) error {
	return errors.Join(c.CheckHealth(ctx), c.CheckMCP(ctx))
}

// Wait runs Check until it passes or maxWait elapses. A zero maxWait checks once.
// A missing API key never resolves by waiting, so it stops the retries.
func (c *Checker) Wait(ctx context.Context, maxWait time.Duration) error {
	if maxWait <= 0 {
		return c.Check(ctx)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = maxWait

	operation := func() error {
		err := c.Check(ctx)
		if errors.Is(err, ErrAPIKeyNotConfigured) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, next time.Duration) {
		c.logger.Warn("Server not ready, retrying", zap.Error(err), zap.Duration("next", next))
	}

	return backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notify)
}
