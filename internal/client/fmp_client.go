package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	FMPAPIBaseURL            = "https://financialmodelingprep.com/api"
	DefaultTimeout           = 30 * time.Second
	DefaultRequestsPerSecond = 5

	errorMessageKey = "Error Message"
)

// Record is a raw, loosely typed FMP response object
type Record map[string]interface{}

// FMPClient handles communication with the Financial Modeling Prep API
type FMPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// Option configures an FMPClient
type Option func(*FMPClient)

// WithBaseURL overrides the API base URL
func WithBaseURL(baseURL string) Option {
	return func(c *FMPClient) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *FMPClient) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client
func WithTimeout(timeout time.Duration) Option {
	return func(c *FMPClient) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithRateLimit paces outbound requests. Zero or less disables pacing.
func WithRateLimit(requestsPerSecond int) Option {
	return func(c *FMPClient) {
		if requestsPerSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// NewFMPClient creates a new FMP API client
func NewFMPClient(apiKey string, logger *zap.Logger, opts ...Option) *FMPClient {
	c := &FMPClient{
		baseURL: FMPAPIBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), DefaultRequestsPerSecond),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EarningsSurprises retrieves historical actual vs. estimated EPS for a symbol
func (c *FMPClient) EarningsSurprises(ctx context.Context, symbol string) ([]Record, error) {
	return c.get(ctx, "/v3/earnings-surprises/"+url.PathEscape(symbol), nil)
}

// TechnicalIndicator retrieves daily values of an indicator for a symbol
func (c *FMPClient) TechnicalIndicator(ctx context.Context, symbol, indicator string, period int) ([]Record, error) {
	params := url.Values{}
	params.Set("type", strings.ToLower(indicator))
	params.Set("period", strconv.Itoa(period))
	return c.get(ctx, "/v3/technical_indicator/1day/"+url.PathEscape(symbol), params)
}

// PriceTargetConsensus retrieves the analyst price target consensus for a symbol
func (c *FMPClient) PriceTargetConsensus(ctx context.Context, symbol string) ([]Record, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	return c.get(ctx, "/v4/price-target-consensus", params)
}

// PriceTargets retrieves individual analyst price targets for a symbol
func (c *FMPClient) PriceTargets(ctx context.Context, symbol string) ([]Record, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	return c.get(ctx, "/v4/price-target", params)
}

// InsiderTrading retrieves a page of insider transactions for a symbol
func (c *FMPClient) InsiderTrading(ctx context.Context, symbol string, page, limit int) ([]Record, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))
	return c.get(ctx, "/v4/insider-trading", params)
}

// EarningsCalendar retrieves market-wide earnings events between two dates
func (c *FMPClient) EarningsCalendar(ctx context.Context, from, to string) ([]Record, error) {
	params := url.Values{}
	params.Set("from", from)
	params.Set("to", to)
	return c.get(ctx, "/v3/earning_calendar", params)
}

// SymbolEarningsCalendar retrieves past and upcoming earnings events for one symbol
func (c *FMPClient) SymbolEarningsCalendar(ctx context.Context, symbol string) ([]Record, error) {
	return c.get(ctx, "/v3/historical/earning_calendar/"+url.PathEscape(symbol), nil)
}

// get performs a single GET and decodes either a list of objects or a single
// object into records.
func (c *FMPClient) get(ctx context.Context, path string, params url.Values) ([]Record, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait: %w", err)
		}
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("apikey", c.apiKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	c.logger.Debug("Calling FMP API", zap.String("endpoint", path))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to call FMP API", zap.String("endpoint", path), zap.Error(redact(err, c.apiKey)))
		return nil, fmt.Errorf("failed to fetch %s: %w", path, redact(err, c.apiKey))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("FMP API error response",
			zap.String("endpoint", path),
			zap.Int("statusCode", resp.StatusCode),
			zap.String("response", string(body)))
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body), Endpoint: path}
	}

	records, err := decodeRecords(body)
	if err != nil {
		c.logger.Error("Failed to decode FMP response", zap.String("endpoint", path), zap.Error(err))
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	if len(records) == 1 {
		if msg, ok := records[0][errorMessageKey]; ok {
			return nil, &ProviderError{Endpoint: path, Message: fmt.Sprint(msg)}
		}
	}

	c.logger.Debug("Fetched FMP records", zap.String("endpoint", path), zap.Int("count", len(records)))
	return records, nil
}

func decodeRecords(body []byte) ([]Record, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return []Record{}, nil
	}

	if trimmed[0] == '{' {
		var rec Record
		if err := json.Unmarshal(trimmed, &rec); err != nil {
			return nil, err
		}
		return []Record{rec}, nil
	}

	var records []Record
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

func errorMessage(body []byte) string {
	var rec Record
	if err := json.Unmarshal(body, &rec); err == nil {
		if msg, ok := rec[errorMessageKey]; ok {
			return fmt.Sprint(msg)
		}
	}
	return strings.TrimSpace(string(body))
}

// The request URL carries the API key and net/http echoes it in url.Error.
func redact(err error, apiKey string) error {
	if apiKey == "" || !strings.Contains(err.Error(), apiKey) {
		return err
	}
	return redactedError{msg: strings.ReplaceAll(err.Error(), apiKey, "REDACTED"), err: err}
}

type redactedError struct {
	msg string
	err error
}

func (e redactedError) Error() string { return e.msg }
func (e redactedError) Unwrap() error { return e.err }
