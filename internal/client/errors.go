package client

import "fmt"

// APIError is returned when FMP answers with a non-200 status
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("FMP API returned status code %d for %s: %s", e.StatusCode, e.Endpoint, e.Message)
}

// ProviderError is returned when FMP answers 200 with an error body,
// e.g. an invalid API key or an endpoint outside the subscription plan.
type ProviderError struct {
	Endpoint string
	Message  string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("FMP error for %s: %s", e.Endpoint, e.Message)
}
