package model

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorResponse is the uniform failure body returned by every facade
type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// InputError reports caller input that failed validation
type InputError struct {
	Err error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: %v", e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// NotFoundError reports that the upstream provider had no data for a symbol
type NotFoundError struct {
	Resource string
	Symbol   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s data for %s", e.Resource, e.Symbol)
}

// ErrorStatus maps an error to the HTTP-like status reported to callers
func ErrorStatus(err error) int {
	var inputErr *InputError
	if errors.As(err, &inputErr) {
		return http.StatusBadRequest
	}
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// NewErrorResponse builds the uniform failure body for an operation.
// The message keeps the original error text so upstream failures surface verbatim.
func NewErrorResponse(description string, err error) ErrorResponse {
	status := ErrorStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError && description != "" {
		message = fmt.Sprintf("Error fetching %s: %v", description, err)
	}
	return ErrorResponse{Status: status, Message: message}
}
