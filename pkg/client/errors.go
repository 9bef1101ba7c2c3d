package client

import (
	"errors"
	"fmt"
)

// ErrRequestFailed is returned when a request fails before an HTTP
// response is received.
var ErrRequestFailed = errors.New("request failed")

// ErrorClass represents a classification of HTTP errors.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// HTTPError represents a non-success map-service response.
type HTTPError struct {
	StatusCode int
	ErrorClass ErrorClass
	URL        string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("map service %s error (status %d): %s",
		e.ErrorClass, e.StatusCode, e.URL)
}

// classifyStatus categorizes an HTTP status code for observability.
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}
