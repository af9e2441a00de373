// Package erised provides the official Go client for the Erised visual memory service.
package erised

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Predefined errors for common failure scenarios.
var (
	// ErrNotFound indicates that a requested memory was not found on the server.
	ErrNotFound = errors.New("memory not found")

	// ErrTimeout indicates that a request exceeded the configured timeout.
	ErrTimeout = errors.New("request timed out")

	// ErrClientClosed indicates that an operation was attempted after Close.
	ErrClientClosed = errors.New("client is closed")

	// ErrNoImage indicates that a memory record carries no stored image.
	ErrNoImage = errors.New("memory has no image")
)

// ConfigError reports invalid client configuration.
//
// It is returned synchronously by NewClient and never originates from the
// network.
//
// Example:
//
//	_, err := erised.NewClient(&erised.Config{})
//	var cfgErr *erised.ConfigError
//	if errors.As(err, &cfgErr) {
//	    log.Fatalf("bad config field %s: %s", cfgErr.Field, cfgErr.Reason)
//	}
type ConfigError struct {
	// Field is the configuration field that is invalid.
	Field string

	// Reason describes why the field is invalid.
	Reason string
}

// Error returns a formatted error message.
//
// The format is: "erised: config: <Field>: <Reason>"
func (e *ConfigError) Error() string {
	return fmt.Sprintf("erised: config: %s: %s", e.Field, e.Reason)
}

// ValidationError reports malformed or missing request input.
//
// Validation runs before any network request is issued; an operation that
// returns a ValidationError has touched neither the connection pool nor the
// server.
type ValidationError struct {
	// Field is the request parameter that failed validation.
	Field string

	// Reason describes why the parameter is invalid.
	Reason string
}

// Error returns a formatted error message.
//
// The format is: "erised: validation: <Field>: <Reason>"
func (e *ValidationError) Error() string {
	return fmt.Sprintf("erised: validation: %s: %s", e.Field, e.Reason)
}

// TransportError reports a network-level failure: connection refused, DNS
// resolution failure, a timeout, or a corrupted response body. The server
// was never reached, or its response never arrived intact.
//
// Timeouts are distinguishable without inspecting the cause chain:
//
//	if errors.Is(err, erised.ErrTimeout) {
//	    // the configured timeout or a context deadline elapsed
//	}
type TransportError struct {
	// Op is the name of the operation that failed.
	Op string

	// RequestID is the client-generated correlation ID of the failed request.
	RequestID string

	// Err is the underlying transport error.
	Err error
}

// Error returns a formatted error message.
//
// The format is: "erised: <Op>: transport: <Err>"
func (e *TransportError) Error() string {
	return fmt.Sprintf("erised: %s: transport: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
//
// This allows using errors.Is() and errors.As() with TransportError.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is reports a match against ErrTimeout when the failure was caused by an
// elapsed deadline, so callers can test timeouts with errors.Is.
func (e *TransportError) Is(target error) bool {
	return target == ErrTimeout && e.Timeout()
}

// Timeout reports whether the failure was caused by the configured timeout
// or a context deadline.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// APIError reports that the server responded with a non-success status.
//
// Message carries the server-supplied error text verbatim so callers can
// surface service diagnostics without parsing response bodies themselves.
//
// Example:
//
//	_, err := client.Search(ctx, "dark theme editor")
//	var apiErr *erised.APIError
//	if errors.As(err, &apiErr) {
//	    log.Printf("server rejected %s with status %d: %s", apiErr.Op, apiErr.StatusCode, apiErr.Message)
//	}
type APIError struct {
	// Op is the name of the operation that failed.
	Op string

	// StatusCode is the HTTP status code returned by the server.
	StatusCode int

	// Message is the server-supplied error message, verbatim.
	Message string

	// RequestID is the client-generated correlation ID of the failed request.
	RequestID string
}

// Error returns a formatted error message.
//
// The format is: "erised: <Op>: API request failed with status <StatusCode>: <Message>"
func (e *APIError) Error() string {
	return fmt.Sprintf("erised: %s: API request failed with status %d: %s", e.Op, e.StatusCode, e.Message)
}

// NotFoundError refines APIError for an unknown memory ID.
//
// Both errors.Is(err, erised.ErrNotFound) and errors.As(err, **erised.APIError)
// match a NotFoundError, so callers can branch on the refinement or handle it
// with the generic server-error path.
type NotFoundError struct {
	APIError

	// MemoryID is the identifier the server could not resolve.
	MemoryID string
}

// Error returns a formatted error message.
//
// The format is: "erised: <Op>: memory not found: <MemoryID>"
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("erised: %s: %v: %s", e.Op, ErrNotFound, e.MemoryID)
}

// Unwrap exposes the embedded APIError for errors.As.
func (e *NotFoundError) Unwrap() error {
	return &e.APIError
}

// Is reports a match against ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
