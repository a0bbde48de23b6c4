// ABOUTME: Error types for the agent transport: HTTP failures and protocol errors.
// ABOUTME: Status codes are classified into user-facing categories.

package a2a

import (
	"fmt"
	"net/http"
)

// TransportKind is the user-facing category of an HTTP-level failure.
type TransportKind int

const (
	TransportGeneric TransportKind = iota
	TransportUnauthorized
	TransportRateLimited
	TransportUnavailable
)

// String returns the category label shown to users.
func (k TransportKind) String() string {
	switch k {
	case TransportUnauthorized:
		return "unauthorized"
	case TransportRateLimited:
		return "rate-limited"
	case TransportUnavailable:
		return "unavailable"
	default:
		return "request failed"
	}
}

// TransportError is a non-success HTTP response from the agent endpoint.
// Never fatal: the driver renders it and returns to a safe state.
type TransportError struct {
	Status int
	Kind   TransportKind
	Body   string
}

func (e *TransportError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s (HTTP %d): %s", e.Kind, e.Status, e.Body)
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Kind, e.Status)
}

// classifyStatus maps an HTTP status code to its user-facing category.
func classifyStatus(status int) TransportKind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return TransportUnauthorized
	case http.StatusTooManyRequests:
		return TransportRateLimited
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return TransportUnavailable
	default:
		return TransportGeneric
	}
}

// RPCError is a protocol-level error object returned instead of a result.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("agent error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("agent error: %s", e.Message)
}
