package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstream matches every error reported inside a payload envelope.
	ErrUpstream = errors.New("upstream error")
	// ErrUpstreamServer matches payloads carrying a status code >= 500.
	ErrUpstreamServer = errors.New("upstream server error")
	// ErrUpstreamClient matches payloads carrying a status code in [300, 500).
	ErrUpstreamClient = errors.New("upstream client error")

	ErrMalformedEdge      = errors.New("malformed edge table")
	ErrMalformedStatement = errors.New("malformed statement")
	ErrMalformedPayload   = errors.New("malformed payload")

	// ErrNodeFrozen is returned when a node is modified after linking.
	ErrNodeFrozen = errors.New("node is frozen")
)

// UpstreamError is an error condition embedded in the payload by the fetch
// collaborator. Its message is exactly what callers are shown.
type UpstreamError struct {
	StatusCode int
	Message    string
	class      error
}

func classifyUpstream(statusCode int, message string) *UpstreamError {
	e := &UpstreamError{StatusCode: statusCode, Message: message, class: ErrUpstream}
	switch {
	case statusCode >= 500:
		e.class = ErrUpstreamServer
	case statusCode >= 300:
		e.class = ErrUpstreamClient
	}
	return e
}

func (e *UpstreamError) Error() string {
	switch e.class {
	case ErrUpstreamServer:
		return "Server error: " + e.Message
	case ErrUpstreamClient:
		return "Client error: " + e.Message
	default:
		return e.Message
	}
}

func (e *UpstreamError) Unwrap() []error {
	if e.class == ErrUpstream {
		return []error{ErrUpstream}
	}
	return []error{ErrUpstream, e.class}
}

// MalformedEdgeError reports an edge table entry using the reserved type
// predicate.
type MalformedEdgeError struct {
	Subject   string
	Predicate string
}

func (e *MalformedEdgeError) Error() string {
	return fmt.Sprintf("malformed edge table: %s links through reserved predicate %q", e.Subject, e.Predicate)
}

func (e *MalformedEdgeError) Unwrap() error {
	return ErrMalformedEdge
}

// MalformedStatementError reports a statement whose object cannot be parsed.
type MalformedStatementError struct {
	Statement Statement
	Err       error
}

func (e *MalformedStatementError) Error() string {
	return fmt.Sprintf("malformed statement %s %s: object %q: %v",
		e.Statement.Subject, e.Statement.Predicate, e.Statement.Object, e.Err)
}

func (e *MalformedStatementError) Unwrap() []error {
	return []error{ErrMalformedStatement, e.Err}
}
