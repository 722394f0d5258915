// Package backend provides judgment backend adapters for multiple LLM
// providers. It abstracts provider-specific APIs behind the
// ports.JudgmentBackend capability, enforcing the constrained structured
// output contract (a closed {"pass","fail"} verdict enumeration) and
// normalizing provider failures into a classified error taxonomy. The
// package also includes middleware support for cross-cutting concerns such
// as rate limiting, timeouts, metrics, and tracing.
package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahrav/go-verdict/internal/ports"
)

// Compile-time check that BackendError satisfies the retryability contract
// retry loops classify against.
var _ ports.RetryableError = (*BackendError)(nil)

// Common errors returned by backend constructors and providers.
var (
	// ErrEmptyAPIKey indicates that an API key was required but not provided.
	// This is a configuration error raised at construction time; it is
	// never retried.
	ErrEmptyAPIKey = errors.New("API key cannot be empty")
	// ErrEmptyResponse indicates that the provider's API returned an empty
	// or nil response body.
	ErrEmptyResponse = errors.New("empty response from API")
	// ErrNoResponseChoice indicates that the provider's response contained
	// no valid choices.
	ErrNoResponseChoice = errors.New("no response choices returned")
	// ErrUnsupportedModel indicates that the requested model is not in the
	// configured supported set for the provider.
	ErrUnsupportedModel = errors.New("unsupported model for provider")
)

// ErrorKind represents the category of an error returned by a judgment
// backend. Classification is data, not control flow: the judge client's
// retry state machine inspects the kind to decide between retrying,
// short-circuiting, and selecting the slower rate-limit backoff schedule.
type ErrorKind int

const (
	// KindUnknown indicates an error of an undetermined category.
	KindUnknown ErrorKind = iota
	// KindAuthentication indicates a problem with authentication or
	// authorization, such as an invalid API key. Never retried.
	KindAuthentication
	// KindRateLimit indicates that a provider rate limit has been
	// exceeded. Retried on the slower overload schedule.
	KindRateLimit
	// KindBadRequest indicates a malformed request or invalid parameters.
	KindBadRequest
	// KindNotFound indicates that a requested resource, typically a
	// model, could not be found.
	KindNotFound
	// KindServerError indicates a problem on the provider's end.
	KindServerError
	// KindContentPolicy indicates that the request was blocked by a
	// content policy.
	KindContentPolicy
	// KindNetwork indicates a client-side network problem.
	KindNetwork
	// KindTimeout indicates that the request timed out.
	KindTimeout
	// KindProtocol indicates a structured-output violation: the backend
	// replied, but not with anything conforming to the verdict schema.
	// Treated as permanent since retrying a misbehaving schema rarely
	// helps.
	KindProtocol
)

// BackendError represents a structured error from a judgment backend.
// It normalizes provider-specific errors into a common format, including a
// classified kind and relevant metadata.
type BackendError struct {
	// Kind classifies the error into a standard category.
	Kind ErrorKind
	// Provider identifies the backend that produced the error.
	Provider string
	// StatusCode holds the HTTP status code from the provider's response,
	// if applicable.
	StatusCode int
	// Message contains the user-facing error message from the provider.
	Message string
	// WrappedError holds the original underlying error, allowing for
	// error chaining.
	WrappedError error
}

// Error returns a string representation of the BackendError,
// satisfying the standard error interface.
func (e *BackendError) Error() string {
	base := fmt.Sprintf("%s error", e.Provider)
	if e.StatusCode > 0 {
		base += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}

	if kindStr := e.kindString(); kindStr != "" {
		base += fmt.Sprintf(" [%s]", kindStr)
	}

	if e.Message != "" {
		base += ": " + e.Message
	}

	if e.WrappedError != nil {
		base += fmt.Sprintf(": %v", e.WrappedError)
	}

	return base
}

// Unwrap returns the underlying wrapped error, allowing for error inspection
// with functions like errors.Is and errors.As.
func (e *BackendError) Unwrap() error { return e.WrappedError }

// Retryable determines whether a request that failed with this error should
// be retried. It returns true for transient issues like rate limits and
// server-side errors; authentication, bad-request, and protocol violations
// are permanent.
func (e *BackendError) Retryable() bool {
	switch e.Kind {
	case KindRateLimit, KindServerError, KindNetwork, KindTimeout:
		return true
	default:
		return false
	}
}

// RateLimited reports whether this error signals provider overload.
// Such conditions resolve more slowly than ordinary transient failures and
// warrant the multiplicatively longer backoff schedule.
func (e *BackendError) RateLimited() bool { return e.Kind == KindRateLimit }

// kindString returns a human-readable error kind.
func (e *BackendError) kindString() string {
	switch e.Kind {
	case KindAuthentication:
		return "authentication"
	case KindRateLimit:
		return "rate_limit"
	case KindBadRequest:
		return "bad_request"
	case KindNotFound:
		return "not_found"
	case KindServerError:
		return "server_error"
	case KindContentPolicy:
		return "content_policy"
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindProtocol:
		return "protocol"
	default:
		return ""
	}
}

// NewBackendError creates a new BackendError.
// This constructor is used to build standardized errors from
// provider-specific responses.
func NewBackendError(provider string, kind ErrorKind, statusCode int, message string, wrapped error) *BackendError {
	return &BackendError{
		Kind:         kind,
		Provider:     provider,
		StatusCode:   statusCode,
		Message:      message,
		WrappedError: wrapped,
	}
}

// Classify extracts the ErrorKind from an arbitrary error. Errors that are
// not BackendError values classify as KindUnknown, which the retry machine
// treats as permanent.
func Classify(err error) ErrorKind {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindUnknown
}

// IsRetryable reports whether err is a transient backend failure worth
// retrying. It delegates to the ports-level contract so callers holding
// only this package see the same classification retry loops use.
func IsRetryable(err error) bool { return ports.IsRetryable(err) }

// IsRateLimited reports whether err signals provider overload.
func IsRateLimited(err error) bool { return ports.IsRateLimited(err) }

// ErrorClassifier standardizes provider-specific errors into BackendError
// instances. It uses context such as HTTP status codes to determine the
// appropriate ErrorKind.
type ErrorClassifier struct {
	// Provider is the name of the backend for which this classifier works.
	Provider string
}

// ClassifyHTTPError creates a BackendError by classifying an error based on
// its HTTP status code.
func (ec *ErrorClassifier) ClassifyHTTPError(statusCode int, message string, err error) *BackendError {
	var kind ErrorKind
	var userMessage string

	switch statusCode {
	case 401, 403:
		kind = KindAuthentication
		userMessage = fmt.Sprintf("%s authentication failed", ec.Provider)
	case 429:
		kind = KindRateLimit
		userMessage = fmt.Sprintf("%s rate limit exceeded", ec.Provider)
	case 400:
		kind = KindBadRequest
		userMessage = message
	case 404:
		kind = KindNotFound
		userMessage = message
	case 500, 502, 503, 504:
		kind = KindServerError
		userMessage = message
	default:
		if statusCode >= 400 && statusCode < 500 {
			kind = KindBadRequest
		} else if statusCode >= 500 {
			kind = KindServerError
		} else {
			kind = KindUnknown
		}
		userMessage = message
	}

	return NewBackendError(ec.Provider, kind, statusCode, userMessage, err)
}

// ClassifyContextError creates a BackendError by classifying a
// context-related error, such as context.DeadlineExceeded or
// context.Canceled.
func (ec *ErrorClassifier) ClassifyContextError(err error) *BackendError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NewBackendError(ec.Provider, KindTimeout, 0, "context deadline exceeded", err)
	case errors.Is(err, context.Canceled):
		return NewBackendError(ec.Provider, KindNetwork, 0, "request canceled", err)
	default:
		return NewBackendError(ec.Provider, KindUnknown, 0, "", err)
	}
}

// ClassifyProtocolViolation creates a BackendError for responses that do not
// conform to the verdict schema: no tool call, no parsable arguments, or an
// out-of-enumeration verdict value.
func (ec *ErrorClassifier) ClassifyProtocolViolation(message string, err error) *BackendError {
	return NewBackendError(ec.Provider, KindProtocol, 0, message, err)
}
