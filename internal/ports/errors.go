package ports

import "errors"

// RetryableError is the contract between backend error types and retry
// policy. Backends classify their own failures; retry loops only need to
// know whether an error is worth another attempt and which backoff
// schedule applies.
type RetryableError interface {
	error

	// Retryable reports whether the failed call may be attempted again.
	Retryable() bool

	// RateLimited reports whether the failure signals provider overload,
	// which warrants a slower backoff schedule than ordinary transient
	// errors.
	RateLimited() bool
}

// IsRetryable reports whether err is a transient failure worth retrying.
// Errors that do not implement RetryableError are never retryable.
func IsRetryable(err error) bool {
	var re RetryableError
	if errors.As(err, &re) {
		return re.Retryable()
	}
	return false
}

// IsRateLimited reports whether err signals provider overload.
func IsRateLimited(err error) bool {
	var re RetryableError
	if errors.As(err, &re) {
		return re.RateLimited()
	}
	return false
}
