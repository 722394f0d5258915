package backend

import (
	"fmt"
	"net/url"
	"time"
)

// Bounds applied when validating backend configuration.
const (
	// MinTimeout is the minimum allowed duration for a request timeout.
	MinTimeout = 1 * time.Second
	// MaxTimeout is the maximum allowed duration for a request timeout.
	MaxTimeout = 10 * time.Minute
)

// ValidateBaseURL validates and normalizes a base URL string.
// It ensures the URL has a valid scheme (http or https) and a host.
// An empty string is considered valid and returns no error, allowing for
// default provider URLs.
func ValidateBaseURL(baseURL string) (string, error) {
	if baseURL == "" {
		// Empty means the provider default should be used.
		return "", nil
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}

	if parsedURL.Scheme == "" {
		return "", fmt.Errorf("URL must include a scheme (e.g., http:// or https://)")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return "", fmt.Errorf("URL scheme must be http or https, but got: %s", parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return "", fmt.Errorf("URL must include a host")
	}

	return parsedURL.String(), nil
}

// ValidateTimeout ensures the timeout is within a reasonable range.
// Zero or negative returns zero, meaning the provider default applies;
// values outside [MinTimeout, MaxTimeout] clamp to the nearest boundary.
func ValidateTimeout(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return 0
	}
	if timeout < MinTimeout {
		return MinTimeout
	}
	if timeout > MaxTimeout {
		return MaxTimeout
	}
	return timeout
}
