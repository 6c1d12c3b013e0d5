// internal/errors/errors.go
package errors

import "fmt"

// MissingCredentialError is returned before any HTTP call when the API
// credential for a provider is not configured.
type MissingCredentialError struct {
	Provider string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("no API credential configured for %s", e.Provider)
}

// RateLimitError is returned when a page keeps answering 429 past the retry
// budget. The whole fetch fails; no partial results are returned.
type RateLimitError struct {
	Page     int
	Attempts int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited on page %d after %d attempts", e.Page, e.Attempts)
}

// UpstreamError is any non-2xx, non-429 response from the provider.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}

// TransportError wraps a network-level failure (timeout, DNS, reset) that
// persisted through the single retry.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MappingError marks a raw record that cannot be normalized because a
// required field is missing or malformed. It is counted as a skip, never a
// fatal sync failure.
type MappingError struct {
	Field    string
	RecordID string
}

func (e *MappingError) Error() string {
	if e.RecordID == "" {
		return fmt.Sprintf("cannot map record: missing %s", e.Field)
	}
	return fmt.Sprintf("cannot map record %s: missing %s", e.RecordID, e.Field)
}
