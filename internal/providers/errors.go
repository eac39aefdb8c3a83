package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	ErrProviderUnavailable = errors.New("provider not configured")
	ErrProviderRejected    = errors.New("provider rejected request")
	ErrProviderFailed      = errors.New("provider call failed")
)

// ProviderError carries the failure kind (one of the sentinels above) along
// with whatever the upstream told us.
type ProviderError struct {
	Provider   string
	Kind       error
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Provider, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func (e *ProviderError) Is(target error) bool {
	return e.Kind == target
}

func NewProviderError(provider string, kind error, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Kind:     kind,
		Err:      err,
	}
}

// IsTimeout reports whether err came from a deadline or a network timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Retryable is true only for plain failures. Rejections, missing
// configuration and timeouts are final.
func Retryable(err error) bool {
	return errors.Is(err, ErrProviderFailed) && !IsTimeout(err)
}

// KindLabel names the error kind for metrics and logs.
func KindLabel(err error) string {
	switch {
	case errors.Is(err, ErrProviderUnavailable):
		return "unavailable"
	case errors.Is(err, ErrProviderRejected):
		return "rejected"
	case IsTimeout(err):
		return "timeout"
	case errors.Is(err, ErrProviderFailed):
		return "failed"
	default:
		return "unknown"
	}
}
