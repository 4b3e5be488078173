package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kind classifies why a completion provider produced no text.
type Kind string

const (
	KindUnauthorized Kind = "unauthorized"
	KindRateLimited  Kind = "rate_limited"
	KindTimeout      Kind = "timeout"
	KindMalformed    Kind = "malformed"
	KindUnavailable  Kind = "unavailable"
)

// Error is the typed failure every provider returns.
type Error struct {
	Provider string
	Kind     Kind
	Status   int
	Err      error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Provider, e.Kind, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the failure kind, defaulting to unavailable.
func KindOf(err error) Kind {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind
	}
	if isTimeout(err) {
		return KindTimeout
	}
	return KindUnavailable
}

func statusError(provider string, status int) *Error {
	kind := KindUnavailable
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = KindUnauthorized
	case status == http.StatusTooManyRequests:
		kind = KindRateLimited
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		kind = KindTimeout
	}
	return &Error{Provider: provider, Kind: kind, Status: status}
}

func transportError(provider string, err error) *Error {
	if isTimeout(err) {
		return &Error{Provider: provider, Kind: KindTimeout, Err: err}
	}
	return &Error{Provider: provider, Kind: KindUnavailable, Err: err}
}

func malformed(provider string, err error) *Error {
	return &Error{Provider: provider, Kind: KindMalformed, Err: err}
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
