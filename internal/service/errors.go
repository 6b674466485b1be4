package service

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for upstream collaborator failures. Handlers map these to
// distinct status codes instead of folding everything into one generic error.
var (
	ErrUpstreamTimeout     = errors.New("upstream request timed out")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// wrapUpstream classifies an error from an external collaborator. A deadline
// expiry becomes a timeout, anything else an availability failure.
func wrapUpstream(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, ErrUpstreamTimeout)
	}
	return fmt.Errorf("%s: %w: %v", op, ErrUpstreamUnavailable, err)
}
