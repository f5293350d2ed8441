// Package generation is the boundary with the external documentation
// generator. A Generator is a single call-shaped dependency injected
// into the correction controller, which enables deterministic testing
// with scripted responses.
package generation

import (
	"context"
	"errors"
	"fmt"

	"docsmith/internal/analysis"
	"docsmith/internal/conformance"
)

// StylePolicy selects the documentation style requested from the
// collaborator.
type StylePolicy string

// StyleGoogle is the only policy currently shipped.
const StyleGoogle StylePolicy = "google"

// Request carries everything the collaborator needs for one attempt.
// PriorViolations is empty on the first attempt and carries corrective
// feedback on later ones. The collaborator is stateless across calls.
type Request struct {
	Source          string
	Kind            analysis.DeclKind
	Fingerprint     analysis.Fingerprint
	PriorViolations []conformance.Violation
	Style           StylePolicy
}

// Generator produces raw documentation text for a request. Transport
// faults (network, timeout, quota) must be reported as a
// TransportError so callers can keep them out of the retry budget.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	Name() string
}

// TransportError marks a failure of the call itself rather than of its
// content: the endpoint errored, timed out, or throttled.
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s generation transport failure: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err is a generation transport failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
