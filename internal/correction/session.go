// Package correction drives the bounded retry loop that turns raw
// generation output into a conformant documentation block.
package correction

import (
	"github.com/google/uuid"

	"docsmith/internal/analysis"
	"docsmith/internal/conformance"
)

// State tracks where a session is in its lifecycle.
type State int

const (
	StateInit State = iota
	StateGenerated
	StateValidated
	StateRetrying
	StateAccepted
	StateExhausted
	StateTransportFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateGenerated:
		return "generated"
	case StateValidated:
		return "validated"
	case StateRetrying:
		return "retrying"
	case StateAccepted:
		return "accepted"
	case StateExhausted:
		return "exhausted_with_warnings"
	case StateTransportFailed:
		return "transport_failed"
	default:
		return "unknown"
	}
}

// Status is the terminal outcome of a session.
type Status int

const (
	// StatusAccepted: the block passed validation with zero violations.
	StatusAccepted Status = iota

	// StatusExhausted: the retry ceiling was reached; the last block is
	// still emitted, annotated with its remaining violations.
	StatusExhausted

	// StatusTransportFailed: the generation collaborator failed at the
	// transport level. Distinct from exhaustion: no correction attempt
	// was burned on it and no block is emitted.
	StatusTransportFailed
)

func (s Status) String() string {
	switch s {
	case StatusAccepted:
		return "accepted"
	case StatusExhausted:
		return "exhausted_with_warnings"
	case StatusTransportFailed:
		return "transport_failed"
	default:
		return "unknown"
	}
}

// session is the per-declaration loop state. Created when processing a
// declaration begins, discarded once the outcome is handed over. Each
// session owns its data exclusively; no sharing across declarations.
type session struct {
	id          string
	decl        analysis.Declaration
	fingerprint analysis.Fingerprint

	state   State
	attempt int // 0-based; ceiling counts correction passes beyond the first attempt

	block      *conformance.Block
	blockText  string
	violations []conformance.Violation
}

func newSession(decl analysis.Declaration, fp analysis.Fingerprint) *session {
	return &session{
		id:          uuid.NewString(),
		decl:        decl,
		fingerprint: fp,
		state:       StateInit,
	}
}

// Outcome is the record handed to the insertion boundary for one
// declaration.
type Outcome struct {
	Declaration analysis.Declaration
	Status      Status

	// Block is the final documentation text, without quoting:
	// validated for Accepted, best-effort for Exhausted, empty for
	// TransportFailed.
	Block string

	// RemainingViolations is empty for Accepted outcomes.
	RemainingViolations []conformance.Violation

	// Attempts counts generations made; Corrections counts retry
	// passes (Attempts - 1 unless transport failed early).
	Attempts    int
	Corrections int

	// Err carries the transport failure cause when Status is
	// StatusTransportFailed.
	Err error
}
