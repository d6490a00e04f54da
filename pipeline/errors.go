package pipeline

import (
	"errors"
)

var (
	// ErrNotAuthorized indicates the caller lacks admin rights for an
	// admin-only operation kind. Checked locally before any network call.
	ErrNotAuthorized = errors.New("pipeline: not authorized")

	// ErrAccountLookup indicates the source account is unknown to the
	// remote service. Surfaced immediately, never retried.
	ErrAccountLookup = errors.New("pipeline: account lookup failed")

	// ErrSubmission indicates a transport-level failure while submitting
	// or observing the signed envelope.
	ErrSubmission = errors.New("pipeline: submission failed")

	// ErrTimedOut indicates the poll cap was exceeded with the transaction
	// still pending. The chain-level outcome is indeterminate.
	ErrTimedOut = errors.New("pipeline: confirmation timed out, outcome unknown")
)

// SimulationError carries the remote service's dry-run diagnostic. The
// message is passed through verbatim; it is the only actionable detail the
// remote provides.
type SimulationError struct {
	Diagnostic string
}

func (e *SimulationError) Error() string {
	return e.Diagnostic
}

// TransactionFailedError carries the remote failure status of a submitted
// transaction, verbatim, together with its result payload when present.
type TransactionFailedError struct {
	Status    string
	ResultXDR string
}

func (e *TransactionFailedError) Error() string {
	return "transaction failed: " + e.Status
}
