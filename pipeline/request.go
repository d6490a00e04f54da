package pipeline

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/stellar/go-stellar-sdk/xdr"
)

// Kind identifies the chain mutation an operation request performs.
type Kind string

const (
	KindTransfer           Kind = "transfer"
	KindBatchTransfer      Kind = "batch-transfer"
	KindMint               Kind = "mint"
	KindBurn               Kind = "burn"
	KindFreeze             Kind = "freeze"
	KindUnfreeze           Kind = "unfreeze"
	KindCreateConditional  Kind = "create-conditional"
	KindExecuteConditional Kind = "execute-conditional"
	KindCreateVesting      Kind = "create-vesting"
	KindClaimVesting       Kind = "claim-vesting"
)

// AdminOnly reports whether the kind requires the connected session to hold
// the contract admin role.
func (k Kind) AdminOnly() bool {
	switch k {
	case KindMint, KindFreeze, KindUnfreeze, KindCreateVesting:
		return true
	default:
		return false
	}
}

// Arg is one named, typed contract-call argument in call order.
type Arg struct {
	Name  string
	Value xdr.ScVal
}

// Request is a pending chain mutation moving through the pipeline. A request
// is single-use: once a terminal status is reached the caller reads the
// result and discards it.
type Request struct {
	id            string
	kind          Kind
	sourceAddress string
	function      string
	args          []Arg

	status Status
}

// NewRequest creates a request in Draft with a fresh ID.
func NewRequest(kind Kind, sourceAddress, function string, args []Arg) *Request {
	return &Request{
		id:            uuid.New().String(),
		kind:          kind,
		sourceAddress: sourceAddress,
		function:      function,
		args:          args,
		status:        StatusDraft,
	}
}

// ID returns the request's unique identifier.
func (r *Request) ID() string { return r.id }

// Kind returns the operation kind.
func (r *Request) Kind() Kind { return r.kind }

// SourceAddress returns the submitting account address.
func (r *Request) SourceAddress() string { return r.sourceAddress }

// Function returns the contract function name on the wire.
func (r *Request) Function() string { return r.function }

// Args returns the ordered call arguments.
func (r *Request) Args() []Arg { return r.args }

// Status returns the current lifecycle state.
func (r *Request) Status() Status { return r.status }

// Transition advances the request to next, enforcing the forward-only
// transition table. Attempts to leave a terminal state are rejected.
func (r *Request) Transition(next Status) error {
	if r.status.Terminal() {
		return fmt.Errorf("request %s is terminal in %s, cannot transition to %s", r.id, r.status, next)
	}
	if !r.status.CanTransitionTo(next) {
		return fmt.Errorf("request %s cannot transition from %s to %s", r.id, r.status, next)
	}

	r.status = next

	return nil
}

// argValues unwraps the ScVal values in call order.
func (r *Request) argValues() []xdr.ScVal {
	vals := make([]xdr.ScVal, 0, len(r.args))
	for _, a := range r.args {
		vals = append(vals, a.Value)
	}

	return vals
}
