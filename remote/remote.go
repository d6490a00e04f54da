// Package remote defines the interface to the remote ledger service and its
// Soroban RPC implementation. The pipeline depends only on the Service
// interface so that a scripted backend can stand in for the real node.
package remote

import (
	"context"
	"errors"
)

// ErrAccountNotFound is returned by GetAccount when the address is unknown to
// the remote service.
var ErrAccountNotFound = errors.New("remote: account not found")

// TxStatus is the remote service's view of a submitted transaction.
type TxStatus string

const (
	TxStatusNotFound TxStatus = "NOT_FOUND"
	TxStatusPending  TxStatus = "PENDING"
	TxStatusSuccess  TxStatus = "SUCCESS"
	TxStatusFailed   TxStatus = "FAILED"
	// TxStatusError covers submissions rejected at the transaction queue.
	TxStatusError TxStatus = "ERROR"
)

// AccountState is the slice of remote account state the assembler needs.
type AccountState struct {
	Address  string
	Sequence int64
}

// Simulation is the outcome of a dry run. When Error is empty the envelope
// may be signed after merging TransactionDataXDR, MinResourceFee and
// AuthXDR; ResultXDR carries the return value for view calls.
type Simulation struct {
	// Error is the remote diagnostic, verbatim. Empty on success.
	Error string

	TransactionDataXDR string
	MinResourceFee     int64
	AuthXDR            []string
	ResultXDR          string
	LatestLedger       uint32
}

// Failed reports whether the dry run was rejected by the remote service.
func (s Simulation) Failed() bool {
	return s.Error != ""
}

// Submission is the acknowledgement of a SendTransaction call.
type Submission struct {
	Hash   string
	Status TxStatus
	// ErrorResultXDR is set when the submission was rejected outright.
	ErrorResultXDR string
}

// TransactionInfo is one observation of a submitted transaction's status.
type TransactionInfo struct {
	Status TxStatus
	// ResultXDR carries the transaction result payload once terminal.
	ResultXDR string
	Ledger    uint32
}

// Service is the remote ledger collaborator. Implementations must treat every
// method as a single blocking request with no local retry; retry policy
// belongs to the caller.
type Service interface {
	// GetAccount fetches the current state of an account, or
	// ErrAccountNotFound if the remote service does not know it.
	GetAccount(ctx context.Context, address string) (AccountState, error)

	// SimulateTransaction dry-runs a base64 transaction envelope.
	SimulateTransaction(ctx context.Context, envelopeXDR string) (Simulation, error)

	// SendTransaction submits a signed base64 envelope.
	SendTransaction(ctx context.Context, signedEnvelopeXDR string) (Submission, error)

	// GetTransaction reports the status of a previously submitted
	// transaction by hash.
	GetTransaction(ctx context.Context, hash string) (TransactionInfo, error)

	// LatestLedger returns the current ledger sequence of the remote
	// service.
	LatestLedger(ctx context.Context) (uint32, error)
}
