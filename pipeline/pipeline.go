// Package pipeline implements the chain-operation flow behind every token
// dashboard action: assemble an unsigned envelope, dry-run it against the
// remote service, hand it to the wallet for signing, submit it, and poll at
// a fixed interval until a terminal state or the poll cap. Stages execute
// strictly in that order; no stage retries on its own except the poll loop,
// which is a bounded fixed-delay retry.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/stellar/go-stellar-sdk/strkey"
	"github.com/stellar/go-stellar-sdk/txnbuild"
	"github.com/stellar/go-stellar-sdk/xdr"

	"github.com/tokenflex/tokenflex-go/pkg/logger"
	"github.com/tokenflex/tokenflex-go/remote"
	"github.com/tokenflex/tokenflex-go/scval"
	"github.com/tokenflex/tokenflex-go/wallet"
)

const (
	// defaultTimeoutSeconds bounds the envelope validity window. The
	// original dashboard used an unlimited window; that was a correctness
	// risk, not a feature, and is deliberately not carried over.
	defaultTimeoutSeconds = int64(300)

	defaultPollInterval    = time.Second
	defaultMaxPollAttempts = uint(30)
)

// Config holds the pipeline configuration.
type Config struct {
	// Required: The contract address (C...) every request invokes.
	ContractAddress string

	// Required: The network passphrase signatures are scoped to.
	NetworkPassphrase string

	// Optional: Inclusion base fee in stroops. Defaults to the network
	// minimum; the simulation's resource fee is added on top.
	BaseFee int64

	// Optional: Envelope validity window in seconds. Defaults to 300.
	TimeoutSeconds int64

	// Optional: Fixed delay between status polls. Defaults to 1s.
	PollInterval time.Duration

	// Optional: Hard cap on status polls before the request times out.
	// Defaults to 30.
	MaxPollAttempts uint
}

func (c Config) validate() error {
	if _, err := strkey.Decode(strkey.VersionByteContract, c.ContractAddress); err != nil {
		return fmt.Errorf("contract address %q is not a valid contract strkey: %w", c.ContractAddress, err)
	}
	if c.NetworkPassphrase == "" {
		return errors.New("network passphrase is required")
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.BaseFee == 0 {
		c.BaseFee = txnbuild.MinBaseFee
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.PollInterval == 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.MaxPollAttempts == 0 {
		c.MaxPollAttempts = defaultMaxPollAttempts
	}
}

// Result is the outcome of an executed request. ResultXDR carries the remote
// result payload on success and the failure payload verbatim on failure.
type Result struct {
	Status    Status
	Hash      string
	ResultXDR string
}

// Pipeline runs operation requests against a remote service and a wallet.
type Pipeline struct {
	remote          remote.Service
	wallet          wallet.Wallet
	lggr            logger.Logger
	cfg             Config
	contractAddress xdr.ScAddress
}

// New creates a Pipeline. The config is validated and defaulted once here.
func New(cfg Config, svc remote.Service, w wallet.Wallet, lggr logger.Logger) (*Pipeline, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("failed to validate pipeline config: %w", err)
	}
	cfg.applyDefaults()

	contractVal, err := scval.Address(cfg.ContractAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to encode contract address: %w", err)
	}

	return &Pipeline{
		remote:          svc,
		wallet:          w,
		lggr:            lggr.Named("pipeline"),
		cfg:             cfg,
		contractAddress: *contractVal.Address,
	}, nil
}

// Execute runs a Draft request through every stage and returns its terminal
// result. The returned error classifies the failure; the request's status
// reflects where the flow stopped. Abandoning the context mid-poll does not
// revoke the submitted transaction.
func (p *Pipeline) Execute(ctx context.Context, req *Request) (Result, error) {
	if req.Status() != StatusDraft {
		return Result{}, fmt.Errorf("request %s is %s, only Draft requests can be executed", req.ID(), req.Status())
	}

	// Assemble
	envelope, seq, err := p.assemble(ctx, req.SourceAddress(), req.Function(), req.argValues(), nil)
	if err != nil {
		return p.fail(req, err)
	}

	// Simulate
	if terr := req.Transition(StatusSimulating); terr != nil {
		return Result{}, terr
	}
	sim, err := p.simulate(ctx, envelope)
	if err != nil {
		return p.fail(req, err)
	}

	// Merge authorization and resource data, then rebuild the envelope.
	envelope, _, err = p.assembleWithSequence(req.SourceAddress(), seq, req.Function(), req.argValues(), &sim)
	if err != nil {
		return p.fail(req, err)
	}

	// Sign
	if terr := req.Transition(StatusAwaitingSignature); terr != nil {
		return Result{}, terr
	}
	signed, err := p.wallet.SignTransaction(ctx, envelope, p.cfg.NetworkPassphrase)
	if err != nil {
		return p.fail(req, fmt.Errorf("signing failed: %w", err))
	}

	// Submit
	if terr := req.Transition(StatusSubmitted); terr != nil {
		return Result{}, terr
	}
	sub, err := p.remote.SendTransaction(ctx, signed)
	if err != nil {
		return p.fail(req, fmt.Errorf("%w: %w", ErrSubmission, err))
	}
	if sub.Status == remote.TxStatusError {
		return p.fail(req, fmt.Errorf("%w: %s", ErrSubmission, sub.ErrorResultXDR))
	}

	p.lggr.Infow("Transaction submitted",
		"request", req.ID(), "function", req.Function(), "hash", sub.Hash)

	// Poll
	if terr := req.Transition(StatusPending); terr != nil {
		return Result{}, terr
	}

	return p.poll(ctx, req, sub.Hash)
}

// View assembles and simulates a read-only call, without signing or
// submitting anything. The simulation result carries the return value.
func (p *Pipeline) View(ctx context.Context, sourceAddress, function string, args []xdr.ScVal) (remote.Simulation, error) {
	envelope, _, err := p.assemble(ctx, sourceAddress, function, args, nil)
	if err != nil {
		return remote.Simulation{}, err
	}

	return p.simulate(ctx, envelope)
}

// LatestLedger exposes the remote ledger height for read-model computations.
func (p *Pipeline) LatestLedger(ctx context.Context) (uint32, error) {
	return p.remote.LatestLedger(ctx)
}

// assemble fetches the source account's sequence and builds the envelope.
func (p *Pipeline) assemble(
	ctx context.Context, sourceAddress, function string, args []xdr.ScVal, sim *remote.Simulation,
) (string, int64, error) {
	account, err := p.remote.GetAccount(ctx, sourceAddress)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %w", ErrAccountLookup, err)
	}

	return p.assembleWithSequence(sourceAddress, account.Sequence, function, args, sim)
}

// assembleWithSequence builds the unsigned envelope at a known sequence.
// When sim is set, its transaction data, resource fee and auth entries are
// merged in.
func (p *Pipeline) assembleWithSequence(
	sourceAddress string, sequence int64, function string, args []xdr.ScVal, sim *remote.Simulation,
) (string, int64, error) {
	op := &txnbuild.InvokeHostFunction{
		HostFunction: xdr.HostFunction{
			Type: xdr.HostFunctionTypeHostFunctionTypeInvokeContract,
			InvokeContract: &xdr.InvokeContractArgs{
				ContractAddress: p.contractAddress,
				FunctionName:    xdr.ScSymbol(function),
				Args:            args,
			},
		},
		SourceAccount: sourceAddress,
	}

	fee := p.cfg.BaseFee
	if sim != nil {
		if sim.TransactionDataXDR != "" {
			var sorobanData xdr.SorobanTransactionData
			if err := xdr.SafeUnmarshalBase64(sim.TransactionDataXDR, &sorobanData); err != nil {
				return "", 0, fmt.Errorf("failed to parse simulation transaction data: %w", err)
			}
			op.Ext = xdr.TransactionExt{V: 1, SorobanData: &sorobanData}
		}

		for _, authB64 := range sim.AuthXDR {
			var entry xdr.SorobanAuthorizationEntry
			if err := xdr.SafeUnmarshalBase64(authB64, &entry); err != nil {
				return "", 0, fmt.Errorf("failed to parse simulation auth entry: %w", err)
			}
			op.Auth = append(op.Auth, entry)
		}

		fee += sim.MinResourceFee
	}

	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount: &txnbuild.SimpleAccount{
			AccountID: sourceAddress,
			Sequence:  sequence,
		},
		IncrementSequenceNum: true,
		Operations:           []txnbuild.Operation{op},
		BaseFee:              fee,
		Preconditions: txnbuild.Preconditions{
			TimeBounds: txnbuild.NewTimeout(p.cfg.TimeoutSeconds),
		},
	})
	if err != nil {
		return "", 0, fmt.Errorf("failed to build transaction: %w", err)
	}

	envelope, err := tx.Base64()
	if err != nil {
		return "", 0, fmt.Errorf("failed to encode transaction: %w", err)
	}

	return envelope, sequence, nil
}

// simulate dry-runs the envelope. A remote-diagnosed failure becomes a
// SimulationError carrying the diagnostic verbatim.
func (p *Pipeline) simulate(ctx context.Context, envelope string) (remote.Simulation, error) {
	sim, err := p.remote.SimulateTransaction(ctx, envelope)
	if err != nil {
		return remote.Simulation{}, fmt.Errorf("simulation request failed: %w", err)
	}
	if sim.Failed() {
		return remote.Simulation{}, &SimulationError{Diagnostic: sim.Error}
	}

	return sim, nil
}

// errStillPending drives the poll loop; it is never returned to callers.
var errStillPending = errors.New("transaction still pending")

// poll checks the transaction status once per PollInterval until terminal or
// the attempt cap. Exceeding the cap times the request out rather than
// failing it: the chain-level outcome is unknown.
func (p *Pipeline) poll(ctx context.Context, req *Request, hash string) (Result, error) {
	info, err := retry.DoWithData(
		func() (remote.TransactionInfo, error) {
			info, gerr := p.remote.GetTransaction(ctx, hash)
			if gerr != nil {
				return remote.TransactionInfo{}, retry.Unrecoverable(fmt.Errorf("%w: %w", ErrSubmission, gerr))
			}

			switch info.Status {
			case remote.TxStatusSuccess, remote.TxStatusFailed:
				return info, nil
			default:
				// NOT_FOUND means the transaction is not yet visible
				// to the remote service; keep polling.
				return info, errStillPending
			}
		},
		retry.Context(ctx),
		retry.Attempts(p.cfg.MaxPollAttempts),
		retry.Delay(p.cfg.PollInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		if errors.Is(err, errStillPending) || ctx.Err() != nil {
			if terr := req.Transition(StatusTimedOut); terr != nil {
				return Result{}, terr
			}
			p.lggr.Warnw("Transaction confirmation timed out",
				"request", req.ID(), "hash", hash, "attempts", p.cfg.MaxPollAttempts)

			return Result{Status: StatusTimedOut, Hash: hash}, fmt.Errorf("%w: %s", ErrTimedOut, hash)
		}

		return p.fail(req, err)
	}

	if info.Status == remote.TxStatusFailed {
		ferr := &TransactionFailedError{Status: string(info.Status), ResultXDR: info.ResultXDR}
		res, _ := p.fail(req, ferr)
		res.Hash = hash
		res.ResultXDR = info.ResultXDR

		return res, ferr
	}

	if terr := req.Transition(StatusSucceeded); terr != nil {
		return Result{}, terr
	}
	p.lggr.Infow("Transaction succeeded", "request", req.ID(), "hash", hash)

	return Result{Status: StatusSucceeded, Hash: hash, ResultXDR: info.ResultXDR}, nil
}

// fail moves the request to Failed and passes the original error through
// unmodified.
func (p *Pipeline) fail(req *Request, err error) (Result, error) {
	if terr := req.Transition(StatusFailed); terr != nil {
		p.lggr.Errorw("Failed to mark request failed", "request", req.ID(), "error", terr)
	}
	p.lggr.Warnw("Request failed", "request", req.ID(), "function", req.Function(), "error", err)

	return Result{Status: StatusFailed}, err
}
