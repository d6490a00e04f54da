// Package token is the typed surface over the TokenFlex contract: read calls
// decode simulated return values, mutations build operation requests and run
// them through the pipeline. Function names and argument order here are wire
// contracts and must not drift.
package token

import (
	"context"
	"fmt"
	"math/big"

	"github.com/stellar/go-stellar-sdk/xdr"

	"github.com/tokenflex/tokenflex-go/pkg/logger"
	"github.com/tokenflex/tokenflex-go/pipeline"
	"github.com/tokenflex/tokenflex-go/scval"
)

// ConditionType selects how a conditional transfer unlocks.
type ConditionType string

const (
	// ConditionTimeBasedRelease unlocks at a ledger number.
	ConditionTimeBasedRelease ConditionType = "time-based-release"
	// ConditionApprovalRequired unlocks when a named approver executes it.
	ConditionApprovalRequired ConditionType = "approval-required"
)

// Condition is the unlock rule attached to a conditional transfer.
type Condition struct {
	Type ConditionType

	// ReleaseLedger is set for time-based release.
	ReleaseLedger uint32

	// Approver is set for approval-required.
	Approver string
}

func (c Condition) encode() (xdr.ScVal, error) {
	switch c.Type {
	case ConditionTimeBasedRelease:
		return scval.Variant("TimeBasedRelease", scval.U32(c.ReleaseLedger)), nil
	case ConditionApprovalRequired:
		approver, err := scval.Address(c.Approver)
		if err != nil {
			return xdr.ScVal{}, fmt.Errorf("invalid approver: %w", err)
		}

		return scval.Variant("ApprovalRequired", approver), nil
	default:
		return xdr.ScVal{}, fmt.Errorf("unknown condition type %q: %w", c.Type, scval.ErrEncoding)
	}
}

// VestingParams are the inputs to create_vesting, amounts as decimal strings.
type VestingParams struct {
	Beneficiary     string
	Amount          string
	StartLedger     uint32
	DurationLedgers uint32
	Type            VestingType
	Steps           uint32
	CliffLedger     uint32
}

// Client invokes the TokenFlex contract through a pipeline.
type Client struct {
	pipe *pipeline.Pipeline
	lggr logger.Logger
}

// NewClient creates a contract client on top of an initialized pipeline.
func NewClient(pipe *pipeline.Pipeline, lggr logger.Logger) *Client {
	return &Client{pipe: pipe, lggr: lggr.Named("token")}
}

// Balance returns the holder's raw token balance.
func (c *Client) Balance(ctx context.Context, source, holder string) (*big.Int, error) {
	addr, err := scval.Address(holder)
	if err != nil {
		return nil, err
	}

	v, err := c.view(ctx, source, "balance", addr)
	if err != nil {
		return nil, err
	}

	return bigIntField(v)
}

// Name returns the token name.
func (c *Client) Name(ctx context.Context, source string) (string, error) {
	v, err := c.view(ctx, source, "name")
	if err != nil {
		return "", err
	}

	return scval.StringValue(v)
}

// Symbol returns the token symbol.
func (c *Client) Symbol(ctx context.Context, source string) (string, error) {
	v, err := c.view(ctx, source, "symbol")
	if err != nil {
		return "", err
	}

	return scval.StringValue(v)
}

// VestingInfo returns the beneficiary's stored schedule.
func (c *Client) VestingInfo(ctx context.Context, source, beneficiary string) (VestingSchedule, error) {
	addr, err := scval.Address(beneficiary)
	if err != nil {
		return VestingSchedule{}, err
	}

	v, err := c.view(ctx, source, "get_vesting_info", addr)
	if err != nil {
		return VestingSchedule{}, err
	}

	return decodeVestingSchedule(v)
}

// VestedAmount returns the contract-computed vested amount for a beneficiary.
func (c *Client) VestedAmount(ctx context.Context, source, beneficiary string) (*big.Int, error) {
	addr, err := scval.Address(beneficiary)
	if err != nil {
		return nil, err
	}

	v, err := c.view(ctx, source, "get_vested_amount", addr)
	if err != nil {
		return nil, err
	}

	return bigIntField(v)
}

// Transfer sends amount from the source account to the recipient.
func (c *Client) Transfer(ctx context.Context, source, to, amount string) (pipeline.Result, error) {
	toVal, err := scval.Address(to)
	if err != nil {
		return pipeline.Result{}, err
	}
	amountVal, err := scval.Int128(amount)
	if err != nil {
		return pipeline.Result{}, err
	}

	return c.execute(ctx, pipeline.KindTransfer, source, "transfer", []pipeline.Arg{
		{Name: "to", Value: toVal},
		{Name: "amount", Value: amountVal},
	})
}

// BatchTransfer sends amounts[i] to recipients[i] in one transaction.
func (c *Client) BatchTransfer(ctx context.Context, source string, recipients, amounts []string) (pipeline.Result, error) {
	if len(recipients) == 0 || len(recipients) != len(amounts) {
		return pipeline.Result{}, fmt.Errorf(
			"recipients (%d) and amounts (%d) must be non-empty and equal length: %w",
			len(recipients), len(amounts), scval.ErrEncoding)
	}

	recipientVals := make([]xdr.ScVal, 0, len(recipients))
	amountVals := make([]xdr.ScVal, 0, len(amounts))
	for i := range recipients {
		r, err := scval.Address(recipients[i])
		if err != nil {
			return pipeline.Result{}, fmt.Errorf("recipient %d: %w", i, err)
		}
		a, err := scval.Int128(amounts[i])
		if err != nil {
			return pipeline.Result{}, fmt.Errorf("amount %d: %w", i, err)
		}
		recipientVals = append(recipientVals, r)
		amountVals = append(amountVals, a)
	}

	return c.execute(ctx, pipeline.KindBatchTransfer, source, "batch_transfer", []pipeline.Arg{
		{Name: "recipients", Value: scval.Vec(recipientVals...)},
		{Name: "amounts", Value: scval.Vec(amountVals...)},
	})
}

// Mint issues new tokens to a recipient. Admin only.
func (c *Client) Mint(ctx context.Context, source, to, amount string) (pipeline.Result, error) {
	toVal, err := scval.Address(to)
	if err != nil {
		return pipeline.Result{}, err
	}
	amountVal, err := scval.Int128(amount)
	if err != nil {
		return pipeline.Result{}, err
	}

	return c.execute(ctx, pipeline.KindMint, source, "mint", []pipeline.Arg{
		{Name: "to", Value: toVal},
		{Name: "amount", Value: amountVal},
	})
}

// Burn destroys amount from the source account's balance.
func (c *Client) Burn(ctx context.Context, source, amount string) (pipeline.Result, error) {
	amountVal, err := scval.Int128(amount)
	if err != nil {
		return pipeline.Result{}, err
	}

	return c.execute(ctx, pipeline.KindBurn, source, "burn", []pipeline.Arg{
		{Name: "amount", Value: amountVal},
	})
}

// Freeze blocks an account from transferring. Admin only.
func (c *Client) Freeze(ctx context.Context, source, account string) (pipeline.Result, error) {
	accountVal, err := scval.Address(account)
	if err != nil {
		return pipeline.Result{}, err
	}

	return c.execute(ctx, pipeline.KindFreeze, source, "freeze_account", []pipeline.Arg{
		{Name: "account", Value: accountVal},
	})
}

// Unfreeze lifts a freeze. Admin only.
func (c *Client) Unfreeze(ctx context.Context, source, account string) (pipeline.Result, error) {
	accountVal, err := scval.Address(account)
	if err != nil {
		return pipeline.Result{}, err
	}

	return c.execute(ctx, pipeline.KindUnfreeze, source, "unfreeze_account", []pipeline.Arg{
		{Name: "account", Value: accountVal},
	})
}

// CreateConditional locks amount for a recipient behind an unlock condition
// until expirationLedger.
func (c *Client) CreateConditional(
	ctx context.Context, source, to, amount string, cond Condition, expirationLedger uint32,
) (pipeline.Result, error) {
	toVal, err := scval.Address(to)
	if err != nil {
		return pipeline.Result{}, err
	}
	amountVal, err := scval.Int128(amount)
	if err != nil {
		return pipeline.Result{}, err
	}
	condVal, err := cond.encode()
	if err != nil {
		return pipeline.Result{}, err
	}

	return c.execute(ctx, pipeline.KindCreateConditional, source, "create_conditional", []pipeline.Arg{
		{Name: "to", Value: toVal},
		{Name: "amount", Value: amountVal},
		{Name: "condition", Value: condVal},
		{Name: "expiration_ledger", Value: scval.U32(expirationLedger)},
	})
}

// ExecuteConditional releases a conditional transfer. The approver is passed
// for approval-required conditions and left empty otherwise, which encodes
// as void.
func (c *Client) ExecuteConditional(ctx context.Context, source string, transferID uint32, approver string) (pipeline.Result, error) {
	approverVal := scval.Void()
	if approver != "" {
		v, err := scval.Address(approver)
		if err != nil {
			return pipeline.Result{}, fmt.Errorf("invalid approver: %w", err)
		}
		approverVal = v
	}

	return c.execute(ctx, pipeline.KindExecuteConditional, source, "execute_conditional", []pipeline.Arg{
		{Name: "transfer_id", Value: scval.U32(transferID)},
		{Name: "approver", Value: approverVal},
	})
}

// CreateVesting locks tokens on a release curve for a beneficiary. Admin only.
func (c *Client) CreateVesting(ctx context.Context, source string, params VestingParams) (pipeline.Result, error) {
	beneficiary, err := scval.Address(params.Beneficiary)
	if err != nil {
		return pipeline.Result{}, fmt.Errorf("invalid beneficiary: %w", err)
	}
	amount, err := scval.Int128(params.Amount)
	if err != nil {
		return pipeline.Result{}, err
	}
	typeSym, err := params.Type.wireSymbol()
	if err != nil {
		return pipeline.Result{}, fmt.Errorf("%w: %w", scval.ErrEncoding, err)
	}

	return c.execute(ctx, pipeline.KindCreateVesting, source, "create_vesting", []pipeline.Arg{
		{Name: "beneficiary", Value: beneficiary},
		{Name: "amount", Value: amount},
		{Name: "start_ledger", Value: scval.U32(params.StartLedger)},
		{Name: "duration_ledgers", Value: scval.U32(params.DurationLedgers)},
		{Name: "vesting_type", Value: scval.Symbol(typeSym)},
		{Name: "steps", Value: scval.U32(params.Steps)},
		{Name: "cliff_ledger", Value: scval.U32(params.CliffLedger)},
	})
}

// ClaimVesting claims everything currently claimable for the source account.
// The contract resolves the beneficiary from the invoker, so the call carries
// no arguments.
func (c *Client) ClaimVesting(ctx context.Context, source string) (pipeline.Result, error) {
	return c.execute(ctx, pipeline.KindClaimVesting, source, "claim_vesting", nil)
}

// LatestLedger exposes the remote ledger height for vesting projections.
func (c *Client) LatestLedger(ctx context.Context) (uint32, error) {
	return c.pipe.LatestLedger(ctx)
}

func (c *Client) execute(ctx context.Context, kind pipeline.Kind, source, function string, args []pipeline.Arg) (pipeline.Result, error) {
	req := pipeline.NewRequest(kind, source, function, args)
	c.lggr.Debugw("Executing contract call", "request", req.ID(), "function", function)

	return c.pipe.Execute(ctx, req)
}

// view simulates a read-only call and decodes its return value.
func (c *Client) view(ctx context.Context, source, function string, args ...xdr.ScVal) (xdr.ScVal, error) {
	sim, err := c.pipe.View(ctx, source, function, args)
	if err != nil {
		return xdr.ScVal{}, err
	}
	if sim.ResultXDR == "" {
		return xdr.ScVal{}, fmt.Errorf("%s returned no result", function)
	}

	return scval.FromBase64(sim.ResultXDR)
}
