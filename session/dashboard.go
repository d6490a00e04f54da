package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tokenflex/tokenflex-go/pkg/logger"
	"github.com/tokenflex/tokenflex-go/pipeline"
	"github.com/tokenflex/tokenflex-go/scval"
	"github.com/tokenflex/tokenflex-go/token"
	"github.com/tokenflex/tokenflex-go/wallet"
)

// defaultSettleDelay is how long to wait after a confirmed spend before
// refetching the authoritative balance, giving the remote service time to
// reflect the applied ledger.
const defaultSettleDelay = 2 * time.Second

var (
	// ErrNotConnected indicates an operation was attempted without an
	// active session.
	ErrNotConnected = errors.New("session: not connected")

	// ErrWrongNetwork indicates the wallet is bound to a different network
	// than the one the dashboard is configured for.
	ErrWrongNetwork = errors.New("session: wallet is on the wrong network")

	// ErrInsufficientBalance indicates a spend larger than the session's
	// known balance, caught before any encoding or network call.
	ErrInsufficientBalance = errors.New("session: insufficient balance")
)

// Config holds the dashboard configuration.
type Config struct {
	// Optional: The contract admin address. Sessions connecting with this
	// address may perform admin-only operations.
	AdminAddress string

	// Optional: The network passphrase the dashboard expects. When set, a
	// wallet bound to any other network is refused at connect.
	NetworkPassphrase string

	// Optional: Delay before the post-spend balance refetch. Defaults to 2s.
	SettleDelay time.Duration
}

// Dashboard gates token operations on the wallet session: operations require
// a connected session, admin-only operations require the admin address, and
// spends are pre-checked against the known balance before anything is encoded
// or sent.
type Dashboard struct {
	client *token.Client
	wallet wallet.Wallet
	store  *Store
	lggr   logger.Logger
	cfg    Config
}

// New creates a Dashboard with an empty session.
func New(cfg Config, client *token.Client, w wallet.Wallet, lggr logger.Logger) *Dashboard {
	if cfg.SettleDelay == 0 {
		cfg.SettleDelay = defaultSettleDelay
	}

	return &Dashboard{
		client: client,
		wallet: w,
		store:  NewStore(),
		lggr:   lggr.Named("session"),
		cfg:    cfg,
	}
}

// Session returns a snapshot of the current session.
func (d *Dashboard) Session() Session {
	return d.store.Snapshot()
}

// Connect probes the wallet, establishes the session and fetches the initial
// balance. A failed balance fetch does not fail the connect; the balance just
// stays unknown until the next refresh.
func (d *Dashboard) Connect(ctx context.Context) (Session, error) {
	connected, err := d.wallet.IsConnected(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", wallet.ErrWalletUnavailable, err)
	}
	if !connected {
		return Session{}, wallet.ErrWalletUnavailable
	}

	authorized, err := d.wallet.IsAuthorized(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", wallet.ErrWalletUnavailable, err)
	}
	if !authorized {
		return Session{}, fmt.Errorf("%w: application not authorized", wallet.ErrUserRejected)
	}

	network, err := d.wallet.NetworkInfo(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", wallet.ErrWalletUnavailable, err)
	}
	if d.cfg.NetworkPassphrase != "" && network.Passphrase != d.cfg.NetworkPassphrase {
		return Session{}, fmt.Errorf("%w: wallet is on %q", ErrWrongNetwork, network.Name)
	}

	address, err := d.wallet.Address(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", wallet.ErrWalletUnavailable, err)
	}

	d.store.Set(Session{
		Address:   address,
		Connected: true,
		IsAdmin:   d.cfg.AdminAddress != "" && address == d.cfg.AdminAddress,
		Network:   network,
	})

	// Token metadata and balance are best effort: a failed fetch leaves
	// them unset and the session still connects.
	d.fetchTokenInfo(ctx, address)
	if _, err := d.RefreshBalance(ctx); err != nil {
		d.lggr.Warnw("Initial balance fetch failed", "address", address, "error", err)
	}

	s := d.store.Snapshot()
	d.lggr.Infow("Wallet connected",
		"address", s.Address, "network", s.Network.Name, "admin", s.IsAdmin)

	return s, nil
}

// fetchTokenInfo loads the token name and symbol into the session.
func (d *Dashboard) fetchTokenInfo(ctx context.Context, address string) {
	name, err := d.client.Name(ctx, address)
	if err != nil {
		d.lggr.Warnw("Token name fetch failed", "error", err)
		return
	}
	symbol, err := d.client.Symbol(ctx, address)
	if err != nil {
		d.lggr.Warnw("Token symbol fetch failed", "error", err)
		return
	}

	d.store.Update(func(s *Session) {
		s.TokenName = name
		s.TokenSymbol = symbol
	})
}

// Disconnect drops the session. Idempotent.
func (d *Dashboard) Disconnect() {
	d.store.Clear()
	d.lggr.Infow("Wallet disconnected")
}

// RefreshBalance fetches the authoritative balance and stores it.
func (d *Dashboard) RefreshBalance(ctx context.Context) (decimal.Decimal, error) {
	s := d.store.Snapshot()
	if !s.Connected {
		return decimal.Zero, ErrNotConnected
	}

	raw, err := d.client.Balance(ctx, s.Address, s.Address)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch balance: %w", err)
	}

	balance := decimal.NewFromBigInt(raw, 0)
	d.store.Update(func(s *Session) {
		s.Balance = balance
		s.BalanceKnown = true
	})

	return balance, nil
}

// Transfer spends from the session's account.
func (d *Dashboard) Transfer(ctx context.Context, to, amount string) (pipeline.Result, error) {
	return d.spend(ctx, pipeline.KindTransfer, []string{amount},
		func(source string) (pipeline.Result, error) {
			return d.client.Transfer(ctx, source, to, amount)
		})
}

// BatchTransfer spends the sum of amounts from the session's account. The
// sum is checked against the known balance before anything is encoded.
func (d *Dashboard) BatchTransfer(ctx context.Context, recipients, amounts []string) (pipeline.Result, error) {
	return d.spend(ctx, pipeline.KindBatchTransfer, amounts,
		func(source string) (pipeline.Result, error) {
			return d.client.BatchTransfer(ctx, source, recipients, amounts)
		})
}

// Burn spends from the session's account.
func (d *Dashboard) Burn(ctx context.Context, amount string) (pipeline.Result, error) {
	return d.spend(ctx, pipeline.KindBurn, []string{amount},
		func(source string) (pipeline.Result, error) {
			return d.client.Burn(ctx, source, amount)
		})
}

// Mint issues tokens. Admin only.
func (d *Dashboard) Mint(ctx context.Context, to, amount string) (pipeline.Result, error) {
	s, err := d.require(pipeline.KindMint)
	if err != nil {
		return pipeline.Result{}, err
	}

	res, err := d.client.Mint(ctx, s.Address, to, amount)
	if err != nil {
		return res, err
	}

	// Minting to the session's own account changes its balance too.
	if to == s.Address {
		d.settle(ctx)
	}

	return res, nil
}

// Freeze blocks an account. Admin only.
func (d *Dashboard) Freeze(ctx context.Context, account string) (pipeline.Result, error) {
	s, err := d.require(pipeline.KindFreeze)
	if err != nil {
		return pipeline.Result{}, err
	}

	return d.client.Freeze(ctx, s.Address, account)
}

// Unfreeze lifts a freeze. Admin only.
func (d *Dashboard) Unfreeze(ctx context.Context, account string) (pipeline.Result, error) {
	s, err := d.require(pipeline.KindUnfreeze)
	if err != nil {
		return pipeline.Result{}, err
	}

	return d.client.Unfreeze(ctx, s.Address, account)
}

// CreateConditional locks a spend behind an unlock condition.
func (d *Dashboard) CreateConditional(
	ctx context.Context, to, amount string, cond token.Condition, expirationLedger uint32,
) (pipeline.Result, error) {
	return d.spend(ctx, pipeline.KindCreateConditional, []string{amount},
		func(source string) (pipeline.Result, error) {
			return d.client.CreateConditional(ctx, source, to, amount, cond, expirationLedger)
		})
}

// ExecuteConditional releases a conditional transfer.
func (d *Dashboard) ExecuteConditional(ctx context.Context, transferID uint32, approver string) (pipeline.Result, error) {
	s, err := d.require(pipeline.KindExecuteConditional)
	if err != nil {
		return pipeline.Result{}, err
	}

	res, err := d.client.ExecuteConditional(ctx, s.Address, transferID, approver)
	if err != nil {
		return res, err
	}
	d.settle(ctx)

	return res, nil
}

// CreateVesting locks tokens on a release curve. Admin only.
func (d *Dashboard) CreateVesting(ctx context.Context, params token.VestingParams) (pipeline.Result, error) {
	return d.spend(ctx, pipeline.KindCreateVesting, []string{params.Amount},
		func(source string) (pipeline.Result, error) {
			return d.client.CreateVesting(ctx, source, params)
		})
}

// ClaimVesting claims the session's claimable vested tokens.
func (d *Dashboard) ClaimVesting(ctx context.Context) (pipeline.Result, error) {
	s, err := d.require(pipeline.KindClaimVesting)
	if err != nil {
		return pipeline.Result{}, err
	}

	res, err := d.client.ClaimVesting(ctx, s.Address)
	if err != nil {
		return res, err
	}
	d.settle(ctx)

	return res, nil
}

// VestingSchedule returns the session account's schedule.
func (d *Dashboard) VestingSchedule(ctx context.Context) (token.VestingSchedule, error) {
	s := d.store.Snapshot()
	if !s.Connected {
		return token.VestingSchedule{}, ErrNotConnected
	}

	return d.client.VestingInfo(ctx, s.Address, s.Address)
}

// require checks the session gate for a kind: a session must exist, and
// admin-only kinds require the admin address. Checked locally, before any
// encoding or network traffic.
func (d *Dashboard) require(kind pipeline.Kind) (Session, error) {
	s := d.store.Snapshot()
	if !s.Connected {
		return Session{}, ErrNotConnected
	}
	if kind.AdminOnly() && !s.IsAdmin {
		return Session{}, fmt.Errorf("%w: %s requires the admin account", pipeline.ErrNotAuthorized, kind)
	}

	return s, nil
}

// spend runs a balance-affecting operation: gate, pre-flight the total
// against the known balance, execute, optimistically decrement, then refetch
// the authoritative balance after the settle delay.
func (d *Dashboard) spend(
	ctx context.Context, kind pipeline.Kind, amounts []string,
	run func(source string) (pipeline.Result, error),
) (pipeline.Result, error) {
	s, err := d.require(kind)
	if err != nil {
		return pipeline.Result{}, err
	}

	total, err := sumAmounts(amounts)
	if err != nil {
		return pipeline.Result{}, err
	}
	if s.BalanceKnown && total.GreaterThan(s.Balance) {
		return pipeline.Result{}, fmt.Errorf(
			"%w: need %s, have %s", ErrInsufficientBalance, total, s.Balance)
	}

	res, err := run(s.Address)
	if err != nil {
		return res, err
	}

	d.store.Update(func(s *Session) {
		if s.BalanceKnown {
			s.Balance = s.Balance.Sub(total)
		}
	})
	d.settle(ctx)

	return res, nil
}

// settle waits for the ledger state to propagate, then replaces the
// optimistic balance with the authoritative one. Failures keep the optimistic
// value; the next refresh corrects it.
func (d *Dashboard) settle(ctx context.Context) {
	timer := time.NewTimer(d.cfg.SettleDelay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		return
	}

	if _, err := d.RefreshBalance(ctx); err != nil {
		d.lggr.Warnw("Post-operation balance refresh failed", "error", err)
	}
}

// sumAmounts parses and sums decimal integer amount strings.
func sumAmounts(amounts []string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, a := range amounts {
		v, err := decimal.NewFromString(a)
		if err != nil {
			return decimal.Zero, fmt.Errorf("amount %q is not a number: %w", a, scval.ErrEncoding)
		}
		if v.IsNegative() || !v.IsInteger() {
			return decimal.Zero, fmt.Errorf("amount %q must be a non-negative integer: %w", a, scval.ErrEncoding)
		}
		total = total.Add(v)
	}

	return total, nil
}
