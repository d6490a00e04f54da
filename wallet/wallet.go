// Package wallet defines the external wallet capability used to sign
// transaction envelopes, and a keypair-backed implementation for dev and
// server-side use. Browser-extension wallets implement the same interface
// behind an IPC bridge.
package wallet

import (
	"context"
	"errors"
)

var (
	// ErrUserRejected indicates the wallet declined to sign, typically a
	// user cancellation. Terminal for the current operation; never retried.
	ErrUserRejected = errors.New("wallet: signing rejected")

	// ErrWalletUnavailable indicates the wallet capability could not be
	// reached at all.
	ErrWalletUnavailable = errors.New("wallet: unavailable")
)

// NetworkInfo identifies the network the wallet is currently bound to.
type NetworkInfo struct {
	// Passphrase is the network passphrase, the canonical network identity
	// on Stellar.
	Passphrase string
	Name       string
}

// Wallet is the external signing capability. Signing may suspend on user
// interaction for an arbitrarily long time; callers bound it with ctx if
// they must.
type Wallet interface {
	// IsConnected reports whether the wallet capability is reachable and
	// has an active account.
	IsConnected(ctx context.Context) (bool, error)

	// IsAuthorized reports whether this application is allowed to use the
	// wallet.
	IsAuthorized(ctx context.Context) (bool, error)

	// NetworkInfo returns the wallet's current network binding.
	NetworkInfo(ctx context.Context) (NetworkInfo, error)

	// Address returns the active account address.
	Address(ctx context.Context) (string, error)

	// SignTransaction signs a base64 transaction envelope scoped to the
	// given network passphrase and returns the signed base64 envelope.
	// Fails with ErrUserRejected or ErrWalletUnavailable.
	SignTransaction(ctx context.Context, envelopeXDR, networkPassphrase string) (string, error)
}
