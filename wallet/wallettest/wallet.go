// Package wallettest provides a scripted Wallet for tests.
package wallettest

import (
	"context"
	"sync"

	"github.com/tokenflex/tokenflex-go/wallet"
)

// Wallet is a scripted wallet.Wallet. Zero value is a connected, authorized
// wallet that signs by echoing the envelope back with a marker suffix.
type Wallet struct {
	mu        sync.Mutex
	signCalls int

	Disconnected bool
	Unauthorized bool

	AccountAddress string
	Network        wallet.NetworkInfo

	// SignErr makes SignTransaction fail, e.g. wallet.ErrUserRejected.
	SignErr error
	// SignedXDR overrides the default echoed signature result.
	SignedXDR string
}

var _ wallet.Wallet = (*Wallet)(nil)

func (w *Wallet) IsConnected(_ context.Context) (bool, error) {
	return !w.Disconnected, nil
}

func (w *Wallet) IsAuthorized(_ context.Context) (bool, error) {
	return !w.Unauthorized, nil
}

func (w *Wallet) NetworkInfo(_ context.Context) (wallet.NetworkInfo, error) {
	return w.Network, nil
}

func (w *Wallet) Address(_ context.Context) (string, error) {
	return w.AccountAddress, nil
}

func (w *Wallet) SignTransaction(_ context.Context, envelopeXDR, _ string) (string, error) {
	w.mu.Lock()
	w.signCalls++
	w.mu.Unlock()

	if w.SignErr != nil {
		return "", w.SignErr
	}
	if w.SignedXDR != "" {
		return w.SignedXDR, nil
	}

	return envelopeXDR + "+sig", nil
}

// SignCalls returns how many times SignTransaction was invoked.
func (w *Wallet) SignCalls() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.signCalls
}
