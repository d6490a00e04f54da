package wallet

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/stellar/go-stellar-sdk/keypair"
	"github.com/stellar/go-stellar-sdk/txnbuild"
)

// KeypairWallet implements Wallet with a local keypair.Full. It is always
// connected and authorized; it exists for development and server-side
// signing where no extension wallet is present.
type KeypairWallet struct {
	kp      *keypair.Full
	network NetworkInfo
}

var _ Wallet = (*KeypairWallet)(nil)

// NewKeypairWallet creates a Wallet from a keypair bound to the given
// network.
func NewKeypairWallet(kp *keypair.Full, network NetworkInfo) *KeypairWallet {
	return &KeypairWallet{kp: kp, network: network}
}

// NewKeypairWalletFromHex creates a Wallet from a hex-encoded 32-byte seed.
// The hex string can be with or without the "0x" prefix.
func NewKeypairWalletFromHex(hexSeed string, network NetworkInfo) (*KeypairWallet, error) {
	kp, err := KeypairFromHex(hexSeed)
	if err != nil {
		return nil, fmt.Errorf("failed to create keypair from hex: %w", err)
	}

	return NewKeypairWallet(kp, network), nil
}

// IsConnected always reports true for a local keypair.
func (w *KeypairWallet) IsConnected(_ context.Context) (bool, error) {
	return true, nil
}

// IsAuthorized always reports true for a local keypair.
func (w *KeypairWallet) IsAuthorized(_ context.Context) (bool, error) {
	return true, nil
}

// NetworkInfo returns the network the wallet was constructed with.
func (w *KeypairWallet) NetworkInfo(_ context.Context) (NetworkInfo, error) {
	return w.network, nil
}

// Address returns the Stellar address derived from the keypair's public key.
func (w *KeypairWallet) Address(_ context.Context) (string, error) {
	return w.kp.Address(), nil
}

// SignTransaction signs the base64 envelope. The passphrase must match the
// wallet's network binding; a mismatch would produce a signature valid on
// the wrong network.
func (w *KeypairWallet) SignTransaction(_ context.Context, envelopeXDR, networkPassphrase string) (string, error) {
	if networkPassphrase != w.network.Passphrase {
		return "", fmt.Errorf("network mismatch: wallet is bound to %q: %w", w.network.Name, ErrUserRejected)
	}

	generic, err := txnbuild.TransactionFromXDR(envelopeXDR)
	if err != nil {
		return "", fmt.Errorf("failed to parse envelope: %w", err)
	}

	tx, ok := generic.Transaction()
	if !ok {
		return "", fmt.Errorf("envelope is not a simple transaction: %w", ErrUserRejected)
	}

	signed, err := tx.Sign(networkPassphrase, w.kp)
	if err != nil {
		return "", fmt.Errorf("failed to sign envelope: %w", err)
	}

	signedXDR, err := signed.Base64()
	if err != nil {
		return "", fmt.Errorf("failed to encode signed envelope: %w", err)
	}

	return signedXDR, nil
}

// KeypairFromHex creates a keypair.Full from a hex-encoded private key.
// The hex string can be with or without the "0x" prefix.
func KeypairFromHex(hexKey string) (*keypair.Full, error) {
	hexKey = strings.TrimPrefix(hexKey, "0x")

	rawSeed, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode hex key: %w", err)
	}

	// Stellar keypairs use 32-byte seeds
	if len(rawSeed) != 32 {
		return nil, fmt.Errorf("invalid key length: expected 32 bytes, got %d", len(rawSeed))
	}

	var seed [32]byte
	copy(seed[:], rawSeed)

	kp, err := keypair.FromRawSeed(seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create keypair from seed: %w", err)
	}

	return kp, nil
}
