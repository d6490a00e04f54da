package wallet

import (
	"testing"

	"github.com/stellar/go-stellar-sdk/keypair"
	"github.com/stellar/go-stellar-sdk/txnbuild"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testnetPassphrase = "Test SDF Network ; September 2015"

func testNetwork() NetworkInfo {
	return NetworkInfo{Passphrase: testnetPassphrase, Name: "Testnet"}
}

func paymentEnvelope(t *testing.T, source *keypair.Full) string {
	t.Helper()

	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount: &txnbuild.SimpleAccount{
			AccountID: source.Address(),
			Sequence:  1,
		},
		IncrementSequenceNum: true,
		Operations: []txnbuild.Operation{
			&txnbuild.Payment{
				Destination: source.Address(),
				Amount:      "10",
				Asset:       txnbuild.NativeAsset{},
			},
		},
		BaseFee:       txnbuild.MinBaseFee,
		Preconditions: txnbuild.Preconditions{TimeBounds: txnbuild.NewTimeout(300)},
	})
	require.NoError(t, err)

	envelope, err := tx.Base64()
	require.NoError(t, err)

	return envelope
}

func TestKeypairWallet_SignTransaction(t *testing.T) {
	t.Parallel()

	kp, err := keypair.Random()
	require.NoError(t, err)

	w := NewKeypairWallet(kp, testNetwork())

	envelope := paymentEnvelope(t, kp)
	signed, err := w.SignTransaction(t.Context(), envelope, testnetPassphrase)
	require.NoError(t, err)
	assert.NotEqual(t, envelope, signed)

	generic, err := txnbuild.TransactionFromXDR(signed)
	require.NoError(t, err)
	tx, ok := generic.Transaction()
	require.True(t, ok)
	assert.Len(t, tx.Signatures(), 1)
}

func TestKeypairWallet_SignTransaction_RejectsWrongNetwork(t *testing.T) {
	t.Parallel()

	kp, err := keypair.Random()
	require.NoError(t, err)

	w := NewKeypairWallet(kp, testNetwork())

	_, err = w.SignTransaction(t.Context(), paymentEnvelope(t, kp), "Public Global Stellar Network ; September 2015")
	require.ErrorIs(t, err, ErrUserRejected)
}

func TestKeypairWallet_AlwaysConnectedAndAuthorized(t *testing.T) {
	t.Parallel()

	kp, err := keypair.Random()
	require.NoError(t, err)

	w := NewKeypairWallet(kp, testNetwork())

	connected, err := w.IsConnected(t.Context())
	require.NoError(t, err)
	assert.True(t, connected)

	authorized, err := w.IsAuthorized(t.Context())
	require.NoError(t, err)
	assert.True(t, authorized)

	addr, err := w.Address(t.Context())
	require.NoError(t, err)
	assert.Equal(t, kp.Address(), addr)

	network, err := w.NetworkInfo(t.Context())
	require.NoError(t, err)
	assert.Equal(t, testnetPassphrase, network.Passphrase)
}

func TestKeypairFromHex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		hexKey  string
		wantErr string
	}{
		{
			name:   "valid 32 byte seed",
			hexKey: "0000000000000000000000000000000000000000000000000000000000000001",
		},
		{
			name:   "valid with 0x prefix",
			hexKey: "0x0000000000000000000000000000000000000000000000000000000000000001",
		},
		{
			name:    "not hex",
			hexKey:  "zz00",
			wantErr: "failed to decode hex key",
		},
		{
			name:    "wrong length",
			hexKey:  "deadbeef",
			wantErr: "expected 32 bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := KeypairFromHex(tt.hexKey)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, got)
		})
	}
}

func TestKeypairFromHex_SamePrefixStripsToSameKey(t *testing.T) {
	t.Parallel()

	const seed = "0000000000000000000000000000000000000000000000000000000000000001"

	plain, err := KeypairFromHex(seed)
	require.NoError(t, err)
	prefixed, err := KeypairFromHex("0x" + seed)
	require.NoError(t, err)

	assert.Equal(t, plain.Address(), prefixed.Address())
}
