package scval

import (
	"testing"

	"github.com/stellar/go-stellar-sdk/keypair"
	"github.com/stellar/go-stellar-sdk/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAccountAddress  = "GBZXP4PWGMIYJKGNNWI3YVBPQIOVZOLNXL7OJMI3WFQLHA4NABOTYZLR"
	testContractAddress = "CA3D5KRYM6CB7OWQ6TWYRR3Z4T7GNZLKERYNZGGA5SOAOPIFY6YQGAXE"
)

func TestAddress_Account(t *testing.T) {
	t.Parallel()

	v, err := Address(testAccountAddress)
	require.NoError(t, err)
	require.Equal(t, xdr.ScValTypeScvAddress, v.Type)
	require.NotNil(t, v.Address)
	assert.Equal(t, xdr.ScAddressTypeScAddressTypeAccount, v.Address.Type)

	got, err := AddressString(v)
	require.NoError(t, err)
	assert.Equal(t, testAccountAddress, got)
}

func TestAddress_Contract(t *testing.T) {
	t.Parallel()

	v, err := Address(testContractAddress)
	require.NoError(t, err)
	require.NotNil(t, v.Address)
	assert.Equal(t, xdr.ScAddressTypeScAddressTypeContract, v.Address.Type)

	got, err := AddressString(v)
	require.NoError(t, err)
	assert.Equal(t, testContractAddress, got)
}

func TestAddress_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		address string
	}{
		{name: "empty", address: ""},
		{name: "wrong prefix", address: "XBZXP4PWGMIYJKGNNWI3YVBPQIOVZOLNXL7OJMI3WFQLHA4NABOTZXCX"},
		{name: "truncated", address: "GBZXP4PWGMIYJKGNNWI3YVBPQIOVZOLNXL7OJMI3"},
		{name: "not strkey", address: "not-an-address"},
		{name: "secret seed", address: "SBCVMMCBEDB64TVJZFYJOJAERZC4YVVUOE6SYR2Y76CBTENGUSGWRRVO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Address(tt.address)
			require.ErrorIs(t, err, ErrEncoding)
		})
	}
}

func TestAddress_RoundTripRandom(t *testing.T) {
	t.Parallel()

	kp, err := keypair.Random()
	require.NoError(t, err)

	v, err := Address(kp.Address())
	require.NoError(t, err)

	got, err := AddressString(v)
	require.NoError(t, err)
	assert.Equal(t, kp.Address(), got)
}

func TestInt128_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		amount string
	}{
		{name: "zero", amount: "0"},
		{name: "small", amount: "250"},
		{name: "max uint64", amount: "18446744073709551615"},
		{name: "above 64-bit range", amount: "18446744073709551616"},
		{name: "well above 64-bit range", amount: "340282366920938463463374607431768211"},
		{name: "max i128", amount: "170141183460469231731687303715884105727"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v, err := Int128(tt.amount)
			require.NoError(t, err)
			require.Equal(t, xdr.ScValTypeScvI128, v.Type)

			got, err := Int128String(v)
			require.NoError(t, err)
			assert.Equal(t, tt.amount, got)
		})
	}
}

func TestInt128_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		amount string
	}{
		{name: "empty", amount: ""},
		{name: "negative", amount: "-1"},
		{name: "fractional", amount: "10.5"},
		{name: "not a number", amount: "ten"},
		{name: "exceeds i128", amount: "170141183460469231731687303715884105728"},
		{name: "hex digits", amount: "0xff"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Int128(tt.amount)
			require.ErrorIs(t, err, ErrEncoding)
		})
	}
}

func TestInt128_Deterministic(t *testing.T) {
	t.Parallel()

	// Identical input must produce byte-identical wire output.
	a, err := Int128("987654321987654321987654321")
	require.NoError(t, err)
	b, err := Int128("987654321987654321987654321")
	require.NoError(t, err)

	b64a, err := ToBase64(a)
	require.NoError(t, err)
	b64b, err := ToBase64(b)
	require.NoError(t, err)
	assert.Equal(t, b64a, b64b)

	parsed, err := FromBase64(b64a)
	require.NoError(t, err)

	got, err := Int128String(parsed)
	require.NoError(t, err)
	assert.Equal(t, "987654321987654321987654321", got)
}

func TestSymbolEnum(t *testing.T) {
	t.Parallel()

	v, err := SymbolEnum("Linear", "Linear", "Cliff", "Stepped")
	require.NoError(t, err)

	got, err := SymbolString(v)
	require.NoError(t, err)
	assert.Equal(t, "Linear", got)

	_, err = SymbolEnum("Quadratic", "Linear", "Cliff", "Stepped")
	require.ErrorIs(t, err, ErrEncoding)
}

func TestVec(t *testing.T) {
	t.Parallel()

	a, err := Int128("10")
	require.NoError(t, err)
	b, err := Int128("20")
	require.NoError(t, err)

	v := Vec(a, b)
	vals, err := VecValues(v)
	require.NoError(t, err)
	require.Len(t, vals, 2)

	first, err := Int128String(vals[0])
	require.NoError(t, err)
	assert.Equal(t, "10", first)
}

func TestVariant(t *testing.T) {
	t.Parallel()

	v := Variant("TimeBasedRelease", U32(500_000))

	vals, err := VecValues(v)
	require.NoError(t, err)
	require.Len(t, vals, 2)

	tag, err := SymbolString(vals[0])
	require.NoError(t, err)
	assert.Equal(t, "TimeBasedRelease", tag)

	n, err := Uint32(vals[1])
	require.NoError(t, err)
	assert.Equal(t, uint32(500_000), n)
}

func TestVoid(t *testing.T) {
	t.Parallel()

	v := Void()
	assert.Equal(t, xdr.ScValTypeScvVoid, v.Type)
}

func TestDecode_KindMismatch(t *testing.T) {
	t.Parallel()

	_, err := Int128String(Void())
	require.ErrorIs(t, err, ErrDecoding)

	_, err = AddressString(U32(1))
	require.ErrorIs(t, err, ErrDecoding)

	_, err = Uint32(Symbol("x"))
	require.ErrorIs(t, err, ErrDecoding)

	_, err = VecValues(Void())
	require.ErrorIs(t, err, ErrDecoding)
}
