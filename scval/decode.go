package scval

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/stellar/go-stellar-sdk/strkey"
	"github.com/stellar/go-stellar-sdk/xdr"
)

// ErrDecoding indicates a wire value that does not match the expected kind.
var ErrDecoding = errors.New("scval: decoding error")

// AddressString decodes an address value back to its strkey form.
func AddressString(v xdr.ScVal) (string, error) {
	if v.Type != xdr.ScValTypeScvAddress || v.Address == nil {
		return "", fmt.Errorf("expected address, got %s: %w", v.Type, ErrDecoding)
	}

	switch v.Address.Type {
	case xdr.ScAddressTypeScAddressTypeAccount:
		return v.Address.AccountId.Address(), nil
	case xdr.ScAddressTypeScAddressTypeContract:
		return strkey.Encode(strkey.VersionByteContract, v.Address.ContractId[:])
	default:
		return "", fmt.Errorf("unsupported address type %d: %w", v.Address.Type, ErrDecoding)
	}
}

// Int128String decodes an i128 value to its decimal string form.
func Int128String(v xdr.ScVal) (string, error) {
	if v.Type != xdr.ScValTypeScvI128 || v.I128 == nil {
		return "", fmt.Errorf("expected i128, got %s: %w", v.Type, ErrDecoding)
	}

	return Int128PartsString(*v.I128), nil
}

// Int128PartsString converts raw i128 parts to a decimal string. Negative
// values reconstruct correctly from the two's-complement hi word.
func Int128PartsString(parts xdr.Int128Parts) string {
	hi := big.NewInt(int64(parts.Hi))
	lo := new(big.Int).SetUint64(uint64(parts.Lo))

	v := new(big.Int).Lsh(hi, 64)
	v.Add(v, lo)

	return v.String()
}

// Uint32 decodes a u32 value.
func Uint32(v xdr.ScVal) (uint32, error) {
	if v.Type != xdr.ScValTypeScvU32 || v.U32 == nil {
		return 0, fmt.Errorf("expected u32, got %s: %w", v.Type, ErrDecoding)
	}

	return uint32(*v.U32), nil
}

// SymbolString decodes a symbol value.
func SymbolString(v xdr.ScVal) (string, error) {
	if v.Type != xdr.ScValTypeScvSymbol || v.Sym == nil {
		return "", fmt.Errorf("expected symbol, got %s: %w", v.Type, ErrDecoding)
	}

	return string(*v.Sym), nil
}

// StringValue decodes a string value, as returned by the token name and
// symbol views.
func StringValue(v xdr.ScVal) (string, error) {
	if v.Type != xdr.ScValTypeScvString || v.Str == nil {
		return "", fmt.Errorf("expected string, got %s: %w", v.Type, ErrDecoding)
	}

	return string(*v.Str), nil
}

// VecValues decodes a vector value into its elements.
func VecValues(v xdr.ScVal) ([]xdr.ScVal, error) {
	if v.Type != xdr.ScValTypeScvVec || v.Vec == nil || *v.Vec == nil {
		return nil, fmt.Errorf("expected vec, got %s: %w", v.Type, ErrDecoding)
	}

	return []xdr.ScVal(**v.Vec), nil
}

// FromBase64 parses a base64-encoded ScVal, as carried in simulation and
// transaction result payloads.
func FromBase64(b64 string) (xdr.ScVal, error) {
	var v xdr.ScVal
	if err := xdr.SafeUnmarshalBase64(b64, &v); err != nil {
		return xdr.ScVal{}, fmt.Errorf("failed to parse result payload: %w", err)
	}

	return v, nil
}

// ToBase64 renders an ScVal in its base64 XDR form.
func ToBase64(v xdr.ScVal) (string, error) {
	b64, err := xdr.MarshalBase64(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal scval: %w", err)
	}

	return b64, nil
}
