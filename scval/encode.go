// Package scval converts domain-level call parameters (addresses, integer
// amounts, enum variants, vectors) into the Soroban ScVal wire representation
// and back. All functions are deterministic and side-effect free.
package scval

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/stellar/go-stellar-sdk/strkey"
	"github.com/stellar/go-stellar-sdk/xdr"
)

// ErrEncoding indicates a local input that cannot be represented on the wire.
// All encoding failures wrap this sentinel.
var ErrEncoding = errors.New("scval: encoding error")

// maxInt128 is 2^127 - 1, the largest value representable as an i128.
var maxInt128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))

// Address encodes a strkey-encoded account (G...) or contract (C...) address.
func Address(address string) (xdr.ScVal, error) {
	if _, err := strkey.Decode(strkey.VersionByteAccountID, address); err == nil {
		accountID, err := xdr.AddressToAccountId(address)
		if err != nil {
			return xdr.ScVal{}, fmt.Errorf("invalid account address %q: %w", address, ErrEncoding)
		}
		scAddr := xdr.ScAddress{
			Type:      xdr.ScAddressTypeScAddressTypeAccount,
			AccountId: &accountID,
		}

		return xdr.ScVal{Type: xdr.ScValTypeScvAddress, Address: &scAddr}, nil
	}

	if raw, err := strkey.Decode(strkey.VersionByteContract, address); err == nil {
		var contractID xdr.ContractId
		copy(contractID[:], raw)
		scAddr := xdr.ScAddress{
			Type:       xdr.ScAddressTypeScAddressTypeContract,
			ContractId: &contractID,
		}

		return xdr.ScVal{Type: xdr.ScValTypeScvAddress, Address: &scAddr}, nil
	}

	return xdr.ScVal{}, fmt.Errorf("invalid address %q: wrong length or prefix: %w", address, ErrEncoding)
}

// Int128 encodes a non-negative decimal integer string as an i128. The full
// i128 range above 64 bits is supported without precision loss.
func Int128(amount string) (xdr.ScVal, error) {
	v, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return xdr.ScVal{}, fmt.Errorf("amount %q is not a decimal integer: %w", amount, ErrEncoding)
	}
	if v.Sign() < 0 {
		return xdr.ScVal{}, fmt.Errorf("amount %q is negative: %w", amount, ErrEncoding)
	}
	if v.Cmp(maxInt128) > 0 {
		return xdr.ScVal{}, fmt.Errorf("amount %q exceeds i128 range: %w", amount, ErrEncoding)
	}

	lo := new(big.Int).And(v, new(big.Int).SetUint64(^uint64(0)))
	hi := new(big.Int).Rsh(v, 64)

	parts := xdr.Int128Parts{
		Hi: xdr.Int64(hi.Int64()),
		Lo: xdr.Uint64(lo.Uint64()),
	}

	return xdr.ScVal{Type: xdr.ScValTypeScvI128, I128: &parts}, nil
}

// U32 encodes an unsigned 32-bit integer.
func U32(n uint32) xdr.ScVal {
	v := xdr.Uint32(n)
	return xdr.ScVal{Type: xdr.ScValTypeScvU32, U32: &v}
}

// Symbol encodes a plain symbol value.
func Symbol(s string) xdr.ScVal {
	sym := xdr.ScSymbol(s)
	return xdr.ScVal{Type: xdr.ScValTypeScvSymbol, Sym: &sym}
}

// SymbolEnum encodes a symbol restricted to a closed set of variant names.
func SymbolEnum(s string, allowed ...string) (xdr.ScVal, error) {
	for _, a := range allowed {
		if s == a {
			return Symbol(s), nil
		}
	}

	return xdr.ScVal{}, fmt.Errorf("symbol %q is not one of %v: %w", s, allowed, ErrEncoding)
}

// String encodes a string value.
func String(s string) xdr.ScVal {
	str := xdr.ScString(s)
	return xdr.ScVal{Type: xdr.ScValTypeScvString, Str: &str}
}

// Vec encodes an ordered vector of values.
func Vec(vals ...xdr.ScVal) xdr.ScVal {
	vec := xdr.ScVec(vals)
	vecPtr := &vec
	return xdr.ScVal{Type: xdr.ScValTypeScvVec, Vec: &vecPtr}
}

// Void encodes the unit value, used for absent optional arguments.
func Void() xdr.ScVal {
	return xdr.ScVal{Type: xdr.ScValTypeScvVoid}
}

// Variant encodes a tagged union value as the Soroban SDK does for enum
// variants carrying data: a vector of the variant symbol followed by its
// payload values.
func Variant(name string, payload ...xdr.ScVal) xdr.ScVal {
	vals := append([]xdr.ScVal{Symbol(name)}, payload...)
	return Vec(vals...)
}
