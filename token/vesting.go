package token

import (
	"fmt"
	"math/big"

	"github.com/stellar/go-stellar-sdk/xdr"

	"github.com/tokenflex/tokenflex-go/scval"
)

// VestingType is the release curve of a vesting schedule.
type VestingType string

const (
	// VestingLinear releases pro-rata over the duration.
	VestingLinear VestingType = "linear"
	// VestingCliff releases everything at once at the cliff ledger.
	VestingCliff VestingType = "cliff"
	// VestingStepped releases in equal steps over the duration.
	VestingStepped VestingType = "stepped"
)

// wireSymbol maps the type to the contract's enum variant name.
func (t VestingType) wireSymbol() (string, error) {
	switch t {
	case VestingLinear:
		return "Linear", nil
	case VestingCliff:
		return "Cliff", nil
	case VestingStepped:
		return "Stepped", nil
	default:
		return "", fmt.Errorf("unknown vesting type %q", t)
	}
}

// vestingTypeFromWire is the inverse of wireSymbol.
func vestingTypeFromWire(sym string) (VestingType, error) {
	switch sym {
	case "Linear":
		return VestingLinear, nil
	case "Cliff":
		return VestingCliff, nil
	case "Stepped":
		return VestingStepped, nil
	default:
		return "", fmt.Errorf("unknown vesting type symbol %q", sym)
	}
}

// VestingSchedule is a read-only projection of a beneficiary's schedule as
// stored by the contract. Vested and claimable amounts are derived, never
// stored.
type VestingSchedule struct {
	Beneficiary     string
	TotalAmount     *big.Int
	StartLedger     uint32
	DurationLedgers uint32
	Type            VestingType
	ClaimedAmount   *big.Int
	Steps           uint32
	CliffLedger     uint32
}

// VestedAmount computes how much has been released at currentLedger,
// mirroring the contract's release curves exactly: integer math, floor
// division.
func (s VestingSchedule) VestedAmount(currentLedger uint32) *big.Int {
	if currentLedger < s.StartLedger {
		return big.NewInt(0)
	}
	if currentLedger >= s.StartLedger+s.DurationLedgers {
		return new(big.Int).Set(s.TotalAmount)
	}

	switch s.Type {
	case VestingLinear:
		elapsed := big.NewInt(int64(currentLedger - s.StartLedger))
		vested := new(big.Int).Mul(s.TotalAmount, elapsed)

		return vested.Quo(vested, big.NewInt(int64(s.DurationLedgers)))

	case VestingCliff:
		if currentLedger >= s.CliffLedger {
			return new(big.Int).Set(s.TotalAmount)
		}

		return big.NewInt(0)

	case VestingStepped:
		if s.Steps == 0 {
			return big.NewInt(0)
		}
		stepSize := s.DurationLedgers / s.Steps
		if stepSize == 0 {
			return new(big.Int).Set(s.TotalAmount)
		}
		completed := (currentLedger - s.StartLedger) / stepSize
		if completed >= s.Steps {
			return new(big.Int).Set(s.TotalAmount)
		}
		vested := new(big.Int).Mul(s.TotalAmount, big.NewInt(int64(completed)))

		return vested.Quo(vested, big.NewInt(int64(s.Steps)))

	default:
		return big.NewInt(0)
	}
}

// ClaimableAmount is vested minus claimed, floored at zero. An over-claimed
// schedule never reports a negative claimable balance.
func (s VestingSchedule) ClaimableAmount(currentLedger uint32) *big.Int {
	claimable := new(big.Int).Sub(s.VestedAmount(currentLedger), s.ClaimedAmount)
	if claimable.Sign() < 0 {
		return big.NewInt(0)
	}

	return claimable
}

// Claimable computes the floor-at-zero claimable amount from already-known
// vested and claimed quantities, for callers that fetched vested from the
// contract rather than deriving it locally.
func Claimable(vested, claimed *big.Int) *big.Int {
	claimable := new(big.Int).Sub(vested, claimed)
	if claimable.Sign() < 0 {
		return big.NewInt(0)
	}

	return claimable
}

// Progress reports the vested share of the total in percent, 0 when the
// schedule is empty.
func (s VestingSchedule) Progress(currentLedger uint32) float64 {
	if s.TotalAmount == nil || s.TotalAmount.Sign() <= 0 {
		return 0
	}

	vested := new(big.Float).SetInt(s.VestedAmount(currentLedger))
	total := new(big.Float).SetInt(s.TotalAmount)
	ratio, _ := new(big.Float).Quo(vested, total).Float64()

	return ratio * 100
}

// decodeVestingSchedule parses the contract's VestingSchedule struct value,
// an ScMap keyed by field-name symbols.
func decodeVestingSchedule(v xdr.ScVal) (VestingSchedule, error) {
	if v.Type != xdr.ScValTypeScvMap || v.Map == nil || *v.Map == nil {
		return VestingSchedule{}, fmt.Errorf("expected map, got %s", v.Type)
	}

	s := VestingSchedule{
		TotalAmount:   big.NewInt(0),
		ClaimedAmount: big.NewInt(0),
	}

	for _, entry := range **v.Map {
		key, err := scval.SymbolString(entry.Key)
		if err != nil {
			return VestingSchedule{}, fmt.Errorf("bad schedule key: %w", err)
		}

		switch key {
		case "beneficiary":
			if s.Beneficiary, err = scval.AddressString(entry.Val); err != nil {
				return VestingSchedule{}, fmt.Errorf("bad beneficiary: %w", err)
			}
		case "total_amount":
			if s.TotalAmount, err = bigIntField(entry.Val); err != nil {
				return VestingSchedule{}, fmt.Errorf("bad total_amount: %w", err)
			}
		case "claimed_amount":
			if s.ClaimedAmount, err = bigIntField(entry.Val); err != nil {
				return VestingSchedule{}, fmt.Errorf("bad claimed_amount: %w", err)
			}
		case "start_ledger":
			if s.StartLedger, err = scval.Uint32(entry.Val); err != nil {
				return VestingSchedule{}, fmt.Errorf("bad start_ledger: %w", err)
			}
		case "duration_ledgers":
			if s.DurationLedgers, err = scval.Uint32(entry.Val); err != nil {
				return VestingSchedule{}, fmt.Errorf("bad duration_ledgers: %w", err)
			}
		case "steps":
			if s.Steps, err = scval.Uint32(entry.Val); err != nil {
				return VestingSchedule{}, fmt.Errorf("bad steps: %w", err)
			}
		case "cliff_ledger":
			if s.CliffLedger, err = scval.Uint32(entry.Val); err != nil {
				return VestingSchedule{}, fmt.Errorf("bad cliff_ledger: %w", err)
			}
		case "vesting_type":
			sym, serr := scval.SymbolString(entry.Val)
			if serr != nil {
				return VestingSchedule{}, fmt.Errorf("bad vesting_type: %w", serr)
			}
			if s.Type, err = vestingTypeFromWire(sym); err != nil {
				return VestingSchedule{}, err
			}
		}
	}

	return s, nil
}

func bigIntField(v xdr.ScVal) (*big.Int, error) {
	str, err := scval.Int128String(v)
	if err != nil {
		return nil, err
	}

	n, ok := new(big.Int).SetString(str, 10)
	if !ok {
		return nil, fmt.Errorf("amount %q is not an integer", str)
	}

	return n, nil
}
