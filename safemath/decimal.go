// Package safemath implements ArchiveChain's fixed-point decimal arithmetic
// (spec §4.2, design note §9): every monetary quantity is represented as an
// integer scaled by 10^6 (6 fractional digits, minimum unit 0.000001 ARC),
// stored in a math/big.Int so the scaled value never itself overflows a
// machine word — the hard bounds below are enforced explicitly rather than
// relied upon implicitly.
package safemath

import (
	"fmt"
	"math/big"
	"strings"
)

// fractionalDigits is 6; scaleFactor (10^6) is the number of minimum units
// (0.000001 ARC) per whole ARC.
const fractionalDigits = 6

var scaleFactor = new(big.Int).Exp(big.NewInt(10), big.NewInt(fractionalDigits), nil)

// Hard bounds (spec §4.2).
var (
	MaxTokenSupply  = FromWhole(1_000_000_000)
	MaxSingleAmount = FromWhole(100_000_000)
	MaxRewardAmount = FromWhole(10_000)
	MinAmount       = Decimal{v: big.NewInt(1)}
	Zero            = Decimal{v: big.NewInt(0)}
)

// Decimal is a fixed-point value with 6 fractional digits, stored as
// value * 10^6 in v.
type Decimal struct {
	v *big.Int
}

func wrap(v *big.Int) Decimal {
	return Decimal{v: v}
}

// FromWhole constructs a Decimal from an integer count of whole ARC.
func FromWhole(n int64) Decimal {
	return Decimal{v: new(big.Int).Mul(big.NewInt(n), scaleFactor)}
}

// FromScaledUnits constructs a Decimal directly from its 10^6-scaled integer
// representation (i.e. units of 0.000001 ARC).
func FromScaledUnits(units int64) Decimal {
	return Decimal{v: big.NewInt(units)}
}

// Parse parses a decimal string ("123", "123.45", "-0.000001") into a
// Decimal, truncating (banker round-down, per spec §4.2) any digits beyond
// the 6th fractional place.
func Parse(s string) (Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Decimal{}, newErr(ErrInvalidAmount, "empty decimal string")
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if !isDigits(whole) || (hasFrac && !isDigits(frac)) {
		return Decimal{}, newErr(ErrInvalidAmount, fmt.Sprintf("malformed decimal %q", s))
	}
	if len(frac) > fractionalDigits {
		frac = frac[:fractionalDigits] // truncate extra precision: round down
	}
	for len(frac) < fractionalDigits {
		frac += "0"
	}

	wholeInt, ok := new(big.Int).SetString(whole, 10)
	if !ok {
		return Decimal{}, newErr(ErrInvalidAmount, fmt.Sprintf("malformed decimal %q", s))
	}
	fracInt, ok := new(big.Int).SetString(frac, 10)
	if !ok {
		return Decimal{}, newErr(ErrInvalidAmount, fmt.Sprintf("malformed decimal %q", s))
	}

	v := new(big.Int).Mul(wholeInt, scaleFactor)
	v.Add(v, fracInt)
	if neg {
		v.Neg(v)
	}
	return Decimal{v: v}, nil
}

func isDigits(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// String renders the canonical decimal string form used by the persistence
// format (spec §6): always 6 fractional digits.
func (d Decimal) String() string {
	v := new(big.Int).Set(d.v)
	neg := v.Sign() < 0
	if neg {
		v.Neg(v)
	}
	whole := new(big.Int)
	frac := new(big.Int)
	whole.QuoRem(v, scaleFactor, frac)
	sign := ""
	if neg && v.Sign() != 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s%s.%06s", sign, whole.String(), frac.String())
}

// MarshalJSON renders the Decimal as a quoted decimal string.
func (d Decimal) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON parses a quoted decimal string.
func (d *Decimal) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Cmp compares d to other: -1, 0, or 1.
func (d Decimal) Cmp(other Decimal) int {
	return d.v.Cmp(other.v)
}

// Sign returns -1, 0, or 1.
func (d Decimal) Sign() int {
	return d.v.Sign()
}

// IsZero reports whether d is exactly zero.
func (d Decimal) IsZero() bool {
	return d.v.Sign() == 0
}

// ScaledUnits returns the raw 10^6-scaled integer value.
func (d Decimal) ScaledUnits() *big.Int {
	return new(big.Int).Set(d.v)
}
