package safemath

import "math/big"

// checkSupplyBound rejects a value outside [0, MaxTokenSupply]; amounts in
// ArchiveChain are never negative once past the point of use (a negative
// requested transfer etc. is rejected earlier as InvalidAmount).
func checkSupplyBound(v Decimal) error {
	if v.Sign() < 0 {
		return newErr(ErrUnderflow, "result is negative")
	}
	if v.Cmp(MaxTokenSupply) > 0 {
		return newErr(ErrOverflow, "result exceeds max token supply")
	}
	return nil
}

// Add returns a+b, failing with Overflow if the sum would exceed
// MaxTokenSupply.
func Add(a, b Decimal) (Decimal, error) {
	sum := wrap(new(big.Int).Add(a.v, b.v))
	if err := checkSupplyBound(sum); err != nil {
		return Decimal{}, err
	}
	return sum, nil
}

// Subtract returns a-b, failing with Underflow if b > a.
func Subtract(a, b Decimal) (Decimal, error) {
	if b.Cmp(a) > 0 {
		return Decimal{}, newErr(ErrUnderflow, "subtrahend exceeds minuend")
	}
	return wrap(new(big.Int).Sub(a.v, b.v)), nil
}

// Multiply returns a*b, rescaled back to 6 fractional digits with
// round-down (truncation toward zero), failing with Overflow if the result
// would exceed MaxTokenSupply.
func Multiply(a, b Decimal) (Decimal, error) {
	product := new(big.Int).Mul(a.v, b.v)
	result := new(big.Int).Quo(product, scaleFactor) // truncates toward zero: round-down
	out := wrap(result)
	if err := checkSupplyBound(out); err != nil {
		return Decimal{}, err
	}
	return out, nil
}

// Divide returns a/b, rescaled to 6 fractional digits with round-down,
// failing with DivisionByZero if b is zero.
func Divide(a, b Decimal) (Decimal, error) {
	if b.IsZero() {
		return Decimal{}, newErr(ErrDivisionByZero, "division by zero")
	}
	numerator := new(big.Int).Mul(a.v, scaleFactor)
	result := new(big.Int).Quo(numerator, b.v)
	out := wrap(result)
	if err := checkSupplyBound(out); err != nil {
		return Decimal{}, err
	}
	return out, nil
}

// Percentage returns amount * pct / 100, where pct is itself a Decimal
// (e.g. FromWhole(10) means 10%). This is computed as a single
// amount.v * pct.v / (100 * scaleFactor) operation rather than composing
// Multiply and Divide: the intermediate amount*pct product routinely
// exceeds MaxTokenSupply (e.g. a 40% share of MaxTokenSupply itself) even
// though the final, post-division percentage is well within bounds, and
// Multiply bounds-checks its raw pre-division product.
func Percentage(amount, pct Decimal) (Decimal, error) {
	product := new(big.Int).Mul(amount.v, pct.v)
	denominator := new(big.Int).Mul(big.NewInt(100), scaleFactor)
	result := new(big.Int).Quo(product, denominator) // truncates toward zero: round-down
	out := wrap(result)
	if err := checkSupplyBound(out); err != nil {
		return Decimal{}, err
	}
	return out, nil
}

// Reward clamps amount into [0, MaxRewardAmount], failing with InvalidAmount
// if amount is negative.
func Reward(amount Decimal) (Decimal, error) {
	if amount.Sign() < 0 {
		return Decimal{}, newErr(ErrInvalidAmount, "reward amount is negative")
	}
	if amount.Cmp(MaxRewardAmount) > 0 {
		return MaxRewardAmount, nil
	}
	return amount, nil
}

// Direction names which way a balance operation moves funds, for
// ValidateBalanceOperation.
type Direction int

const (
	Credit Direction = iota
	Debit
)

// ValidateBalanceOperation is the precondition every balance mutation must
// pass before any write commits (spec §4.2): crediting current by delta
// must not exceed MaxTokenSupply; debiting current by delta must not go
// negative.
func ValidateBalanceOperation(current, delta Decimal, direction Direction) error {
	if delta.Sign() < 0 {
		return newErr(ErrInvalidAmount, "delta must be non-negative")
	}
	switch direction {
	case Credit:
		_, err := Add(current, delta)
		return err
	case Debit:
		_, err := Subtract(current, delta)
		return err
	default:
		return newErr(ErrInvalidAmount, "unknown direction")
	}
}

// ValidateAmount rejects amounts that are negative, below MinAmount (so a
// zero amount is rejected), or above MaxSingleAmount.
func ValidateAmount(amount Decimal) error {
	if amount.Sign() < 0 {
		return newErr(ErrInvalidAmount, "amount is negative")
	}
	if amount.Cmp(MinAmount) < 0 {
		return newErr(ErrInvalidAmount, "amount is below the minimum unit")
	}
	if amount.Cmp(MaxSingleAmount) > 0 {
		return newErr(ErrOverflow, "amount exceeds max single amount")
	}
	return nil
}
