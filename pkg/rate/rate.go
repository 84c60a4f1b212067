package rate

import "math/big"

// Rates are fixed-point integers scaled by Scalar: a per-second interest rate
// of 10^4 means 10^4/10^12 of the principal per second. All divisions truncate
// toward zero; callers depend on the exact floor to reproduce reference
// accounting bit for bit.
const (
	Decimals = 12
	Scalar   = 1_000_000_000_000 // 10^12

	// MaxFeeRate caps the origination fee at 5%.
	MaxFeeRate = 5 * Scalar / 100
)

var scalar = big.NewInt(Scalar)

// Accrue returns floor(principal * elapsed * perSecond / Scalar).
// Intermediates stay in big.Int: principal up to ~10^30 times elapsed up to
// ~10^9 times a rate up to 10^12 would overflow any fixed-width type.
func Accrue(principal *big.Int, perSecond uint64, elapsed uint64) *big.Int {
	if principal == nil || principal.Sign() <= 0 || perSecond == 0 || elapsed == 0 {
		return big.NewInt(0)
	}
	out := new(big.Int).Mul(principal, new(big.Int).SetUint64(elapsed))
	out.Mul(out, new(big.Int).SetUint64(perSecond))
	return out.Quo(out, scalar)
}

// Fee returns floor(amount * feeRate / Scalar).
func Fee(amount *big.Int, feeRate uint64) *big.Int {
	if amount == nil || amount.Sign() <= 0 || feeRate == 0 {
		return big.NewInt(0)
	}
	out := new(big.Int).Mul(amount, new(big.Int).SetUint64(feeRate))
	return out.Quo(out, scalar)
}

// ImprovedBy reports whether next improves on prev by at least pct percent,
// in the given direction (+1 means higher is better, -1 lower is better).
// The threshold itself floors, matching the reference terms check.
func ImprovedBy(prev, next uint64, pct uint64, direction int) bool {
	step := prev * pct / 100
	if direction > 0 {
		return next >= prev+step && next > prev
	}
	return next+step <= prev && next < prev
}

// AmountImprovedBy is ImprovedBy for big.Int amounts (higher is better).
func AmountImprovedBy(prev, next *big.Int, pct uint64) bool {
	if prev == nil || next == nil {
		return false
	}
	step := new(big.Int).Mul(prev, new(big.Int).SetUint64(pct))
	step.Quo(step, big.NewInt(100))
	min := new(big.Int).Add(prev, step)
	return next.Cmp(min) >= 0 && next.Cmp(prev) > 0
}
