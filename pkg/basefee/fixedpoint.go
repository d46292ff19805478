package basefee

import (
	"fmt"
	"math"

	"github.com/holiman/uint256"
	"golang.org/x/xerrors"
)

// FixedPoint is a real number scaled by Precision. Every fractional value on the
// base fee path is carried in this form; no floating point is ever used.
type FixedPoint int64

// Precision is the scale of a FixedPoint, i.e. the FixedPoint value of 1.0.
const Precision FixedPoint = 1_000_000

// NewFixedPoint returns num/den as a FixedPoint, truncated toward zero.
func NewFixedPoint(num, den int64) FixedPoint {
	return FixedPoint(num * int64(Precision) / den)
}

func (f FixedPoint) String() string {
	sign := ""
	v := int64(f)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%06d", sign, v/int64(Precision), v%int64(Precision))
}

func clampFixed(v, lo, hi FixedPoint) FixedPoint {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// addGas returns a+b for non-negative gas values, failing instead of wrapping.
func addGas(a, b int64) (int64, error) {
	if a > math.MaxInt64-b {
		return 0, xerrors.Errorf("adding %d to %d: %w", b, a, ErrArithmeticOverflow)
	}
	return a + b, nil
}

// mulDiv returns a*b/den for non-negative operands. The product is formed in 256
// bits so only a quotient wider than int64 is an overflow.
func mulDiv(a, b, den int64) (int64, error) {
	if a < 0 || b < 0 || den <= 0 {
		return 0, xerrors.Errorf("mulDiv operands out of range: %d*%d/%d", a, b, den)
	}
	q := new(uint256.Int).Mul(uint256.NewInt(uint64(a)), uint256.NewInt(uint64(b)))
	q.Div(q, uint256.NewInt(uint64(den)))
	return toInt64(q, "%d*%d/%d", a, b, den)
}

func toInt64(v *uint256.Int, format string, args ...interface{}) (int64, error) {
	if !v.IsUint64() || v.Uint64() > math.MaxInt64 {
		return 0, xerrors.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrArithmeticOverflow)
	}
	return int64(v.Uint64()), nil
}
