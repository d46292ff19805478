package basefee

import (
	"github.com/holiman/uint256"
	"golang.org/x/xerrors"
)

// EffectiveGas blends unique and physical gas:
//
//	(unique*(Precision-spaceWeight) + physical*spaceWeight) / Precision
//
// computed on 256 bit intermediates so gas sums near their limits cannot wrap.
// The result lies between t.Unique and t.Physical.
func EffectiveGas(t GasTotals, spaceWeight FixedPoint) (int64, error) {
	if spaceWeight < 0 || spaceWeight > Precision {
		return 0, xerrors.Errorf("space weight %s outside [0, 1]: %w", spaceWeight, ErrInvalidParams)
	}
	if t.Unique < 0 || t.Physical < 0 {
		return 0, xerrors.Errorf("negative gas totals %+v: %w", t, ErrInvalidRoundSet)
	}
	execWeight := Precision - spaceWeight

	execPart := new(uint256.Int).Mul(uint256.NewInt(uint64(t.Unique)), uint256.NewInt(uint64(execWeight)))
	spacePart := new(uint256.Int).Mul(uint256.NewInt(uint64(t.Physical)), uint256.NewInt(uint64(spaceWeight)))
	sum := new(uint256.Int).Add(execPart, spacePart)
	sum.Div(sum, uint256.NewInt(uint64(Precision)))

	return toInt64(sum, "effective gas of %+v at weight %s", t, spaceWeight)
}
