package basefee

import "golang.org/x/xerrors"

// DuplicationFactor returns physical/unique gas. A round without unique gas
// carries no duplication signal and reports 1.0.
func DuplicationFactor(t GasTotals) (FixedPoint, error) {
	if t.Unique == 0 {
		return Precision, nil
	}
	dup, err := mulDiv(t.Physical, int64(Precision), t.Unique)
	if err != nil {
		return 0, xerrors.Errorf("duplication factor: %w", err)
	}
	return FixedPoint(dup), nil
}

// NormalizeDuplication maps a duplication factor for a round of noOfBlocks
// blocks onto [0, 1]. 0 means no message was repeated and 1 means every message
// was included by every block. A single block round is always 0.
func NormalizeDuplication(dup FixedPoint, noOfBlocks int) FixedPoint {
	if noOfBlocks <= 1 {
		return 0
	}
	norm := (dup - Precision) / FixedPoint(noOfBlocks-1)
	return clampFixed(norm, 0, Precision)
}
