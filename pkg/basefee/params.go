package basefee

import (
	"github.com/filecoin-project/go-state-types/abi"
	"golang.org/x/xerrors"

	"github.com/filecoin-project/venus-basefee/pkg/constants"
)

// Params holds every protocol constant the base fee computation reads. A Params
// value is never mutated by this package and may be shared between goroutines.
type Params struct {
	BlockGasTarget         int64
	BaseFeeMaxChangeDenom  int64
	MinimumBaseFee         int64
	PackingEfficiencyNum   int64
	PackingEfficiencyDenom int64

	// TampingBaseFee is returned unconditionally inside the breeze tamping window.
	TampingBaseFee int64

	UpgradeBreezeHeight      abi.ChainEpoch
	BreezeGasTampingDuration abi.ChainEpoch
	UpgradeSmokeHeight       abi.ChainEpoch
	// UpgradeHybridGasHeight is the first epoch priced on hybrid gas.
	UpgradeHybridGasHeight abi.ChainEpoch

	MinSpaceWeight FixedPoint
	MaxSpaceWeight FixedPoint
	Steepness      FixedPoint
	Center         FixedPoint
}

const (
	DefaultMinSpaceWeight FixedPoint = 50_000
	DefaultMaxSpaceWeight FixedPoint = 950_000
	DefaultSteepness      FixedPoint = 6 * Precision
	DefaultCenter         FixedPoint = 3 * Precision

	maxSteepness = 1000 * Precision
	maxCenter    = 1000 * Precision
)

// DefaultParams returns mainnet fee constants with every upgrade already active.
func DefaultParams() Params {
	return Params{
		BlockGasTarget:         constants.BlockGasTarget,
		BaseFeeMaxChangeDenom:  constants.BaseFeeMaxChangeDenom,
		MinimumBaseFee:         constants.MinimumBaseFee,
		PackingEfficiencyNum:   constants.PackingEfficiencyNum,
		PackingEfficiencyDenom: constants.PackingEfficiencyDenom,
		TampingBaseFee:         constants.TampingBaseFee,

		UpgradeBreezeHeight:      -1,
		BreezeGasTampingDuration: 0,
		UpgradeSmokeHeight:       -1,
		UpgradeHybridGasHeight:   -1,

		MinSpaceWeight: DefaultMinSpaceWeight,
		MaxSpaceWeight: DefaultMaxSpaceWeight,
		Steepness:      DefaultSteepness,
		Center:         DefaultCenter,
	}
}

// Validate checks that p cannot drive the computation into division by zero or
// an out of range weight.
func (p *Params) Validate() error {
	switch {
	case p.BlockGasTarget <= 0:
		return xerrors.Errorf("block gas target must be positive, got %d: %w", p.BlockGasTarget, ErrInvalidParams)
	case p.BaseFeeMaxChangeDenom <= 0:
		return xerrors.Errorf("max change denominator must be positive, got %d: %w", p.BaseFeeMaxChangeDenom, ErrInvalidParams)
	case p.MinimumBaseFee < 0:
		return xerrors.Errorf("minimum base fee must not be negative, got %d: %w", p.MinimumBaseFee, ErrInvalidParams)
	case p.PackingEfficiencyNum <= 0 || p.PackingEfficiencyDenom <= 0:
		return xerrors.Errorf("packing efficiency %d/%d must be positive: %w", p.PackingEfficiencyNum, p.PackingEfficiencyDenom, ErrInvalidParams)
	case p.TampingBaseFee < 0:
		return xerrors.Errorf("tamping base fee must not be negative, got %d: %w", p.TampingBaseFee, ErrInvalidParams)
	case p.BreezeGasTampingDuration < 0:
		return xerrors.Errorf("tamping duration must not be negative, got %d: %w", p.BreezeGasTampingDuration, ErrInvalidParams)
	case p.MinSpaceWeight < 0 || p.MinSpaceWeight > p.MaxSpaceWeight || p.MaxSpaceWeight > Precision:
		return xerrors.Errorf("space weight bounds [%s, %s] must lie in [0, 1]: %w", p.MinSpaceWeight, p.MaxSpaceWeight, ErrInvalidParams)
	case p.Steepness <= 0 || p.Steepness > maxSteepness:
		return xerrors.Errorf("steepness %s out of range: %w", p.Steepness, ErrInvalidParams)
	case p.Center < -maxCenter || p.Center > maxCenter:
		return xerrors.Errorf("center %s out of range: %w", p.Center, ErrInvalidParams)
	}
	return nil
}
