// Package basefee computes the base fee of the next epoch from the messages of
// a tipset. Since the hybrid gas upgrade the congestion fed into the fee
// adjustment is a blend of deduplicated (execution) gas and per-inclusion
// (physical) gas, weighted by how much the blocks of the tipset repeat each
// other's messages.
//
// Everything here is a pure function of its arguments and uses integer
// arithmetic only, so any two nodes agree on the result bit for bit.
package basefee

import (
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/big"
	"golang.org/x/xerrors"
)

// Regime is the base fee rule in force at an epoch.
type Regime int

const (
	// RegimeLegacy prices deduplicated gas only.
	RegimeLegacy Regime = iota
	// RegimeTamping holds the base fee at a fixed value after the breeze upgrade.
	RegimeTamping
	// RegimeHybrid prices the weighted blend of execution and physical gas.
	RegimeHybrid
)

func (r Regime) String() string {
	switch r {
	case RegimeLegacy:
		return "legacy"
	case RegimeTamping:
		return "tamping"
	case RegimeHybrid:
		return "hybrid"
	default:
		return "unknown"
	}
}

// SelectRegime picks the base fee rule for a tipset at epoch. It is recomputed
// for every tipset and never cached.
func SelectRegime(epoch abi.ChainEpoch, p *Params) Regime {
	if p.UpgradeBreezeHeight >= 0 && epoch > p.UpgradeBreezeHeight && epoch < p.UpgradeBreezeHeight+p.BreezeGasTampingDuration {
		return RegimeTamping
	}
	if epoch < p.UpgradeHybridGasHeight {
		return RegimeLegacy
	}
	return RegimeHybrid
}

// Result is the next base fee along with the intermediate values that produced
// it. Fields a regime does not compute are zero; the legacy rule only fills
// Totals.Unique.
type Result struct {
	NextBaseFee abi.TokenAmount
	Regime      Regime

	Totals            GasTotals
	DuplicationFactor FixedPoint
	NormalizedDup     FixedPoint
	SpaceWeight       FixedPoint
	// EffectiveGas is the gas fed into the adjustment: unique gas under the
	// legacy rule, the blend under the hybrid rule.
	EffectiveGas int64
}

// Compute returns the base fee following the round set rs. It fails without a
// partial result if rs or p are invalid or any intermediate overflows.
func Compute(rs *RoundSet, p *Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := rs.validate(); err != nil {
		return nil, err
	}

	res := &Result{Regime: SelectRegime(rs.Epoch, p)}
	if res.Regime == RegimeTamping {
		res.NextBaseFee = abi.NewTokenAmount(p.TampingBaseFee)
		return res, nil
	}

	noOfBlocks := len(rs.Blocks)

	if res.Regime == RegimeLegacy {
		unique, err := AggregateUniqueGas(rs.Blocks)
		if err != nil {
			return nil, err
		}
		res.Totals.Unique = unique
		res.EffectiveGas = unique
		res.NextBaseFee, err = ComputeNextBaseFee(rs.ParentBaseFee, unique, noOfBlocks, rs.Epoch, p)
		if err != nil {
			return nil, err
		}
		return res, nil
	}

	totals, err := AggregateGas(rs.Blocks)
	if err != nil {
		return nil, err
	}
	res.Totals = totals

	if res.DuplicationFactor, err = DuplicationFactor(totals); err != nil {
		return nil, err
	}
	res.NormalizedDup = NormalizeDuplication(res.DuplicationFactor, noOfBlocks)
	res.SpaceWeight = SpaceWeight(res.NormalizedDup, p)
	if res.EffectiveGas, err = EffectiveGas(totals, res.SpaceWeight); err != nil {
		return nil, err
	}

	delta := res.EffectiveGas/int64(noOfBlocks) - p.BlockGasTarget
	res.NextBaseFee = adjustBaseFee(rs.ParentBaseFee, delta, p)
	return res, nil
}

// ComputeNextBaseFee is the deduplicated gas adjustment used before the hybrid
// gas upgrade. Before smoke the gas is scaled up by the packing efficiency.
func ComputeNextBaseFee(baseFee abi.TokenAmount, gasLimitUsed int64, noOfBlocks int, epoch abi.ChainEpoch, p *Params) (abi.TokenAmount, error) {
	// deta := gasLimitUsed/noOfBlocks - BlockGasTarget
	// change := baseFee * deta / BlockGasTarget
	// nextBaseFee = baseFee + change
	// nextBaseFee = max(nextBaseFee, MinimumBaseFee)
	if noOfBlocks <= 0 {
		return big.Zero(), xerrors.Errorf("computing base fee over %d blocks: %w", noOfBlocks, ErrInvalidRoundSet)
	}

	var delta int64
	if epoch > p.UpgradeSmokeHeight {
		delta = gasLimitUsed / int64(noOfBlocks)
		delta -= p.BlockGasTarget
	} else {
		scaled, err := mulDiv(p.PackingEfficiencyDenom, gasLimitUsed, int64(noOfBlocks)*p.PackingEfficiencyNum)
		if err != nil {
			return big.Zero(), xerrors.Errorf("packing efficiency scaling: %w", err)
		}
		delta = scaled - p.BlockGasTarget
	}
	return adjustBaseFee(baseFee, delta, p), nil
}

func adjustBaseFee(baseFee abi.TokenAmount, delta int64, p *Params) abi.TokenAmount {
	// cap change at 1/BaseFeeMaxChangeDenom by capping delta
	if delta > p.BlockGasTarget {
		delta = p.BlockGasTarget
	}
	if delta < -p.BlockGasTarget {
		delta = -p.BlockGasTarget
	}

	change := big.Mul(baseFee, big.NewInt(delta))
	change = big.Div(change, big.NewInt(p.BlockGasTarget))
	change = big.Div(change, big.NewInt(p.BaseFeeMaxChangeDenom))

	nextBaseFee := big.Add(baseFee, change)
	if big.Cmp(nextBaseFee, big.NewInt(p.MinimumBaseFee)) < 0 {
		nextBaseFee = big.NewInt(p.MinimumBaseFee)
	}
	return nextBaseFee
}
