package basefee

import (
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/ipfs/go-cid"
	"golang.org/x/xerrors"
)

// Message is the part of a chain message the base fee depends on.
type Message struct {
	// ID is the content identifier of the chain message and its deduplication key.
	ID       cid.Cid
	GasLimit int64
}

// Block lists the BLS and secp messages of one block, in any order.
type Block struct {
	Messages []Message
}

// RoundSet is one tipset reduced to what the base fee computation reads.
type RoundSet struct {
	Blocks        []Block
	ParentBaseFee abi.TokenAmount
	Epoch         abi.ChainEpoch
}

func (rs *RoundSet) validate() error {
	if len(rs.Blocks) == 0 {
		return xerrors.Errorf("round set has no blocks: %w", ErrInvalidRoundSet)
	}
	if rs.ParentBaseFee.Nil() || rs.ParentBaseFee.Sign() < 0 {
		return xerrors.Errorf("parent base fee %v is not a non-negative amount: %w", rs.ParentBaseFee, ErrInvalidRoundSet)
	}
	return nil
}

// GasTotals are the two gas measurements of a round.
type GasTotals struct {
	// Unique counts each distinct message once across the round (execution gas).
	Unique int64
	// Physical counts every inclusion of every message (space gas).
	Physical int64
}

// AggregateGas sums the gas limits of all messages in blocks, once per inclusion
// and once per distinct message ID.
func AggregateGas(blocks []Block) (GasTotals, error) {
	return aggregate(blocks, true)
}

// AggregateUniqueGas sums the gas limits of the distinct messages in blocks.
// Repeated inclusions are not summed, so they cannot overflow.
func AggregateUniqueGas(blocks []Block) (int64, error) {
	totals, err := aggregate(blocks, false)
	return totals.Unique, err
}

func aggregate(blocks []Block, physical bool) (GasTotals, error) {
	var totals GasTotals
	seen := make(map[cid.Cid]struct{})

	for i, b := range blocks {
		for _, m := range b.Messages {
			if m.GasLimit < 0 {
				return GasTotals{}, xerrors.Errorf("message %s in block %d has negative gas limit %d: %w", m.ID, i, m.GasLimit, ErrInvalidRoundSet)
			}

			var err error
			if physical {
				if totals.Physical, err = addGas(totals.Physical, m.GasLimit); err != nil {
					return GasTotals{}, xerrors.Errorf("physical gas: %w", err)
				}
			}
			if _, ok := seen[m.ID]; ok {
				continue
			}
			seen[m.ID] = struct{}{}
			if totals.Unique, err = addGas(totals.Unique, m.GasLimit); err != nil {
				return GasTotals{}, xerrors.Errorf("unique gas: %w", err)
			}
		}
	}
	return totals, nil
}
