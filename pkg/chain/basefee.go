package chain

import (
	"context"
	"fmt"

	"github.com/filecoin-project/go-state-types/abi"
	"github.com/ipfs/go-cid"
	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/xerrors"

	"github.com/filecoin-project/venus-basefee/pkg/basefee"
	"github.com/filecoin-project/venus-basefee/pkg/constants"
	"github.com/filecoin-project/venus-basefee/pkg/metrics"
	"github.com/filecoin-project/venus-basefee/pkg/types"
)

var log = logging.Logger("chain.basefee")

// MessageFetchError reports a block whose messages could not be loaded. It
// matches basefee.ErrMessageFetch and unwraps to the store error.
type MessageFetchError struct {
	Block cid.Cid
	Err   error
}

func (e *MessageFetchError) Error() string {
	return fmt.Sprintf("error getting messages for: %s: %v: %v", e.Block, e.Err, basefee.ErrMessageFetch)
}

func (e *MessageFetchError) Unwrap() error {
	return e.Err
}

func (e *MessageFetchError) Is(target error) bool {
	return target == basefee.ErrMessageFetch
}

// ComputeBaseFee returns the base fee of the epoch following ts.
func (ms *MessageStore) ComputeBaseFee(ctx context.Context, ts *types.TipSet, p *basefee.Params) (abi.TokenAmount, error) {
	res, err := ComputeBaseFee(ctx, ms, ts, p)
	if err != nil {
		return abi.NewTokenAmount(0), err
	}
	return res.NextBaseFee, nil
}

// ComputeBaseFee loads the messages of every block in ts from provider and
// prices the round. Inside the tamping window no messages are loaded.
func ComputeBaseFee(ctx context.Context, provider MessageProvider, ts *types.TipSet, p *basefee.Params) (*basefee.Result, error) {
	if !ts.Defined() {
		return nil, xerrors.Errorf("computing base fee of an empty tipset: %w", basefee.ErrInvalidRoundSet)
	}

	rs := &basefee.RoundSet{
		ParentBaseFee: ts.ParentBaseFee(),
		Epoch:         ts.Height(),
	}

	if basefee.SelectRegime(rs.Epoch, p) != basefee.RegimeTamping {
		blocks, err := loadRoundBlocks(ctx, provider, ts)
		if err != nil {
			log.Warnw("loading round messages", "height", ts.Height(), "tipset", ts.Key(), "err", err)
			if !constants.DisableBaseFeeMetrics {
				metrics.MessageFetchFailures.Inc(ctx, 1)
			}
			return nil, err
		}
		rs.Blocks = blocks
	} else {
		// only the block count is checked in this regime
		rs.Blocks = make([]basefee.Block, ts.Len())
	}

	res, err := basefee.Compute(rs, p)
	if err != nil {
		return nil, xerrors.Errorf("computing base fee after %s: %w", ts.Key(), err)
	}

	log.Debugw("priced round",
		"height", ts.Height(),
		"blocks", ts.Len(),
		"regime", res.Regime,
		"unique", res.Totals.Unique,
		"physical", res.Totals.Physical,
		"spaceWeight", res.SpaceWeight,
		"effectiveGas", res.EffectiveGas,
		"parentBaseFee", rs.ParentBaseFee,
		"nextBaseFee", res.NextBaseFee,
	)
	if !constants.DisableBaseFeeMetrics {
		metrics.RecordRound(ctx, res.Regime.String(), int64(res.SpaceWeight), int64(res.DuplicationFactor), res.EffectiveGas)
	}
	return res, nil
}

// loadRoundBlocks reduces each block of ts to the ids and gas limits of its
// messages. A BLS message is identified by its unsigned cid and a secp message
// by its signed cid, so the same message in two blocks gets the same id.
func loadRoundBlocks(ctx context.Context, provider MessageProvider, ts *types.TipSet) ([]basefee.Block, error) {
	out := make([]basefee.Block, ts.Len())
	for i, b := range ts.Blocks() {
		secpMsgs, blsMsgs, err := provider.LoadMetaMessages(ctx, b.Messages)
		if err != nil {
			return nil, &MessageFetchError{Block: b.Cid(), Err: err}
		}

		msgs := make([]basefee.Message, 0, len(blsMsgs)+len(secpMsgs))
		for _, m := range blsMsgs {
			c, err := m.Cid()
			if err != nil {
				return nil, xerrors.Errorf("error getting cid for message: %v: %w", m, err)
			}
			msgs = append(msgs, basefee.Message{ID: c, GasLimit: m.GasLimit})
		}
		for _, m := range secpMsgs {
			c, err := m.Cid()
			if err != nil {
				return nil, xerrors.Errorf("error getting cid for signed message: %v: %w", m, err)
			}
			msgs = append(msgs, basefee.Message{ID: c, GasLimit: m.Message.GasLimit})
		}
		out[i] = basefee.Block{Messages: msgs}
	}
	return out, nil
}
