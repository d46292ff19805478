package types_test

import (
	"testing"

	"github.com/filecoin-project/go-state-types/abi"
	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tf "github.com/filecoin-project/venus-basefee/pkg/testhelpers/testflags"
	"github.com/filecoin-project/venus-basefee/pkg/types"
)

func newHeader(t *testing.T, miner uint64, height abi.ChainEpoch, parentBaseFee int64) *types.BlockHeader {
	parent, err := abi.CidBuilder.Sum([]byte("parent"))
	require.NoError(t, err)
	meta := types.TxMeta{}
	metaCid, err := meta.Cid()
	require.NoError(t, err)
	return &types.BlockHeader{
		Miner:         mustIDAddr(t, miner),
		Parents:       types.NewTipSetKey(parent),
		Height:        height,
		Messages:      metaCid,
		Timestamp:     uint64(height) * 30,
		ParentBaseFee: abi.NewTokenAmount(parentBaseFee),
	}
}

func TestBlockHeaderRoundTrip(t *testing.T) {
	tf.UnitTest(t)

	hdr := newHeader(t, 1000, 42, 100)
	raw, err := hdr.Serialize()
	require.NoError(t, err)

	out, err := types.DecodeBlock(raw)
	require.NoError(t, err)
	assert.Equal(t, hdr.Cid(), out.Cid())
	assert.Equal(t, hdr.Miner, out.Miner)
	assert.Equal(t, hdr.Parents, out.Parents)
	assert.Equal(t, hdr.Messages, out.Messages)
	assert.True(t, hdr.ParentBaseFee.Equals(out.ParentBaseFee))

	blk, err := hdr.ToStorageBlock()
	require.NoError(t, err)
	assert.Equal(t, hdr.Cid(), blk.Cid())
}

func TestNewTipSet(t *testing.T) {
	tf.UnitTest(t)

	b1 := newHeader(t, 1000, 10, 100)
	b2 := newHeader(t, 1001, 10, 100)
	b3 := newHeader(t, 1002, 10, 100)

	ts, err := types.NewTipSet(b1, b2, b3)
	require.NoError(t, err)
	assert.Equal(t, 3, ts.Len())
	assert.Equal(t, abi.ChainEpoch(10), ts.Height())
	assert.Equal(t, "100", ts.ParentBaseFee().String())
	assert.Equal(t, b1.Parents, ts.Parents())
	assert.True(t, ts.Defined())

	// block order does not change the tipset
	again, err := types.NewTipSet(b3, b1, b2)
	require.NoError(t, err)
	assert.Equal(t, ts.Key(), again.Key())
	assert.Equal(t, ts.Cids(), again.Cids())
	assert.Equal(t, ts.Cids(), ts.Key().Cids())
	for _, c := range []cid.Cid{b1.Cid(), b2.Cid(), b3.Cid()} {
		assert.True(t, ts.Key().Has(c))
	}
}

func TestNewTipSetRejectsInconsistentBlocks(t *testing.T) {
	tf.UnitTest(t)

	_, err := types.NewTipSet()
	assert.Error(t, err)

	base := newHeader(t, 1000, 10, 100)

	_, err = types.NewTipSet(base, newHeader(t, 1001, 11, 100))
	assert.Error(t, err, "heights differ")

	_, err = types.NewTipSet(base, newHeader(t, 1001, 10, 200))
	assert.Error(t, err, "parent base fees differ")

	other := newHeader(t, 1001, 10, 100)
	other.Parents = types.EmptyTSK
	_, err = types.NewTipSet(base, other)
	assert.Error(t, err, "parents differ")

	_, err = types.NewTipSet(base, newHeader(t, 1000, 10, 100))
	assert.Error(t, err, "duplicate block")

	noFee := newHeader(t, 1000, 10, 100)
	noFee.ParentBaseFee = abi.TokenAmount{}
	_, err = types.NewTipSet(noFee)
	assert.Error(t, err)
}
