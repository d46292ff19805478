package chain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/filecoin-project/go-state-types/abi"
	"github.com/ipfs/go-cid"
	ds "github.com/ipfs/go-datastore"
	dssync "github.com/ipfs/go-datastore/sync"
	blockstore "github.com/ipfs/go-ipfs-blockstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opencensus.io/stats/view"

	"github.com/filecoin-project/venus-basefee/pkg/basefee"
	"github.com/filecoin-project/venus-basefee/pkg/chain"
	"github.com/filecoin-project/venus-basefee/pkg/metrics"
	"github.com/filecoin-project/venus-basefee/pkg/testhelpers"
	tf "github.com/filecoin-project/venus-basefee/pkg/testhelpers/testflags"
	"github.com/filecoin-project/venus-basefee/pkg/types"
)

func newStore() *chain.MessageStore {
	return chain.NewMessageStore(blockstore.NewBlockstore(dssync.MutexWrap(ds.NewMapDatastore())))
}

type failingProvider struct {
	calls int
}

func (fp *failingProvider) LoadMetaMessages(context.Context, cid.Cid) ([]*types.SignedMessage, []*types.UnsignedMessage, error) {
	fp.calls++
	return nil, nil, errOffline
}

var errOffline = errors.New("blockstore offline")

func legacyParams() basefee.Params {
	p := basefee.DefaultParams()
	p.UpgradeHybridGasHeight = 2000
	return p
}

func TestComputeBaseFeeSaturatedRound(t *testing.T) {
	tf.UnitTest(t)
	ctx := context.Background()

	ms := newStore()
	rb := testhelpers.NewRoundBuilder(t, ms, 1000, abi.NewTokenAmount(1000))
	shared := rb.NewMessage(8_000_000_000)
	for i := 0; i < 5; i++ {
		rb.AddBlock(nil, []*types.UnsignedMessage{shared})
	}
	ts := rb.TipSet()

	hybrid := basefee.DefaultParams()
	res, err := chain.ComputeBaseFee(ctx, ms, ts, &hybrid)
	require.NoError(t, err)
	assert.Equal(t, basefee.RegimeHybrid, res.Regime)
	assert.Equal(t, int64(8_000_000_000), res.Totals.Unique)
	assert.Equal(t, int64(40_000_000_000), res.Totals.Physical)
	assert.Equal(t, basefee.FixedPoint(950_000), res.SpaceWeight)
	assert.Equal(t, "1067", res.NextBaseFee.String())

	legacy := legacyParams()
	fee, err := ms.ComputeBaseFee(ctx, ts, &legacy)
	require.NoError(t, err)
	assert.Equal(t, "915", fee.String())
}

func TestComputeBaseFeeMixedSignatures(t *testing.T) {
	tf.UnitTest(t)
	ctx := context.Background()

	ms := newStore()
	rb := testhelpers.NewRoundBuilder(t, ms, 1000, abi.NewTokenAmount(100_000_000))
	x := rb.NewSignedMessage(6_000_000_000)
	y := rb.NewMessage(4_000_000_000)
	z := rb.NewMessage(4_000_000_000)

	rb.AddBlock([]*types.SignedMessage{x}, nil)
	rb.AddBlock([]*types.SignedMessage{x}, nil)
	rb.AddBlock([]*types.SignedMessage{x}, nil)
	rb.AddBlock(nil, []*types.UnsignedMessage{y})
	rb.AddBlock(nil, []*types.UnsignedMessage{z})

	p := basefee.DefaultParams()
	res, err := chain.ComputeBaseFee(ctx, ms, rb.TipSet(), &p)
	require.NoError(t, err)
	assert.Equal(t, int64(14_000_000_000), res.Totals.Unique)
	assert.Equal(t, int64(26_000_000_000), res.Totals.Physical)
	assert.Equal(t, basefee.FixedPoint(1_857_142), res.DuplicationFactor)
	assert.Equal(t, basefee.FixedPoint(152_662), res.SpaceWeight)
	assert.Equal(t, int64(15_831_944_000), res.EffectiveGas)
	assert.Equal(t, "95415972", res.NextBaseFee.String())
}

func TestComputeBaseFeeDoesNotDependOnBlockOrder(t *testing.T) {
	tf.UnitTest(t)
	ctx := context.Background()

	ms := newStore()
	rb := testhelpers.NewRoundBuilder(t, ms, 1000, abi.NewTokenAmount(100_000_000))
	a := rb.NewMessage(3_000_000_000)
	b := rb.NewSignedMessage(2_000_000_000)
	c := rb.NewMessage(7_000_000_000)
	b1 := rb.AddBlock([]*types.SignedMessage{b}, []*types.UnsignedMessage{a})
	b2 := rb.AddBlock(nil, []*types.UnsignedMessage{a, c})
	b3 := rb.AddBlock([]*types.SignedMessage{b}, []*types.UnsignedMessage{c})

	p := basefee.DefaultParams()
	ts1, err := types.NewTipSet(b1, b2, b3)
	require.NoError(t, err)
	ts2, err := types.NewTipSet(b3, b1, b2)
	require.NoError(t, err)

	r1, err := chain.ComputeBaseFee(ctx, ms, ts1, &p)
	require.NoError(t, err)
	r2, err := chain.ComputeBaseFee(ctx, ms, ts2, &p)
	require.NoError(t, err)
	assert.Equal(t, r1.NextBaseFee.String(), r2.NextBaseFee.String())
	assert.Equal(t, int64(12_000_000_000), r1.Totals.Unique)
	assert.Equal(t, int64(24_000_000_000), r1.Totals.Physical)
}

func TestComputeBaseFeeMessageFetchFailure(t *testing.T) {
	tf.UnitTest(t)
	ctx := context.Background()

	ms := newStore()
	rb := testhelpers.NewRoundBuilder(t, ms, 1000, abi.NewTokenAmount(1000))
	rb.AddBlock(nil, []*types.UnsignedMessage{rb.NewMessage(100)})
	rb.AddBlock(nil, nil)
	ts := rb.TipSet()

	p := basefee.DefaultParams()
	fp := &failingProvider{}
	res, err := chain.ComputeBaseFee(ctx, fp, ts, &p)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, basefee.ErrMessageFetch), "got %v", err)
	assert.True(t, errors.Is(err, errOffline), "got %v", err)
	assert.Equal(t, 1, fp.calls, "stops at the first failing block")

	var fetchErr *chain.MessageFetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, ts.Blocks()[0].Cid(), fetchErr.Block)
	assert.Contains(t, err.Error(), "blockstore offline")

	// a block whose messages were never stored
	missing := newStore()
	_, err = missing.ComputeBaseFee(ctx, ts, &p)
	assert.True(t, errors.Is(err, basefee.ErrMessageFetch), "got %v", err)
	assert.True(t, errors.Is(err, blockstore.ErrNotFound), "got %v", err)
}

func TestComputeBaseFeeRecordsMetrics(t *testing.T) {
	tf.BadUnitTestWithSideEffects(t)
	ctx := context.Background()

	require.NoError(t, metrics.RegisterViews())
	defer view.Unregister(metrics.DefaultViews...)

	ms := newStore()
	rb := testhelpers.NewRoundBuilder(t, ms, 1000, abi.NewTokenAmount(1000))
	shared := rb.NewMessage(8_000_000_000)
	for i := 0; i < 5; i++ {
		rb.AddBlock(nil, []*types.UnsignedMessage{shared})
	}
	ts := rb.TipSet()

	hybrid := basefee.DefaultParams()
	_, err := chain.ComputeBaseFee(ctx, ms, ts, &hybrid)
	require.NoError(t, err)
	legacy := legacyParams()
	_, err = chain.ComputeBaseFee(ctx, ms, ts, &legacy)
	require.NoError(t, err)

	counts, err := metrics.RoundsByRegime()
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"hybrid": 1, "legacy": 1}, counts)

	rows, err := view.RetrieveData(metrics.EffectiveGasView.Name)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	dist := rows[0].Data.(*view.DistributionData)
	assert.Equal(t, int64(2), dist.Count)
	assert.Equal(t, float64(38_400_000_000), dist.Max)
}

func TestComputeBaseFeeTampingSkipsMessages(t *testing.T) {
	tf.UnitTest(t)
	ctx := context.Background()

	ms := newStore()
	rb := testhelpers.NewRoundBuilder(t, ms, 1000, abi.NewTokenAmount(5000))
	rb.AddBlock(nil, []*types.UnsignedMessage{rb.NewMessage(9_000_000_000)})
	ts := rb.TipSet()

	p := basefee.DefaultParams()
	p.UpgradeBreezeHeight = 900
	p.BreezeGasTampingDuration = 200

	fp := &failingProvider{}
	res, err := chain.ComputeBaseFee(ctx, fp, ts, &p)
	require.NoError(t, err)
	assert.Equal(t, basefee.RegimeTamping, res.Regime)
	assert.Equal(t, "100", res.NextBaseFee.String())
	assert.Equal(t, 0, fp.calls)

	// the window is open on both ends
	p.BreezeGasTampingDuration = 100
	_, err = chain.ComputeBaseFee(ctx, fp, ts, &p)
	assert.Error(t, err)
	assert.Equal(t, 1, fp.calls)
}

func TestComputeBaseFeeRejectsUndefinedTipSet(t *testing.T) {
	tf.UnitTest(t)

	p := basefee.DefaultParams()
	_, err := chain.ComputeBaseFee(context.Background(), newStore(), nil, &p)
	assert.True(t, errors.Is(err, basefee.ErrInvalidRoundSet))
}
