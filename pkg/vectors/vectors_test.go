package vectors_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/filecoin-project/go-state-types/abi"
	"github.com/hashicorp/go-multierror"
	ds "github.com/ipfs/go-datastore"
	dssync "github.com/ipfs/go-datastore/sync"
	blockstore "github.com/ipfs/go-ipfs-blockstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filecoin-project/venus-basefee/pkg/basefee"
	"github.com/filecoin-project/venus-basefee/pkg/chain"
	"github.com/filecoin-project/venus-basefee/pkg/testhelpers"
	tf "github.com/filecoin-project/venus-basefee/pkg/testhelpers/testflags"
	"github.com/filecoin-project/venus-basefee/pkg/types"
	"github.com/filecoin-project/venus-basefee/pkg/vectors"
)

func writeVectors(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "vectors.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestScenarioVectors(t *testing.T) {
	tf.UnitTest(t)

	f, err := vectors.Load(filepath.Join("testdata", "scenarios.toml"))
	require.NoError(t, err)
	require.Len(t, f.Vectors, 9)

	assert.NoError(t, vectors.Run(context.Background(), f))
}

func TestVectorRegimes(t *testing.T) {
	tf.UnitTest(t)
	ctx := context.Background()

	f, err := vectors.Load(filepath.Join("testdata", "scenarios.toml"))
	require.NoError(t, err)

	regimes := map[string]basefee.Regime{
		"saturation attack":                           basefee.RegimeHybrid,
		"saturation attack before the hybrid upgrade": basefee.RegimeLegacy,
		"post-breeze window":                          basefee.RegimeTamping,
	}
	for _, v := range f.Vectors {
		want, ok := regimes[v.Name]
		if !ok {
			continue
		}
		p, err := v.Params()
		require.NoError(t, err)
		res, err := v.Evaluate(ctx, &p)
		require.NoError(t, err)
		assert.Equal(t, want, res.Regime, v.Name)
	}
}

func TestRunReportsEveryMismatch(t *testing.T) {
	tf.UnitTest(t)

	path := writeVectors(t, `
[[vector]]
name = "wrong fee"
network = "2k"
epoch = 10
parent_base_fee = "100000000"
expected_base_fee = "1"
unique_gas = 1

  [[vector.message]]
  label = "a"
  gas_limit = 100

  [[vector.block]]
  messages = ["a"]

[[vector]]
name = "unknown network"
network = "nonet"
epoch = 10
parent_base_fee = "100"

  [[vector.block]]
`)
	f, err := vectors.Load(path)
	require.NoError(t, err)

	err = vectors.Run(context.Background(), f)
	require.Error(t, err)
	merr, ok := err.(*multierror.Error)
	require.True(t, ok, "got %T", err)
	assert.Len(t, merr.Errors, 2)
	assert.Contains(t, err.Error(), "base fee: expected 1")
	assert.Contains(t, err.Error(), "unique gas: expected 1, got 100")
	assert.Contains(t, err.Error(), "unknown network name nonet")
}

func TestLoadRejectsBadFiles(t *testing.T) {
	tf.UnitTest(t)

	testCases := map[string]string{
		"unknown key": `
[[vector]]
name = "a"
network = "2k"
parent_base_fee = "100"
expected_base_fe = "100"
  [[vector.block]]
`,
		"unknown label": `
[[vector]]
name = "a"
network = "2k"
parent_base_fee = "100"
  [[vector.block]]
  messages = ["nope"]
`,
		"duplicate name": `
[[vector]]
name = "a"
network = "2k"
parent_base_fee = "100"
  [[vector.block]]
[[vector]]
name = "a"
network = "2k"
parent_base_fee = "100"
  [[vector.block]]
`,
		"no blocks": `
[[vector]]
name = "a"
network = "2k"
parent_base_fee = "100"
`,
		"bad fee": `
[[vector]]
name = "a"
network = "2k"
parent_base_fee = "lots"
  [[vector.block]]
`,
		"not toml": `[[vector`,
	}
	for name, content := range testCases {
		_, err := vectors.Load(writeVectors(t, content))
		assert.Error(t, err, name)
	}

	_, err := vectors.Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestEvaluateRejectsOversizedMessages(t *testing.T) {
	tf.UnitTest(t)

	f, err := vectors.Load(writeVectors(t, `
[[vector]]
name = "too big"
network = "2k"
parent_base_fee = "100"

  [[vector.message]]
  label = "a"
  gas_limit = 10000000001

  [[vector.block]]
  messages = ["a"]
`))
	require.NoError(t, err)

	v := f.Vectors[0]
	p, err := v.Params()
	require.NoError(t, err)
	_, err = v.Evaluate(context.Background(), &p)
	assert.Error(t, err)
	assert.Error(t, vectors.Run(context.Background(), f))
}

func TestVerifyRoundChecksSignatures(t *testing.T) {
	tf.UnitTest(t)
	ctx := context.Background()

	ms := chain.NewMessageStore(blockstore.NewBlockstore(dssync.MutexWrap(ds.NewMapDatastore())))
	rb := testhelpers.NewRoundBuilder(t, ms, 10, abi.NewTokenAmount(100))
	good := rb.NewSignedMessage(1_000)
	rb.AddBlock([]*types.SignedMessage{good}, []*types.UnsignedMessage{rb.NewMessage(2_000)})
	require.NoError(t, vectors.VerifyRound(ctx, ms, rb.TipSet()))

	// the signature no longer covers the message once its gas limit changes
	forged := rb.NewSignedMessage(1_000)
	forged.Message.GasLimit = 9_000
	rb.AddBlock([]*types.SignedMessage{forged}, nil)
	assert.Error(t, vectors.VerifyRound(ctx, ms, rb.TipSet()))
}

func TestBuiltVectorsCarryValidSignatures(t *testing.T) {
	tf.UnitTest(t)
	ctx := context.Background()

	f, err := vectors.Load(filepath.Join("testdata", "scenarios.toml"))
	require.NoError(t, err)
	for i := range f.Vectors {
		v := f.Vectors[i]
		ms := chain.NewMessageStore(blockstore.NewBlockstore(dssync.MutexWrap(ds.NewMapDatastore())))
		ts, err := v.Build(ctx, ms)
		require.NoError(t, err, v.Name)
		assert.NoError(t, vectors.VerifyRound(ctx, ms, ts), v.Name)
	}
}
