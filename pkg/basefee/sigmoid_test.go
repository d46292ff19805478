package basefee_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filecoin-project/venus-basefee/pkg/basefee"
	tf "github.com/filecoin-project/venus-basefee/pkg/testhelpers/testflags"
)

func TestSigmoidTableShape(t *testing.T) {
	tf.UnitTest(t)

	table := basefee.SigmoidTable()
	require.Len(t, table, basefee.SigmoidTableSize)

	assert.Equal(t, basefee.FixedPoint(47426), table[0])
	assert.Equal(t, basefee.FixedPoint(500000), table[30])
	assert.Equal(t, basefee.FixedPoint(952574), table[60])

	for i := 1; i < len(table); i++ {
		assert.Less(t, int64(table[i-1]), int64(table[i]), "table must be strictly increasing at %d", i)
	}
	// logistic symmetry: s(x) + s(-x) = 1
	for i := range table {
		assert.Equal(t, basefee.Precision, table[i]+table[len(table)-1-i], "index %d", i)
	}
}

func TestSigmoidTableIsACopy(t *testing.T) {
	tf.UnitTest(t)

	table := basefee.SigmoidTable()
	table[0] = 0
	assert.Equal(t, basefee.FixedPoint(47426), basefee.SigmoidTable()[0])
	assert.Equal(t, basefee.FixedPoint(47426), basefee.Sigmoid(-3*basefee.Precision))
}

func TestSigmoidInterpolation(t *testing.T) {
	tf.UnitTest(t)

	for x, want := range map[basefee.FixedPoint]basefee.FixedPoint{
		-3_000_000: 47426,
		-2_950_000: 49790, // halfway between 47426 and 52154
		-1_714_290: 152662,
		0:          500000,
		1:          500000, // the slope times one millionth truncates away
		50_000:     512489,
		2_999_999:  952573,
		3_000_000:  952574,
		// saturation
		-9_000_000: 47426,
		9_000_000:  952574,
	} {
		assert.Equal(t, want, basefee.Sigmoid(x), "sigmoid(%s)", x)
	}
}

func TestSigmoidSamplesMatchTable(t *testing.T) {
	tf.UnitTest(t)

	table := basefee.SigmoidTable()
	for i, want := range table {
		x := basefee.FixedPoint(i-30) * basefee.Precision / 10
		assert.Equal(t, want, basefee.Sigmoid(x), "sample %d", i)
	}
}

func TestSpaceWeightBounds(t *testing.T) {
	tf.UnitTest(t)

	params := basefee.DefaultParams()
	assert.Equal(t, params.MinSpaceWeight, basefee.SpaceWeight(0, &params))
	assert.Equal(t, params.MaxSpaceWeight, basefee.SpaceWeight(basefee.Precision, &params))
	assert.Equal(t, basefee.FixedPoint(500000), basefee.SpaceWeight(basefee.Precision/2, &params))

	narrow := params
	narrow.MinSpaceWeight, narrow.MaxSpaceWeight = 200_000, 600_000
	assert.Equal(t, basefee.FixedPoint(200_000), basefee.SpaceWeight(0, &narrow))
	assert.Equal(t, basefee.FixedPoint(600_000), basefee.SpaceWeight(basefee.Precision, &narrow))
}

func TestSpaceWeightHalfwayAdaptsToRoundSize(t *testing.T) {
	tf.UnitTest(t)

	params := basefee.DefaultParams()
	// for n blocks the weight crosses one half at a duplication factor of 1+(n-1)/2
	for n := 2; n <= 10; n++ {
		dup := basefee.Precision + basefee.FixedPoint(n-1)*basefee.Precision/2
		norm := basefee.NormalizeDuplication(dup, n)
		assert.Equal(t, basefee.Precision/2, norm, "n=%d", n)
		assert.Equal(t, basefee.FixedPoint(500000), basefee.SpaceWeight(norm, &params), "n=%d", n)
	}
}

func TestDuplicationFactor(t *testing.T) {
	tf.UnitTest(t)

	dup, err := basefee.DuplicationFactor(basefee.GasTotals{})
	require.NoError(t, err)
	assert.Equal(t, basefee.Precision, dup)

	dup, err = basefee.DuplicationFactor(basefee.GasTotals{Unique: 3, Physical: 10})
	require.NoError(t, err)
	assert.Equal(t, basefee.FixedPoint(3_333_333), dup)

	// the product of near-limit gas sums and the precision exceeds 64 bits
	dup, err = basefee.DuplicationFactor(basefee.GasTotals{Unique: 1 << 61, Physical: 1 << 62})
	require.NoError(t, err)
	assert.Equal(t, 2*basefee.Precision, dup)

	assert.Equal(t, basefee.FixedPoint(0), basefee.NormalizeDuplication(5*basefee.Precision, 1))
	assert.Equal(t, basefee.Precision, basefee.NormalizeDuplication(5*basefee.Precision, 5))
	assert.Equal(t, basefee.Precision, basefee.NormalizeDuplication(9*basefee.Precision, 5))
	assert.Equal(t, basefee.FixedPoint(0), basefee.NormalizeDuplication(basefee.Precision, 5))
}

func TestEffectiveGas(t *testing.T) {
	tf.UnitTest(t)

	totals := basefee.GasTotals{Unique: 8e9, Physical: 4e10}

	eff, err := basefee.EffectiveGas(totals, 0)
	require.NoError(t, err)
	assert.Equal(t, totals.Unique, eff)

	eff, err = basefee.EffectiveGas(totals, basefee.Precision)
	require.NoError(t, err)
	assert.Equal(t, totals.Physical, eff)

	eff, err = basefee.EffectiveGas(totals, 950_000)
	require.NoError(t, err)
	assert.Equal(t, int64(38_400_000_000), eff)

	// would overflow a naive 64 bit multiply
	huge := basefee.GasTotals{Unique: 1 << 61, Physical: 1 << 62}
	eff, err = basefee.EffectiveGas(huge, basefee.Precision/2)
	require.NoError(t, err)
	assert.Equal(t, int64(3<<60), eff)

	_, err = basefee.EffectiveGas(totals, basefee.Precision+1)
	assert.Error(t, err)
}
