package metrics

import (
	"context"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

// RegimeKey tags base fee measures with the rule that produced them.
var RegimeKey = tag.MustNewKey("regime")

// Base fee measures. Fixed point values are recorded raw, in millionths.
var (
	SpaceWeight       = stats.Int64("basefee/space_weight", "Space gas weight of the last priced round, in millionths", stats.UnitDimensionless)
	DuplicationFactor = stats.Int64("basefee/duplication_factor", "Physical over unique gas of the last priced round, in millionths", stats.UnitDimensionless)
	EffectiveGas      = stats.Int64("basefee/effective_gas", "Gas fed into the base fee adjustment", stats.UnitDimensionless)
	RoundsPriced      = stats.Int64("basefee/rounds", "Rounds priced", stats.UnitDimensionless)
)

// MessageFetchFailures counts rounds abandoned because their messages could not be loaded.
var MessageFetchFailures = NewInt64Counter("basefee/message_fetch_failures", "Rounds whose messages could not be loaded")

var (
	SpaceWeightView = &view.View{
		Name:        "basefee/space_weight",
		Measure:     SpaceWeight,
		Aggregation: view.LastValue(),
	}
	DuplicationFactorView = &view.View{
		Name:        "basefee/duplication_factor",
		Measure:     DuplicationFactor,
		Aggregation: view.LastValue(),
	}
	EffectiveGasView = &view.View{
		Name:        "basefee/effective_gas",
		Measure:     EffectiveGas,
		Aggregation: view.Distribution(0, 1e9, 5e9, 1e10, 2e10, 5e10, 1e11),
	}
	RoundsPricedView = &view.View{
		Name:        "basefee/rounds",
		Measure:     RoundsPriced,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{RegimeKey},
	}
)

// DefaultViews are the base fee views exported by a node.
var DefaultViews = []*view.View{
	SpaceWeightView,
	DuplicationFactorView,
	EffectiveGasView,
	RoundsPricedView,
}

// RegisterViews registers DefaultViews. Registering them again is a no-op.
func RegisterViews() error {
	return view.Register(DefaultViews...)
}

// RoundsByRegime returns the number of rounds priced under each regime since
// the views were registered.
func RoundsByRegime() (map[string]int64, error) {
	rows, err := view.RetrieveData(RoundsPricedView.Name)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		count, ok := row.Data.(*view.CountData)
		if !ok {
			continue
		}
		for _, t := range row.Tags {
			if t.Key == RegimeKey {
				out[t.Value] = count.Value
			}
		}
	}
	return out, nil
}

// RecordRound records the outcome of pricing one round under regime.
func RecordRound(ctx context.Context, regime string, spaceWeight, dupFactor, effectiveGas int64) {
	ctx, err := tag.New(ctx, tag.Upsert(RegimeKey, regime))
	if err != nil {
		log.Warnf("tagging base fee measures: %s", err)
		return
	}
	stats.Record(ctx,
		RoundsPriced.M(1),
		SpaceWeight.M(spaceWeight),
		DuplicationFactor.M(dupFactor),
		EffectiveGas.M(effectiveGas),
	)
}
