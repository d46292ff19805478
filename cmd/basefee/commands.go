package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/big"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/filecoin-project/venus-basefee/fixtures/networks"
	"github.com/filecoin-project/venus-basefee/pkg/basefee"
	"github.com/filecoin-project/venus-basefee/pkg/config"
	"github.com/filecoin-project/venus-basefee/pkg/constants"
	"github.com/filecoin-project/venus-basefee/pkg/metrics"
	"github.com/filecoin-project/venus-basefee/pkg/vectors"
)

var networkFlag = &cli.StringFlag{
	Name:  "network",
	Usage: "network whose fork schedule applies",
	Value: constants.DefaultNetworkName,
}

var tableCmd = &cli.Command{
	Name:  "table",
	Usage: "print the sigmoid lookup table",
	Action: func(cctx *cli.Context) error {
		tw := tabwriter.NewWriter(cctx.App.Writer, 2, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "INDEX\tX\tSIGMOID")
		for i, v := range basefee.SigmoidTable() {
			x := -3*basefee.Precision + basefee.FixedPoint(i)*basefee.Precision/10
			_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\n", i, x, v)
		}
		return tw.Flush()
	},
}

var paramsCmd = &cli.Command{
	Name:      "params",
	Usage:     "print the base fee parameters of a network",
	ArgsUsage: "[key]",
	Flags: []cli.Flag{
		networkFlag,
		&cli.StringFlag{
			Name:  "config",
			Usage: "read parameters from a config file instead of a known network",
		},
	},
	Action: func(cctx *cli.Context) error {
		cfg, err := loadConfig(cctx)
		if err != nil {
			return err
		}

		var out interface{} = cfg.NetworkParams
		if cctx.Args().Present() {
			if out, err = cfg.Get(cctx.Args().First()); err != nil {
				return err
			}
		}
		raw, err := json.MarshalIndent(out, "", "\t")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cctx.App.Writer, string(raw))
		return err
	},
}

var vectorsCmd = &cli.Command{
	Name:      "vectors",
	Usage:     "run a conformance vector file",
	ArgsUsage: "<file>",
	Action: func(cctx *cli.Context) error {
		if cctx.Args().Len() != 1 {
			return errors.New("expected one vector file")
		}
		f, err := vectors.Load(cctx.Args().First())
		if err != nil {
			return err
		}
		outcomes, err := vectors.EvaluateAll(cctx.Context, f)
		if err != nil {
			return err
		}
		passed := 0
		for _, o := range outcomes {
			if o.Err != nil {
				_, _ = fmt.Fprintf(cctx.App.Writer, "%s %s: %v\n", color.RedString("FAIL"), o.Vector.Name, o.Err)
				continue
			}
			passed++
			_, _ = fmt.Fprintf(cctx.App.Writer, "%s %s\n", color.GreenString("PASS"), o.Vector.Name)
		}
		if err := vectors.Summarize(outcomes); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cctx.App.Writer, "%d vectors passed\n", passed)
		return err
	},
}

var computeCmd = &cli.Command{
	Name:      "compute",
	Usage:     "price the rounds of a vector file, ignoring their expectations",
	ArgsUsage: "<file>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "network",
			Usage: "override the network of every vector",
		},
		&cli.Int64Flag{
			Name:  "epoch",
			Usage: "override the epoch of every vector",
			Value: -1,
		},
		&cli.StringFlag{
			Name:  "parent-base-fee",
			Usage: "override the parent base fee of every vector, in attoFIL",
		},
		&cli.BoolFlag{
			Name:  "metrics",
			Usage: "print how many rounds each regime priced",
		},
	},
	Action: func(cctx *cli.Context) error {
		if cctx.Args().Len() != 1 {
			return errors.New("expected one vector file")
		}
		f, err := vectors.Load(cctx.Args().First())
		if err != nil {
			return err
		}
		if fee := cctx.String("parent-base-fee"); fee != "" {
			if _, err := big.FromString(fee); err != nil {
				return errors.Wrap(err, "parent-base-fee")
			}
		}

		before, err := metrics.RoundsByRegime()
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cctx.App.Writer, 2, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "NAME\tEPOCH\tREGIME\tUNIQUE\tPHYSICAL\tWEIGHT\tEFFECTIVE\tPARENT\tNEXT")
		for i := range f.Vectors {
			v := f.Vectors[i]
			if n := cctx.String("network"); n != "" {
				v.Network = n
			}
			if cctx.Int64("epoch") >= 0 {
				v.Epoch = cctx.Int64("epoch")
			}
			if fee := cctx.String("parent-base-fee"); fee != "" {
				v.ParentBaseFee = fee
			}

			p, err := v.Params()
			if err != nil {
				return err
			}
			res, err := v.Evaluate(cctx.Context, &p)
			if err != nil {
				return errors.Wrapf(err, "vector %q", v.Name)
			}
			_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t%d\t%s\t%d\t%s\t%s\n", v.Name, abi.ChainEpoch(v.Epoch), res.Regime,
				res.Totals.Unique, res.Totals.Physical, res.SpaceWeight, res.EffectiveGas, v.ParentBaseFee, res.NextBaseFee)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		if !cctx.Bool("metrics") {
			return nil
		}

		after, err := metrics.RoundsByRegime()
		if err != nil {
			return err
		}
		regimes := make([]string, 0, len(after))
		for r := range after {
			regimes = append(regimes, r)
		}
		sort.Strings(regimes)
		for _, r := range regimes {
			_, _ = fmt.Fprintf(cctx.App.Writer, "rounds priced %s: %d\n", r, after[r]-before[r])
		}
		return nil
	},
}

func loadConfig(cctx *cli.Context) (*config.Config, error) {
	if path := cctx.String("config"); path != "" {
		log.Infof("reading parameters from %s", path)
		return config.ReadFile(path)
	}
	cfg := config.NewDefaultConfig()
	if err := networks.SetConfigFromOptions(cfg, cctx.String("network")); err != nil {
		return nil, err
	}
	return cfg, nil
}
