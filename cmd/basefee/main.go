package main

import (
	"fmt"
	"os"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"

	"github.com/filecoin-project/venus-basefee/pkg/constants"
	"github.com/filecoin-project/venus-basefee/pkg/metrics"
)

var log = logging.Logger("basefee-cli")

func main() {
	app := newApp()
	app.Setup()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "ERR: %v\n", err) // nolint: errcheck
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:                 "basefee",
		Usage:                "inspect and check hybrid gas base fee pricing",
		Version:              constants.UserVersion(),
		EnableBashCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level of every subsystem",
				Value: "warn",
			},
		},
		Before: func(cctx *cli.Context) error {
			lvl, err := logging.LevelFromString(cctx.String("log-level"))
			if err != nil {
				return err
			}
			logging.SetAllLoggers(lvl)
			return metrics.RegisterViews()
		},
		Commands: []*cli.Command{
			tableCmd,
			paramsCmd,
			vectorsCmd,
			computeCmd,
		},
	}
}
