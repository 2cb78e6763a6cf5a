package main

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"

	"github.com/FlavioCFOliveira/seqreg/seqreg"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("seqreg failed")
	}
}

// newApp builds the CLI with command output written to out.
func newApp(out io.Writer) *cli.App {
	app := cli.NewApp()
	app.Writer = out
	app.Name = "seqreg"
	app.Usage = "stacked-LSTM sequence regressor"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.IntFlag{
			Name:  "input-size",
			Value: 1,
			Usage: "features per time step",
		},
		cli.IntFlag{
			Name:  "hidden-size",
			Value: seqreg.DefaultConfig(1).HiddenSize,
			Usage: "LSTM hidden state `width`",
		},
		cli.IntFlag{
			Name:  "num-layers",
			Value: seqreg.DefaultConfig(1).NumLayers,
			Usage: "number of stacked LSTM layers",
		},
		cli.Float64Flag{
			Name:  "dropout",
			Usage: "dropout `probability` between LSTM layers, in [0, 1)",
		},
		cli.Uint64Flag{
			Name:  "seed",
			Usage: "parameter initialisation seed, 0 picks the default",
		},
		cli.StringFlag{
			Name:  "log-level",
			Value: "info",
			Usage: "logrus `level` (debug, info, warn, error)",
		},
	}
	app.Before = func(c *cli.Context) error {
		level, err := logrus.ParseLevel(c.GlobalString("log-level"))
		if err != nil {
			return errors.Wrap(err, "log-level")
		}
		logrus.SetLevel(level)
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		return nil
	}

	sequenceFlags := []cli.Flag{
		cli.IntFlag{
			Name:  "batch",
			Value: 4,
			Usage: "number of sequences",
		},
		cli.IntFlag{
			Name:  "steps",
			Value: 16,
			Usage: "time steps per sequence",
		},
	}

	app.Commands = []cli.Command{
		{
			Name:   "info",
			Usage:  "Print the model configuration, device and parameter count",
			Action: infoAction,
		},
		{
			Name:   "predict",
			Usage:  "Predict one value per synthetic sine sequence",
			Flags:  sequenceFlags,
			Action: predictAction,
		},
		{
			Name:   "unroll",
			Usage:  "Feed the sequences one step at a time and compare with a full run",
			Flags:  sequenceFlags,
			Action: unrollAction,
		},
	}

	return app
}
