package main

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/urfave/cli.v1"

	"github.com/FlavioCFOliveira/seqreg/seqreg"
)

func configFromFlags(c *cli.Context) seqreg.Config {
	return seqreg.Config{
		InputSize:  c.GlobalInt("input-size"),
		HiddenSize: c.GlobalInt("hidden-size"),
		NumLayers:  c.GlobalInt("num-layers"),
		Dropout:    c.GlobalFloat64("dropout"),
		Seed:       c.GlobalUint64("seed"),
	}
}

func buildModel(c *cli.Context) (*seqreg.Model, error) {
	m, err := seqreg.New(configFromFlags(c), seqreg.WithLogger(logrus.StandardLogger()))
	if err != nil {
		return nil, err
	}
	m.Eval()
	return m, nil
}

func sequenceShape(c *cli.Context) (int, int, error) {
	batch, steps := c.Int("batch"), c.Int("steps")
	if batch <= 0 || steps <= 0 {
		return 0, 0, errors.Errorf("batch and steps must be positive, got %d and %d", batch, steps)
	}
	return batch, steps, nil
}

// sineBatch builds (batch, steps, features) sequences where row b is a sine
// wave with phase b/batch and feature f is sampled at frequency f+1.
func sineBatch(batch, steps, features int, dev seqreg.Device) *seqreg.Tensor {
	data := make([]float64, batch*steps*features)
	for b := 0; b < batch; b++ {
		phase := 2 * math.Pi * float64(b) / float64(batch)
		for s := 0; s < steps; s++ {
			for f := 0; f < features; f++ {
				angle := float64(f+1) * 2 * math.Pi * float64(s) / float64(steps)
				data[(b*steps+s)*features+f] = math.Sin(angle + phase)
			}
		}
	}
	return seqreg.FromSlice(data, batch, steps, features, dev)
}

func infoAction(c *cli.Context) error {
	m, err := buildModel(c)
	if err != nil {
		return err
	}
	w := c.App.Writer
	fmt.Fprintln(w, m)
	writeDevice(w, m.Device())
	fmt.Fprintf(w, "parameters: %d\n", m.NumParams())
	for _, p := range m.NamedParams() {
		fmt.Fprintf(w, "  %-20s %v\n", p.Name, p.Shape)
	}
	return nil
}

func writeDevice(w io.Writer, dev seqreg.Device) {
	fmt.Fprintf(w, "device:     %s (%s)\n", dev.Name(), dev.Type())
	switch d := dev.(type) {
	case *seqreg.HostDevice:
		fmt.Fprintf(w, "cores:      %d\n", d.Cores())
		fmt.Fprintf(w, "simd:       %s\n", featureList(d.Features()))
	case *seqreg.GPUDevice:
		fmt.Fprintf(w, "vendor:     %s\n", d.Vendor())
		fmt.Fprintf(w, "backend:    %s\n", d.Backend())
	}
}

func featureList(features []string) string {
	if len(features) == 0 {
		return "none"
	}
	return strings.Join(features, " ")
}

func predictAction(c *cli.Context) error {
	m, err := buildModel(c)
	if err != nil {
		return err
	}
	batch, steps, err := sequenceShape(c)
	if err != nil {
		return err
	}
	x := sineBatch(batch, steps, m.Config().InputSize, m.Device())
	h, err := m.InitHidden(batch)
	if err != nil {
		return err
	}

	y, err := m.Forward(x, h)
	if err != nil {
		return err
	}
	for b := 0; b < batch; b++ {
		fmt.Fprintf(c.App.Writer, "%d\t%.6f\n", b, y.At(b, 0))
	}
	return nil
}

func unrollAction(c *cli.Context) error {
	m, err := buildModel(c)
	if err != nil {
		return err
	}
	batch, steps, err := sequenceShape(c)
	if err != nil {
		return err
	}
	x := sineBatch(batch, steps, m.Config().InputSize, m.Device())

	h, err := m.InitHidden(batch)
	if err != nil {
		return err
	}
	full, err := m.Forward(x, h)
	if err != nil {
		return err
	}

	var y *mat.Dense
	for s := 0; s < steps; s++ {
		y, h, err = m.ForwardState(x.SliceTime(s, s+1), h)
		if err != nil {
			return err
		}
	}

	diff := mat.NewDense(batch, 1, nil)
	diff.Sub(full, y)
	deviation := mat.Norm(diff, math.Inf(1))
	logrus.WithFields(logrus.Fields{
		"batch": batch,
		"steps": steps,
	}).Debug("unrolled sequence")
	fmt.Fprintf(c.App.Writer, "max deviation between full and step-by-step runs: %g\n", deviation)
	return nil
}
