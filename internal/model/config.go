package model

import (
	"github.com/pkg/errors"
)

const (
	// DefaultHiddenSize is the LSTM hidden state width used by DefaultConfig.
	DefaultHiddenSize = 128

	// DefaultNumLayers is the LSTM depth used by DefaultConfig.
	DefaultNumLayers = 1

	// defaultSeed replaces a zero Config.Seed so construction stays reproducible.
	defaultSeed = 142
)

// Config is the immutable shape of a SequenceRegressor.
type Config struct {
	// InputSize is the number of features per time step.
	InputSize int

	// HiddenSize is the width of the LSTM hidden and cell state.
	HiddenSize int

	// NumLayers is the number of stacked LSTM layers.
	NumLayers int

	// Dropout is applied between stacked LSTM layers in training mode.
	// It has no effect with a single layer unless DropoutBeforeProjection is set.
	Dropout float64

	// DropoutBeforeProjection also applies Dropout to the last hidden state
	// before the linear projection.
	DropoutBeforeProjection bool

	// Seed drives parameter initialisation and dropout masks. Zero selects a
	// fixed default.
	Seed uint64
}

// DefaultConfig returns a single-layer, 128-unit configuration without dropout.
func DefaultConfig(inputSize int) Config {
	return Config{
		InputSize:  inputSize,
		HiddenSize: DefaultHiddenSize,
		NumLayers:  DefaultNumLayers,
	}
}

// Validate checks every field and returns ErrInvalidConfiguration, wrapped with
// the first offending field, or nil.
func (c Config) Validate() error {
	switch {
	case c.InputSize <= 0:
		return errors.Wrapf(ErrInvalidConfiguration, "input_size must be positive, got %d", c.InputSize)
	case c.HiddenSize <= 0:
		return errors.Wrapf(ErrInvalidConfiguration, "hidden_size must be positive, got %d", c.HiddenSize)
	case c.NumLayers <= 0:
		return errors.Wrapf(ErrInvalidConfiguration, "num_layers must be positive, got %d", c.NumLayers)
	case !(c.Dropout >= 0 && c.Dropout < 1):
		return errors.Wrapf(ErrInvalidConfiguration, "dropout must be in [0, 1), got %v", c.Dropout)
	}
	return nil
}

func (c Config) seed() uint64 {
	if c.Seed == 0 {
		return defaultSeed
	}
	return c.Seed
}
