// Package seqreg is the public entry point for the stacked-LSTM sequence
// regressor.
package seqreg

import (
	"github.com/FlavioCFOliveira/seqreg/internal/device"
	"github.com/FlavioCFOliveira/seqreg/internal/layer"
	"github.com/FlavioCFOliveira/seqreg/internal/model"
	"github.com/FlavioCFOliveira/seqreg/internal/tensor"
)

// Re-export common types for easier access
type (
	Model  = model.SequenceRegressor
	Config = model.Config
	Hidden = model.Hidden
	Option = model.Option
	Tensor = tensor.Tensor3
	Param  = layer.Param
	Device = device.Device

	HostDevice = device.CPUDevice
	GPUDevice  = device.GPUDevice
)

// Errors
var (
	ErrInvalidConfiguration = model.ErrInvalidConfiguration
	ErrShapeMismatch        = model.ErrShapeMismatch
	ErrDeviceMismatch       = model.ErrDeviceMismatch
	ErrUnknownParameter     = model.ErrUnknownParameter
)

// Model creation
func New(cfg Config, opts ...Option) (*Model, error) {
	return model.New(cfg, opts...)
}

func DefaultConfig(inputSize int) Config {
	return model.DefaultConfig(inputSize)
}

var (
	WithLogger = model.WithLogger
	WithDevice = model.WithDevice
)

// Tensors
func Zeros(batch, steps, features int, dev Device) *Tensor {
	return tensor.Zeros(batch, steps, features, dev)
}

// FromSlice wraps data laid out batch-first as (batch, steps, features).
func FromSlice(data []float64, batch, steps, features int, dev Device) *Tensor {
	return tensor.New(data, batch, steps, features, dev)
}

// Devices
func DefaultDevice() Device {
	return device.Default()
}

func CPUDevice() Device {
	return device.Host()
}
