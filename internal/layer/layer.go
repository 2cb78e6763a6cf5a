// Package layer provides the building blocks of the sequence regressor.
package layer

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/seqreg/internal/activations"
)

// Layer owns learnable parameters.
type Layer interface {
	Params() []float64
	SetParams([]float64)
	NamedParams() []Param
	NumParams() int
}

var (
	_ Layer = (*Dense)(nil)
	_ Layer = (*LSTM)(nil)
	_ Layer = (*Dropout)(nil)
)

// Dense is a fully connected layer: y = act(x W^T + b).
type Dense struct {
	// Shape: [out, in], row-major
	weights *mat.Dense
	biases  []float64
	act     activations.Activation
	outSize int
	inSize  int
}

// NewDense creates a dense layer with PyTorch's default nn.Linear init:
// weights and biases from U(-1/sqrt(in), 1/sqrt(in)).
func NewDense(in, out int, act activations.Activation, src rand.Source) *Dense {
	if act == nil {
		act = activations.Linear{}
	}
	weights := make([]float64, out*in)
	biases := make([]float64, out)

	bound := 1 / math.Sqrt(float64(in))
	uniformFill(weights, bound, src)
	uniformFill(biases, bound, src)

	return &Dense{
		weights: mat.NewDense(out, in, weights),
		biases:  biases,
		act:     act,
		outSize: out,
		inSize:  in,
	}
}

// Forward projects a (batch, in) matrix to a new (batch, out) matrix.
func (d *Dense) Forward(x *mat.Dense) *mat.Dense {
	batch, _ := x.Dims()
	out := mat.NewDense(batch, d.outSize, nil)
	out.Mul(x, d.weights.T())
	for b := 0; b < batch; b++ {
		row := out.RawRowView(b)
		floats.Add(row, d.biases)
		activations.ApplySlice(d.act, row)
	}
	return out
}

// NamedParams returns the weight and bias views.
func (d *Dense) NamedParams() []Param {
	return []Param{
		{Name: "weight", Shape: []int{d.outSize, d.inSize}, Data: d.weights.RawMatrix().Data},
		{Name: "bias", Shape: []int{d.outSize}, Data: d.biases},
	}
}

// Params returns all dense layer parameters flattened (copy).
func (d *Dense) Params() []float64 {
	return flatten(d.NamedParams())
}

// SetParams updates weights and biases from a flattened slice (in-place).
func (d *Dense) SetParams(params []float64) {
	scatter(d.NamedParams(), params)
}

// NumParams returns out*in + out.
func (d *Dense) NumParams() int {
	return d.outSize*d.inSize + d.outSize
}

// Clone returns a deep copy.
func (d *Dense) Clone() *Dense {
	biases := make([]float64, len(d.biases))
	copy(biases, d.biases)
	return &Dense{
		weights: mat.DenseCopyOf(d.weights),
		biases:  biases,
		act:     d.act,
		outSize: d.outSize,
		inSize:  d.inSize,
	}
}

// SetWeight sets a single weight at (row, col).
func (d *Dense) SetWeight(row, col int, val float64) {
	d.weights.Set(row, col, val)
}

// SetBias sets a single bias.
func (d *Dense) SetBias(idx int, val float64) {
	d.biases[idx] = val
}

// GetWeight gets a single weight at (row, col).
func (d *Dense) GetWeight(row, col int) float64 {
	return d.weights.At(row, col)
}

// GetBias gets a single bias.
func (d *Dense) GetBias(idx int) float64 {
	return d.biases[idx]
}

// InSize returns the input size of the layer.
func (d *Dense) InSize() int {
	return d.inSize
}

// OutSize returns the output size of the layer.
func (d *Dense) OutSize() int {
	return d.outSize
}

// Activation returns the activation function used by this layer.
func (d *Dense) Activation() activations.Activation {
	return d.act
}
