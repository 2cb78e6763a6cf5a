// Package activations provides the elementwise nonlinearities used by the
// recurrent gates and the output head.
package activations

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Activation is an elementwise function.
type Activation interface {
	// Activate computes f(x)
	Activate(x float64) float64

	// Name identifies the function in parameter dumps and logs.
	Name() string
}

// Sigmoid activation function, used by the input, forget and output gates.
type Sigmoid struct{}

// sigmoid is split on the sign of x so exp never overflows.
func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	z := math.Exp(x)
	return z / (1 + z)
}

// Activate computes 1 / (1 + exp(-x))
func (s Sigmoid) Activate(x float64) float64 {
	return sigmoid(x)
}

func (s Sigmoid) Name() string { return "sigmoid" }

// Tanh activation function.
// PyTorch reference: torch.nn.Tanh()
type Tanh struct{}

// Activate computes tanh(x)
func (t Tanh) Activate(x float64) float64 {
	return math.Tanh(x)
}

func (t Tanh) Name() string { return "tanh" }

// Linear is the identity.
type Linear struct{}

// Activate returns x unchanged
func (l Linear) Activate(x float64) float64 {
	return x
}

func (l Linear) Name() string { return "linear" }

// Apply replaces every element of m with act(m).
func Apply(act Activation, m *mat.Dense) {
	if _, ok := act.(Linear); ok {
		return
	}
	m.Apply(func(_, _ int, v float64) float64 {
		return act.Activate(v)
	}, m)
}

// ApplySlice replaces every element of s with act(s).
func ApplySlice(act Activation, s []float64) {
	for i, v := range s {
		s[i] = act.Activate(v)
	}
}
