// Package activations provides unit tests for activation functions.
package activations

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func float64Near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// TestSigmoid tests Sigmoid activation.
func TestSigmoid(t *testing.T) {
	sigmoid := Sigmoid{}

	tests := []struct {
		input    float64
		expected float64
	}{
		{math.Inf(-1), 0.0}, // -inf -> 0
		{-1000, 0.0},        // no overflow on large negatives
		{-2.0, 1 / (1 + math.Exp(2))},
		{-1.0, 1 / (1 + math.Exp(1))},
		{0.0, 0.5}, // Zero -> 0.5
		{1.0, 1 / (1 + math.Exp(-1))},
		{2.0, 1 / (1 + math.Exp(-2))},
		{1000, 1.0},
		{math.Inf(1), 1.0}, // +inf -> 1
	}

	for _, tt := range tests {
		output := sigmoid.Activate(tt.input)
		if math.IsNaN(output) || !float64Near(output, tt.expected, 1e-12) {
			t.Errorf("Sigmoid(%v) = %v, want %v", tt.input, output, tt.expected)
		}
	}
}

// TestTanh tests Tanh activation.
func TestTanh(t *testing.T) {
	tanh := Tanh{}

	// PyTorch: torch.tanh(torch.tensor([-2., -1., 0., 1., 2.], dtype=torch.float64))
	tests := []struct {
		input    float64
		expected float64
	}{
		{math.Inf(-1), -1.0},
		{-2.0, -0.9640275800758169},
		{-1.0, -0.7615941559557649},
		{0.0, 0.0},
		{1.0, 0.7615941559557649},
		{2.0, 0.9640275800758169},
		{math.Inf(1), 1.0},
	}

	for _, tt := range tests {
		output := tanh.Activate(tt.input)
		if !float64Near(output, tt.expected, 1e-15) {
			t.Errorf("Tanh(%v) = %v, want %v", tt.input, output, tt.expected)
		}
	}
}

func TestLinear(t *testing.T) {
	for _, x := range []float64{-3, 0, 0.25, 1e9} {
		if got := (Linear{}).Activate(x); got != x {
			t.Errorf("Linear(%v) = %v", x, got)
		}
	}
}

// TestActivationRange tests the open bounds of the squashing functions.
func TestActivationRange(t *testing.T) {
	sigmoid := Sigmoid{}
	tanh := Tanh{}
	for _, x := range []float64{-10, -5, -1, 0, 1, 5, 10} {
		if y := sigmoid.Activate(x); y <= 0 || y >= 1 {
			t.Errorf("Sigmoid(%v) = %v, outside (0,1)", x, y)
		}
		if y := tanh.Activate(x); y <= -1 || y >= 1 {
			t.Errorf("Tanh(%v) = %v, outside (-1,1)", x, y)
		}
	}
}

// TestActivationSymmetry tests symmetric properties.
func TestActivationSymmetry(t *testing.T) {
	tanh := Tanh{}
	sigmoid := Sigmoid{}
	for _, x := range []float64{0.5, 1.0, 2.0, 30.0} {
		// Tanh is odd: f(-x) = -f(x)
		if s := tanh.Activate(x) + tanh.Activate(-x); math.Abs(s) > 1e-15 {
			t.Errorf("Tanh is not odd: tanh(%v) + tanh(-%v) = %v", x, x, s)
		}
		// sigmoid(-x) = 1 - sigmoid(x)
		if s := sigmoid.Activate(x) + sigmoid.Activate(-x); !float64Near(s, 1, 1e-15) {
			t.Errorf("sigmoid(%v) + sigmoid(-%v) = %v", x, x, s)
		}
	}
}

func TestNames(t *testing.T) {
	tests := []struct {
		act      Activation
		expected string
	}{
		{Sigmoid{}, "sigmoid"},
		{Tanh{}, "tanh"},
		{Linear{}, "linear"},
	}
	for _, tt := range tests {
		if got := tt.act.Name(); got != tt.expected {
			t.Errorf("Name() = %q, want %q", got, tt.expected)
		}
	}
}

func TestApply(t *testing.T) {
	m := mat.NewDense(2, 2, []float64{-1, 0, 1, 2})
	Apply(Tanh{}, m)
	expected := []float64{math.Tanh(-1), 0, math.Tanh(1), math.Tanh(2)}
	for i, v := range m.RawMatrix().Data {
		if v != expected[i] {
			t.Errorf("Apply(Tanh)[%d] = %v, want %v", i, v, expected[i])
		}
	}

	id := mat.NewDense(1, 2, []float64{3, -4})
	Apply(Linear{}, id)
	if id.At(0, 0) != 3 || id.At(0, 1) != -4 {
		t.Errorf("Apply(Linear) modified values: %v", id.RawMatrix().Data)
	}
}

func TestApplySlice(t *testing.T) {
	s := []float64{0, 100}
	ApplySlice(Sigmoid{}, s)
	if s[0] != 0.5 || !float64Near(s[1], 1, 1e-15) {
		t.Errorf("ApplySlice(Sigmoid) = %v", s)
	}
}
