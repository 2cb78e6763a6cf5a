package tensor

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/seqreg/internal/device"
)

// seq builds a (batch, time, feat) tensor where element (b, s, f) = 100b + 10s + f.
func seq(batch, steps, feat int) *Tensor3 {
	t := Zeros(batch, steps, feat, nil)
	for b := 0; b < batch; b++ {
		for s := 0; s < steps; s++ {
			for f := 0; f < feat; f++ {
				t.Set(b, s, f, float64(100*b+10*s+f))
			}
		}
	}
	return t
}

func TestZeros(t *testing.T) {
	x := Zeros(2, 3, 4, nil)
	if d0, d1, d2 := x.Dims(); d0 != 2 || d1 != 3 || d2 != 4 {
		t.Errorf("Dims() = (%d, %d, %d), expected (2, 3, 4)", d0, d1, d2)
	}
	if x.Len() != 24 {
		t.Errorf("Len() = %d, expected 24", x.Len())
	}
	if !x.IsZero() {
		t.Errorf("Zeros() has non-zero elements")
	}
	if x.Device().Type() != device.CPU {
		t.Errorf("nil device should default to host, got %v", x.Device().Type())
	}
}

func TestNewPanicsOnLengthMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("New() with wrong data length did not panic")
		}
	}()
	New(make([]float64, 5), 2, 3, 1, nil)
}

func TestZerosPanicsOnNegativeDim(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("Zeros() with negative dimension did not panic")
		}
	}()
	Zeros(2, -1, 1, nil)
}

func TestNewSharesStorage(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 6}
	x := New(data, 1, 2, 3, nil)
	if x.At(0, 1, 2) != 6 {
		t.Errorf("At(0, 1, 2) = %v, expected 6", x.At(0, 1, 2))
	}
	x.Set(0, 0, 0, 42)
	if data[0] != 42 {
		t.Errorf("Set did not write through to the backing slice")
	}
}

func TestFull(t *testing.T) {
	x := Full(0.5, 2, 2, 2, nil)
	for _, v := range x.Data() {
		if v != 0.5 {
			t.Fatalf("Full(0.5) element = %v", v)
		}
	}
}

func TestAtOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("At() out of range did not panic")
		}
	}()
	Zeros(1, 2, 3, nil).At(0, 2, 0)
}

func TestCloneIsDeep(t *testing.T) {
	x := seq(2, 2, 2)
	c := x.Clone()
	if !c.EqualApprox(x, 0) {
		t.Fatalf("Clone() differs from source")
	}
	c.Set(1, 1, 1, -1)
	if x.At(1, 1, 1) == -1 {
		t.Errorf("Clone() shares storage with source")
	}
}

func TestToChangesPlacementOnly(t *testing.T) {
	x := seq(1, 2, 2)
	gpu := fakeDevice{}
	y := x.To(gpu)
	if y.Device().Type() != device.GPU {
		t.Errorf("To() device type = %v, expected gpu", y.Device().Type())
	}
	if x.Device().Type() != device.CPU {
		t.Errorf("To() modified the receiver's device")
	}
	if !y.EqualApprox(x, 0) {
		t.Errorf("To() changed values")
	}
}

func TestSlabSharesStorage(t *testing.T) {
	x := seq(3, 2, 2)
	s := x.Slab(1)
	r, c := s.Dims()
	if r != 2 || c != 2 {
		t.Fatalf("Slab dims = (%d, %d), expected (2, 2)", r, c)
	}
	if s.At(1, 0) != x.At(1, 1, 0) {
		t.Errorf("Slab(1).At(1, 0) = %v, expected %v", s.At(1, 0), x.At(1, 1, 0))
	}
	s.Set(0, 0, 7)
	if x.At(1, 0, 0) != 7 {
		t.Errorf("Slab writes are not visible in the tensor")
	}
}

func TestStep(t *testing.T) {
	x := seq(2, 3, 2)
	m := x.Step(2)
	expected := mat.NewDense(2, 2, []float64{20, 21, 120, 121})
	if !mat.Equal(m, expected) {
		t.Errorf("Step(2) = %v, expected %v", mat.Formatted(m), mat.Formatted(expected))
	}
}

func TestSliceTime(t *testing.T) {
	x := seq(2, 4, 1)
	y := x.SliceTime(1, 3)
	if !y.SameShape(2, 2, 1) {
		t.Fatalf("SliceTime shape = %v", y)
	}
	tests := []struct {
		b, s     int
		expected float64
	}{
		{0, 0, 10},
		{0, 1, 20},
		{1, 0, 110},
		{1, 1, 120},
	}
	for _, tt := range tests {
		if got := y.At(tt.b, tt.s, 0); got != tt.expected {
			t.Errorf("SliceTime(1, 3).At(%d, %d, 0) = %v, expected %v", tt.b, tt.s, got, tt.expected)
		}
	}
}

func TestFromStepsInvertsStep(t *testing.T) {
	x := seq(3, 4, 2)
	steps := make([]*mat.Dense, 4)
	for s := range steps {
		steps[s] = x.Step(s)
	}
	y := FromSteps(steps, nil)
	if !y.EqualApprox(x, 0) {
		t.Errorf("FromSteps(Step(...)) did not reproduce the source tensor")
	}
}

func TestStack(t *testing.T) {
	a := mat.NewDense(2, 1, []float64{1, 2})
	b := mat.NewDense(2, 1, []float64{3, 4})
	x := Stack([]*mat.Dense{a, b}, nil)
	if !x.SameShape(2, 2, 1) {
		t.Fatalf("Stack shape = %v", x)
	}
	if x.At(1, 1, 0) != 4 || x.At(0, 1, 0) != 2 {
		t.Errorf("Stack placed values incorrectly: %v", x.Data())
	}
	a.Set(0, 0, 99)
	if x.At(0, 0, 0) == 99 {
		t.Errorf("Stack shares storage with its inputs")
	}
}

func TestStackPanicsOnShapeMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("Stack() with mismatched shapes did not panic")
		}
	}()
	Stack([]*mat.Dense{mat.NewDense(1, 2, nil), mat.NewDense(2, 1, nil)}, nil)
}

type fakeDevice struct{}

func (fakeDevice) Type() device.Type { return device.GPU }
func (fakeDevice) Name() string { return "fake" }
func (fakeDevice) IsAvailable() bool { return true }
