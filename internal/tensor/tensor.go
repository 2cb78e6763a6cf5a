// Package tensor provides the rank-3 tensor used for sequences and recurrent state.
package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/seqreg/internal/device"
)

// Tensor3 is a dense rank-3 tensor stored row-major in a contiguous slice.
// Sequences use (batch, time, feature); recurrent state uses
// (layers, batch, hidden).
type Tensor3 struct {
	data []float64
	dims [3]int
	dev  device.Device
}

// Zeros allocates a zero-filled tensor on dev. A nil dev means the host.
func Zeros(d0, d1, d2 int, dev device.Device) *Tensor3 {
	checkDims(d0, d1, d2)
	return &Tensor3{
		data: make([]float64, d0*d1*d2),
		dims: [3]int{d0, d1, d2},
		dev:  orHost(dev),
	}
}

// New wraps data as a (d0, d1, d2) tensor without copying.
// It panics if len(data) does not equal d0*d1*d2.
func New(data []float64, d0, d1, d2 int, dev device.Device) *Tensor3 {
	checkDims(d0, d1, d2)
	if len(data) != d0*d1*d2 {
		panic(fmt.Sprintf("tensor: data length %d does not match shape (%d, %d, %d)", len(data), d0, d1, d2))
	}
	return &Tensor3{
		data: data,
		dims: [3]int{d0, d1, d2},
		dev:  orHost(dev),
	}
}

// Full allocates a tensor with every element set to v.
func Full(v float64, d0, d1, d2 int, dev device.Device) *Tensor3 {
	t := Zeros(d0, d1, d2, dev)
	if v != 0 {
		floats.AddConst(v, t.data)
	}
	return t
}

func checkDims(d0, d1, d2 int) {
	if d0 < 0 || d1 < 0 || d2 < 0 {
		panic(fmt.Sprintf("tensor: negative dimension in (%d, %d, %d)", d0, d1, d2))
	}
}

func orHost(dev device.Device) device.Device {
	if dev == nil {
		return device.Host()
	}
	return dev
}

// Dims returns the three dimensions.
func (t *Tensor3) Dims() (int, int, int) {
	return t.dims[0], t.dims[1], t.dims[2]
}

// Dim returns dimension i (0, 1 or 2).
func (t *Tensor3) Dim(i int) int {
	return t.dims[i]
}

// Len returns the number of elements.
func (t *Tensor3) Len() int {
	return len(t.data)
}

// Data returns the backing slice. Writes through it modify the tensor.
func (t *Tensor3) Data() []float64 {
	return t.data
}

// Device returns where the tensor is placed.
func (t *Tensor3) Device() device.Device {
	return t.dev
}

func (t *Tensor3) offset(i, j, k int) int {
	if i < 0 || i >= t.dims[0] || j < 0 || j >= t.dims[1] || k < 0 || k >= t.dims[2] {
		panic(fmt.Sprintf("tensor: index (%d, %d, %d) out of range for shape (%d, %d, %d)",
			i, j, k, t.dims[0], t.dims[1], t.dims[2]))
	}
	return (i*t.dims[1]+j)*t.dims[2] + k
}

// At returns the element at (i, j, k).
func (t *Tensor3) At(i, j, k int) float64 {
	return t.data[t.offset(i, j, k)]
}

// Set stores v at (i, j, k).
func (t *Tensor3) Set(i, j, k int, v float64) {
	t.data[t.offset(i, j, k)] = v
}

// Clone returns a deep copy on the same device.
func (t *Tensor3) Clone() *Tensor3 {
	data := make([]float64, len(t.data))
	copy(data, t.data)
	return &Tensor3{data: data, dims: t.dims, dev: t.dev}
}

// To returns a copy of t placed on dev. The receiver is left untouched.
func (t *Tensor3) To(dev device.Device) *Tensor3 {
	c := t.Clone()
	c.dev = orHost(dev)
	return c
}

// SameShape reports whether t has dimensions (d0, d1, d2).
func (t *Tensor3) SameShape(d0, d1, d2 int) bool {
	return t.dims[0] == d0 && t.dims[1] == d1 && t.dims[2] == d2
}

// IsZero reports whether every element is exactly zero.
func (t *Tensor3) IsZero() bool {
	for _, v := range t.data {
		if v != 0 {
			return false
		}
	}
	return true
}

// EqualApprox reports whether t and u have the same shape and all elements
// agree within tol.
func (t *Tensor3) EqualApprox(u *Tensor3, tol float64) bool {
	if t.dims != u.dims {
		return false
	}
	return floats.EqualApprox(t.data, u.data, tol)
}

// Slab returns index i along the first axis as a (d1, d2) matrix that shares
// storage with t. Used for per-layer recurrent state.
func (t *Tensor3) Slab(i int) *mat.Dense {
	if i < 0 || i >= t.dims[0] {
		panic(fmt.Sprintf("tensor: slab %d out of range [0, %d)", i, t.dims[0]))
	}
	n := t.dims[1] * t.dims[2]
	return mat.NewDense(t.dims[1], t.dims[2], t.data[i*n:(i+1)*n])
}

// Step copies time step s of a batch-first (batch, time, feature) tensor into a
// new (batch, feature) matrix.
func (t *Tensor3) Step(s int) *mat.Dense {
	batch, steps, feat := t.Dims()
	if s < 0 || s >= steps {
		panic(fmt.Sprintf("tensor: step %d out of range [0, %d)", s, steps))
	}
	out := mat.NewDense(batch, feat, nil)
	for b := 0; b < batch; b++ {
		base := (b*steps + s) * feat
		copy(out.RawRowView(b), t.data[base:base+feat])
	}
	return out
}

// SliceTime copies steps [from, to) of a batch-first tensor.
func (t *Tensor3) SliceTime(from, to int) *Tensor3 {
	batch, steps, feat := t.Dims()
	if from < 0 || to > steps || from > to {
		panic(fmt.Sprintf("tensor: time slice [%d, %d) out of range [0, %d)", from, to, steps))
	}
	n := to - from
	out := Zeros(batch, n, feat, t.dev)
	for b := 0; b < batch; b++ {
		src := (b*steps + from) * feat
		dst := b * n * feat
		copy(out.data[dst:dst+n*feat], t.data[src:src+n*feat])
	}
	return out
}

// FromSteps assembles per-step (batch, feature) matrices into a batch-first
// (batch, len(steps), feature) tensor.
func FromSteps(steps []*mat.Dense, dev device.Device) *Tensor3 {
	if len(steps) == 0 {
		panic("tensor: FromSteps needs at least one step")
	}
	batch, feat := steps[0].Dims()
	out := Zeros(batch, len(steps), feat, dev)
	for s, m := range steps {
		r, c := m.Dims()
		if r != batch || c != feat {
			panic(fmt.Sprintf("tensor: step %d has shape (%d, %d), expected (%d, %d)", s, r, c, batch, feat))
		}
		for b := 0; b < batch; b++ {
			base := (b*len(steps) + s) * feat
			mat.Row(out.data[base:base+feat], b, m)
		}
	}
	return out
}

// Stack places matrices of equal shape along a new first axis.
func Stack(slabs []*mat.Dense, dev device.Device) *Tensor3 {
	if len(slabs) == 0 {
		panic("tensor: Stack needs at least one matrix")
	}
	r, c := slabs[0].Dims()
	out := Zeros(len(slabs), r, c, dev)
	for i, m := range slabs {
		mr, mc := m.Dims()
		if mr != r || mc != c {
			panic(fmt.Sprintf("tensor: slab %d has shape (%d, %d), expected (%d, %d)", i, mr, mc, r, c))
		}
		out.Slab(i).Copy(m)
	}
	return out
}

func (t *Tensor3) String() string {
	return fmt.Sprintf("Tensor3(%d, %d, %d) on %s", t.dims[0], t.dims[1], t.dims[2], t.dev.Type())
}
