package layer

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Param is a named view over learnable storage owned by a layer.
// Data aliases the layer's weights, so writes through it update the layer.
type Param struct {
	Name  string
	Shape []int
	Data  []float64
}

// Size returns the number of elements.
func (p Param) Size() int {
	return len(p.Data)
}

// Prefixed returns params with prefix + "." prepended to every name.
func Prefixed(prefix string, params []Param) []Param {
	out := make([]Param, len(params))
	for i, p := range params {
		out[i] = Param{Name: prefix + "." + p.Name, Shape: p.Shape, Data: p.Data}
	}
	return out
}

// countParams sums the sizes of params.
func countParams(params []Param) int {
	n := 0
	for _, p := range params {
		n += p.Size()
	}
	return n
}

// flatten copies params into one slice, in order.
func flatten(params []Param) []float64 {
	out := make([]float64, 0, countParams(params))
	for _, p := range params {
		out = append(out, p.Data...)
	}
	return out
}

// scatter copies src back into params, in order. It panics if the length of
// src differs from the total parameter count.
func scatter(params []Param, src []float64) {
	if n := countParams(params); len(src) != n {
		panic(fmt.Sprintf("layer: SetParams got %d values, expected %d", len(src), n))
	}
	off := 0
	for _, p := range params {
		copy(p.Data, src[off:off+len(p.Data)])
		off += len(p.Data)
	}
}

// NewSource returns the random source used for weight init and dropout masks.
func NewSource(seed uint64) rand.Source {
	return rand.NewSource(seed)
}

// uniformFill draws every element of dst from U(-bound, bound).
func uniformFill(dst []float64, bound float64, src rand.Source) {
	u := distuv.Uniform{Min: -bound, Max: bound, Src: src}
	for i := range dst {
		dst[i] = u.Rand()
	}
}
