package layer

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Dropout implements inverted dropout.
// During training, zeroes each element with probability p and scales the
// survivors by 1/(1-p). During inference, passes inputs through unchanged.
type Dropout struct {
	// Probability of dropping an element
	p float64

	// Training mode
	training bool

	// Seed the mask source was built from, reused by Clone
	seed uint64
	keep distuv.Bernoulli
}

// NewDropout creates a dropout layer in training mode.
// It panics if p is outside [0, 1).
func NewDropout(p float64, seed uint64) *Dropout {
	if p < 0 || p >= 1 {
		panic(fmt.Sprintf("layer: dropout probability %v outside [0, 1)", p))
	}
	return &Dropout{
		p:        p,
		training: true,
		seed:     seed,
		keep:     distuv.Bernoulli{P: 1 - p, Src: NewSource(seed)},
	}
}

// SetTraining sets whether the layer should be in training or inference mode.
func (d *Dropout) SetTraining(training bool) {
	d.training = training
}

// IsTraining returns whether the layer is in training mode.
func (d *Dropout) IsTraining() bool {
	return d.training
}

// Rate returns the drop probability.
func (d *Dropout) Rate() float64 {
	return d.p
}

// Forward applies the mask. In inference mode, or when p is 0, x itself is
// returned; otherwise the result is a new matrix and x is left untouched.
func (d *Dropout) Forward(x *mat.Dense) *mat.Dense {
	if !d.training || d.p == 0 {
		return x
	}

	scale := 1 / (1 - d.p)
	r, c := x.Dims()
	out := mat.NewDense(r, c, nil)
	out.Apply(func(_, _ int, v float64) float64 {
		if d.keep.Rand() == 0 {
			return 0
		}
		return v * scale
	}, x)
	return out
}

// Clone returns a copy with the same rate and mode and a mask source
// restarted from the original seed.
func (d *Dropout) Clone() *Dropout {
	c := NewDropout(d.p, d.seed)
	c.training = d.training
	return c
}

// Dropout has no learnable parameters.
func (d *Dropout) NamedParams() []Param { return nil }
func (d *Dropout) Params() []float64 { return nil }
func (d *Dropout) SetParams(params []float64) { scatter(nil, params) }
func (d *Dropout) NumParams() int { return 0 }
