package layer

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/seqreg/internal/activations"
	"github.com/FlavioCFOliveira/seqreg/internal/tensor"
)

// lstmCell holds the weights of one LSTM layer.
// Gate layout inside every 4*hidden block: [input, forget, cell, output].
type lstmCell struct {
	inSize     int
	hiddenSize int

	inputWeights     *mat.Dense // [4*hidden, in]
	recurrentWeights *mat.Dense // [4*hidden, hidden]
	inputBiases      []float64  // 4*hidden
	recurrentBiases  []float64  // 4*hidden

	inputAct  activations.Activation
	forgetAct activations.Activation
	cellAct   activations.Activation
	outputAct activations.Activation
}

func newLSTMCell(inSize, hiddenSize int, src rand.Source) *lstmCell {
	gates := 4 * hiddenSize
	inputWeights := make([]float64, gates*inSize)
	recurrentWeights := make([]float64, gates*hiddenSize)
	inputBiases := make([]float64, gates)
	recurrentBiases := make([]float64, gates)

	// PyTorch nn.LSTM init: every parameter from U(-1/sqrt(hidden), 1/sqrt(hidden))
	bound := 1 / math.Sqrt(float64(hiddenSize))
	uniformFill(inputWeights, bound, src)
	uniformFill(recurrentWeights, bound, src)
	uniformFill(inputBiases, bound, src)
	uniformFill(recurrentBiases, bound, src)

	return &lstmCell{
		inSize:           inSize,
		hiddenSize:       hiddenSize,
		inputWeights:     mat.NewDense(gates, inSize, inputWeights),
		recurrentWeights: mat.NewDense(gates, hiddenSize, recurrentWeights),
		inputBiases:      inputBiases,
		recurrentBiases:  recurrentBiases,
		inputAct:         activations.Sigmoid{},
		forgetAct:        activations.Sigmoid{},
		cellAct:          activations.Tanh{},
		outputAct:        activations.Sigmoid{},
	}
}

// step advances one time step for the whole batch.
// x is (batch, in); h and c are (batch, hidden) and are not modified.
func (l *lstmCell) step(x, h, c *mat.Dense) (*mat.Dense, *mat.Dense) {
	batch, _ := x.Dims()
	hs := l.hiddenSize
	inputStart, forgetStart, cellStart, outputStart := 0, hs, hs*2, hs*3

	// preAct = x W_ih^T + h W_hh^T + b_ih + b_hh
	preAct := mat.NewDense(batch, 4*hs, nil)
	preAct.Mul(x, l.inputWeights.T())
	var rec mat.Dense
	rec.Mul(h, l.recurrentWeights.T())
	preAct.Add(preAct, &rec)

	hNew := mat.NewDense(batch, hs, nil)
	cNew := mat.NewDense(batch, hs, nil)
	for b := 0; b < batch; b++ {
		pre := preAct.RawRowView(b)
		floats.Add(pre, l.inputBiases)
		floats.Add(pre, l.recurrentBiases)

		cPrev := c.RawRowView(b)
		hRow := hNew.RawRowView(b)
		cRow := cNew.RawRowView(b)
		for i := 0; i < hs; i++ {
			ig := l.inputAct.Activate(pre[inputStart+i])
			fg := l.forgetAct.Activate(pre[forgetStart+i])
			cg := l.cellAct.Activate(pre[cellStart+i])
			og := l.outputAct.Activate(pre[outputStart+i])

			// c_new = forget * c_prev + input * cell_candidate
			cRow[i] = fg*cPrev[i] + ig*cg
			// h_new = output * tanh(c_new)
			hRow[i] = og * math.Tanh(cRow[i])
		}
	}
	return hNew, cNew
}

func (l *lstmCell) namedParams(k int) []Param {
	gates := 4 * l.hiddenSize
	return []Param{
		{Name: fmt.Sprintf("weight_ih_l%d", k), Shape: []int{gates, l.inSize}, Data: l.inputWeights.RawMatrix().Data},
		{Name: fmt.Sprintf("weight_hh_l%d", k), Shape: []int{gates, l.hiddenSize}, Data: l.recurrentWeights.RawMatrix().Data},
		{Name: fmt.Sprintf("bias_ih_l%d", k), Shape: []int{gates}, Data: l.inputBiases},
		{Name: fmt.Sprintf("bias_hh_l%d", k), Shape: []int{gates}, Data: l.recurrentBiases},
	}
}

func (l *lstmCell) clone() *lstmCell {
	c := *l
	c.inputWeights = mat.DenseCopyOf(l.inputWeights)
	c.recurrentWeights = mat.DenseCopyOf(l.recurrentWeights)
	c.inputBiases = append([]float64(nil), l.inputBiases...)
	c.recurrentBiases = append([]float64(nil), l.recurrentBiases...)
	return &c
}

// LSTM is a stack of Long Short-Term Memory layers over batch-first sequences.
// Layer 0 reads inSize features; every later layer reads the hidden state of
// the layer below. The recurrent state is always passed in explicitly.
type LSTM struct {
	inSize     int
	hiddenSize int
	numLayers  int

	cells []*lstmCell

	// Applied to the output sequence of every layer except the last
	dropout *Dropout
}

// NewLSTM creates a stacked LSTM. dropout may be nil.
func NewLSTM(inSize, hiddenSize, numLayers int, dropout *Dropout, src rand.Source) *LSTM {
	cells := make([]*lstmCell, numLayers)
	for k := range cells {
		width := hiddenSize
		if k == 0 {
			width = inSize
		}
		cells[k] = newLSTMCell(width, hiddenSize, src)
	}
	return &LSTM{
		inSize:     inSize,
		hiddenSize: hiddenSize,
		numLayers:  numLayers,
		cells:      cells,
		dropout:    dropout,
	}
}

// Forward runs the whole stack over every time step.
// x: (batch, time, in); h0, c0: (layers, batch, hidden).
// Returns the last layer's output sequence (batch, time, hidden) and the final
// state (h_n, c_n), each (layers, batch, hidden). h0 and c0 are not modified.
// It panics on shape disagreement.
func (l *LSTM) Forward(x, h0, c0 *tensor.Tensor3) (out, hn, cn *tensor.Tensor3) {
	batch, steps, feat := x.Dims()
	if feat != l.inSize || steps == 0 || batch == 0 {
		panic(fmt.Sprintf("layer: LSTM input %v does not match (batch, time, %d)", x, l.inSize))
	}
	if !h0.SameShape(l.numLayers, batch, l.hiddenSize) || !c0.SameShape(l.numLayers, batch, l.hiddenSize) {
		panic(fmt.Sprintf("layer: LSTM state %v / %v does not match (%d, %d, %d)",
			h0, c0, l.numLayers, batch, l.hiddenSize))
	}

	seq := make([]*mat.Dense, steps)
	for s := range seq {
		seq[s] = x.Step(s)
	}

	finalH := make([]*mat.Dense, l.numLayers)
	finalC := make([]*mat.Dense, l.numLayers)
	for k, cell := range l.cells {
		h, c := h0.Slab(k), c0.Slab(k)
		for s := 0; s < steps; s++ {
			h, c = cell.step(seq[s], h, c)
			seq[s] = h
		}
		finalH[k], finalC[k] = h, c

		if l.dropout != nil && k < l.numLayers-1 {
			for s := range seq {
				seq[s] = l.dropout.Forward(seq[s])
			}
		}
	}

	dev := x.Device()
	return tensor.FromSteps(seq, dev), tensor.Stack(finalH, dev), tensor.Stack(finalC, dev)
}

// SetTraining switches the inter-layer dropout between training and inference.
func (l *LSTM) SetTraining(training bool) {
	if l.dropout != nil {
		l.dropout.SetTraining(training)
	}
}

// NamedParams returns the weights of every layer, lowest layer first,
// using PyTorch's nn.LSTM names.
func (l *LSTM) NamedParams() []Param {
	params := make([]Param, 0, 4*l.numLayers)
	for k, cell := range l.cells {
		params = append(params, cell.namedParams(k)...)
	}
	return params
}

// Params returns all LSTM parameters flattened (copy).
func (l *LSTM) Params() []float64 {
	return flatten(l.NamedParams())
}

// SetParams updates weights and biases from a flattened slice.
func (l *LSTM) SetParams(params []float64) {
	scatter(l.NamedParams(), params)
}

// NumParams returns the total number of learnable values.
func (l *LSTM) NumParams() int {
	return countParams(l.NamedParams())
}

// Clone creates a deep copy of the LSTM stack.
func (l *LSTM) Clone() *LSTM {
	c := &LSTM{
		inSize:     l.inSize,
		hiddenSize: l.hiddenSize,
		numLayers:  l.numLayers,
		cells:      make([]*lstmCell, len(l.cells)),
	}
	for k, cell := range l.cells {
		c.cells[k] = cell.clone()
	}
	if l.dropout != nil {
		c.dropout = l.dropout.Clone()
	}
	return c
}

// InSize returns the input size of the LSTM.
func (l *LSTM) InSize() int {
	return l.inSize
}

// HiddenSize returns the hidden state size.
func (l *LSTM) HiddenSize() int {
	return l.hiddenSize
}

// NumLayers returns the number of stacked layers.
func (l *LSTM) NumLayers() int {
	return l.numLayers
}

// Dropout returns the inter-layer dropout, or nil.
func (l *LSTM) Dropout() *Dropout {
	return l.dropout
}
