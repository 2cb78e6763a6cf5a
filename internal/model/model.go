// Package model implements the many-to-one sequence regressor: a stacked LSTM
// whose last time step is projected to one scalar and squashed by tanh.
package model

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/seqreg/internal/activations"
	"github.com/FlavioCFOliveira/seqreg/internal/device"
	"github.com/FlavioCFOliveira/seqreg/internal/layer"
	"github.com/FlavioCFOliveira/seqreg/internal/tensor"
)

// Hidden is the recurrent state (h, c), each shaped (num_layers, batch, hidden_size).
// It belongs to the caller: build a fresh one with InitHidden for every
// independent batch and thread it only within one sequence session.
type Hidden struct {
	H *tensor.Tensor3
	C *tensor.Tensor3
}

// Option configures a SequenceRegressor.
type Option func(*SequenceRegressor)

// WithLogger sets the logger. The default is logrus.StandardLogger().
func WithLogger(logger *logrus.Logger) Option {
	return func(m *SequenceRegressor) {
		m.logger = logger
	}
}

// WithDevice places hidden state on dev instead of device.Default().
func WithDevice(dev device.Device) Option {
	return func(m *SequenceRegressor) {
		m.dev = dev
	}
}

// SequenceRegressor maps (batch, time, input_size) sequences to (batch, 1)
// predictions in (-1, 1).
//
// Forward only reads parameters. In inference mode (Eval) it may be called
// from several goroutines at once; in training mode dropout draws from a
// shared source and calls must be serialised by the caller.
type SequenceRegressor struct {
	cfg Config

	lstm        *layer.LSTM
	headDropout *layer.Dropout
	fc          *layer.Dense
	out         activations.Activation

	training bool
	dev      device.Device
	logger   *logrus.Logger
}

// New validates cfg and builds a regressor in training mode.
// It returns ErrInvalidConfiguration before allocating anything if cfg is invalid.
func New(cfg Config, opts ...Option) (*SequenceRegressor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &SequenceRegressor{
		cfg:      cfg,
		out:      activations.Tanh{},
		training: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = logrus.StandardLogger()
	}
	if m.dev == nil {
		m.dev = device.Default()
	}

	seed := cfg.seed()
	src := layer.NewSource(seed)

	var between *layer.Dropout
	if cfg.NumLayers > 1 && cfg.Dropout > 0 {
		between = layer.NewDropout(cfg.Dropout, seed+1)
	}
	m.lstm = layer.NewLSTM(cfg.InputSize, cfg.HiddenSize, cfg.NumLayers, between, src)
	if cfg.DropoutBeforeProjection && cfg.Dropout > 0 {
		m.headDropout = layer.NewDropout(cfg.Dropout, seed+2)
	}
	m.fc = layer.NewDense(cfg.HiddenSize, 1, activations.Linear{}, src)

	m.logger.WithFields(logrus.Fields{
		"input_size":  cfg.InputSize,
		"hidden_size": cfg.HiddenSize,
		"num_layers":  cfg.NumLayers,
		"dropout":     cfg.Dropout,
		"head":        m.out.Name(),
		"params":      m.NumParams(),
		"device":      m.dev.Name(),
	}).Debug("sequence regressor built")

	return m, nil
}

// Forward runs x (batch, time, input_size) through the LSTM from the given
// initial state, keeps only the last time step, projects it to one value and
// applies tanh. The result is (batch, 1) with entries in (-1, 1); in float64,
// tanh of a pre-activation beyond about ±19 rounds to exactly ±1, so the bound
// is closed in practice. hidden is not modified.
//
// It returns ErrShapeMismatch if x or hidden disagree with the configuration
// or with each other, and ErrDeviceMismatch if they live on different devices.
func (m *SequenceRegressor) Forward(x *tensor.Tensor3, hidden Hidden) (*mat.Dense, error) {
	y, _, err := m.ForwardState(x, hidden)
	return y, err
}

// ForwardState is Forward that also returns the final recurrent state, so a
// long sequence can be fed in consecutive chunks by threading the state.
func (m *SequenceRegressor) ForwardState(x *tensor.Tensor3, hidden Hidden) (*mat.Dense, Hidden, error) {
	if err := m.checkInput(x, hidden); err != nil {
		return nil, Hidden{}, err
	}

	seq, hn, cn := m.lstm.Forward(x, hidden.H, hidden.C)

	// many-to-one: (batch, time, hidden) -> (batch, hidden)
	_, steps, _ := x.Dims()
	last := seq.Step(steps - 1)
	if m.headDropout != nil {
		last = m.headDropout.Forward(last)
	}

	y := m.fc.Forward(last)
	activations.Apply(m.out, y)
	return y, Hidden{H: hn, C: cn}, nil
}

func (m *SequenceRegressor) checkInput(x *tensor.Tensor3, hidden Hidden) error {
	if x == nil {
		return errors.Wrap(ErrShapeMismatch, "input is nil")
	}
	batch, steps, feat := x.Dims()
	if feat != m.cfg.InputSize {
		return errors.Wrapf(ErrShapeMismatch, "input has %d features per step, model expects %d", feat, m.cfg.InputSize)
	}
	if batch == 0 || steps == 0 {
		return errors.Wrapf(ErrShapeMismatch, "input %v has an empty batch or time axis", x)
	}

	states := []struct {
		name string
		t    *tensor.Tensor3
	}{
		{"h", hidden.H},
		{"c", hidden.C},
	}
	for _, s := range states {
		if s.t == nil {
			return errors.Wrapf(ErrShapeMismatch, "hidden state %s is nil", s.name)
		}
		if !s.t.SameShape(m.cfg.NumLayers, batch, m.cfg.HiddenSize) {
			d0, d1, d2 := s.t.Dims()
			return errors.Wrapf(ErrShapeMismatch, "hidden state %s is (%d, %d, %d), expected (%d, %d, %d)",
				s.name, d0, d1, d2, m.cfg.NumLayers, batch, m.cfg.HiddenSize)
		}
		if !device.Same(s.t.Device(), x.Device()) {
			return errors.Wrapf(ErrDeviceMismatch, "hidden state %s is on %s, input is on %s",
				s.name, s.t.Device().Name(), x.Device().Name())
		}
	}
	return nil
}

// InitHidden returns a zero (h, c) pair for batchSize sequences, placed on the
// model's device. Call it before the first Forward of every independent batch.
func (m *SequenceRegressor) InitHidden(batchSize int) (Hidden, error) {
	if batchSize <= 0 {
		return Hidden{}, errors.Wrapf(ErrInvalidConfiguration, "batch_size must be positive, got %d", batchSize)
	}
	return Hidden{
		H: tensor.Zeros(m.cfg.NumLayers, batchSize, m.cfg.HiddenSize, m.dev),
		C: tensor.Zeros(m.cfg.NumLayers, batchSize, m.cfg.HiddenSize, m.dev),
	}, nil
}

// Train enables dropout.
func (m *SequenceRegressor) Train() {
	m.setTraining(true)
}

// Eval disables dropout; Forward becomes deterministic and read-only.
func (m *SequenceRegressor) Eval() {
	m.setTraining(false)
}

func (m *SequenceRegressor) setTraining(training bool) {
	m.training = training
	m.lstm.SetTraining(training)
	if m.headDropout != nil {
		m.headDropout.SetTraining(training)
	}
}

// Training reports whether dropout is active.
func (m *SequenceRegressor) Training() bool {
	return m.training
}

// Config returns the configuration the model was built with.
func (m *SequenceRegressor) Config() Config {
	return m.cfg
}

// Device returns where InitHidden places new state.
func (m *SequenceRegressor) Device() device.Device {
	return m.dev
}

// To moves the model to dev. Later InitHidden calls allocate there; callers
// must move their input tensors as well.
func (m *SequenceRegressor) To(dev device.Device) *SequenceRegressor {
	if dev == nil {
		dev = device.Host()
	}
	m.logger.WithFields(logrus.Fields{
		"from": m.dev.Name(),
		"to":   dev.Name(),
	}).Debug("sequence regressor moved")
	m.dev = dev
	return m
}

// NamedParams lists every learnable tensor in a stable order: the LSTM layers
// bottom-up ("lstm.weight_ih_l0", ...), then "fc.weight" and "fc.bias".
// The Data slices alias the model's storage.
func (m *SequenceRegressor) NamedParams() []layer.Param {
	params := layer.Prefixed("lstm", m.lstm.NamedParams())
	return append(params, layer.Prefixed("fc", m.fc.NamedParams())...)
}

// NumParams returns the number of learnable values.
func (m *SequenceRegressor) NumParams() int {
	return m.lstm.NumParams() + m.fc.NumParams()
}

// Params returns a copy of every parameter in NamedParams order.
func (m *SequenceRegressor) Params() []float64 {
	return append(m.lstm.Params(), m.fc.Params()...)
}

// SetParams overwrites every parameter from a slice in NamedParams order.
func (m *SequenceRegressor) SetParams(params []float64) error {
	if n := m.NumParams(); len(params) != n {
		return errors.Wrapf(ErrShapeMismatch, "got %d parameter values, model has %d", len(params), n)
	}
	split := m.lstm.NumParams()
	m.lstm.SetParams(params[:split])
	m.fc.SetParams(params[split:])
	return nil
}

// LoadNamed overwrites parameters by name, e.g. weights exported from
// PyTorch's state_dict. Every parameter must be present with the right size;
// nothing is written unless all of them are.
func (m *SequenceRegressor) LoadNamed(values map[string][]float64) error {
	named := m.NamedParams()
	known := make(map[string]bool, len(named))
	for _, p := range named {
		known[p.Name] = true
		v, ok := values[p.Name]
		if !ok {
			return errors.Wrapf(ErrShapeMismatch, "parameter %s is missing", p.Name)
		}
		if len(v) != p.Size() {
			return errors.Wrapf(ErrShapeMismatch, "parameter %s has %d values, expected %d %v", p.Name, len(v), p.Size(), p.Shape)
		}
	}
	for name := range values {
		if !known[name] {
			return errors.Wrap(ErrUnknownParameter, name)
		}
	}

	for _, p := range named {
		copy(p.Data, values[p.Name])
	}
	return nil
}

// Clone returns a deep copy sharing no parameter storage with m.
func (m *SequenceRegressor) Clone() *SequenceRegressor {
	c := &SequenceRegressor{
		cfg:      m.cfg,
		lstm:     m.lstm.Clone(),
		fc:       m.fc.Clone(),
		out:      m.out,
		training: m.training,
		dev:      m.dev,
		logger:   m.logger,
	}
	if m.headDropout != nil {
		c.headDropout = m.headDropout.Clone()
	}
	return c
}

func (m *SequenceRegressor) String() string {
	return fmt.Sprintf("SequenceRegressor(input_size=%d, hidden_size=%d, num_layers=%d, dropout=%v)",
		m.cfg.InputSize, m.cfg.HiddenSize, m.cfg.NumLayers, m.cfg.Dropout)
}
