package model

import "github.com/pkg/errors"

var (
	// ErrInvalidConfiguration reports a constructor argument or batch size out of range.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrShapeMismatch reports a tensor whose shape disagrees with the model.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrDeviceMismatch reports an input and a hidden state placed on different devices.
	ErrDeviceMismatch = errors.New("device mismatch")

	// ErrUnknownParameter reports a parameter name the model does not own.
	ErrUnknownParameter = errors.New("unknown parameter")
)
