package device

import (
	"sync"

	"github.com/pkg/errors"
)

// ErrNoAccelerator is returned by Accelerator when the process has no usable
// accelerator adapter.
var ErrNoAccelerator = errors.New("no accelerator available")

// GPUDevice is an accelerator adapter found by the probe.
type GPUDevice struct {
	name    string
	vendor  string
	backend string
}

func (d *GPUDevice) Type() Type { return GPU }
func (d *GPUDevice) Name() string { return d.name }
func (d *GPUDevice) IsAvailable() bool { return true }

// Vendor returns the adapter vendor as reported by the driver.
func (d *GPUDevice) Vendor() string { return d.vendor }

// Backend returns the graphics backend the adapter was found on.
func (d *GPUDevice) Backend() string { return d.backend }

var (
	accOnce sync.Once
	acc     *GPUDevice
	accErr  error
)

// Accelerator probes for an accelerator adapter once per process and returns
// the cached result on later calls.
func Accelerator() (*GPUDevice, error) {
	accOnce.Do(func() {
		acc, accErr = probeAccelerator()
		if accErr == nil && acc == nil {
			accErr = ErrNoAccelerator
		}
	})
	return acc, accErr
}
