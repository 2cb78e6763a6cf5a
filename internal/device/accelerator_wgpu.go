//go:build wgpu
// +build wgpu

package device

import (
	"fmt"
	"strings"

	"github.com/openfluke/webgpu/wgpu"
	"github.com/pkg/errors"
)

// probeAccelerator asks WebGPU for an adapter, preferring high performance,
// then low power, then whatever the driver hands out by default.
func probeAccelerator() (*GPUDevice, error) {
	instance := wgpu.CreateInstance(nil)
	if instance == nil {
		return nil, errors.Wrap(ErrNoAccelerator, "webgpu instance")
	}
	defer instance.Release()

	attempts := []*wgpu.RequestAdapterOptions{
		{PowerPreference: wgpu.PowerPreferenceHighPerformance},
		{PowerPreference: wgpu.PowerPreferenceLowPower},
		nil,
	}

	var lastErr error
	for _, opts := range attempts {
		adapter, err := instance.RequestAdapter(opts)
		if err != nil || adapter == nil {
			lastErr = err
			continue
		}
		info := adapter.GetInfo()
		adapter.Release()

		name := strings.TrimSpace(info.Name)
		if name == "" {
			name = fmt.Sprintf("gpu-%04x", info.DeviceId)
		}
		return &GPUDevice{
			name:    name,
			vendor:  strings.TrimSpace(info.VendorName),
			backend: fmt.Sprint(info.BackendType),
		}, nil
	}

	if lastErr == nil {
		return nil, ErrNoAccelerator
	}
	return nil, errors.Wrap(ErrNoAccelerator, lastErr.Error())
}
