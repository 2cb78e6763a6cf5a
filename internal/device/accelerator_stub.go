//go:build !wgpu
// +build !wgpu

package device

// probeAccelerator is a stub for builds without the wgpu tag.
func probeAccelerator() (*GPUDevice, error) {
	return nil, ErrNoAccelerator
}
