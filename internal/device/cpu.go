package device

import (
	"strings"
	"sync"

	"github.com/klauspost/cpuid/v2"
)

// CPUDevice is host memory. Its name and feature list come from cpuid.
type CPUDevice struct {
	name     string
	cores    int
	features []string
}

var (
	hostOnce sync.Once
	host     *CPUDevice
)

// simdFeatures are the vector extensions reported for the host.
var simdFeatures = []cpuid.FeatureID{
	cpuid.SSE4,
	cpuid.AVX,
	cpuid.AVX2,
	cpuid.FMA3,
	cpuid.AVX512F,
	cpuid.ASIMD,
}

// Host returns the process-wide host device.
func Host() *CPUDevice {
	hostOnce.Do(func() {
		host = probeHost()
	})
	return host
}

func probeHost() *CPUDevice {
	name := strings.TrimSpace(cpuid.CPU.BrandName)
	if name == "" {
		name = "cpu"
	}

	var features []string
	for _, f := range simdFeatures {
		if cpuid.CPU.Supports(f) {
			features = append(features, f.String())
		}
	}

	return &CPUDevice{
		name:     name,
		cores:    cpuid.CPU.LogicalCores,
		features: features,
	}
}

func (d *CPUDevice) Type() Type { return CPU }
func (d *CPUDevice) Name() string { return d.name }
func (d *CPUDevice) IsAvailable() bool { return true }

// Cores returns the number of logical cores, or 0 when cpuid cannot tell.
func (d *CPUDevice) Cores() int { return d.cores }

// Features returns the SIMD extensions supported by the host.
func (d *CPUDevice) Features() []string {
	out := make([]string, len(d.features))
	copy(out, d.features)
	return out
}

// HasFeature reports whether the host supports the named SIMD extension.
func (d *CPUDevice) HasFeature(name string) bool {
	for _, f := range d.features {
		if strings.EqualFold(f, name) {
			return true
		}
	}
	return false
}
