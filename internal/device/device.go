// Package device describes where tensors live: host memory or an accelerator.
package device

import (
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// EnvDevice overrides device selection. "cpu" or "host" forces host memory.
const EnvDevice = "SEQREG_DEVICE"

// Type represents the hardware device used for tensor placement.
type Type int

const (
	CPU Type = iota
	GPU
)

func (t Type) String() string {
	switch t {
	case CPU:
		return "cpu"
	case GPU:
		return "gpu"
	default:
		return "unknown"
	}
}

// Device is a placement target for tensors.
type Device interface {
	Type() Type
	Name() string
	IsAvailable() bool
}

// Same reports whether a and b denote the same placement.
// A nil device is treated as the host.
func Same(a, b Device) bool {
	if a == nil {
		a = Host()
	}
	if b == nil {
		b = Host()
	}
	return a.Type() == b.Type() && a.Name() == b.Name()
}

var (
	defaultOnce sync.Once
	defaultDev  Device
)

// Default returns the best available device for the current process.
// The accelerator is probed once; when it is missing, or when EnvDevice
// asks for the host, the host device is returned.
func Default() Device {
	defaultOnce.Do(func() {
		defaultDev = selectDefault(os.Getenv(EnvDevice))
	})
	return defaultDev
}

func selectDefault(pref string) Device {
	log := logrus.WithField("component", "device")

	switch strings.ToLower(strings.TrimSpace(pref)) {
	case "cpu", "host":
		log.WithField(EnvDevice, pref).Debug("host device forced")
		return Host()
	}

	acc, err := Accelerator()
	if err != nil {
		log.WithError(err).Debug("no accelerator, using host memory")
		return Host()
	}
	log.WithField("device", acc.Name()).Debug("accelerator selected")
	return acc
}
