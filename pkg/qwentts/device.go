package qwentts

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Device is a compute device name understood by the model provider.
type Device string

const (
	// DeviceAuto lets the provider place the weights.
	DeviceAuto Device = "auto"
	DeviceCUDA Device = "cuda"
	DeviceMPS  Device = "mps"
	DeviceCPU  Device = "cpu"
)

// ParseDevice parses a device name. Indexed CUDA devices ("cuda:1") are
// accepted as-is.
func ParseDevice(s string) (Device, error) {
	d := Device(strings.ToLower(strings.TrimSpace(s)))
	switch {
	case d == DeviceAuto, d == DeviceCUDA, d == DeviceMPS, d == DeviceCPU:
		return d, nil
	case strings.HasPrefix(string(d), "cuda:"):
		return d, nil
	}
	return "", fmt.Errorf("qwentts: unknown device %q", s)
}

func (d Device) String() string { return string(d) }

// DevicePlan is the device a checkpoint is loaded on and the device tried
// when that fails. An empty Fallback disables the second attempt.
type DevicePlan struct {
	Primary  Device `json:"primary" yaml:"primary"`
	Fallback Device `json:"fallback,omitempty" yaml:"fallback,omitempty"`
}

// DefaultDevicePlan tries Apple silicon first and falls back to the CPU.
var DefaultDevicePlan = DevicePlan{Primary: DeviceMPS, Fallback: DeviceCPU}

func (p DevicePlan) primary() Device {
	if p.Primary == "" {
		return DeviceAuto
	}
	return p.Primary
}

// HasFallback reports whether a second device is configured.
func (p DevicePlan) HasFallback() bool {
	return p.Fallback != "" && p.Fallback != p.primary()
}

func (p DevicePlan) String() string {
	if !p.HasFallback() {
		return p.primary().String()
	}
	return fmt.Sprintf("%s -> %s", p.primary(), p.Fallback)
}

// LoadResult is the outcome of LoadWithFallback.
type LoadResult struct {
	// Model is the loaded handle.
	Model Model

	// Device is the device the handle is bound to.
	Device Device

	// Fallback reports whether the primary device failed.
	Fallback bool

	// PrimaryErr is the primary device failure when Fallback is true.
	PrimaryErr error
}

// LoadWithFallback loads spec.Checkpoint on the plan's primary device and, if
// that fails, once more on the fallback device. spec.Device is ignored.
//
// When both attempts fail the returned error joins two *LoadError values.
func LoadWithFallback(ctx context.Context, loader Loader, spec LoadSpec, plan DevicePlan) (LoadResult, error) {
	spec.Device = plan.primary()
	m, err := loader.Load(ctx, spec)
	if err == nil {
		return LoadResult{Model: m, Device: spec.Device}, nil
	}
	primaryErr := &LoadError{Checkpoint: spec.Checkpoint, Device: spec.Device, Err: err}
	if !plan.HasFallback() || ctx.Err() != nil {
		return LoadResult{}, primaryErr
	}

	spec.Device = plan.Fallback
	m, err = loader.Load(ctx, spec)
	if err != nil {
		return LoadResult{}, errors.Join(primaryErr, &LoadError{Checkpoint: spec.Checkpoint, Device: spec.Device, Err: err})
	}
	return LoadResult{Model: m, Device: spec.Device, Fallback: true, PrimaryErr: primaryErr}, nil
}
