// Package sdr defines the thin HAL boundary this engine drives (the
// "SDR driver" external interface) and the hardware recovery routine
// (C11) that closes and reopens a device after a fault. The concrete
// driver is out of scope per spec.md §1/§6; Device and Driver below
// are the only surface this engine depends on.
package sdr

import (
	"context"

	"github.com/cwsl/rf-engine/internal/rfconfig"
)

// Burst is one callback delivery of raw interleaved signed-8-bit IQ
// bytes from the driver.
type Burst struct {
	Data []byte
}

// BurstFunc is invoked by the driver for every received burst. It must
// not block or allocate on the hot path; the only work it does is
// duplicate the burst into the engine's two ring buffers.
type BurstFunc func(Burst)

// Device is an open handle to the front end.
type Device interface {
	// ApplyConfig pushes a hardware configuration to the device.
	ApplyConfig(ctx context.Context, cfg rfconfig.Hardware) error
	// StartRX begins streaming IQ bursts to fn.
	StartRX(ctx context.Context, fn BurstFunc) error
	// StopRX halts streaming without closing the device.
	StopRX(ctx context.Context) error
	// Close releases the device.
	Close() error
}

// Driver opens and initializes Device handles.
type Driver interface {
	Init() error
	Open(ctx context.Context) (Device, error)
}
