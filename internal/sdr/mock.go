package sdr

import (
	"context"
	"fmt"
	"sync"

	"github.com/cwsl/rf-engine/internal/rfconfig"
)

// MockDriver is an in-memory Driver used by tests and by local
// development without real hardware attached. OpenFailures lets a test
// script a number of failed opens before Open starts succeeding, to
// exercise the bounded-retry recovery path.
type MockDriver struct {
	mu           sync.Mutex
	OpenFailures int
	opens        int
}

func (d *MockDriver) Init() error { return nil }

func (d *MockDriver) Open(ctx context.Context) (Device, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opens++
	if d.opens <= d.OpenFailures {
		return nil, fmt.Errorf("sdr: mock open failure %d/%d", d.opens, d.OpenFailures)
	}
	return &MockDevice{}, nil
}

// MockDevice is a Device that records applied configs and RX state
// for assertions.
type MockDevice struct {
	mu      sync.Mutex
	applied []rfconfig.Hardware
	rxOn    bool
	closed  bool
	burstFn BurstFunc
}

func (d *MockDevice) ApplyConfig(ctx context.Context, cfg rfconfig.Hardware) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.applied = append(d.applied, cfg)
	return nil
}

func (d *MockDevice) StartRX(ctx context.Context, fn BurstFunc) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rxOn = true
	d.burstFn = fn
	return nil
}

func (d *MockDevice) StopRX(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rxOn = false
	return nil
}

func (d *MockDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// Emit delivers a burst to the registered BurstFunc, simulating the
// driver's RX callback.
func (d *MockDevice) Emit(data []byte) {
	d.mu.Lock()
	fn := d.burstFn
	d.mu.Unlock()
	if fn != nil {
		fn(Burst{Data: data})
	}
}

// AppliedConfigs returns every hardware config applied so far.
func (d *MockDevice) AppliedConfigs() []rfconfig.Hardware {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]rfconfig.Hardware(nil), d.applied...)
}

func (d *MockDevice) RXRunning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rxOn
}

func (d *MockDevice) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}
