package sdr

import (
	"context"
	"testing"
)

func TestRecoverSucceedsOnFirstAttempt(t *testing.T) {
	driver := &MockDriver{}
	device := &MockDevice{}
	device.StartRX(context.Background(), nil)

	dev, err := Recover(context.Background(), driver, device)
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if dev == nil {
		t.Fatalf("expected a new device")
	}
	if !device.Closed() {
		t.Fatalf("old device was not closed")
	}
	if device.RXRunning() {
		t.Fatalf("old device RX still running")
	}
}

func TestRecoverRetriesWithinBudget(t *testing.T) {
	driver := &MockDriver{OpenFailures: 2}
	dev, err := Recover(context.Background(), driver, nil)
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if dev == nil {
		t.Fatalf("expected device after retries succeed")
	}
}

func TestRecoverExhaustsRetriesAndFails(t *testing.T) {
	driver := &MockDriver{OpenFailures: 10}
	_, err := Recover(context.Background(), driver, nil)
	if err == nil {
		t.Fatalf("expected error after exhausting retries")
	}
}

func TestRecoverNilDeviceSkipsStopClose(t *testing.T) {
	driver := &MockDriver{}
	_, err := Recover(context.Background(), driver, nil)
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
}
