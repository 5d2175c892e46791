package sdr

import (
	"context"
	"fmt"
	"log"
	"time"
)

// recovery timing constants, per spec.md §4.10.
const (
	postStopSettle = 100 * time.Millisecond
	reopenBackoff  = 500 * time.Millisecond
	maxReopenTries = 3
)

// Recover idempotently closes device (if non-nil, stopping RX first)
// and attempts to reopen it via driver, up to maxReopenTries times.
// It returns the newly opened device on success.
func Recover(ctx context.Context, driver Driver, device Device) (Device, error) {
	if device != nil {
		log.Printf("[recovery] stopping RX and closing device")
		_ = device.StopRX(ctx)
		_ = device.Close()
		time.Sleep(postStopSettle)
	}

	var lastErr error
	for attempt := 1; attempt <= maxReopenTries; attempt++ {
		time.Sleep(reopenBackoff)
		log.Printf("[recovery] reopen attempt %d/%d", attempt, maxReopenTries)
		dev, err := driver.Open(ctx)
		if err == nil {
			log.Printf("[recovery] device reopened on attempt %d", attempt)
			return dev, nil
		}
		lastErr = err
		log.Printf("[recovery] open attempt %d failed: %v", attempt, err)
	}
	return nil, fmt.Errorf("sdr: recovery exhausted %d attempts: %w", maxReopenTries, lastErr)
}
