// Package supervisor implements the main loop (C10): the state
// machine that takes config snapshots from the control-link mailbox,
// reconfigures the SDR front end without interrupting RX when
// possible, waits for the spectrum acquisition buffer to fill, runs
// the Welch PSD engine and scaler, publishes the result, and starts
// (once) the audio consumer that runs continuously thereafter.
package supervisor

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/cwsl/rf-engine/internal/audio"
	"github.com/cwsl/rf-engine/internal/consumer"
	"github.com/cwsl/rf-engine/internal/control"
	"github.com/cwsl/rf-engine/internal/fm"
	"github.com/cwsl/rf-engine/internal/iq"
	"github.com/cwsl/rf-engine/internal/metrics"
	"github.com/cwsl/rf-engine/internal/psd"
	"github.com/cwsl/rf-engine/internal/ring"
	"github.com/cwsl/rf-engine/internal/rfconfig"
	"github.com/cwsl/rf-engine/internal/sdr"
)

const (
	noPendingConfigSleep   = 50 * time.Millisecond
	acquisitionPollEvery   = 5 * time.Millisecond
	acquisitionTimeout     = 5 * time.Second
	smallRingCapacityBytes = 1 << 16 // a few audio chunks, per spec.md §2
	audioChunkBytes        = 16384   // recovered from rf_audio.c AUDIO_CHUNK_SAMPLES
	largeRingCapacityBytes = 100 << 20
	deemphUs               = 75.0
	bootstrapOpenRetry     = 5 * time.Second
)

// Publisher sends a completed PSD message to the control plane.
type Publisher interface {
	Send(payload any) error
}

// Supervisor drives the whole engine. Construct with New, then call
// Run in its own goroutine; it loops until ctx is canceled.
type Supervisor struct {
	driver    sdr.Driver
	publisher Publisher
	metrics   *metrics.Engine
	streamer  *audio.Streamer
	mailbox   *control.Mailbox

	largeRing   *ring.Buffer
	audioWorker *consumer.Worker

	device              sdr.Device
	rxRunning           bool
	audioStarted        bool
	lastAppliedHW       rfconfig.Hardware
	lastAppliedHWValid  bool
	lastRadioSampleRate float64

	// fmState is written by the supervisor goroutine whenever the
	// input sample rate changes and read by the audio worker
	// goroutine on every chunk; an atomic pointer swap is the
	// synchronization boundary between them (the *fm.State object
	// itself is then mutated only by the audio goroutine, per
	// spec.md §5's "FM state: not shared" row).
	fmState atomic.Pointer[fm.State]
}

// New constructs a Supervisor. The audio consumer's Sink is wired
// internally so the FM demodulator state stays owned exclusively by
// the audio worker's goroutine, per spec.md §5.
func New(driver sdr.Driver, publisher Publisher, streamer *audio.Streamer, m *metrics.Engine, mailbox *control.Mailbox) *Supervisor {
	s := &Supervisor{
		driver:    driver,
		publisher: publisher,
		metrics:   m,
		streamer:  streamer,
		mailbox:   mailbox,
		largeRing: ring.New(largeRingCapacityBytes),
	}
	sink := &audioSink{streamer: streamer, metrics: m, supervisor: s}
	s.audioWorker = consumer.New("audio", smallRingCapacityBytes, audioChunkBytes, sink)
	return s
}

// Run executes the supervisor loop until ctx is canceled.
func (s *Supervisor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		s.iterate(ctx)
	}
}

func (s *Supervisor) iterate(ctx context.Context) {
	desired, ok := s.mailbox.Take()
	if !ok {
		time.Sleep(noPendingConfigSleep)
		return
	}

	resolved := psd.Resolve(psd.Desired{
		SampleRateHz: desired.SampleRateHz,
		RBWHz:        desired.RBWHz,
		Overlap:      desired.Overlap,
		WindowType:   desired.WindowType,
	})
	resolved.LogSummary()

	if resolved.TotalBytes > s.largeRing.Capacity() {
		log.Printf("[supervisor] requested total_bytes=%d exceeds ring capacity=%d, skipping cycle",
			resolved.TotalBytes, s.largeRing.Capacity())
		return
	}

	if err := s.applyHardware(ctx, desired); err != nil {
		log.Printf("[supervisor] hardware apply failed: %v", err)
		s.recover(ctx)
		return
	}

	if s.lastRadioSampleRate != desired.SampleRateHz {
		s.fmState.Store(fm.New(desired.SampleRateHz, 48000, deemphUs, fm.DefaultOptions()))
		s.lastRadioSampleRate = desired.SampleRateHz
	}

	if !s.audioStarted {
		s.audioWorker.Start()
		s.audioStarted = true
	}

	if !s.waitForAcquisition(resolved.TotalBytes) {
		s.metrics.AcquisitionTimeouts.Inc()
		log.Printf("[supervisor] acquisition timed out after %s, recovering", acquisitionTimeout)
		s.recover(ctx)
		return
	}

	s.publish(desired, resolved)
}

func (s *Supervisor) applyHardware(ctx context.Context, desired rfconfig.Desired) error {
	hw := desired.ToHardware()

	if !s.rxRunning {
		if s.device == nil {
			dev, err := s.openDeviceWithRetry(ctx)
			if err != nil {
				return fmt.Errorf("open device: %w", err)
			}
			s.device = dev
		}
		if err := s.device.ApplyConfig(ctx, hw); err != nil {
			return fmt.Errorf("apply config: %w", err)
		}
		if err := s.device.StartRX(ctx, s.onBurst); err != nil {
			return fmt.Errorf("start rx: %w", err)
		}
		s.rxRunning = true
		s.lastAppliedHW = hw
		s.lastAppliedHWValid = true
		return nil
	}

	if !s.lastAppliedHWValid || !hw.Equal(s.lastAppliedHW) {
		// Never stop RX just to reconfigure: apply in place.
		if err := s.device.ApplyConfig(ctx, hw); err != nil {
			return fmt.Errorf("reapply config: %w", err)
		}
		s.lastAppliedHW = hw
		s.lastAppliedHWValid = true
	}
	return nil
}

// openDeviceWithRetry implements spec.md §6's "Device open failure
// (startup): retry forever, 5s cadence" policy. It runs whenever no
// device is held (s.device == nil): at the first open of the process's
// life, and on the next config cycle after a recover call that failed
// to reopen the device. Faults on an open device go through the
// bounded recovery path in recover instead.
func (s *Supervisor) openDeviceWithRetry(ctx context.Context) (sdr.Device, error) {
	for {
		dev, err := s.driver.Open(ctx)
		if err == nil {
			return dev, nil
		}
		log.Printf("[supervisor] device open failed, retrying in %s: %v", bootstrapOpenRetry, err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(bootstrapOpenRetry):
		}
	}
}

// onBurst is the RX callback: it duplicates each burst into both ring
// buffers and must stay allocation-free and non-blocking.
func (s *Supervisor) onBurst(b sdr.Burst) {
	s.largeRing.Write(b.Data)
	s.audioWorker.Ring().Write(b.Data)
}

func (s *Supervisor) waitForAcquisition(totalBytes int) bool {
	deadline := time.Now().Add(acquisitionTimeout)
	for time.Now().Before(deadline) {
		if s.largeRing.Available() >= totalBytes {
			return true
		}
		time.Sleep(acquisitionPollEvery)
	}
	return s.largeRing.Available() >= totalBytes
}

func (s *Supervisor) publish(desired rfconfig.Desired, resolved psd.Resolved) {
	start := time.Now()

	raw := make([]byte, resolved.TotalBytes)
	n := s.largeRing.Read(raw)
	samples := iq.Decode(raw[:n])

	nfft := resolved.PSD.Nperseg
	fOut := make([]float64, nfft)
	pOut := make([]float64, nfft)
	psd.Execute(samples, resolved.PSD, fOut, pOut)
	psd.Scale(pOut, desired.Scale)

	lowF := -desired.SpanHz / 2
	highF := desired.SpanHz / 2
	first, last := trimToSpan(fOut, lowF, highF)
	if first > last {
		log.Printf("[supervisor] span %v produced no bins, skipping publish", desired.SpanHz)
		return
	}

	pxx := pOut[first : last+1]
	startAbs := fOut[first] + float64(desired.CenterFreqHz)
	endAbs := fOut[last] + float64(desired.CenterFreqHz)

	msg := map[string]any{
		"start_freq_hz": startAbs,
		"end_freq_hz":   endAbs,
		"Pxx":           pxx,
	}

	if err := s.publisher.Send(msg); err != nil {
		log.Printf("[supervisor] publish failed: %v", err)
		return
	}

	s.metrics.PSDPublishes.Inc()
	s.metrics.PSDPublishLatency.Observe(time.Since(start).Seconds())
}

// trimToSpan returns the first index with f >= lowF and the last
// index with f <= highF, per spec.md §4.9 step 9.
func trimToSpan(f []float64, lowF, highF float64) (first, last int) {
	first, last = -1, -1
	for i, v := range f {
		if v >= lowF && first == -1 {
			first = i
		}
		if v <= highF {
			last = i
		}
	}
	if first == -1 || last == -1 || first > last {
		return 1, 0
	}
	return first, last
}

func (s *Supervisor) recover(ctx context.Context) {
	s.rxRunning = false
	s.lastAppliedHWValid = false
	s.metrics.HardwareRecoveries.Inc()

	dev, err := sdr.Recover(ctx, s.driver, s.device)
	if err != nil {
		log.Printf("[supervisor] recovery failed, will retry on next config cycle: %v", err)
		s.device = nil
		return
	}
	s.device = dev
}
