package supervisor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cwsl/rf-engine/internal/audio"
	"github.com/cwsl/rf-engine/internal/control"
	"github.com/cwsl/rf-engine/internal/metrics"
	"github.com/cwsl/rf-engine/internal/rfconfig"
	"github.com/cwsl/rf-engine/internal/sdr"
	"github.com/cwsl/rf-engine/internal/window"
)

type fakeEncoder struct{}

func (fakeEncoder) Encode(pcm []int16) ([]byte, uint16, error) { return nil, audio.FormatPCM, nil }

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []any
}

func (r *recordingPublisher) Send(payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, payload)
	return nil
}

func (r *recordingPublisher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

func newTestSupervisor() (*Supervisor, *sdr.MockDriver, *recordingPublisher) {
	driver := &sdr.MockDriver{}
	pub := &recordingPublisher{}
	m := metrics.New()
	streamer := audio.NewStreamer("127.0.0.1", 1, fakeEncoder{})
	mb := &control.Mailbox{}
	s := New(driver, pub, streamer, m, mb)
	return s, driver, pub
}

func TestTrimToSpanBasic(t *testing.T) {
	f := []float64{-100, -50, 0, 50, 100}
	first, last := trimToSpan(f, -50, 50)
	if first != 1 || last != 3 {
		t.Fatalf("trimToSpan = (%d,%d), want (1,3)", first, last)
	}
}

func TestTrimToSpanNoMatch(t *testing.T) {
	f := []float64{-100, -50}
	first, last := trimToSpan(f, 1000, 2000)
	if first <= last {
		t.Fatalf("expected no match (first>last), got (%d,%d)", first, last)
	}
}

func TestIterateSkipsWhenTotalBytesExceedsRing(t *testing.T) {
	s, _, pub := newTestSupervisor()
	// A sample rate whose total_bytes (2*fs) exceeds the 100MB ring.
	s.mailboxPutForTest(rfconfig.Desired{
		CenterFreqHz: 100000000,
		SampleRateHz: 1e9,
		SpanHz:       1000,
		RBWHz:        1000,
		WindowType:   window.Hamming,
		Scale:        "dbm",
	})
	s.iterate(context.Background())
	if pub.count() != 0 {
		t.Fatalf("expected no publish when total_bytes exceeds ring capacity")
	}
}

func TestIterateAppliesHardwareOnceAcrossScaleOnlyChanges(t *testing.T) {
	s, driver, pub := newTestSupervisor()
	_ = driver

	base := rfconfig.Desired{
		CenterFreqHz: 100000000,
		SampleRateHz: 48000,
		SpanHz:       20000,
		RBWHz:        1000,
		WindowType:   window.Hamming,
		Scale:        "dbm",
	}

	// Prefill the large ring so acquisition succeeds immediately.
	prefill(s, int(2*base.SampleRateHz))

	s.mailboxPutForTest(base)
	s.iterate(context.Background())
	if pub.count() != 1 {
		t.Fatalf("expected 1 publish after first config, got %d", pub.count())
	}

	second := base
	second.Scale = "w"
	prefill(s, int(2*second.SampleRateHz))
	s.mailboxPutForTest(second)
	s.iterate(context.Background())
	if pub.count() != 2 {
		t.Fatalf("expected 2 publishes after second config, got %d", pub.count())
	}

	applied := s.device.(*sdr.MockDevice).AppliedConfigs()
	if len(applied) != 1 {
		t.Fatalf("ApplyConfig called %d times, want 1 (scale-only change should not reapply hardware)", len(applied))
	}
}

func prefill(s *Supervisor, n int) {
	s.largeRing.Write(make([]byte, n))
}

// mailboxPutForTest is a small seam so the test can drive the same
// Mailbox the supervisor reads from without exporting internals.
func (s *Supervisor) mailboxPutForTest(d rfconfig.Desired) {
	s.mailbox.Put(d)
}

func TestWaitForAcquisitionTimesOut(t *testing.T) {
	s, _, _ := newTestSupervisor()
	start := time.Now()
	// Nothing is ever written to the ring, so this must block for the
	// full acquisitionTimeout budget and then report failure.
	ok := s.waitForAcquisition(1 << 20)
	if ok {
		t.Fatalf("expected acquisition wait to fail")
	}
	if time.Since(start) < acquisitionPollEvery {
		t.Fatalf("expected at least one poll interval to elapse")
	}
}

func TestWaitForAcquisitionSucceedsWhenRingAlreadyFull(t *testing.T) {
	s, _, _ := newTestSupervisor()
	prefill(s, 4096)
	start := time.Now()
	if !s.waitForAcquisition(4096) {
		t.Fatalf("expected acquisition wait to succeed immediately")
	}
	if time.Since(start) >= acquisitionTimeout {
		t.Fatalf("expected an immediate success, not a full timeout wait")
	}
}
