package rfconfig

import (
	"testing"

	"github.com/cwsl/rf-engine/internal/window"
)

func TestNormalizeModeUnknownDefaultsToRealtime(t *testing.T) {
	if got := NormalizeMode("bogus"); got != ModeRealtime {
		t.Fatalf("NormalizeMode(bogus) = %v, want %v", got, ModeRealtime)
	}
	if got := NormalizeMode("FM"); got != ModeFM {
		t.Fatalf("NormalizeMode(FM) = %v, want %v", got, ModeFM)
	}
}

func TestHardwareEqualToleratesSampleRateJitter(t *testing.T) {
	a := Hardware{CenterFreqHz: 100000000, SampleRateHz: 2048000}
	b := a
	b.SampleRateHz = 2048000.0001
	if !a.Equal(b) {
		t.Fatalf("expected tiny sample-rate jitter to compare equal")
	}
	b.SampleRateHz = 2048100
	if a.Equal(b) {
		t.Fatalf("expected a real sample-rate difference to compare unequal")
	}
}

func TestValidRejectsAllZero(t *testing.T) {
	if (Desired{}).Valid() {
		t.Fatalf("expected an all-zero Desired to be invalid")
	}
	if !(Desired{CenterFreqHz: 1}).Valid() {
		t.Fatalf("expected a nonzero center frequency to be valid")
	}
	if !(Desired{SampleRateHz: 1}).Valid() {
		t.Fatalf("expected a nonzero sample rate to be valid")
	}
}

func TestFromMessageDefaultsAndTypes(t *testing.T) {
	msg := map[string]any{
		"center_freq_hz": float64(100000000),
		"sample_rate_hz": float64(2048000),
		"rf_mode":        "campaign",
		"window":         "hann",
		"scale":          "  DBUV ",
		"antenna_amp":    true,
	}
	d := FromMessage(msg)
	if d.RFMode != ModeCampaign {
		t.Fatalf("RFMode = %v, want campaign", d.RFMode)
	}
	if d.WindowType != window.Hann {
		t.Fatalf("WindowType = %v, want hann", d.WindowType)
	}
	if d.Scale != "dbuv" {
		t.Fatalf("Scale = %q, want trimmed/lowercased dbuv", d.Scale)
	}
	if !d.AmpEnabled {
		t.Fatalf("expected AmpEnabled true")
	}
	if d.CenterFreqHz != 100000000 || d.SampleRateHz != 2048000 {
		t.Fatalf("unexpected numeric fields: %+v", d)
	}
}

func TestFromMessageMissingScaleDefaultsToDbm(t *testing.T) {
	d := FromMessage(map[string]any{"center_freq_hz": float64(1)})
	if d.Scale != "dbm" {
		t.Fatalf("Scale = %q, want dbm default", d.Scale)
	}
}

func TestToHardwareExtractsSubset(t *testing.T) {
	d := Desired{
		CenterFreqHz: 1,
		SampleRateHz: 2,
		LNAGain:      3,
		VGAGain:      4,
		AmpEnabled:   true,
		PPMError:     5,
		SpanHz:       999, // not part of Hardware
	}
	h := d.ToHardware()
	want := Hardware{CenterFreqHz: 1, SampleRateHz: 2, LNAGain: 3, VGAGain: 4, AmpEnabled: true, PPMError: 5}
	if h != want {
		t.Fatalf("ToHardware() = %+v, want %+v", h, want)
	}
}
