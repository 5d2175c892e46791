// Package rfconfig defines the configuration types that flow from the
// control plane through the supervisor to the SDR driver and the PSD
// engine: spec.md §3's "Desired configuration" and "Hardware
// configuration".
package rfconfig

import (
	"math"
	"strings"

	"github.com/cwsl/rf-engine/internal/window"
)

// Mode is the rf_mode enum. It is parsed and carried on every Desired
// config but never branched on in this core — its consumers live
// outside the specified subsystem (spec.md §9(c)).
type Mode string

const (
	ModeRealtime Mode = "realtime"
	ModeCampaign Mode = "campaign"
	ModeFM       Mode = "fm"
	ModeAM       Mode = "am"
)

// NormalizeMode lowercases and validates an rf_mode tag, defaulting to
// realtime for anything unrecognized.
func NormalizeMode(tag string) Mode {
	switch Mode(strings.ToLower(tag)) {
	case ModeRealtime, ModeCampaign, ModeFM, ModeAM:
		return Mode(strings.ToLower(tag))
	default:
		return ModeRealtime
	}
}

// Desired is one control-plane config message, owned by the
// supervisor's current snapshot for its lifetime.
type Desired struct {
	RFMode        Mode
	CenterFreqHz  uint64
	SampleRateHz  float64
	SpanHz        float64
	LNAGain       int
	VGAGain       int
	AmpEnabled    bool
	AntennaPort   int
	RBWHz         float64
	Overlap       float64
	WindowType    window.Type
	Scale         string
	PPMError      int
}

// Hardware is the subset of Desired delivered verbatim to the SDR
// driver. Two Hardware configs are equal iff every field matches,
// sample rate compared with a small tolerance (tuning hardware often
// reports a requested rate back with floating-point jitter).
type Hardware struct {
	CenterFreqHz uint64
	SampleRateHz float64
	LNAGain      int
	VGAGain      int
	AmpEnabled   bool
	PPMError     int
}

const sampleRateTolerance = 1e-6

// Equal reports whether h and o describe the same hardware state.
func (h Hardware) Equal(o Hardware) bool {
	if h.CenterFreqHz != o.CenterFreqHz {
		return false
	}
	if h.LNAGain != o.LNAGain || h.VGAGain != o.VGAGain {
		return false
	}
	if h.AmpEnabled != o.AmpEnabled || h.PPMError != o.PPMError {
		return false
	}
	return math.Abs(h.SampleRateHz-o.SampleRateHz) <= sampleRateTolerance*math.Max(1, math.Abs(h.SampleRateHz))
}

// ToHardware extracts the hardware-facing subset of a Desired config.
func (d Desired) ToHardware() Hardware {
	return Hardware{
		CenterFreqHz: d.CenterFreqHz,
		SampleRateHz: d.SampleRateHz,
		LNAGain:      d.LNAGain,
		VGAGain:      d.VGAGain,
		AmpEnabled:   d.AmpEnabled,
		PPMError:     d.PPMError,
	}
}

// Valid rejects a config where both center frequency and sample rate
// are zero, per spec.md §6.
func (d Desired) Valid() bool {
	return !(d.CenterFreqHz == 0 && d.SampleRateHz == 0)
}

// FromMessage builds a Desired config from a decoded control-plane
// payload, normalizing all enum-valued text fields to lowercase before
// lookup and defaulting unknown tags as spec.md §6 documents.
func FromMessage(msg map[string]any) Desired {
	d := Desired{
		RFMode:       NormalizeMode(stringField(msg, "rf_mode")),
		CenterFreqHz: uint64Field(msg, "center_freq_hz"),
		SampleRateHz: floatField(msg, "sample_rate_hz"),
		SpanHz:       floatField(msg, "span"),
		LNAGain:      intField(msg, "lna_gain"),
		VGAGain:      intField(msg, "vga_gain"),
		AmpEnabled:   boolField(msg, "antenna_amp"),
		AntennaPort:  intField(msg, "antenna_port"),
		RBWHz:        floatField(msg, "rbw_hz"),
		Overlap:      floatField(msg, "overlap"),
		WindowType:   window.Normalize(stringField(msg, "window")),
		Scale:        strings.ToLower(strings.TrimSpace(stringField(msg, "scale"))),
		PPMError:     intField(msg, "ppm_error"),
	}
	if d.Scale == "" {
		d.Scale = "dbm"
	}
	return d
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func floatField(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func intField(m map[string]any, key string) int {
	return int(floatField(m, key))
}

func uint64Field(m map[string]any, key string) uint64 {
	v := floatField(m, key)
	if v < 0 {
		return 0
	}
	return uint64(v)
}

func boolField(m map[string]any, key string) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return false
}
