package psd

import (
	"log"
	"math"

	"github.com/cwsl/rf-engine/internal/window"
)

// minNperseg is the smallest FFT size the engine will ever resolve to,
// regardless of how loose the requested RBW is.
const minNperseg = 256

// Desired is the subset of a control-plane config the resolver reads.
// It mirrors spec.md's DesiredConfig fields relevant to PSD sizing.
type Desired struct {
	SampleRateHz float64
	RBWHz        float64
	Overlap      float64 // 0..1
	WindowType   window.Type
}

// Resolved is the parameter resolver's output: a PSD Config plus the
// large acquisition ring's target byte count.
type Resolved struct {
	PSD             Config
	TotalBytes      int
	ActualRBWHz     float64
	RequestedRBWHz  float64
}

// Resolve derives FFT size, overlap and large-buffer sizing from a
// requested resolution bandwidth and sample rate, per spec.md §4.4.
func Resolve(d Desired) Resolved {
	enbw := window.ENBW(d.WindowType)

	rbwSafe := d.RBWHz
	if rbwSafe <= 0 {
		rbwSafe = 1000
	}

	npersegNeed := enbw * d.SampleRateHz / rbwSafe
	nperseg := nextPow2Int(int(math.Ceil(npersegNeed)))
	if nperseg < minNperseg {
		nperseg = minNperseg
	}

	noverlap := int(float64(nperseg) * d.Overlap)
	if noverlap < 0 {
		noverlap = 0
	}
	if noverlap > nperseg-1 {
		noverlap = nperseg - 1
	}

	return Resolved{
		PSD: Config{
			WindowType: d.WindowType,
			SampleRate: d.SampleRateHz,
			Nperseg:    nperseg,
			Noverlap:   noverlap,
		},
		TotalBytes:     int(2 * d.SampleRateHz),
		ActualRBWHz:    enbw * d.SampleRateHz / float64(nperseg),
		RequestedRBWHz: rbwSafe,
	}
}

func nextPow2Int(n int) int {
	if n < 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// LogSummary logs the resolved configuration, recovered from the
// original implementation's print_config_summary (original_source
// libs/psd.h) as an operational detail the spec's prose drops.
func (r Resolved) LogSummary() {
	log.Printf("[psd] resolved nperseg=%d noverlap=%d window=%s sample_rate=%.0f total_bytes=%d rbw_actual=%.2f rbw_requested=%.2f",
		r.PSD.Nperseg, r.PSD.Noverlap, r.PSD.WindowType, r.PSD.SampleRate, r.TotalBytes, r.ActualRBWHz, r.RequestedRBWHz)
}
