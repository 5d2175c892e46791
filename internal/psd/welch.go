// Package psd implements the Welch-method power spectral density
// engine (C4), the dBm/dBµV/dBmV/W/V scaler (C5), and the FFT-size /
// overlap parameter resolver (C6) that derives them from a requested
// resolution bandwidth, window and sample rate.
package psd

import (
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/cwsl/rf-engine/internal/window"
)

// Config mirrors spec.md's PsdConfig: the inputs the Welch engine
// needs beyond the sample sequence itself.
type Config struct {
	WindowType window.Type
	SampleRate float64
	Nperseg    int
	Noverlap   int
}

// dcSpikeFraction is the fixed half-width, as a fraction of the bin
// count, that spec.md §4.2 step 7 repairs on each side of DC (about
// 0.5% of the spectrum in total); a data-driven width is
// reserved for future work (spec.md §9(b)).
const dcSpikeFraction = 0.0025

// Execute runs Welch's method over x and writes nperseg frequency and
// power bins into fOut/pOut, which must already be allocated to
// cfg.Nperseg length by the caller. If len(x) < cfg.Nperseg, no
// segments exist and pOut is left all zero (a defined, if unusual,
// result a caller may still publish).
func Execute(x []complex128, cfg Config, fOut, pOut []float64) {
	nfft := cfg.Nperseg
	for i := range pOut {
		pOut[i] = 0
	}

	step := cfg.Nperseg - cfg.Noverlap
	if step < 1 {
		step = 1
	}

	n := len(x)
	var segments int
	if n >= cfg.Nperseg {
		segments = (n-cfg.Nperseg)/step + 1
	}

	w := window.Generate(cfg.WindowType, cfg.Nperseg)
	var s2 float64
	for _, wi := range w {
		s2 += wi * wi
	}
	s2 /= float64(cfg.Nperseg)

	if segments > 0 {
		fft := fourier.NewCmplxFFT(nfft)
		seg := make([]complex128, nfft)
		spectrum := make([]complex128, nfft)

		for k := 0; k < segments; k++ {
			start := k * step
			for i := 0; i < cfg.Nperseg; i++ {
				idx := start + i
				if idx < n {
					seg[i] = x[idx] * complex(w[i], 0)
				} else {
					seg[i] = 0
				}
			}
			fft.Coefficients(spectrum, seg)
			for i := 0; i < nfft; i++ {
				mag := spectrum[i]
				pOut[i] += real(mag)*real(mag) + imag(mag)*imag(mag)
			}
		}

		if s2 > 0 {
			scale := 1.0 / (cfg.SampleRate * s2 * float64(segments) * float64(cfg.Nperseg))
			for i := range pOut {
				pOut[i] *= scale
			}
		}
	}

	fftshift(pOut)
	repairDCSpike(pOut)

	fs := cfg.SampleRate
	for i := 0; i < nfft; i++ {
		fOut[i] = -fs/2 + float64(i)*(fs/float64(nfft))
	}
}

// fftshift rotates a real-valued spectrum by n/2 so bin 0 carries the
// most negative frequency and bin n/2 carries DC. Applying it twice on
// an even-length array recovers the original.
func fftshift(p []float64) {
	n := len(p)
	if n < 2 {
		return
	}
	half := n / 2
	shifted := make([]float64, n)
	for i := 0; i < n; i++ {
		shifted[(i+half)%n] = p[i]
	}
	copy(p, shifted)
}

// repairDCSpike replaces the center bins around DC with the average of
// their immediate outer neighbors, masking the LO-leakage spike most
// direct-conversion front ends produce.
func repairDCSpike(p []float64) {
	n := len(p)
	if n == 0 {
		return
	}
	c := n / 2
	h := int(float64(n) * dcSpikeFraction)
	if h < 1 {
		h = 1
	}
	lo := c - h - 1
	hi := c + h + 1
	if lo < 0 || hi >= n {
		return
	}
	m := (p[lo] + p[hi]) / 2
	for i := c - h; i <= c+h; i++ {
		p[i] = m
	}
}
