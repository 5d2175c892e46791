// Package window builds the analysis windows used by the Welch PSD
// engine and the equivalent-noise-bandwidth (ENBW) table the parameter
// resolver uses to size the FFT from a requested resolution bandwidth.
package window

import (
	"math"
	"strings"
)

// Type identifies one of the closed-form windows spec.md §4.3 defines.
// Unknown tags normalize to Hamming, the engine's default.
type Type string

const (
	Rectangular Type = "rectangular"
	Hann        Type = "hann"
	Hamming     Type = "hamming"
	Blackman    Type = "blackman"
	FlatTop     Type = "flattop"
	Bartlett    Type = "bartlett"
	Kaiser      Type = "kaiser"
	Tukey       Type = "tukey"
)

// Normalize lowercases and maps an arbitrary tag onto a known Type,
// falling back to Hamming for anything unrecognized (spec.md: "unknown
// window -> hamming").
func Normalize(tag string) Type {
	tag = strings.ToLower(tag)
	switch Type(tag) {
	case Rectangular, Hann, Hamming, Blackman, FlatTop, Bartlett, Kaiser, Tukey:
		return Type(tag)
	default:
		return Hamming
	}
}

// Generate returns an n-long real-valued window for the given type.
// Kaiser and Tukey fall back to Hamming's shape: spec.md reserves
// their true shape but does not specify it.
func Generate(t Type, n int) []float64 {
	w := make([]float64, n)
	if n == 0 {
		return w
	}
	if n == 1 {
		w[0] = 1
		return w
	}
	m := float64(n - 1)

	switch t {
	case Rectangular:
		for i := range w {
			w[i] = 1
		}
	case Hann:
		for i := range w {
			w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/m))
		}
	case Blackman:
		for i := range w {
			x := float64(i)
			w[i] = 0.42 - 0.5*math.Cos(2*math.Pi*x/m) + 0.08*math.Cos(4*math.Pi*x/m)
		}
	case FlatTop:
		for i := range w {
			x := float64(i)
			w[i] = 1 -
				1.93*math.Cos(2*math.Pi*x/m) +
				1.29*math.Cos(4*math.Pi*x/m) -
				0.388*math.Cos(6*math.Pi*x/m) +
				0.032*math.Cos(8*math.Pi*x/m)
		}
	case Bartlett:
		half := m / 2
		for i := range w {
			w[i] = 1 - math.Abs((float64(i)-half)/half)
		}
	case Hamming, Kaiser, Tukey:
		fallthrough
	default:
		for i := range w {
			w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/m)
		}
	}
	return w
}

// ENBW returns the equivalent-noise-bandwidth factor, in bins, for the
// given window tag. Every defined tag returns a positive finite value.
func ENBW(t Type) float64 {
	switch t {
	case Rectangular:
		return 1.000
	case Hamming:
		return 1.363
	case Hann:
		return 1.500
	case Blackman:
		return 1.730
	case FlatTop:
		return 3.770
	case Bartlett:
		return 1.330
	case Kaiser:
		return 1.800
	case Tukey:
		return 1.500
	default:
		return 1.363
	}
}
