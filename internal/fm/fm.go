// Package fm implements the narrowband FM demodulator state machine:
// phase-difference demod, decimation to audio rate, de-emphasis,
// optional DC blocking, and an RBJ-cookbook biquad low-pass, ending in
// 16-bit PCM. Owned exclusively by the audio consumer thread after
// initialization; see spec.md §5 "FM state" row.
package fm

import "math"

// dcBlockR is the DC blocker's pole, matching fm_radio.c's fixed
// constant.
const dcBlockR = 0.996

// lpfCutoffHz and lpfQ fix the RBJ biquad's corner and Q per spec.md
// §4.6 step 3c.
const (
	lpfCutoffHz = 12000.0
	lpfQ        = 0.707107 // 1/sqrt(2)
	gain        = 60000.0
)

// Options toggles the optional stages of the chain. Both default to
// enabled; fm_radio.h declares per-stage enable flags (enable_dc_block,
// enable_lpf) which this module exposes directly rather than always
// running the full chain.
type Options struct {
	DCBlock bool
	LowPass bool
}

// DefaultOptions enables every optional stage.
func DefaultOptions() Options {
	return Options{DCBlock: true, LowPass: true}
}

// biquad holds Direct-Form-II-transposed state for the RBJ low-pass.
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
	z1, z2     float64
}

func newLowPassBiquad(fs float64) biquad {
	w0 := 2 * math.Pi * lpfCutoffHz / fs
	alpha := math.Sin(w0) / (2 * lpfQ)
	cosw0 := math.Cos(w0)

	b0 := (1 - cosw0) / 2
	b1 := 1 - cosw0
	b2 := (1 - cosw0) / 2
	a0 := 1 + alpha
	a1 := -2 * cosw0
	a2 := 1 - alpha

	return biquad{
		b0: b0 / a0,
		b1: b1 / a0,
		b2: b2 / a0,
		a1: a1 / a0,
		a2: a2 / a0,
	}
}

func (bq *biquad) process(x float64) float64 {
	y := bq.b0*x + bq.z1
	bq.z1 = bq.b1*x - bq.a1*y + bq.z2
	bq.z2 = bq.b2*x - bq.a2*y
	return y
}

// State is the FM radio's full per-channel state, initialized once per
// (input rate, audio rate) pair and then owned solely by the audio
// thread.
type State struct {
	opts Options

	prevSample complex128
	audioAcc   float64
	samplesIn  int
	decim      int

	deemphAcc   float64
	deemphAlpha float64

	dcR  float64
	dcX1 float64
	dcY1 float64

	lpf biquad
}

// New initializes FM radio state for an input rate fsIn, an audio
// output rate fsAudio, and a de-emphasis time constant in
// microseconds (75 for the Americas, 50 for Europe).
func New(fsIn, fsAudio float64, deemphUs float64, opts Options) *State {
	decim := int(math.Round(fsIn / fsAudio))
	if decim < 1 {
		decim = 1
	}
	tau := deemphUs * 1e-6
	dt := 1.0 / fsAudio

	return &State{
		opts:        opts,
		prevSample:  complex(1, 0),
		decim:       decim,
		deemphAlpha: dt / (tau + dt),
		dcR:         dcBlockR,
		lpf:         newLowPassBiquad(fsAudio),
	}
}

// Process demodulates x (which it does not modify), appending 16-bit PCM samples to out
// and returning it. The number of samples appended equals
// len(x)/decim_factor (integer division, residual samples held in the
// accumulator for the next call).
func (s *State) Process(x []complex128, out []int16) []int16 {
	for _, sample := range x {
		diff := sample * complex(real(s.prevSample), -imag(s.prevSample))
		angle := math.Atan2(imag(diff), real(diff))
		s.prevSample = sample

		s.audioAcc += angle
		s.samplesIn++

		if s.samplesIn < s.decim {
			continue
		}
		v := s.audioAcc / float64(s.samplesIn)
		s.audioAcc = 0
		s.samplesIn = 0

		s.deemphAcc += s.deemphAlpha * (v - s.deemphAcc)
		a := s.deemphAcc

		if s.opts.DCBlock {
			y := a - s.dcX1 + s.dcR*s.dcY1
			s.dcX1 = a
			s.dcY1 = y
			a = y
		}

		if s.opts.LowPass {
			a = s.lpf.process(a)
		}

		pcm := a * gain
		if pcm > 32767 {
			pcm = 32767
		} else if pcm < -32768 {
			pcm = -32768
		}
		out = append(out, int16(pcm))
	}
	return out
}
