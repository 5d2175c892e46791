package supervisor

import (
	"github.com/cwsl/rf-engine/internal/audio"
	"github.com/cwsl/rf-engine/internal/iq"
	"github.com/cwsl/rf-engine/internal/metrics"
)

// audioSink implements consumer.Sink for the audio pipeline (T-audio):
// decode the drained chunk to complex samples, run it through the
// current FM state, and stream the resulting PCM to the gateway.
type audioSink struct {
	streamer   *audio.Streamer
	metrics    *metrics.Engine
	supervisor *Supervisor
}

func (a *audioSink) Process(chunk []byte) {
	state := a.supervisor.fmState.Load()
	if state == nil {
		return // FM state not yet initialized by the first config cycle
	}

	samples := iq.Decode(chunk)
	pcm := state.Process(samples, nil)
	if len(pcm) == 0 {
		return
	}

	if err := a.streamer.Send(pcm); err != nil {
		audio.LogDrop(err)
		a.metrics.AudioFramesDropped.Inc()
		return
	}
	a.metrics.AudioFramesSent.Inc()
}
