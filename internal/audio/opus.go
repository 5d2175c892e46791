//go:build opus

package audio

import (
	"encoding/binary"
	"fmt"
	"log"

	opus "gopkg.in/hraban/opus.v2"
)

const (
	opusSampleRate = 48000
	opusChannels   = 1
	opusMaxBytes   = 4000
)

// OpusEncoder wraps a libopus encoder configured for the engine's
// fixed 48kHz mono audio rate.
type OpusEncoder struct {
	enc *opus.Encoder
}

// NewOpusEncoder creates an Opus encoder at the given bitrate and
// complexity. VBR selects variable vs. constant bitrate.
func NewOpusEncoder(bitrate, complexity int, vbr bool) (*OpusEncoder, error) {
	enc, err := opus.NewEncoder(opusSampleRate, opusChannels, opus.AppVoIP)
	if err != nil {
		return nil, fmt.Errorf("audio: opus encoder init failed: %w", err)
	}
	if err := enc.SetBitrate(bitrate); err != nil {
		log.Printf("[audio] warning: failed to set opus bitrate: %v", err)
	}
	if err := enc.SetComplexity(complexity); err != nil {
		log.Printf("[audio] warning: failed to set opus complexity: %v", err)
	}
	if err := enc.SetVBR(vbr); err != nil {
		log.Printf("[audio] warning: failed to set opus VBR: %v", err)
	}
	return &OpusEncoder{enc: enc}, nil
}

// Encode implements Encoder.
func (o *OpusEncoder) Encode(pcm []int16) ([]byte, uint16, error) {
	out := make([]byte, opusMaxBytes)
	n, err := o.enc.Encode(pcm, out)
	if err != nil {
		return nil, FormatPCM, fmt.Errorf("audio: opus encode failed: %w", err)
	}
	return out[:n], FormatOpus, nil
}

// pcmBytes is a helper other callers may use to fall back to raw PCM
// framing when Opus initialization fails at startup.
func pcmBytes(pcm []int16) []byte {
	out := make([]byte, len(pcm)*2)
	for i, s := range pcm {
		binary.BigEndian.PutUint16(out[i*2:i*2+2], uint16(s))
	}
	return out
}
