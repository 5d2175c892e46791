//go:build !opus

package audio

import (
	"encoding/binary"
	"log"
)

// PCMEncoder is the fallback Encoder used when the engine is built
// without the "opus" tag (mirrors the teacher's opus_stub.go). It
// always emits raw big-endian 16-bit PCM.
type PCMEncoder struct{}

// NewOpusEncoder logs that Opus was requested but isn't compiled in,
// then returns a PCM-passthrough encoder, matching the teacher's
// stub behavior exactly (same message, same fallback).
func NewOpusEncoder(bitrate, complexity int, vbr bool) (*PCMEncoder, error) {
	log.Printf("[audio] WARNING: opus encoding requested but not compiled in")
	log.Printf("[audio] to enable opus support, rebuild with: go build -tags opus")
	log.Printf("[audio] falling back to PCM audio")
	return &PCMEncoder{}, nil
}

// Encode implements Encoder.
func (PCMEncoder) Encode(pcm []int16) ([]byte, uint16, error) {
	out := make([]byte, len(pcm)*2)
	for i, s := range pcm {
		binary.BigEndian.PutUint16(out[i*2:i*2+2], uint16(s))
	}
	return out, FormatPCM, nil
}
