// Package audio implements the audio streaming client (C12): a PCM ->
// compressed-frame encoder and a TCP framer that streams frames to a
// single external gateway endpoint. Encoding is behind an Encoder
// interface with two implementations (opus.go under the "opus" build
// tag, stub.go otherwise), mirroring the teacher's
// opus_support.go/opus_stub.go split exactly.
package audio

import (
	"encoding/binary"
	"fmt"
	"log"
	"net"
	"sync"
	"time"
)

// frameMagic identifies this engine's TCP frame format to the gateway,
// recovered from rf_audio.c's framing comment ("magic 'OPU0'").
var frameMagic = [4]byte{'O', 'P', 'U', '0'}

// reconnectBackoff is how long the streamer waits between connection
// attempts while dropping frames, per spec.md §7's audio TCP policy.
const reconnectBackoff = 200 * time.Millisecond

// Encoder turns a block of 16-bit PCM samples into a compressed (or
// passthrough) frame payload plus a format tag for the frame header.
type Encoder interface {
	Encode(pcm []int16) (payload []byte, format uint16, err error)
}

const (
	FormatPCM  uint16 = 0
	FormatOpus uint16 = 1
)

// Streamer owns the TCP connection to the audio gateway and the
// encoder used to compress each PCM block before sending it.
type Streamer struct {
	addr    string
	encoder Encoder

	mu       sync.Mutex
	conn     net.Conn
	seq      uint32
	lastDial time.Time
}

// NewStreamer creates a Streamer targeting host:port with the given
// encoder. It does not connect until the first Send call.
func NewStreamer(host string, port int, encoder Encoder) *Streamer {
	return &Streamer{
		addr:    fmt.Sprintf("%s:%d", host, port),
		encoder: encoder,
	}
}

func (s *Streamer) ensureConnected() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return nil
	}
	if !s.lastDial.IsZero() && time.Since(s.lastDial) < reconnectBackoff {
		return fmt.Errorf("waiting %s before the next connection attempt", reconnectBackoff)
	}
	s.lastDial = time.Now()
	conn, err := net.DialTimeout("tcp", s.addr, reconnectBackoff)
	if err != nil {
		return err
	}
	s.conn = conn
	return nil
}

// Send encodes pcm and writes one framed packet to the gateway. On
// connect failure the frame is dropped and the error returned for the
// caller to log; the caller is expected to keep calling Send on its
// normal cadence, which naturally retries every reconnectBackoff.
func (s *Streamer) Send(pcm []int16) error {
	if err := s.ensureConnected(); err != nil {
		return fmt.Errorf("audio: gateway unreachable, dropping frame: %w", err)
	}

	payload, format, err := s.encoder.Encode(pcm)
	if err != nil {
		return fmt.Errorf("audio: encode failed, dropping frame: %w", err)
	}

	s.mu.Lock()
	conn := s.conn
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	var header [14]byte
	copy(header[0:4], frameMagic[:])
	binary.BigEndian.PutUint32(header[4:8], seq)
	binary.BigEndian.PutUint32(header[8:12], uint32(len(pcm)))
	binary.BigEndian.PutUint16(header[12:14], format)

	conn.SetWriteDeadline(time.Now().Add(reconnectBackoff))
	if _, err := conn.Write(header[:]); err != nil {
		s.dropConn()
		return fmt.Errorf("audio: write header failed: %w", err)
	}
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(payload)))
	if _, err := conn.Write(lenBuf[:]); err != nil {
		s.dropConn()
		return fmt.Errorf("audio: write length failed: %w", err)
	}
	if _, err := conn.Write(payload); err != nil {
		s.dropConn()
		return fmt.Errorf("audio: write payload failed: %w", err)
	}
	return nil
}

func (s *Streamer) dropConn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
}

// Close releases the gateway connection, if any.
func (s *Streamer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// LogDrop is a small helper so callers can log a dropped frame in the
// teacher's bracketed-component style without duplicating the prefix
// everywhere a Send error surfaces.
func LogDrop(err error) {
	log.Printf("[audio] %v", err)
}
