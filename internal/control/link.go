// Package control implements the reliable PAIR-style bidirectional
// control-plane channel (C9): a single peer connection identified by
// an address, sends bounded by a 500ms write deadline, a 500ms-polling
// receive loop, and a
// 10-second silence watchdog that tears down and reconnects the
// socket. Generalized from the original's ZeroMQ PAIR socket, since no
// ZeroMQ binding exists in this module's retrieval pack (see
// DESIGN.md); framing and reconnect-on-watchdog semantics are
// preserved.
package control

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"log"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	watchdogTimeout = 10 * time.Second
	recvTimeout     = 500 * time.Millisecond
	maxFrameBytes   = 1 << 20
)

// Callback handles one inbound decoded message. It must not block
// indefinitely: the listener goroutine will not read another message
// until it returns.
type Callback func(msg map[string]any)

// ReconnectCounter receives one increment per watchdog-triggered
// reconnect attempt. *metrics.Engine's ControlReconnects field (a
// prometheus.Counter) satisfies this via its Inc method; passing nil
// is fine, reconnects just go uncounted.
type ReconnectCounter interface {
	Inc()
}

// Link is a reconnecting bidirectional peer connection. Zero value is
// not usable; construct with New.
type Link struct {
	addr       string
	verbose    bool
	callback   Callback
	reconnects ReconnectCounter

	mu      sync.Mutex
	conn    net.Conn
	reader  *bufio.Reader
	running bool
	done    chan struct{}
	wg      sync.WaitGroup

	id string // correlation id, stamped into reconnect logs
}

// New creates a Link bound to addr (a "unix:///path" or "tcp://host:port"
// URL; a bare path is treated as a Unix socket path, matching
// spec.md's IPC_ADDR default of "ipc:///tmp/rf_engine"). It does not
// connect until Start is called. reconnects may be nil if reconnect
// counts aren't needed (e.g. in tests).
func New(addr string, verbose bool, cb Callback, reconnects ReconnectCounter) *Link {
	return &Link{
		addr:       addr,
		verbose:    verbose,
		callback:   cb,
		reconnects: reconnects,
		id:         uuid.NewString(),
	}
}

func dial(addr string) (net.Conn, error) {
	network, address := "unix", addr
	switch {
	case len(addr) > 8 && addr[:8] == "unix:///":
		address = addr[7:]
	case len(addr) > 6 && addr[:6] == "ipc://":
		network, address = "unix", addr[6:]
	case len(addr) > 6 && addr[:6] == "tcp://":
		network, address = "tcp", addr[6:]
	}
	return net.DialTimeout(network, address, recvTimeout)
}

func (l *Link) connect() error {
	l.mu.Lock()
	if l.conn != nil {
		if l.verbose {
			log.Printf("[control %s] re-creating connection to %s", l.id, l.addr)
		}
		l.conn.Close()
		l.conn = nil
		l.reader = nil
	}
	l.mu.Unlock()

	conn, err := dial(l.addr)
	if err != nil {
		if l.verbose {
			log.Printf("[control %s] failed to connect to %s (will retry): %v", l.id, l.addr, err)
		}
		return err
	}

	l.mu.Lock()
	l.conn = conn
	l.reader = bufio.NewReaderSize(conn, 4096)
	l.mu.Unlock()

	if l.verbose {
		log.Printf("[control %s] connected to %s", l.id, l.addr)
	}
	return nil
}

// Start connects (retrying in the background listener if the initial
// attempt fails) and begins dispatching inbound messages.
func (l *Link) Start() {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return
	}
	l.running = true
	l.done = make(chan struct{})
	done := l.done
	l.mu.Unlock()

	if err := l.connect(); err != nil {
		log.Printf("[control %s] initial connection failed, background loop will retry: %v", l.id, err)
	}

	l.wg.Add(1)
	go l.listen(done)
}

func (l *Link) listen(done chan struct{}) {
	defer l.wg.Done()
	lastMsg := time.Now()

	for {
		select {
		case <-done:
			return
		default:
		}

		l.mu.Lock()
		conn := l.conn
		reader := l.reader
		l.mu.Unlock()

		if conn == nil {
			time.Sleep(recvTimeout)
			if time.Since(lastMsg) > watchdogTimeout {
				l.reconnect()
				lastMsg = time.Now()
			}
			continue
		}

		conn.SetReadDeadline(time.Now().Add(recvTimeout))
		msg, err := readFrame(reader)
		now := time.Now()

		if err == nil {
			lastMsg = now
			if l.verbose {
				log.Printf("[control %s] << received frame (%d bytes)", l.id, len(msg))
			}
			decoded, derr := decode(msg)
			if derr != nil {
				log.Printf("[control %s] discarding unparseable message: %v", l.id, derr)
				continue
			}
			if l.callback != nil {
				l.callback(decoded)
			}
			continue
		}

		if now.Sub(lastMsg) > watchdogTimeout {
			if l.verbose {
				log.Printf("[control %s] watchdog triggered (%.1fs silence), reconnecting", l.id, now.Sub(lastMsg).Seconds())
			}
			l.reconnect()
			lastMsg = time.Now()
		}
	}
}

// reconnect is connect plus the watchdog-reconnect metric: every call
// site in listen represents the 10s-silence watchdog firing, per
// spec.md §6's "Control link silence > 10s: close + reconnect" row.
func (l *Link) reconnect() {
	if l.reconnects != nil {
		l.reconnects.Inc()
	}
	l.connect()
}

// Send writes a JSON-encoded payload. If the link is currently
// disconnected, the payload is dropped and errNotConnected returned at
// once. Otherwise the write blocks the caller for up to recvTimeout
// (500ms); a write that does not finish by then fails with a timeout
// error and the payload is dropped. Send is not a non-blocking send.
func (l *Link) Send(payload any) error {
	l.mu.Lock()
	conn := l.conn
	l.mu.Unlock()
	if conn == nil {
		return errNotConnected
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	conn.SetWriteDeadline(time.Now().Add(recvTimeout))
	return writeFrame(conn, body)
}

// Stop tears down the background listener and closes the connection.
func (l *Link) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	done := l.done
	conn := l.conn
	l.mu.Unlock()

	close(done)
	l.wg.Wait()
	if conn != nil {
		conn.Close()
	}
}

func decode(body []byte) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// readFrame/writeFrame use a 4-byte big-endian length prefix, the
// idiomatic Go stand-in for the original's fixed ZBUF_SIZE recv
// buffer: it lets messages exceed 4096 bytes (a full Pxx array can)
// without truncation. readFrame takes the connection's own long-lived
// *bufio.Reader rather than wrapping one fresh each call: a fresh
// bufio.Reader's single underlying Read can pull more than the 4-byte
// prefix out of the socket (read-ahead into the next frame), and that
// read-ahead would be lost the moment a throwaway reader went out of
// scope.
func readFrame(r *bufio.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := readFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > maxFrameBytes {
		return nil, errFrameTooLarge
	}
	body := make([]byte, n)
	if _, err := readFull(r, body); err != nil {
		return nil, err
	}
	return body, nil
}

func writeFrame(conn net.Conn, body []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(body)))
	if _, err := conn.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := conn.Write(body)
	return err
}

func readFull(r *bufio.Reader, dst []byte) (int, error) {
	total := 0
	for total < len(dst) {
		n, err := r.Read(dst[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
