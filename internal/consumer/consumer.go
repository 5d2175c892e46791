// Package consumer implements the generic worker (C8) that drains a
// private ring buffer in fixed-size chunks into a Sink. Per spec.md
// §9's design note, the original's function-pointer + void* ctx
// callback is re-architected here as a capability interface: a Sink
// carries its dependencies as typed fields rather than receiving an
// opaque context pointer. The FM demodulator (fm.State) does not
// implement Sink itself; the audio pipeline's Sink is the supervisor's
// audioSink, which decodes each chunk and feeds it to the current
// fm.State.
package consumer

import (
	"sync"
	"time"

	"github.com/cwsl/rf-engine/internal/ring"
)

// Sink processes one drained chunk of raw bytes. Implementations must
// be reentrant with respect to other Sinks and must never call back
// into the Worker that invokes them.
type Sink interface {
	Process(chunk []byte)
}

// pollInterval is how long the worker sleeps when the ring doesn't yet
// hold a full chunk, matching the original's usleep(1000) spin guard.
const pollInterval = time.Millisecond

// Worker owns a private ring buffer and a Sink, draining chunkSize
// bytes at a time on its own goroutine.
type Worker struct {
	Name      string
	rb        *ring.Buffer
	sink      Sink
	chunkSize int

	mu      sync.Mutex
	running bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// New creates a Worker over its own ring buffer of the given capacity.
func New(name string, ringCapacity, chunkSize int, sink Sink) *Worker {
	return &Worker{
		Name:      name,
		rb:        ring.New(ringCapacity),
		sink:      sink,
		chunkSize: chunkSize,
	}
}

// Ring exposes the worker's private buffer so the producer (the RX
// callback) can write into it.
func (w *Worker) Ring() *ring.Buffer {
	return w.rb
}

// Start launches the drain loop on its own goroutine. Calling Start on
// an already-running Worker is a no-op.
func (w *Worker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	w.running = true
	w.done = make(chan struct{})
	w.wg.Add(1)
	go w.loop(w.done)
}

func (w *Worker) loop(done chan struct{}) {
	defer w.wg.Done()
	buf := make([]byte, w.chunkSize)
	for {
		select {
		case <-done:
			return
		default:
		}
		if w.rb.Available() >= w.chunkSize {
			n := w.rb.Read(buf)
			w.sink.Process(buf[:n])
		} else {
			time.Sleep(pollInterval)
		}
	}
}

// Stop clears the running flag and joins the drain goroutine before
// returning.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	done := w.done
	w.mu.Unlock()

	close(done)
	w.wg.Wait()
}

// Running reports whether the worker's drain loop is active.
func (w *Worker) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
