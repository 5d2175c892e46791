package consumer

import (
	"sync"
	"testing"
	"time"
)

type recordingSink struct {
	mu     sync.Mutex
	chunks [][]byte
}

func (r *recordingSink) Process(chunk []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := append([]byte(nil), chunk...)
	r.chunks = append(r.chunks, cp)
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.chunks)
}

func TestWorkerDrainsChunks(t *testing.T) {
	sink := &recordingSink{}
	w := New("test", 4096, 64, sink)
	w.Start()
	defer w.Stop()

	w.Ring().Write(make([]byte, 64*3))

	deadline := time.Now().Add(time.Second)
	for sink.count() < 3 && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	if sink.count() < 3 {
		t.Fatalf("got %d chunks, want at least 3", sink.count())
	}
}

func TestStopJoinsLoop(t *testing.T) {
	sink := &recordingSink{}
	w := New("test", 4096, 64, sink)
	w.Start()
	w.Stop()
	if w.Running() {
		t.Fatalf("worker still running after Stop")
	}
}

func TestStartIsIdempotent(t *testing.T) {
	sink := &recordingSink{}
	w := New("test", 4096, 64, sink)
	w.Start()
	w.Start()
	w.Stop()
}
