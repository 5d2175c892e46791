package control

import (
	"bufio"
	"net"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	body := []byte(`{"hello":"world"}`)
	go writeFrame(client, body)

	got, err := readFrame(bufio.NewReaderSize(server, 4096))
	if err != nil {
		t.Fatalf("readFrame: %v", err)
	}
	if string(got) != string(body) {
		t.Fatalf("got %q, want %q", got, body)
	}
}

func TestFrameRoundTripReusesReaderAcrossTwoFrames(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	first := []byte(`{"n":1}`)
	second := []byte(`{"n":2}`)
	go func() {
		writeFrame(client, first)
		writeFrame(client, second)
	}()

	r := bufio.NewReaderSize(server, 4096)
	got1, err := readFrame(r)
	if err != nil {
		t.Fatalf("readFrame 1: %v", err)
	}
	if string(got1) != string(first) {
		t.Fatalf("frame 1 = %q, want %q", got1, first)
	}
	got2, err := readFrame(r)
	if err != nil {
		t.Fatalf("readFrame 2: %v", err)
	}
	if string(got2) != string(second) {
		t.Fatalf("frame 2 = %q, want %q", got2, second)
	}
}

func TestDecodeValidJSON(t *testing.T) {
	m, err := decode([]byte(`{"center_freq_hz": 100000000, "rf_mode": "FM"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m["rf_mode"] != "FM" {
		t.Fatalf("rf_mode = %v, want FM (normalization happens in rfconfig, not decode)", m["rf_mode"])
	}
}

func TestDecodeInvalidJSONErrors(t *testing.T) {
	if _, err := decode([]byte(`not json`)); err == nil {
		t.Fatalf("expected error for invalid JSON")
	}
}

type fakeReconnectCounter struct{ n int }

func (f *fakeReconnectCounter) Inc() { f.n++ }

func TestReconnectIncrementsCounterEvenOnFailedConnect(t *testing.T) {
	counter := &fakeReconnectCounter{}
	// An address nothing is listening on: connect() will fail, but
	// reconnect() must still count the attempt.
	l := New("tcp://127.0.0.1:1", false, nil, counter)
	l.reconnect()
	if counter.n != 1 {
		t.Fatalf("reconnect count = %d, want 1", counter.n)
	}
	l.reconnect()
	if counter.n != 2 {
		t.Fatalf("reconnect count = %d, want 2", counter.n)
	}
}

func TestNewWithNilReconnectCounterDoesNotPanic(t *testing.T) {
	l := New("tcp://127.0.0.1:1", false, nil, nil)
	l.reconnect()
}
