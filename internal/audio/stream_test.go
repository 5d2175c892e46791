package audio

import (
	"io"
	"net"
	"testing"
	"time"
)

type fakeEncoder struct{}

func (fakeEncoder) Encode(pcm []int16) ([]byte, uint16, error) {
	return []byte{0xAA, 0xBB}, FormatPCM, nil
}

func TestSendWritesFramedPacket(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 256)
		n, _ := io.ReadAtLeast(conn, buf, 18) // 14-byte header + 2-byte len + 2-byte payload
		received <- buf[:n]
	}()

	addr := ln.Addr().(*net.TCPAddr)
	s := NewStreamer("127.0.0.1", addr.Port, fakeEncoder{})
	defer s.Close()

	if err := s.Send([]int16{1, 2, 3}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case data := <-received:
		if string(data[0:4]) != "OPU0" {
			t.Fatalf("magic = %q, want OPU0", data[0:4])
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
	}
}

func TestSendDropsFrameWhenGatewayUnreachable(t *testing.T) {
	s := NewStreamer("127.0.0.1", 1, fakeEncoder{}) // port 1: nothing listening
	if err := s.Send([]int16{1, 2, 3}); err == nil {
		t.Fatalf("expected error when gateway unreachable")
	}
}
