package transport

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/PHoulding/ecs-clustering"
)

// freePort asks the OS for an ephemeral UDP port by binding and
// immediately releasing it — good enough for a single-process test
// that reopens the same port moments later.
func freePort(t *testing.T) int {
	t.Helper()
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: 0})
	if err != nil {
		t.Fatalf("freePort: %v", err)
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).Port
}

func TestUDPUnicastLoopback(t *testing.T) {
	port := freePort(t)
	self, err := ecscluster.NodeIDFromIP(net.ParseIP("127.0.0.1"))
	if err != nil {
		t.Fatalf("NodeIDFromIP: %v", err)
	}

	u, err := NewUDP(self, port, net.ParseIP("127.255.255.255"))
	if err != nil {
		t.Fatalf("NewUDP: %v", err)
	}
	defer u.Close()

	received := make(chan []byte, 1)
	unsub := u.Subscribe(self, func(from ecscluster.NodeID, payload []byte) {
		received <- payload
	})
	defer unsub()

	ctx := context.Background()
	if err := u.Unicast(ctx, self, self, []byte("ping")); err != nil {
		t.Fatalf("Unicast: %v", err)
	}

	select {
	case got := <-received:
		if string(got) != "ping" {
			t.Fatalf("got %q, want %q", got, "ping")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("loopback datagram not received within 2s")
	}
}

func TestUDPSubscribeUnsubscribe(t *testing.T) {
	port := freePort(t)
	self, err := ecscluster.NodeIDFromIP(net.ParseIP("127.0.0.1"))
	if err != nil {
		t.Fatalf("NodeIDFromIP: %v", err)
	}
	u, err := NewUDP(self, port, net.ParseIP("127.255.255.255"))
	if err != nil {
		t.Fatalf("NewUDP: %v", err)
	}
	defer u.Close()

	count := 0
	unsub := u.Subscribe(self, func(from ecscluster.NodeID, payload []byte) { count++ })
	unsub()

	ctx := context.Background()
	if err := u.Unicast(ctx, self, self, []byte("x")); err != nil {
		t.Fatalf("Unicast: %v", err)
	}
	time.Sleep(100 * time.Millisecond)
	if count != 0 {
		t.Fatalf("count = %d, want 0 after unsubscribe", count)
	}
}
