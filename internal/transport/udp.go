package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/PHoulding/ecs-clustering"
	"github.com/PHoulding/ecs-clustering/internal/clustering"
)

// UDP is a real broadcast/unicast transport for live deployments (§6).
// Broadcast sends to the subnet broadcast address with the IP TTL set
// to ttl hops; Linux callers get a real TTL via setTTL, other
// platforms fall back to the kernel default (see ttl_linux.go /
// ttl_other.go).
type UDP struct {
	conn       *net.UDPConn
	port       int
	broadcast  net.IP
	self       ecscluster.NodeID
	log        *slog.Logger

	mu       sync.RWMutex
	handlers map[ecscluster.NodeID]func(from ecscluster.NodeID, payload []byte)
}

// NewUDP opens a UDP socket on port and starts the receive loop. self
// identifies this node for logging; broadcastAddr is the subnet's
// directed broadcast address (e.g. 10.1.255.255).
func NewUDP(self ecscluster.NodeID, port int, broadcastAddr net.IP) (*UDP, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: port})
	if err != nil {
		return nil, fmt.Errorf("transport: listen udp: %w", err)
	}
	u := &UDP{
		conn:      conn,
		port:      port,
		broadcast: broadcastAddr,
		self:      self,
		log:       slog.With("component", "transport", "node", self.String()),
		handlers:  make(map[ecscluster.NodeID]func(from ecscluster.NodeID, payload []byte)),
	}
	go u.receiveLoop()
	return u, nil
}

// Close releases the underlying socket.
func (u *UDP) Close() error {
	return u.conn.Close()
}

func (u *UDP) receiveLoop() {
	buf := make([]byte, 65535)
	for {
		n, addr, err := u.conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		from, err := ecscluster.NodeIDFromIP(addr.IP)
		if err != nil {
			u.log.Debug("dropping datagram from non-IPv4 peer", "addr", addr)
			continue
		}
		payload := make([]byte, n)
		copy(payload, buf[:n])

		u.mu.RLock()
		h := u.handlers[u.self]
		u.mu.RUnlock()
		if h != nil {
			h(from, payload)
		}
	}
}

// Broadcast sends payload to the subnet broadcast address with TTL
// hops. Delivery to any node beyond ttl relies on intermediate kernel
// routers honoring IP TTL the same way the simulator's H parameter
// bounds flood depth.
func (u *UDP) Broadcast(ctx context.Context, from ecscluster.NodeID, ttl int, payload []byte) error {
	if err := setTTL(u.conn, ttl); err != nil {
		u.log.Warn("set ttl failed, using kernel default", "err", err)
	}
	_, err := u.conn.WriteToUDP(payload, &net.UDPAddr{IP: u.broadcast, Port: u.port})
	return err
}

// Unicast sends payload to a specific node's address.
func (u *UDP) Unicast(ctx context.Context, from, to ecscluster.NodeID, payload []byte) error {
	_, err := u.conn.WriteToUDP(payload, &net.UDPAddr{IP: to.IP(), Port: u.port})
	return err
}

// Subscribe registers the (only, in this process) receive handler.
// Real deployments run exactly one Node per process/socket.
func (u *UDP) Subscribe(id ecscluster.NodeID, handler func(from ecscluster.NodeID, payload []byte)) func() {
	u.mu.Lock()
	u.handlers[id] = handler
	u.mu.Unlock()
	return func() {
		u.mu.Lock()
		delete(u.handlers, id)
		u.mu.Unlock()
	}
}

var _ clustering.Transport = (*UDP)(nil)
