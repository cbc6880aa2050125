package source

import (
	"fmt"
	"log"
	"net"
	"strconv"
	"sync"

	"csi-monitor/internal/wire"
)

// UDPSource receives CSI datagrams from a connectionless endpoint and
// ingests every sample it can decode. Loss is silent: there is no
// acknowledgement and no retransmission.
type UDPSource struct {
	address     string
	port        int
	maxDatagram int
	sink        Ingester

	mu     sync.Mutex
	conn   *net.UDPConn
	closed bool
}

// NewUDP prepares a live source listening on address:port. Datagrams
// larger than maxDatagram bytes are truncated by the kernel; the upstream
// sender never exceeds it.
func NewUDP(address string, port, maxDatagram int, sink Ingester) *UDPSource {
	return &UDPSource{
		address:     address,
		port:        port,
		maxDatagram: maxDatagram,
		sink:        sink,
	}
}

func (u *UDPSource) Name() string {
	return fmt.Sprintf("udp %s", net.JoinHostPort(u.address, strconv.Itoa(u.port)))
}

// Addr returns the bound local address once Run has opened the socket,
// nil before that. Useful when listening on port 0.
func (u *UDPSource) Addr() net.Addr {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.conn == nil {
		return nil
	}
	return u.conn.LocalAddr()
}

// Run binds the socket and receives until an empty payload arrives
// (clean end-of-stream signal) or Stop closes the socket. A malformed
// packet is logged and dropped; it never terminates the loop.
func (u *UDPSource) Run() error {
	laddr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(u.address, strconv.Itoa(u.port)))
	if err != nil {
		return fmt.Errorf("failed to resolve listen address: %w", err)
	}

	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", laddr, err)
	}

	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		conn.Close()
		return nil
	}
	u.conn = conn
	u.mu.Unlock()

	log.Printf("[udp] listening on %s", conn.LocalAddr())

	buf := make([]byte, u.maxDatagram)
	for {
		n, raddr, err := conn.ReadFromUDP(buf)
		if err != nil {
			if u.isClosed() {
				return nil
			}
			return fmt.Errorf("udp receive: %w", err)
		}

		if n == 0 {
			log.Printf("[udp] empty payload from %s, stopping", raddr)
			return nil
		}

		sample, err := wire.Decode(buf[:n])
		if err != nil {
			log.Printf("[udp] dropping %d-byte packet from %s: %v", n, raddr, err)
			continue
		}

		u.sink.Ingest(sample)
	}
}

// Stop closes the socket, unblocking a pending receive.
func (u *UDPSource) Stop() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return
	}
	u.closed = true
	if u.conn != nil {
		u.conn.Close()
	}
}

func (u *UDPSource) isClosed() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.closed
}
