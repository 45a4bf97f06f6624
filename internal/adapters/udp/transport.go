package udp

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"syscall"

	"github.com/ghalamif/FlightBridge/internal/ports"
)

// ErrNoPeer is returned by Send while no reply target is known.
var ErrNoPeer = errors.New("udp: no peer address known")

// errWouldBlock signals that no datagram was queued.
var errWouldBlock = errors.New("udp: would block")

const DefaultMaxDatagramBytes = 4096

// Config describes the local endpoint and the optional initial peer.
type Config struct {
	Host             string
	Port             int
	PeerAddr         string
	MaxDatagramBytes int
}

// Transport owns one unconnected UDP socket. It replies to whichever address
// sent the most recent datagram. It is meant to be driven from a single
// goroutine.
type Transport struct {
	conn *net.UDPConn
	raw  syscall.RawConn
	buf  []byte
	peer *net.UDPAddr
}

// Listen binds the local endpoint. Failing here is fatal for the bridge.
func Listen(cfg Config) (*Transport, error) {
	laddr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)))
	if err != nil {
		return nil, fmt.Errorf("resolve listen address: %w", err)
	}

	var peer *net.UDPAddr
	if cfg.PeerAddr != "" {
		peer, err = net.ResolveUDPAddr("udp", cfg.PeerAddr)
		if err != nil {
			return nil, fmt.Errorf("resolve peer address: %w", err)
		}
	}

	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, fmt.Errorf("bind transport: %w", err)
	}
	raw, err := conn.SyscallConn()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("udp syscall conn: %w", err)
	}

	size := cfg.MaxDatagramBytes
	if size <= 0 {
		size = DefaultMaxDatagramBytes
	}
	return &Transport{
		conn: conn,
		raw:  raw,
		buf:  make([]byte, size),
		peer: peer,
	}, nil
}

// LocalAddr returns the bound address, useful when listening on port 0.
func (t *Transport) LocalAddr() *net.UDPAddr {
	return t.conn.LocalAddr().(*net.UDPAddr)
}

// Peer returns the current reply target, or nil.
func (t *Transport) Peer() *net.UDPAddr { return t.peer }

// ReceiveLatest performs one non-blocking read. The returned payload aliases
// an internal buffer and is only valid until the next call. Datagrams longer
// than the buffer are truncated.
func (t *Transport) ReceiveLatest() ([]byte, *net.UDPAddr, bool, error) {
	n, from, err := t.recvNonblocking(t.buf)
	if errors.Is(err, errWouldBlock) {
		return nil, nil, false, nil
	}
	if err != nil {
		return nil, nil, false, fmt.Errorf("udp receive: %w", err)
	}
	if from != nil {
		t.peer = from
	}
	return t.buf[:n], from, true, nil
}

// Send writes payload to the current peer. Errors are not retried.
func (t *Transport) Send(payload []byte) error {
	if t.peer == nil {
		return ErrNoPeer
	}
	if _, err := t.conn.WriteToUDP(payload, t.peer); err != nil {
		return fmt.Errorf("udp send to %s: %w", t.peer, err)
	}
	return nil
}

func (t *Transport) Close() error {
	return t.conn.Close()
}

var _ ports.Transport = (*Transport)(nil)
