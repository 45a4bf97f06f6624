package ports

import "net"

// Transport moves single datagrams between the bridge and its peer.
type Transport interface {
	// ReceiveLatest consumes at most one queued datagram without blocking.
	// ok is false when nothing was queued.
	ReceiveLatest() (payload []byte, from *net.UDPAddr, ok bool, err error)
	// Send transmits payload to the most recent peer.
	Send(payload []byte) error
	Close() error
}
