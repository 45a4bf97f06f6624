//go:build unix

package udp

import (
	"errors"
	"net"

	"golang.org/x/sys/unix"
)

// recvNonblocking issues a single recvfrom with MSG_DONTWAIT on the socket,
// bypassing the runtime poller so the call never parks.
func (t *Transport) recvNonblocking(buf []byte) (int, *net.UDPAddr, error) {
	var (
		n    int
		from unix.Sockaddr
		rerr error
	)
	err := t.raw.Read(func(fd uintptr) bool {
		n, from, rerr = unix.Recvfrom(int(fd), buf, unix.MSG_DONTWAIT)
		return true
	})
	if err != nil {
		return 0, nil, err
	}
	if rerr != nil {
		if errors.Is(rerr, unix.EAGAIN) || errors.Is(rerr, unix.EWOULDBLOCK) || errors.Is(rerr, unix.EINTR) {
			return 0, nil, errWouldBlock
		}
		return 0, nil, rerr
	}
	return n, sockaddrToUDP(from), nil
}

func sockaddrToUDP(sa unix.Sockaddr) *net.UDPAddr {
	switch sa := sa.(type) {
	case *unix.SockaddrInet4:
		return &net.UDPAddr{IP: net.IPv4(sa.Addr[0], sa.Addr[1], sa.Addr[2], sa.Addr[3]), Port: sa.Port}
	case *unix.SockaddrInet6:
		addr := &net.UDPAddr{IP: append(net.IP(nil), sa.Addr[:]...), Port: sa.Port}
		if sa.ZoneId != 0 {
			if ifi, err := net.InterfaceByIndex(int(sa.ZoneId)); err == nil {
				addr.Zone = ifi.Name
			}
		}
		return addr
	}
	return nil
}
