//go:build !unix

package udp

import (
	"errors"
	"net"
	"os"
	"time"
)

// pollWindow bounds how long a receive may wait on platforms without
// MSG_DONTWAIT support through x/sys/unix.
const pollWindow = 100 * time.Microsecond

func (t *Transport) recvNonblocking(buf []byte) (int, *net.UDPAddr, error) {
	if err := t.conn.SetReadDeadline(time.Now().Add(pollWindow)); err != nil {
		return 0, nil, err
	}
	n, from, err := t.conn.ReadFromUDP(buf)
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return 0, nil, errWouldBlock
	}
	return n, from, err
}
