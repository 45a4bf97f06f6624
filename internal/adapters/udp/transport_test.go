package udp

import (
	"errors"
	"net"
	"strings"
	"testing"
	"time"
)

func listenLoopback(t *testing.T, peer string) *Transport {
	t.Helper()
	tr, err := Listen(Config{Host: "127.0.0.1", Port: 0, PeerAddr: peer})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = tr.Close() })
	return tr
}

func dialClient(t *testing.T, tr *Transport) *net.UDPConn {
	t.Helper()
	c, err := net.DialUDP("udp", nil, tr.LocalAddr())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// receiveEventually polls until a datagram shows up; loopback delivery is
// fast but not synchronous with Write.
func receiveEventually(t *testing.T, tr *Transport) ([]byte, *net.UDPAddr) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		payload, from, ok, err := tr.ReceiveLatest()
		if err != nil {
			t.Fatalf("receive: %v", err)
		}
		if ok {
			return append([]byte(nil), payload...), from
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("no datagram received")
	return nil, nil
}

func TestReceiveLatestEmpty(t *testing.T) {
	tr := listenLoopback(t, "")

	start := time.Now()
	payload, from, ok, err := tr.ReceiveLatest()
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if ok || payload != nil || from != nil {
		t.Fatalf("expected nothing queued, got ok=%v payload=%q from=%v", ok, payload, from)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Fatalf("receive blocked for %s", elapsed)
	}
}

func TestReceiveLatestConsumesOnePerCall(t *testing.T) {
	tr := listenLoopback(t, "")
	client := dialClient(t, tr)

	for _, msg := range []string{"first", "second"} {
		if _, err := client.Write([]byte(msg)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	got, from := receiveEventually(t, tr)
	if string(got) != "first" {
		t.Fatalf("expected first datagram, got %q", got)
	}
	local := client.LocalAddr().(*net.UDPAddr)
	if from.Port != local.Port || !from.IP.Equal(local.IP) {
		t.Fatalf("expected sender %s, got %s", local, from)
	}

	got, _ = receiveEventually(t, tr)
	if string(got) != "second" {
		t.Fatalf("expected second datagram, got %q", got)
	}
}

func TestSendRepliesToLastSender(t *testing.T) {
	tr := listenLoopback(t, "")

	if err := tr.Send([]byte("early")); !errors.Is(err, ErrNoPeer) {
		t.Fatalf("expected ErrNoPeer before any datagram, got %v", err)
	}

	client := dialClient(t, tr)
	if _, err := client.Write([]byte("hello")); err != nil {
		t.Fatalf("write: %v", err)
	}
	receiveEventually(t, tr)

	if err := tr.Send([]byte("state")); err != nil {
		t.Fatalf("send: %v", err)
	}

	buf := make([]byte, 64)
	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := client.Read(buf)
	if err != nil {
		t.Fatalf("client read: %v", err)
	}
	if string(buf[:n]) != "state" {
		t.Fatalf("expected state reply, got %q", buf[:n])
	}
}

func TestSendToConfiguredPeer(t *testing.T) {
	peer, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen peer: %v", err)
	}
	defer peer.Close()

	tr := listenLoopback(t, peer.LocalAddr().String())
	if tr.Peer() == nil {
		t.Fatalf("expected configured peer to seed the reply target")
	}
	if err := tr.Send([]byte("seeded")); err != nil {
		t.Fatalf("send: %v", err)
	}

	buf := make([]byte, 64)
	_ = peer.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := peer.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("peer read: %v", err)
	}
	if string(buf[:n]) != "seeded" {
		t.Fatalf("expected seeded, got %q", buf[:n])
	}
}

func TestListenFailsOnBadAddress(t *testing.T) {
	if _, err := Listen(Config{Host: "127.0.0.1", Port: 70000}); err == nil {
		t.Fatalf("expected error for out-of-range port")
	}
}

func TestListenFailsOnPortInUse(t *testing.T) {
	first := listenLoopback(t, "")
	_, err := Listen(Config{Host: "127.0.0.1", Port: first.LocalAddr().Port})
	if err == nil {
		t.Fatalf("expected bind failure on a port already in use")
	}
	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected wrapped *net.OpError, got %T", err)
	}
	if n := strings.Count(err.Error(), "listen udp"); n != 1 {
		t.Fatalf("expected the socket address once in %q", err)
	}
}

func TestReceiveTruncatesOversizedDatagram(t *testing.T) {
	tr, err := Listen(Config{Host: "127.0.0.1", MaxDatagramBytes: 4})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer tr.Close()

	client := dialClient(t, tr)
	if _, err := client.Write([]byte("0.5,0.1")); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, _ := receiveEventually(t, tr)
	if string(got) != "0.5," {
		t.Fatalf("expected truncated payload, got %q", got)
	}
}
