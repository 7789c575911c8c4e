package rtsp

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/AlexxIT/rtpcast/pkg/packet"
	"github.com/stretchr/testify/require"
)

func startClient(t *testing.T, opener clips, resource string) *Client {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.Nil(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		srv := NewServer(conn, opener)
		srv.Interval = 10 * time.Millisecond
		_ = srv.Handle()
		_ = conn.Close()
	}()

	port, err := GetUDPPort(net.IPv4(127, 0, 0, 1), 10)
	require.Nil(t, err)

	client, err := Dial(ln.Addr().String(), resource, port)
	require.Nil(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestClient(t *testing.T) {
	source := &clip{}
	client := startClient(t, clips{"clip.bin": source}, "clip.bin")

	var mu sync.Mutex
	var packets []*packet.Packet
	client.Listen(func(msg any) {
		if pkt, ok := msg.(*packet.Packet); ok {
			mu.Lock()
			packets = append(packets, pkt)
			mu.Unlock()
		}
	})

	count := func() int {
		mu.Lock()
		defer mu.Unlock()
		return len(packets)
	}

	require.ErrorIs(t, client.Start(), ErrProtocol)
	require.ErrorIs(t, client.Pause(), ErrProtocol)

	require.Nil(t, client.Negotiate())
	require.Equal(t, KindNegotiated, client.State().Kind())
	require.ErrorIs(t, client.Negotiate(), ErrProtocol)

	require.Nil(t, client.Start())
	require.Equal(t, KindStreaming, client.State().Kind())
	require.Eventually(t, func() bool { return count() >= 3 }, time.Second, 10*time.Millisecond)

	require.Nil(t, client.Pause())
	require.Equal(t, KindNegotiated, client.State().Kind())

	n := count()
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, n, count())

	require.Nil(t, client.Start())
	require.Eventually(t, func() bool { return count() > n }, time.Second, 10*time.Millisecond)

	require.Nil(t, client.Stop())
	require.Equal(t, KindIdle, client.State().Kind())
	require.Eventually(t, source.isClosed, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	for _, pkt := range packets {
		require.Equal(t, packets[0].SSRC, pkt.SSRC)
	}
}

func TestClientNotFound(t *testing.T) {
	client := startClient(t, clips{}, "unknown.bin")

	err := client.Negotiate()
	require.ErrorIs(t, err, ErrStatus)

	var status *StatusError
	require.ErrorAs(t, err, &status)
	require.Equal(t, StatusNotFound, status.Code)
	require.Equal(t, KindIdle, client.State().Kind())
}

func TestClientTransport(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.Nil(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err == nil {
			_ = conn.Close()
		}
	}()

	client, err := Dial(ln.Addr().String(), "clip.bin", 6000)
	require.Nil(t, err)
	defer client.Close()

	require.ErrorIs(t, client.Negotiate(), ErrTransport)
}
