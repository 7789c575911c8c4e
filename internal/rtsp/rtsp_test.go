package rtsp

import (
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/AlexxIT/rtpcast/pkg/media"
	"github.com/AlexxIT/rtpcast/pkg/packet"
	"github.com/AlexxIT/rtpcast/pkg/rtsp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestHandle(t *testing.T) {
	dir := t.TempDir()
	var clip []byte
	for i := 0; i < 100; i++ {
		clip = append(clip, "00003abc"...)
	}
	require.Nil(t, os.WriteFile(filepath.Join(dir, "clip.bin"), clip, 0644))

	opener = media.Dir(dir)
	interval = 5 * time.Millisecond
	payloadType = packet.PayloadTypeJPEG

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.Nil(t, err)
	defer ln.Close()

	done := make(chan struct{})
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			handle(conn)
			_ = conn.Close()
		}
		close(done)
	}()

	port, err := rtsp.GetUDPPort(net.IPv4(127, 0, 0, 1), 10)
	require.Nil(t, err)

	client, err := rtsp.Dial(ln.Addr().String(), "clip.bin", port)
	require.Nil(t, err)

	okBefore := testutil.ToFloat64(requestsTotal.WithLabelValues(rtsp.MethodNegotiate, "200"))

	require.Nil(t, client.Negotiate())
	require.Nil(t, client.Start())

	require.Eventually(t, func() bool {
		items := listConns()
		return len(items) == 1 && items[0].Packets > 2
	}, time.Second, 10*time.Millisecond)

	items := listConns()
	require.Equal(t, rtsp.KindStreaming.String(), items[0].State)
	require.Equal(t, "clip.bin", items[0].Resource)
	require.Equal(t, port, items[0].Port)
	require.Equal(t, float64(1), testutil.ToFloat64(streamsActive))

	require.Nil(t, client.Pause())
	require.Equal(t, float64(0), testutil.ToFloat64(streamsActive))
	require.Equal(t, okBefore+1, testutil.ToFloat64(requestsTotal.WithLabelValues(rtsp.MethodNegotiate, "200")))

	require.Nil(t, client.Close())
	<-done

	require.Len(t, listConns(), 0)
	require.Equal(t, float64(0), testutil.ToFloat64(sessionsActive))
	require.Equal(t, float64(0), testutil.ToFloat64(connectionsActive))
}

func TestHandleStreamFailure(t *testing.T) {
	dir := t.TempDir()
	// second frame has broken length
	require.Nil(t, os.WriteFile(filepath.Join(dir, "broken.bin"), []byte("00003abcxxxxx"), 0644))

	opener = media.Dir(dir)
	interval = 5 * time.Millisecond
	payloadType = packet.PayloadTypeJPEG

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.Nil(t, err)
	defer ln.Close()

	done := make(chan struct{})
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			handle(conn)
			_ = conn.Close()
		}
		close(done)
	}()

	port, err := rtsp.GetUDPPort(net.IPv4(127, 0, 0, 1), 10)
	require.Nil(t, err)

	client, err := rtsp.Dial(ln.Addr().String(), "broken.bin", port)
	require.Nil(t, err)

	failures := testutil.ToFloat64(streamFailures)

	require.Nil(t, client.Negotiate())
	require.Nil(t, client.Start())

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(streamFailures) == failures+1
	}, time.Second, 10*time.Millisecond)

	// session survives failed stream
	require.Nil(t, client.Pause())

	require.Nil(t, client.Close())
	<-done
}

func TestTrackState(t *testing.T) {
	trackState(rtsp.KindIdle, rtsp.KindStreaming)
	require.Equal(t, float64(1), testutil.ToFloat64(sessionsActive))
	require.Equal(t, float64(1), testutil.ToFloat64(streamsActive))

	trackState(rtsp.KindStreaming, rtsp.KindIdle)
	require.Equal(t, float64(0), testutil.ToFloat64(sessionsActive))
	require.Equal(t, float64(0), testutil.ToFloat64(streamsActive))
}
