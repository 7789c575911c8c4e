package client

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/AlexxIT/rtpcast/pkg/rtsp"
	"github.com/stretchr/testify/require"
)

type fakeTerm struct {
	io.Reader

	mu  sync.Mutex
	out bytes.Buffer
}

func (f *fakeTerm) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.out.Write(p)
}

func (f *fakeTerm) String() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.out.String()
}

func TestConsole(t *testing.T) {
	client := &fakeClient{}
	ctrl := NewController(client)

	rw := &fakeTerm{Reader: strings.NewReader("negotiate\r  \rplay\rSTART\rhelp\rquit\r")}
	console := NewConsole(rw, ctrl)
	console.Run()

	require.Equal(t, CmdNegotiate, <-ctrl.commands)
	require.Equal(t, CmdStart, <-ctrl.commands)
	require.Equal(t, CmdQuit, <-ctrl.commands)
	require.Len(t, ctrl.commands, 0)

	require.Contains(t, rw.String(), "unknown command: play")

	console.Print(StateEvent{State: rtsp.KindStreaming, Session: 123456, Frames: 5})
	require.Contains(t, rw.String(), "state: streaming, session: 123456, frames: 5")
}

func TestConsoleEOF(t *testing.T) {
	ctrl := NewController(&fakeClient{})

	console := NewConsole(&fakeTerm{Reader: strings.NewReader("")}, ctrl)
	console.Run()

	require.Equal(t, CmdQuit, <-ctrl.commands)
}
