package tcp

import (
	"bufio"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestServer(t *testing.T) {
	srv, err := NewServer("localhost:0")
	require.Nil(t, err)
	defer srv.Close()

	srv.Listen(func(msg any) {
		conn := msg.(net.Conn)
		lines, err := ReadMessage(bufio.NewReader(conn))
		if err != nil {
			return
		}
		res := &Response{Proto: lines[0], Status: "200 OK"}
		_ = res.Write(conn)
	})

	go srv.Serve()

	conn, err := Dial(srv.Addr().String())
	require.Nil(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("PING\r\n\r\n"))
	require.Nil(t, err)

	lines, err := ReadMessage(bufio.NewReader(conn))
	require.Nil(t, err)
	require.Equal(t, []string{"PING 200 OK"}, lines)
}
