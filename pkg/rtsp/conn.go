package rtsp

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/AlexxIT/rtpcast/pkg/core"
	"github.com/AlexxIT/rtpcast/pkg/tcp"
)

// Conn - control connection, base for Server and Client.
// Fires: *Request and *Response for every sent or received message.
type Conn struct {
	core.Listener

	// Timeout for reading one message, zero means no timeout
	Timeout time.Duration

	conn   net.Conn
	reader *bufio.Reader
}

func (c *Conn) init(conn net.Conn) {
	c.conn = conn
	c.reader = bufio.NewReader(conn)
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *Conn) Close() error {
	return c.conn.Close()
}

// readMessage returns io.EOF only if peer closed connection between messages
func (c *Conn) readMessage() ([]string, error) {
	if c.Timeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.Timeout)); err != nil {
			return nil, err
		}
	}
	return tcp.ReadMessage(c.reader)
}

func (c *Conn) writeRequest(req *Request) error {
	c.Fire(req)
	return req.Marshal().Write(c.conn)
}

func (c *Conn) writeResponse(res *Response) error {
	c.Fire(res)
	return res.Marshal().Write(c.conn)
}

func transportError(err error) error {
	if err == io.EOF {
		return fmt.Errorf("%w: connection closed by peer", ErrTransport)
	}
	return fmt.Errorf("%w: %v", ErrTransport, err)
}
