package tcp

import (
	"net"

	"github.com/AlexxIT/rtpcast/pkg/core"
)

// Server fires every accepted net.Conn to listeners in a separate goroutine
// and closes the connection after all listeners return.
type Server struct {
	core.Listener

	listener net.Listener
}

func NewServer(address string) (srv *Server, err error) {
	srv = &Server{}
	srv.listener, err = net.Listen("tcp", address)
	return
}

func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return err
		}
		go func() {
			s.Fire(conn)
			_ = conn.Close()
		}()
	}
}

func (s *Server) Close() error {
	return s.listener.Close()
}
