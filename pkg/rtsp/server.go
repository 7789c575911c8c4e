package rtsp

import (
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/AlexxIT/rtpcast/pkg/media"
	"github.com/AlexxIT/rtpcast/pkg/packet"
	"github.com/AlexxIT/rtpcast/pkg/tcp"
)

// Server - one control connection on the server side. Serves requests strictly
// one by one, each request gets exactly one response.
// Fires: *Request, *Response, State after each transition, error for each
// failed request, and everything from the running media.Sender.
type Server struct {
	Conn

	Interval    time.Duration
	PayloadType uint8

	opener  media.Opener
	machine Machine

	// last negotiated session, stays after STOP
	session uint32
}

func NewServer(conn net.Conn, opener media.Opener) *Server {
	s := &Server{opener: opener, PayloadType: packet.PayloadTypeJPEG}
	s.init(conn)
	return s
}

func (s *Server) State() State {
	return s.machine.State()
}

// Handle processes requests until peer close connection. Returns nil on
// normal close. Session is released on any exit.
func (s *Server) Handle() error {
	defer s.teardown()

	for {
		lines, err := s.readMessage()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			if errors.Is(err, tcp.ErrTooLong) {
				// the rest of the stream can't be trusted
				_ = s.writeResponse(NewResponse(StatusBadRequest, 0, s.session))
			}
			return transportError(err)
		}

		req, err := ParseRequest(lines)
		if err != nil {
			s.Fire(err)
			res := NewResponse(StatusBadRequest, GuessSequence(lines), s.session)
			if err = s.writeResponse(res); err != nil {
				return transportError(err)
			}
			continue
		}

		s.Fire(req)

		if err = s.handle(req); err != nil {
			return transportError(err)
		}
	}
}

// handle returns only write errors, request errors are replied to the client
func (s *Server) handle(req *Request) error {
	var err error

	switch req.Method {
	case MethodNegotiate:
		err = s.negotiate(req)
	case MethodStart:
		var sender *media.Sender
		if sender, err = s.start(req); err == nil {
			// reply before first packet
			if err = s.reply(req, StatusOK); err != nil {
				return err
			}
			sender.Start()
			return nil
		}
	case MethodPause:
		if err = s.checkResource(req); err == nil {
			err = s.machine.Pause(req.Session)
		}
	case MethodStop:
		if err = s.checkResource(req); err == nil {
			var session *Session
			if session, err = s.machine.Stop(req.Session); err == nil {
				_ = session.Close()
			}
		}
	}

	if err != nil {
		s.Fire(err)

		code := StatusInternalServerError
		if errors.Is(err, media.ErrNotFound) {
			code = StatusNotFound
		}
		return s.reply(req, code)
	}

	s.Fire(s.machine.State())

	return s.reply(req, StatusOK)
}

func (s *Server) reply(req *Request, code int) error {
	return s.writeResponse(NewResponse(code, req.Sequence, s.session))
}

func (s *Server) negotiate(req *Request) error {
	if kind := s.machine.Kind(); kind != KindIdle {
		return fmt.Errorf("%w: %s in state %s", ErrProtocol, MethodNegotiate, kind)
	}

	source, err := s.opener.Open(req.Resource)
	if err != nil {
		return err
	}

	session := &Session{
		ID:         newSessionID(),
		Resource:   req.Resource,
		ClientPort: req.ClientPort,
		Stream:     media.NewStream(source, s.PayloadType),
	}

	if err = s.machine.Negotiate(session); err != nil {
		_ = session.Close()
		return err
	}

	s.session = session.ID

	return nil
}

// start commits Streaming state, sender should be started by caller
func (s *Server) start(req *Request) (*media.Sender, error) {
	session, err := s.machine.CanStart(req.Session)
	if err != nil {
		return nil, err
	}

	if err = s.checkResource(req); err != nil {
		return nil, err
	}

	// client may change port on each START
	if req.ClientPort != 0 {
		session.ClientPort = req.ClientPort
	}
	if session.ClientPort == 0 {
		return nil, fmt.Errorf("%w: %s without client port", ErrProtocol, MethodStart)
	}

	conn, err := net.ListenUDP("udp", nil)
	if err != nil {
		return nil, err
	}

	addr := &net.UDPAddr{IP: remoteIP(s.RemoteAddr()), Port: int(session.ClientPort)}

	sender := media.NewSender(session.Stream, conn, addr, s.Interval)
	sender.Listen(func(msg any) {
		s.Fire(msg)
	})

	if err = s.machine.Start(req.Session, sender); err != nil {
		sender.Stop()
		return nil, err
	}

	s.Fire(s.machine.State())

	return sender, nil
}

func (s *Server) checkResource(req *Request) error {
	if session := s.machine.Session(); session != nil && session.Resource != req.Resource {
		return fmt.Errorf("%w: %s with wrong resource %s", ErrProtocol, req.Method, req.Resource)
	}
	return nil
}

func (s *Server) teardown() {
	if session := s.machine.Close(); session != nil {
		_ = session.Close()
		s.Fire(s.machine.State())
	}
}
