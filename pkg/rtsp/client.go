package rtsp

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/AlexxIT/rtpcast/pkg/media"
	"github.com/AlexxIT/rtpcast/pkg/tcp"
)

var ErrStatus = errors.New("rtsp: wrong status")

type StatusError struct {
	Method string
	Code   int
	Reason string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("rtsp: %s: %d %s", e.Method, e.Code, e.Reason)
}

func (e *StatusError) Unwrap() error {
	return ErrStatus
}

// Client - control connection on the client side.
// Fires: *Request, *Response, State after each transition, ErrSequence
// warnings, and everything from the running media.Receiver.
type Client struct {
	Conn

	Resource string
	RTPPort  uint16

	sequence uint32
	machine  Machine
}

func Dial(address, resource string, rtpPort uint16) (*Client, error) {
	conn, err := tcp.Dial(address)
	if err != nil {
		return nil, err
	}
	return NewClient(conn, resource, rtpPort), nil
}

func NewClient(conn net.Conn, resource string, rtpPort uint16) *Client {
	c := &Client{
		Resource: resource,
		RTPPort:  rtpPort,
	}
	c.Timeout = 10 * time.Second
	c.init(conn)
	return c
}

func (c *Client) State() State {
	return c.machine.State()
}

// Do sends one request and reads exactly one response
func (c *Client) Do(req *Request) (*Response, error) {
	c.sequence++
	req.Sequence = c.sequence

	if err := c.writeRequest(req); err != nil {
		return nil, transportError(err)
	}

	lines, err := c.readMessage()
	if err != nil {
		return nil, transportError(err)
	}

	res, err := ParseResponse(lines)
	if err != nil {
		return nil, err
	}

	c.Fire(res)

	if res.Sequence != req.Sequence {
		c.Fire(fmt.Errorf("%w: want %d, got %d", ErrSequence, req.Sequence, res.Sequence))
	}

	if res.Code != StatusOK {
		return res, &StatusError{Method: req.Method, Code: res.Code, Reason: res.Reason}
	}

	return res, nil
}

func (c *Client) Negotiate() error {
	if kind := c.machine.Kind(); kind != KindIdle {
		return fmt.Errorf("%w: %s in state %s", ErrProtocol, MethodNegotiate, kind)
	}

	res, err := c.Do(&Request{
		Method:     MethodNegotiate,
		Resource:   c.Resource,
		ClientPort: c.RTPPort,
	})
	if err != nil {
		return err
	}

	if res.Session == 0 {
		return fmt.Errorf("%w: %s without session", ErrProtocol, MethodNegotiate)
	}

	session := &Session{ID: res.Session, Resource: c.Resource, ClientPort: c.RTPPort}
	if err = c.machine.Negotiate(session); err != nil {
		return err
	}

	c.Fire(c.machine.State())

	return nil
}

func (c *Client) Start() error {
	session := c.machine.Session()
	if session == nil {
		return fmt.Errorf("%w: %s in state %s", ErrProtocol, MethodStart, c.machine.Kind())
	}
	if _, err := c.machine.CanStart(session.ID); err != nil {
		return err
	}

	// bind before request, so first packet is not lost
	receiver, err := media.ListenReceiver(session.ClientPort)
	if err != nil {
		return err
	}

	if _, err = c.Do(&Request{
		Method:     MethodStart,
		Resource:   session.Resource,
		Session:    session.ID,
		ClientPort: session.ClientPort,
	}); err != nil {
		receiver.Stop()
		return err
	}

	receiver.Listen(func(msg any) {
		c.Fire(msg)
	})

	if err = c.machine.Start(session.ID, receiver); err != nil {
		receiver.Stop()
		return err
	}

	receiver.Start()

	c.Fire(c.machine.State())

	return nil
}

func (c *Client) Pause() error {
	session := c.machine.Session()
	if kind := c.machine.Kind(); kind != KindStreaming {
		return fmt.Errorf("%w: %s in state %s", ErrProtocol, MethodPause, kind)
	}

	if _, err := c.Do(&Request{
		Method:   MethodPause,
		Resource: session.Resource,
		Session:  session.ID,
	}); err != nil {
		return err
	}

	if err := c.machine.Pause(session.ID); err != nil {
		return err
	}

	c.Fire(c.machine.State())

	return nil
}

func (c *Client) Stop() error {
	session := c.machine.Session()
	if session == nil {
		return fmt.Errorf("%w: %s in state %s", ErrProtocol, MethodStop, c.machine.Kind())
	}

	if _, err := c.Do(&Request{
		Method:   MethodStop,
		Resource: session.Resource,
		Session:  session.ID,
	}); err != nil {
		return err
	}

	if _, err := c.machine.Stop(session.ID); err != nil {
		return err
	}

	c.Fire(c.machine.State())

	return nil
}

// Close sends STOP if there is a session and closes connection
func (c *Client) Close() error {
	if c.machine.Session() != nil {
		_ = c.Stop()
		c.machine.Close()
	}
	return c.Conn.Close()
}
