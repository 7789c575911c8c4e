package client

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/AlexxIT/rtpcast/pkg/core"
	"github.com/AlexxIT/rtpcast/pkg/media"
	"github.com/AlexxIT/rtpcast/pkg/packet"
	"github.com/AlexxIT/rtpcast/pkg/rtsp"
)

type Command string

const (
	CmdNegotiate Command = "negotiate"
	CmdStart     Command = "start"
	CmdPause     Command = "pause"
	CmdStop      Command = "stop"
	CmdQuit      Command = "quit"
)

func ParseCommand(s string) (Command, error) {
	switch cmd := Command(s); cmd {
	case CmdNegotiate, CmdStart, CmdPause, CmdStop, CmdQuit:
		return cmd, nil
	}
	return "", fmt.Errorf("unknown command: %s", s)
}

type Event interface{}

type StateEvent struct {
	State   rtsp.Kind `json:"state"`
	Session uint32    `json:"session,omitempty"`
	Frames  int       `json:"frames"`
}

type FrameEvent struct {
	Packet *packet.Packet
}

type ErrorEvent struct {
	Command Command
	Err     error
}

func (e ErrorEvent) Error() string {
	if e.Command != "" {
		return string(e.Command) + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// Client is the part of rtsp.Client used by Controller
type Client interface {
	Negotiate() error
	Start() error
	Pause() error
	Stop() error
	Close() error
	State() rtsp.State
	Listen(f core.EventFunc)
}

// Controller owns the client and runs all network calls in one goroutine.
// UI sends commands with Send and reads Events without blocking.
type Controller struct {
	Events chan Event

	client   Client
	commands chan Command
	done     chan struct{}

	frames  atomic.Int64
	dropped atomic.Int64

	malformed     atomic.Int64
	malformedLast atomic.Int64 // unix nano of last reported datagram
}

// MalformedInterval limits ErrorEvent for broken datagrams to one per interval
var MalformedInterval = time.Second

func NewController(client Client) *Controller {
	c := &Controller{
		Events:   make(chan Event, 64),
		client:   client,
		commands: make(chan Command, 16),
		done:     make(chan struct{}),
	}

	client.Listen(c.onMessage)

	return c
}

// Send queues command, returns false if queue is full or controller stopped
func (c *Controller) Send(cmd Command) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.commands <- cmd:
		return true
	default:
		return false
	}
}

// Done closed after CmdQuit processed
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Dropped returns count of frame events lost because UI was slow
func (c *Controller) Dropped() int {
	return int(c.dropped.Load())
}

// Malformed returns count of datagrams skipped by receiver
func (c *Controller) Malformed() int {
	return int(c.malformed.Load())
}

// Run processes commands until CmdQuit
func (c *Controller) Run() {
	defer close(c.done)

	for cmd := range c.commands {
		var err error

		switch cmd {
		case CmdNegotiate:
			err = c.client.Negotiate()
		case CmdStart:
			err = c.client.Start()
		case CmdPause:
			err = c.client.Pause()
		case CmdStop:
			err = c.client.Stop()
		case CmdQuit:
			if err = c.client.Close(); err != nil {
				c.emit(ErrorEvent{Command: cmd, Err: err})
			}
			c.emit(c.stateEvent())
			return
		}

		if err != nil {
			c.emit(ErrorEvent{Command: cmd, Err: err})
		}
	}
}

func (c *Controller) onMessage(msg any) {
	switch msg := msg.(type) {
	case rtsp.State:
		c.emit(c.stateEvent())
	case *packet.Packet:
		// receiver goroutine
		c.frames.Add(1)
		if !c.emit(FrameEvent{Packet: msg}) {
			c.dropped.Add(1)
		}
	case error:
		switch {
		case errors.Is(msg, packet.ErrSize), errors.Is(msg, packet.ErrVersion):
			// receiver goroutine
			c.malformed.Add(1)
			now := time.Now().UnixNano()
			last := c.malformedLast.Load()
			if now-last >= int64(MalformedInterval) && c.malformedLast.CompareAndSwap(last, now) {
				c.emit(ErrorEvent{Err: msg})
			}
		case errors.Is(msg, rtsp.ErrSequence), errors.Is(msg, media.ErrStopped):
			c.emit(ErrorEvent{Err: msg})
		}
	}
}

func (c *Controller) stateEvent() StateEvent {
	event := StateEvent{State: c.client.State().Kind(), Frames: int(c.frames.Load())}
	switch state := c.client.State().(type) {
	case rtsp.Negotiated:
		event.Session = state.Session.ID
	case rtsp.Streaming:
		event.Session = state.Session.ID
	}
	return event
}

// emit never blocks network goroutine
func (c *Controller) emit(event Event) bool {
	select {
	case c.Events <- event:
		return true
	default:
		return false
	}
}
