package rtsp

import "fmt"

type Kind byte

const (
	KindIdle Kind = iota
	KindNegotiated
	KindStreaming
)

func (k Kind) String() string {
	switch k {
	case KindIdle:
		return "idle"
	case KindNegotiated:
		return "negotiated"
	case KindStreaming:
		return "streaming"
	}
	return "unknown"
}

// State - one of Idle, Negotiated, Streaming
type State interface {
	Kind() Kind
	state()
}

// Idle - no session
type Idle struct{}

// Negotiated - session exists, no media task
type Negotiated struct {
	Session *Session
}

// Streaming - session exists, media task running
type Streaming struct {
	Session *Session
	Task    Task
}

func (Idle) Kind() Kind       { return KindIdle }
func (Negotiated) Kind() Kind { return KindNegotiated }
func (Streaming) Kind() Kind  { return KindStreaming }

func (Idle) state()       {}
func (Negotiated) state() {}
func (Streaming) state()  {}

// Task - handle of running media sender or receiver. Stop must wait until
// the task releases everything it borrowed from the session.
type Task interface {
	Stop()
}

// Machine - session lifecycle, same for server and client:
//
//	Idle --NEGOTIATE--> Negotiated --START--> Streaming
//	Streaming --PAUSE--> Negotiated
//	Negotiated|Streaming --STOP--> Idle
//
// Failed transition leaves state unchanged.
type Machine struct {
	state State
}

func (m *Machine) State() State {
	if m.state == nil {
		return Idle{}
	}
	return m.state
}

func (m *Machine) Kind() Kind {
	return m.State().Kind()
}

// Session returns current session or nil for Idle
func (m *Machine) Session() *Session {
	switch s := m.state.(type) {
	case Negotiated:
		return s.Session
	case Streaming:
		return s.Session
	}
	return nil
}

func (m *Machine) Negotiate(session *Session) error {
	if kind := m.Kind(); kind != KindIdle {
		return fmt.Errorf("%w: %s in state %s", ErrProtocol, MethodNegotiate, kind)
	}
	m.state = Negotiated{Session: session}
	return nil
}

// CanStart checks START without changing state
func (m *Machine) CanStart(id uint32) (*Session, error) {
	s, ok := m.state.(Negotiated)
	if !ok {
		return nil, fmt.Errorf("%w: %s in state %s", ErrProtocol, MethodStart, m.Kind())
	}
	if err := checkSession(MethodStart, s.Session, id); err != nil {
		return nil, err
	}
	return s.Session, nil
}

// Start commits transition to Streaming. Task should be launched only
// after the commit, so its Stop always finds the Streaming state.
func (m *Machine) Start(id uint32, task Task) error {
	session, err := m.CanStart(id)
	if err != nil {
		return err
	}
	m.state = Streaming{Session: session, Task: task}
	return nil
}

// Pause stops media task and returns to Negotiated
func (m *Machine) Pause(id uint32) error {
	s, ok := m.state.(Streaming)
	if !ok {
		return fmt.Errorf("%w: %s in state %s", ErrProtocol, MethodPause, m.Kind())
	}
	if err := checkSession(MethodPause, s.Session, id); err != nil {
		return err
	}
	s.Task.Stop()
	m.state = Negotiated{Session: s.Session}
	return nil
}

// Stop stops media task, if any, and returns released session
func (m *Machine) Stop(id uint32) (*Session, error) {
	session := m.Session()
	if session == nil {
		return nil, fmt.Errorf("%w: %s in state %s", ErrProtocol, MethodStop, m.Kind())
	}
	if err := checkSession(MethodStop, session, id); err != nil {
		return nil, err
	}
	return m.Close(), nil
}

// Close - teardown without checks, for lost connection
func (m *Machine) Close() *Session {
	session := m.Session()
	if s, ok := m.state.(Streaming); ok {
		s.Task.Stop()
	}
	m.state = Idle{}
	return session
}

func checkSession(method string, session *Session, id uint32) error {
	if id == 0 {
		return fmt.Errorf("%w: %s without session", ErrProtocol, method)
	}
	if id != session.ID {
		return fmt.Errorf("%w: %s with wrong session %d", ErrProtocol, method, id)
	}
	return nil
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
