package media

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/AlexxIT/rtpcast/pkg/core"
	"github.com/AlexxIT/rtpcast/pkg/packet"
)

const DefaultInterval = 50 * time.Millisecond // ~20 FPS

const (
	MsgEnd    = "end"
	MsgCancel = "cancel"
)

// ErrStopped wraps the reason when Sender or Receiver finish unexpectedly
var ErrStopped = errors.New("media: task stopped")

// Sender reads one frame from Stream every interval and sends it as packet.
// Fires: *packet.Packet after each send, MsgEnd or MsgCancel on finish,
// ErrStopped error on failed read or send.
type Sender struct {
	core.Listener

	stream   *Stream
	conn     net.PacketConn
	addr     net.Addr
	interval time.Duration

	cancel  *core.Signal
	done    chan struct{}
	started bool
	err     error
}

// NewSender takes ownership of conn, it will be closed when sender finish
func NewSender(stream *Stream, conn net.PacketConn, addr net.Addr, interval time.Duration) *Sender {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sender{
		stream:   stream,
		conn:     conn,
		addr:     addr,
		interval: interval,
		cancel:   core.NewSignal(),
		done:     make(chan struct{}),
	}
}

func (s *Sender) Start() {
	if s.started {
		return
	}
	s.started = true
	go s.run()
}

// Stop signals cancel and waits until stream is released
func (s *Sender) Stop() {
	s.cancel.Notify()

	if !s.started {
		s.started = true
		_ = s.conn.Close()
		close(s.done)
		return
	}

	<-s.done
}

func (s *Sender) Done() <-chan struct{} {
	return s.done
}

// Err returns the reason of unexpected finish, valid after Done
func (s *Sender) Err() error {
	return s.err
}

func (s *Sender) run() {
	defer close(s.done)
	defer s.conn.Close()

	source, err := s.stream.acquire()
	if err != nil {
		s.fail(err)
		return
	}
	defer s.stream.release(source)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.cancel.C():
			s.Fire(MsgCancel)
			return

		case now := <-ticker.C:
			// cancel has priority over tick
			if s.cancel.Pending() {
				s.Fire(MsgCancel)
				return
			}

			payload, err := source.Next()
			if err != nil {
				s.fail(err)
				return
			}
			if len(payload) == 0 {
				s.Fire(MsgEnd)
				return
			}

			pkt := packet.NewPacket(
				s.stream.PayloadType,
				s.stream.sequencer.NextSequenceNumber(),
				uint32(now.UnixMilli()),
				s.stream.SSRC,
				payload,
			)

			if _, err = s.conn.WriteTo(pkt.Marshal(), s.addr); err != nil {
				s.fail(err)
				return
			}

			s.stream.sent++

			s.Fire(pkt)
		}
	}
}

func (s *Sender) fail(err error) {
	s.err = err
	s.Fire(fmt.Errorf("%w: %w", ErrStopped, err))
}
