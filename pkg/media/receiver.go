package media

import (
	"errors"
	"fmt"
	"net"

	"github.com/AlexxIT/rtpcast/pkg/core"
	"github.com/AlexxIT/rtpcast/pkg/packet"
)

// MaxDatagram - max UDP payload size
const MaxDatagram = 65535

// Receiver reads datagrams until Stop.
// Fires: *packet.Packet for each valid datagram, error for each broken one,
// ErrStopped error if socket fails before Stop.
type Receiver struct {
	core.Listener

	conn net.PacketConn

	cancel  *core.Signal
	done    chan struct{}
	started bool
	err     error
}

// ListenReceiver binds fresh UDP socket on port
func ListenReceiver(port uint16) (*Receiver, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: int(port)})
	if err != nil {
		return nil, err
	}
	return NewReceiver(conn), nil
}

// NewReceiver takes ownership of conn, it will be closed when receiver finish
func NewReceiver(conn net.PacketConn) *Receiver {
	return &Receiver{
		conn:   conn,
		cancel: core.NewSignal(),
		done:   make(chan struct{}),
	}
}

func (r *Receiver) LocalAddr() net.Addr {
	return r.conn.LocalAddr()
}

func (r *Receiver) Start() {
	if r.started {
		return
	}
	r.started = true
	go r.run()
}

func (r *Receiver) Stop() {
	r.cancel.Notify()

	if !r.started {
		r.started = true
		_ = r.conn.Close()
		close(r.done)
		return
	}

	<-r.done
}

func (r *Receiver) Done() <-chan struct{} {
	return r.done
}

func (r *Receiver) Err() error {
	return r.err
}

func (r *Receiver) run() {
	defer close(r.done)

	// close socket on cancel, so blocked ReadFrom returns
	finished := make(chan struct{})
	defer close(finished)

	go func() {
		select {
		case <-r.cancel.C():
		case <-finished:
		}
		_ = r.conn.Close()
	}()

	b := make([]byte, MaxDatagram)
	for {
		n, _, err := r.conn.ReadFrom(b)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				r.err = err
				r.Fire(fmt.Errorf("%w: %w", ErrStopped, err))
			}
			return
		}

		pkt, err := packet.Unmarshal(b[:n])
		if err != nil {
			r.Fire(err)
			continue
		}

		r.Fire(pkt)
	}
}
