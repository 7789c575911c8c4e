package media

import (
	"errors"
	"io"

	"github.com/AlexxIT/rtpcast/pkg/core"
	"github.com/pion/rtp"
)

var ErrBusy = errors.New("media: stream busy")

// Stream keeps playback position of one session. Source is borrowed by Sender
// while it runs and always returned back, so next Sender continues from the
// same frame and with the same sequence numbers.
type Stream struct {
	PayloadType uint8
	SSRC        uint32

	source    FrameSource
	sequencer rtp.Sequencer
	borrowed  bool
	sent      int
}

func NewStream(source FrameSource, payloadType uint8) *Stream {
	return &Stream{
		PayloadType: payloadType,
		SSRC:        core.RandUint32(),
		source:      source,
		sequencer:   rtp.NewRandomSequencer(),
	}
}

// Sent returns count of frames sent by all senders of this stream.
// Read it only when no Sender is running.
func (s *Stream) Sent() int {
	return s.sent
}

func (s *Stream) acquire() (FrameSource, error) {
	if s.borrowed || s.source == nil {
		return nil, ErrBusy
	}
	s.borrowed = true
	return s.source, nil
}

func (s *Stream) release(source FrameSource) {
	s.source = source
	s.borrowed = false
}

func (s *Stream) Close() error {
	if c, ok := s.source.(io.Closer); ok {
		s.source = nil
		return c.Close()
	}
	s.source = nil
	return nil
}
