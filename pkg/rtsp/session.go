package rtsp

import (
	"strconv"

	"github.com/AlexxIT/rtpcast/pkg/core"
	"github.com/AlexxIT/rtpcast/pkg/media"
)

// session ids are 6 digits on the wire, unique only within one connection
const (
	minSessionID = 100000
	maxSessionID = 999999
)

func newSessionID() uint32 {
	return minSessionID + core.RandUint32()%(maxSessionID-minSessionID+1)
}

// Session - one negotiated agreement. ID never changes after NEGOTIATE.
type Session struct {
	ID         uint32
	Resource   string
	ClientPort uint16

	// Stream exists only on the server side
	Stream *media.Stream
}

func (s *Session) String() string {
	return strconv.FormatUint(uint64(s.ID), 10)
}

// Close releases media source
func (s *Session) Close() error {
	if s.Stream != nil {
		return s.Stream.Close()
	}
	return nil
}
