package packet

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/pion/rtp"
)

const (
	Version2   = 2
	HeaderSize = 12

	PayloadTypeJPEG = 26
)

var (
	ErrSize    = errors.New("packet: too small")
	ErrVersion = errors.New("packet: wrong version")
)

// Packet - media datagram with fixed 12 bytes header:
//
//	 0                   1                   2                   3
//	 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|V=2|P|X|  CC   |M|     PT      |       sequence number         |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|                           timestamp                           |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|                             SSRC                              |
//	+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+
//
// CC is stored as is, CSRC list is not parsed and stays inside Payload.
type Packet struct {
	Version        uint8
	Padding        bool
	Extension      bool
	CSRCCount      uint8
	Marker         bool
	PayloadType    uint8
	SequenceNumber uint16
	Timestamp      uint32
	SSRC           uint32
	Payload        []byte
}

func NewPacket(payloadType uint8, seq uint16, ts, ssrc uint32, payload []byte) *Packet {
	return &Packet{
		Version:        Version2,
		PayloadType:    payloadType,
		SequenceNumber: seq,
		Timestamp:      ts,
		SSRC:           ssrc,
		Payload:        payload,
	}
}

func (p *Packet) Marshal() []byte {
	b := make([]byte, HeaderSize+len(p.Payload))

	b[0] = p.Version<<6 | p.CSRCCount&0x0F
	if p.Padding {
		b[0] |= 1 << 5
	}
	if p.Extension {
		b[0] |= 1 << 4
	}

	b[1] = p.PayloadType & 0x7F
	if p.Marker {
		b[1] |= 1 << 7
	}

	binary.BigEndian.PutUint16(b[2:], p.SequenceNumber)
	binary.BigEndian.PutUint32(b[4:], p.Timestamp)
	binary.BigEndian.PutUint32(b[8:], p.SSRC)

	copy(b[HeaderSize:], p.Payload)

	return b
}

func Unmarshal(b []byte) (*Packet, error) {
	if len(b) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrSize, len(b))
	}

	if v := b[0] >> 6; v != Version2 {
		return nil, fmt.Errorf("%w: %d", ErrVersion, v)
	}

	p := &Packet{
		Version:        b[0] >> 6,
		Padding:        b[0]&(1<<5) != 0,
		Extension:      b[0]&(1<<4) != 0,
		CSRCCount:      b[0] & 0x0F,
		Marker:         b[1]&(1<<7) != 0,
		PayloadType:    b[1] & 0x7F,
		SequenceNumber: binary.BigEndian.Uint16(b[2:]),
		Timestamp:      binary.BigEndian.Uint32(b[4:]),
		SSRC:           binary.BigEndian.Uint32(b[8:]),
		Payload:        make([]byte, len(b)-HeaderSize),
	}

	copy(p.Payload, b[HeaderSize:])

	return p, nil
}

// RTP converts packet to pion type. CSRC list, extensions and padding are not
// carried, because payload is opaque for this profile.
func (p *Packet) RTP() *rtp.Packet {
	return &rtp.Packet{
		Header: rtp.Header{
			Version:        p.Version,
			Marker:         p.Marker,
			PayloadType:    p.PayloadType,
			SequenceNumber: p.SequenceNumber,
			Timestamp:      p.Timestamp,
			SSRC:           p.SSRC,
		},
		Payload: p.Payload,
	}
}

func (p *Packet) String() string {
	return fmt.Sprintf(
		"pt=%d seq=%d ts=%d ssrc=%d size=%d",
		p.PayloadType, p.SequenceNumber, p.Timestamp, p.SSRC, len(p.Payload),
	)
}
