package packet

import (
	"bytes"
	"testing"

	"github.com/pion/rtp"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	payloads := [][]byte{nil, {}, {0xFF}, bytes.Repeat([]byte{1, 2, 3}, 1000)}

	for _, payload := range payloads {
		for _, seq := range []uint16{0, 1, 0x7FFF, 0xFFFF} {
			for cc := uint8(0); cc < 16; cc += 5 {
				src := &Packet{
					Version:        Version2,
					Padding:        cc%2 == 0,
					Extension:      cc%2 == 1,
					CSRCCount:      cc,
					Marker:         seq%2 == 1,
					PayloadType:    uint8(seq) & 0x7F,
					SequenceNumber: seq,
					Timestamp:      0xDEADBEEF,
					SSRC:           uint32(seq) << 8,
					Payload:        payload,
				}

				b := src.Marshal()
				require.Len(t, b, HeaderSize+len(payload))

				dst, err := Unmarshal(b)
				require.Nil(t, err)

				require.Equal(t, src.Version, dst.Version)
				require.Equal(t, src.Padding, dst.Padding)
				require.Equal(t, src.Extension, dst.Extension)
				require.Equal(t, src.CSRCCount, dst.CSRCCount)
				require.Equal(t, src.Marker, dst.Marker)
				require.Equal(t, src.PayloadType, dst.PayloadType)
				require.Equal(t, src.SequenceNumber, dst.SequenceNumber)
				require.Equal(t, src.Timestamp, dst.Timestamp)
				require.Equal(t, src.SSRC, dst.SSRC)
				require.True(t, bytes.Equal(src.Payload, dst.Payload))
			}
		}
	}
}

func TestHeaderLayout(t *testing.T) {
	p := &Packet{
		Version:        2,
		Padding:        true,
		CSRCCount:      3,
		Marker:         true,
		PayloadType:    26,
		SequenceNumber: 0x0102,
		Timestamp:      0x03040506,
		SSRC:           0x0708090A,
		Payload:        []byte("jpeg"),
	}

	expect := []byte{
		0b10_1_0_0011, 0b1_0011010,
		0x01, 0x02,
		0x03, 0x04, 0x05, 0x06,
		0x07, 0x08, 0x09, 0x0A,
		'j', 'p', 'e', 'g',
	}
	require.Equal(t, expect, p.Marshal())
}

func TestShortInput(t *testing.T) {
	b := NewPacket(PayloadTypeJPEG, 1, 2, 3, nil).Marshal()

	for i := 0; i < HeaderSize; i++ {
		p, err := Unmarshal(b[:i])
		require.ErrorIs(t, err, ErrSize)
		require.Nil(t, p)
	}

	_, err := Unmarshal(nil)
	require.ErrorIs(t, err, ErrSize)
}

func TestWrongVersion(t *testing.T) {
	b := NewPacket(PayloadTypeJPEG, 1, 2, 3, []byte{1}).Marshal()

	for _, version := range []byte{0, 1, 3} {
		// all combinations of other bits in byte 0
		for low := 0; low < 64; low++ {
			b[0] = version<<6 | byte(low)
			_, err := Unmarshal(b)
			require.ErrorIs(t, err, ErrVersion)
		}
	}

	b[0] = 2 << 6
	_, err := Unmarshal(b)
	require.Nil(t, err)
}

func TestEmptyPayload(t *testing.T) {
	p, err := Unmarshal(NewPacket(96, 10, 20, 30, nil).Marshal())
	require.Nil(t, err)
	require.NotNil(t, p.Payload)
	require.Len(t, p.Payload, 0)
}

func TestPionCompatible(t *testing.T) {
	src := NewPacket(PayloadTypeJPEG, 65535, 1234567, 42, []byte("frame"))
	src.Marker = true

	b1 := src.Marshal()

	b2, err := src.RTP().Marshal()
	require.Nil(t, err)
	require.Equal(t, b2, b1)

	var pkt rtp.Packet
	require.Nil(t, pkt.Unmarshal(b1))
	require.Equal(t, src.SequenceNumber, pkt.SequenceNumber)
	require.Equal(t, src.Timestamp, pkt.Timestamp)
	require.Equal(t, src.Payload, pkt.Payload)
}
