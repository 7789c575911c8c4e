package rtsp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func splitMessage(s string) []string {
	s = strings.TrimSuffix(s, "\r\n\r\n")
	return strings.Split(s, "\r\n")
}

func TestRequest(t *testing.T) {
	req := &Request{
		Method:     MethodNegotiate,
		Resource:   "clip.bin",
		Sequence:   1,
		ClientPort: 6000,
	}

	s := req.String()
	require.Equal(t, "NEGOTIATE clip.bin RTSP/1.0\r\nSequence: 1\r\nTransport: RTP/UDP; client_port=6000\r\n\r\n", s)

	req2, err := ParseRequest(splitMessage(s))
	require.Nil(t, err)
	require.Equal(t, req, req2)

	req = &Request{Method: MethodStop, Resource: "clip.bin", Sequence: 4, Session: 123456}
	req2, err = ParseRequest(splitMessage(req.String()))
	require.Nil(t, err)
	require.Equal(t, req, req2)
}

func TestParseRequest(t *testing.T) {
	req, err := ParseRequest([]string{
		"START /clip.bin RTSP/1.0",
		"sequence: 7",
		"session: 654321;timeout=60",
		"transport: RTP/AVP;unicast;client_port=6000-6001",
	})
	require.Nil(t, err)
	require.Equal(t, &Request{
		Method:     MethodStart,
		Resource:   "/clip.bin",
		Sequence:   7,
		Session:    654321,
		ClientPort: 6000,
	}, req)

	// transport without port is not an error
	req, err = ParseRequest([]string{"START clip.bin RTSP/1.0", "Sequence: 2", "Transport: RTP/UDP"})
	require.Nil(t, err)
	require.Equal(t, uint16(0), req.ClientPort)
}

func TestParseRequestErrors(t *testing.T) {
	for _, lines := range [][]string{
		nil,
		{"NEGOTIATE clip.bin"},
		{"PLAY clip.bin RTSP/1.0", "Sequence: 1"},
		{"START clip.bin RTSP/1.0"},
		{"START clip.bin RTSP/1.0", "Sequence: one"},
		{"START clip.bin RTSP/1.0", "Sequence: 1", "Session: abc"},
		{"START clip.bin RTSP/1.0", "Sequence: 1", "Transport: RTP/UDP; client_port=port"},
		{"START clip.bin RTSP/1.0", "Sequence: 1", "Transport: RTP/UDP; client_port=70000"},
		{"START clip.bin RTSP/1.0", "Sequence 1"},
	} {
		_, err := ParseRequest(lines)
		require.ErrorIs(t, err, ErrFormat, lines)
	}
}

func TestResponse(t *testing.T) {
	res := NewResponse(StatusNotFound, 3, 0)
	s := res.String()
	require.Equal(t, "RTSP/1.0 404 Not Found\r\nSequence: 3\r\nSession: 0\r\n\r\n", s)

	res2, err := ParseResponse(splitMessage(s))
	require.Nil(t, err)
	require.Equal(t, res, res2)

	res = NewResponse(StatusOK, 1, 123456)
	res2, err = ParseResponse(splitMessage(res.String()))
	require.Nil(t, err)
	require.Equal(t, res, res2)
}

func TestParseResponseErrors(t *testing.T) {
	for _, lines := range [][]string{
		nil,
		{"RTSP/1.0 200"},
		{"RTSP/1.0 OK fine"},
		{"RTSP/1.0 200 OK", "Session: 1"},
		{"RTSP/1.0 200 OK", "Sequence: 1"},
		{"RTSP/1.0 200 OK", "Sequence: 1", "Session: x"},
	} {
		_, err := ParseResponse(lines)
		require.ErrorIs(t, err, ErrFormat, lines)
	}
}

func TestGuessSequence(t *testing.T) {
	require.Equal(t, uint32(5), GuessSequence([]string{"PLAY clip.bin RTSP/1.0", "Sequence: 5"}))
	require.Equal(t, uint32(0), GuessSequence([]string{"START clip.bin RTSP/1.0"}))
	require.Equal(t, uint32(0), GuessSequence(nil))
}
