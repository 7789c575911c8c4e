package rtsp

import (
	"errors"
	"fmt"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/AlexxIT/rtpcast/pkg/tcp"
)

const (
	ProtoRTSP       = "RTSP/1.0"
	MethodNegotiate = "NEGOTIATE"
	MethodStart     = "START"
	MethodPause     = "PAUSE"
	MethodStop      = "STOP"
)

const (
	HeaderSequence  = "Sequence"
	HeaderSession   = "Session"
	HeaderTransport = "Transport"
)

const (
	StatusOK                  = 200
	StatusBadRequest          = 400
	StatusNotFound            = 404
	StatusInternalServerError = 500
)

const transport = "RTP/UDP; client_port="

var (
	ErrFormat    = errors.New("rtsp: wrong format")
	ErrProtocol  = errors.New("rtsp: protocol error")
	ErrTransport = errors.New("rtsp: transport error")
	ErrSequence  = errors.New("rtsp: sequence mismatch")
)

func StatusText(code int) string {
	switch code {
	case StatusOK:
		return "OK"
	case StatusBadRequest:
		return "Bad Request"
	case StatusNotFound:
		return "Not Found"
	case StatusInternalServerError:
		return "Internal Server Error"
	}
	return "Unknown"
}

// Request - control request. Zero Session means no Session header,
// zero ClientPort means no client_port in Transport header.
type Request struct {
	Method     string
	Resource   string
	Sequence   uint32
	Session    uint32
	ClientPort uint16
}

func (r *Request) Marshal() *tcp.Request {
	req := &tcp.Request{
		Method: r.Method,
		Target: r.Resource,
		Proto:  ProtoRTSP,
		Header: textproto.MIMEHeader{
			HeaderSequence: {strconv.FormatUint(uint64(r.Sequence), 10)},
		},
	}
	if r.Session != 0 {
		req.Header.Set(HeaderSession, strconv.FormatUint(uint64(r.Session), 10))
	}
	if r.ClientPort != 0 {
		req.Header.Set(HeaderTransport, transport+strconv.Itoa(int(r.ClientPort)))
	}
	return req
}

func (r *Request) String() string {
	return r.Marshal().String()
}

func ParseRequest(lines []string) (*Request, error) {
	raw, err := tcp.ParseRequest(lines)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	switch raw.Method {
	case MethodNegotiate, MethodStart, MethodPause, MethodStop:
	default:
		return nil, fmt.Errorf("%w: unsupported method: %s", ErrFormat, raw.Method)
	}

	req := &Request{Method: raw.Method, Resource: raw.Target}

	if req.Sequence, err = parseSequence(raw.Header); err != nil {
		return nil, err
	}

	if s := raw.Header.Get(HeaderSession); s != "" {
		if req.Session, err = parseSession(s); err != nil {
			return nil, err
		}
	}

	if s := raw.Header.Get(HeaderTransport); s != "" {
		if req.ClientPort, err = parseClientPort(s); err != nil {
			return nil, err
		}
	}

	return req, nil
}

type Response struct {
	Code     int
	Reason   string
	Sequence uint32
	Session  uint32
}

func NewResponse(code int, sequence, session uint32) *Response {
	return &Response{
		Code:     code,
		Reason:   StatusText(code),
		Sequence: sequence,
		Session:  session,
	}
}

func (r *Response) Marshal() *tcp.Response {
	return &tcp.Response{
		Status:     strconv.Itoa(r.Code) + " " + r.Reason,
		StatusCode: r.Code,
		Proto:      ProtoRTSP,
		Header: textproto.MIMEHeader{
			HeaderSequence: {strconv.FormatUint(uint64(r.Sequence), 10)},
			HeaderSession:  {strconv.FormatUint(uint64(r.Session), 10)},
		},
	}
}

func (r *Response) String() string {
	return r.Marshal().String()
}

func ParseResponse(lines []string) (*Response, error) {
	raw, err := tcp.ParseResponse(lines)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	res := &Response{Code: raw.StatusCode}
	_, res.Reason, _ = strings.Cut(raw.Status, " ")

	if res.Sequence, err = parseSequence(raw.Header); err != nil {
		return nil, err
	}

	s := raw.Header.Get(HeaderSession)
	if s == "" {
		return nil, fmt.Errorf("%w: no session", ErrFormat)
	}
	if res.Session, err = parseSession(s); err != nil {
		return nil, err
	}

	return res, nil
}

// GuessSequence extracts sequence from message that can't be parsed, for reply with error
func GuessSequence(lines []string) uint32 {
	if raw, err := tcp.ParseRequest(lines); err == nil {
		if seq, err := parseSequence(raw.Header); err == nil {
			return seq
		}
	}
	return 0
}

func parseSequence(header textproto.MIMEHeader) (uint32, error) {
	s := header.Get(HeaderSequence)
	if s == "" {
		return 0, fmt.Errorf("%w: no sequence", ErrFormat)
	}
	u, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: sequence: %s", ErrFormat, s)
	}
	return uint32(u), nil
}

// parseSession support `Session: 123456;timeout=60`
func parseSession(s string) (uint32, error) {
	if i := strings.IndexByte(s, ';'); i > 0 {
		s = s[:i]
	}
	u, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: session: %s", ErrFormat, s)
	}
	return uint32(u), nil
}

// parseClientPort support `RTP/UDP; client_port=6000` and `RTP/AVP;unicast;client_port=6000-6001`
func parseClientPort(s string) (uint16, error) {
	for _, part := range strings.Split(s, ";") {
		value, ok := strings.CutPrefix(strings.TrimSpace(part), "client_port=")
		if !ok {
			continue
		}
		if i := strings.IndexByte(value, '-'); i > 0 {
			value = value[:i]
		}
		u, err := strconv.ParseUint(strings.TrimSpace(value), 10, 16)
		if err != nil {
			return 0, fmt.Errorf("%w: client_port: %s", ErrFormat, value)
		}
		return uint16(u), nil
	}
	return 0, nil
}
