package tcp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"sort"
	"strconv"
	"strings"
)

const EndLine = "\r\n"

// MaxLines limits the size of one message, the rest of the stream can't be trusted after it
const MaxLines = 64

var (
	ErrMalformed = errors.New("tcp: malformed message")
	ErrTooLong   = errors.New("tcp: message too long")
)

// ReadMessage reads lines until empty line. Returns io.EOF if stream closed before
// first line and io.ErrUnexpectedEOF if it closed in the middle of message.
func ReadMessage(r *bufio.Reader) ([]string, error) {
	tp := textproto.NewReader(r)

	var lines []string
	for {
		line, err := tp.ReadLine()
		if err != nil {
			if err == io.EOF && lines != nil {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}

		if line == "" {
			return lines, nil
		}

		if len(lines) == MaxLines {
			return nil, ErrTooLong
		}

		lines = append(lines, line)
	}
}

// Response like http.Response, but with any proto
type Response struct {
	Status     string
	StatusCode int
	Proto      string
	Header     textproto.MIMEHeader
}

func (r *Response) String() string {
	return r.Proto + " " + r.Status + EndLine + headerString(r.Header) + EndLine
}

func (r *Response) Write(w io.Writer) (err error) {
	_, err = w.Write([]byte(r.String()))
	return
}

func ParseResponse(lines []string) (*Response, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrMalformed)
	}

	ss := strings.SplitN(lines[0], " ", 3)
	if len(ss) != 3 {
		return nil, fmt.Errorf("%w: status line: %s", ErrMalformed, lines[0])
	}

	res := &Response{
		Status: ss[1] + " " + ss[2],
		Proto:  ss[0],
	}

	var err error
	if res.StatusCode, err = strconv.Atoi(ss[1]); err != nil {
		return nil, fmt.Errorf("%w: status code: %s", ErrMalformed, ss[1])
	}

	if res.Header, err = parseHeader(lines[1:]); err != nil {
		return nil, err
	}

	return res, nil
}

// Request like http.Request, but with any proto and plain target instead of URL
type Request struct {
	Method string
	Target string
	Proto  string
	Header textproto.MIMEHeader
}

func (r *Request) String() string {
	return r.Method + " " + r.Target + " " + r.Proto + EndLine + headerString(r.Header) + EndLine
}

func (r *Request) Write(w io.Writer) (err error) {
	_, err = w.Write([]byte(r.String()))
	return
}

func ParseRequest(lines []string) (*Request, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: empty request", ErrMalformed)
	}

	ss := strings.Fields(lines[0])
	if len(ss) < 3 {
		return nil, fmt.Errorf("%w: request line: %s", ErrMalformed, lines[0])
	}

	req := &Request{
		Method: ss[0],
		Target: ss[1],
		Proto:  ss[2],
	}

	var err error
	if req.Header, err = parseHeader(lines[1:]); err != nil {
		return nil, err
	}

	return req, nil
}

func parseHeader(lines []string) (textproto.MIMEHeader, error) {
	header := make(textproto.MIMEHeader, len(lines))
	for _, line := range lines {
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("%w: header: %s", ErrMalformed, line)
		}
		k = textproto.TrimString(k)
		if k == "" {
			return nil, fmt.Errorf("%w: header: %s", ErrMalformed, line)
		}
		header.Add(textproto.CanonicalMIMEHeaderKey(k), textproto.TrimString(v))
	}
	return header, nil
}

// headerString with sorted keys, so the output is stable for logs and tests
func headerString(header textproto.MIMEHeader) string {
	keys := make([]string, 0, len(header))
	for k := range header {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var s string
	for _, k := range keys {
		for _, v := range header[k] {
			s += k + ": " + v + EndLine
		}
	}
	return s
}
