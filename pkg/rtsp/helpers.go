package rtsp

import (
	"net"
	"strings"
)

func remoteIP(addr net.Addr) net.IP {
	switch addr := addr.(type) {
	case *net.TCPAddr:
		return addr.IP
	case *net.UDPAddr:
		return addr.IP
	}
	if host, _, err := net.SplitHostPort(addr.String()); err == nil {
		return net.ParseIP(strings.Trim(host, "[]"))
	}
	return nil
}
