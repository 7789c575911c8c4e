package tcp

import (
	"net"
	"strings"
	"time"
)

const DefaultPort = "5555"

var DialTimeout = 5 * time.Second

// Dial TCP address, adds DefaultPort if address has no port
func Dial(address string) (net.Conn, error) {
	if strings.IndexByte(address, ':') < 0 {
		address += ":" + DefaultPort
	}
	return net.DialTimeout("tcp", address, DialTimeout)
}
