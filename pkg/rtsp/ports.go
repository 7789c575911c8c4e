package rtsp

import (
	"fmt"
	"net"
	"sync"
)

var mu sync.Mutex

// GetUDPPort returns free even port. The port is released before return,
// so it's only a hint for the following bind.
func GetUDPPort(ip net.IP, maxAttempts int) (uint16, error) {
	mu.Lock()
	defer mu.Unlock()

	if ip == nil {
		ip = net.IPv4(0, 0, 0, 0)
	}

	for i := 0; i < maxAttempts; i++ {
		// Get a random port from the OS
		tempListener, err := net.ListenUDP("udp", &net.UDPAddr{IP: ip, Port: 0})
		if err != nil {
			continue
		}

		port := tempListener.LocalAddr().(*net.UDPAddr).Port
		_ = tempListener.Close()

		// 11. RTP over Network and Transport Protocols (https://www.ietf.org/rfc/rfc3550.txt)
		// For UDP and similar protocols, RTP SHOULD use an even destination port number
		if port%2 == 1 {
			port--
		}

		listener, err := net.ListenUDP("udp", &net.UDPAddr{IP: ip, Port: port})
		if err != nil {
			continue
		}
		_ = listener.Close()

		return uint16(port), nil
	}

	return 0, fmt.Errorf("failed to allocate UDP port after %d attempts", maxAttempts)
}
