package mdns

import (
	"net"
	"os"

	"github.com/hashicorp/mdns"
)

const Service = "_rtpcast._tcp"

// NewServer advertises control port on local network. TXT records
// are key=value pairs, for example `version=0.3.0`.
func NewServer(name string, port int, ips []net.IP, txt []string) (*mdns.Server, error) {
	service, err := NewService(name, port, ips, txt)
	if err != nil {
		return nil, err
	}
	return mdns.NewServer(&mdns.Config{Zone: service})
}

func NewService(name string, port int, ips []net.IP, txt []string) (*mdns.MDNSService, error) {
	if name == "" {
		name, _ = os.Hostname()
	}

	if len(ips) == 0 || ips[0] == nil {
		ips = LocalIPs()
	}

	// important to set hostName manually with any value and `.local.` tail
	// important to set ips manually
	return mdns.NewMDNSService(name, Service, "", hostName(name)+".local.", port, ips, txt)
}

func LocalIPs() []net.IP {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil
	}

	var ips []net.IP
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 {
			continue // interface down
		}
		if iface.Flags&net.FlagLoopback != 0 {
			continue // loopback interface
		}

		var addrs []net.Addr
		if addrs, err = iface.Addrs(); err != nil {
			continue
		}
		for _, addr := range addrs {
			switch addr := addr.(type) {
			case *net.IPNet:
				ips = append(ips, addr.IP)
			case *net.IPAddr:
				ips = append(ips, addr.IP)
			}
		}
	}
	return ips
}

func hostName(name string) string {
	b := []byte(name)
	for i, c := range b {
		if 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' {
			continue
		}
		b[i] = '-'
	}
	return string(b)
}
