package mdns

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

type Entry struct {
	Name string            `json:"name"`
	IP   net.IP            `json:"ip"`
	Port int               `json:"port"`
	Info map[string]string `json:"info,omitempty"`
}

func (e *Entry) Addr() string {
	return net.JoinHostPort(e.IP.String(), strconv.Itoa(e.Port))
}

// Discovery returns all servers answered during timeout
func Discovery(timeout time.Duration) ([]*Entry, error) {
	entries := make(chan *mdns.ServiceEntry, 16)
	params := &mdns.QueryParam{
		Service:     Service,
		Timeout:     timeout,
		Entries:     entries,
		DisableIPv6: true,
	}

	var err error
	go func() {
		err = mdns.Query(params)
		close(entries)
	}()

	var items []*Entry
	for entry := range entries {
		if item := newEntry(entry); item != nil {
			items = append(items, item)
		}
	}
	return items, err
}

func newEntry(entry *mdns.ServiceEntry) *Entry {
	if entry.AddrV4 == nil || entry.Port == 0 {
		return nil
	}

	name := strings.TrimSuffix(entry.Name, "."+Service+".local.")

	return &Entry{
		Name: name,
		IP:   entry.AddrV4,
		Port: entry.Port,
		Info: parseTXT(entry.InfoFields),
	}
}

func parseTXT(fields []string) map[string]string {
	if len(fields) == 0 {
		return nil
	}
	info := make(map[string]string, len(fields))
	for _, field := range fields {
		k, v, _ := strings.Cut(field, "=")
		info[k] = v
	}
	return info
}
