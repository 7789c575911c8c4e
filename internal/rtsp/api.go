package rtsp

import (
	"net/http"
	"sort"

	"github.com/AlexxIT/rtpcast/internal/api"
)

func apiSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	api.ResponseJSON(w, listConns())
}

type connView struct {
	Remote   string `json:"remote"`
	State    string `json:"state"`
	Session  uint32 `json:"session,omitempty"`
	Resource string `json:"resource,omitempty"`
	Port     uint16 `json:"client_port,omitempty"`
	Packets  int    `json:"packets"`
}

func listConns() []connView {
	connsMu.Lock()
	items := make([]connView, 0, len(conns))
	for _, info := range conns {
		info.mu.Lock()
		items = append(items, info.connView)
		info.mu.Unlock()
	}
	connsMu.Unlock()

	sort.Slice(items, func(i, j int) bool {
		return items[i].Remote < items[j].Remote
	})

	return items
}
