package client

import (
	"net/http"
	"sync"

	"github.com/AlexxIT/rtpcast/internal/api"
	"github.com/AlexxIT/rtpcast/internal/api/ws"
)

// Viewer shows frames in browser and accepts commands over WebSocket:
// - {"type":"command","value":"start"} from browser
// - {"type":"state","value":{...}} and binary frames to browser
type Viewer struct {
	ctrl *Controller

	mu         sync.Mutex
	transports map[*ws.Transport]struct{}
	last       *StateEvent
}

func NewViewer(ctrl *Controller) *Viewer {
	return &Viewer{
		ctrl:       ctrl,
		transports: map[*ws.Transport]struct{}{},
	}
}

func (v *Viewer) Init() {
	ws.HandleFunc("command", v.onCommand)
	ws.OnConnect(v.onConnect)

	api.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		api.Response(w, viewerPage, "text/html")
	})
}

func (v *Viewer) onConnect(tr *ws.Transport) {
	v.mu.Lock()
	v.transports[tr] = struct{}{}
	last := v.last
	v.mu.Unlock()

	if last != nil {
		tr.Write(&ws.Message{Type: "state", Value: last})
	}

	tr.OnClose(func() {
		v.mu.Lock()
		delete(v.transports, tr)
		v.mu.Unlock()
	})
}

func (v *Viewer) onCommand(tr *ws.Transport, msg *ws.Message) error {
	cmd, err := ParseCommand(msg.String())
	if err != nil {
		return err
	}
	if !v.ctrl.Send(cmd) {
		return errBusy
	}
	return nil
}

// Broadcast sends event to all browsers
func (v *Viewer) Broadcast(event Event) {
	var msg any

	switch event := event.(type) {
	case StateEvent:
		v.mu.Lock()
		v.last = &event
		v.mu.Unlock()
		msg = &ws.Message{Type: "state", Value: event}
	case ErrorEvent:
		msg = &ws.Message{Type: "error", Value: event.Error()}
	case FrameEvent:
		msg = event.Packet.Payload
	default:
		return
	}

	v.mu.Lock()
	transports := make([]*ws.Transport, 0, len(v.transports))
	for tr := range v.transports {
		transports = append(transports, tr)
	}
	v.mu.Unlock()

	for _, tr := range transports {
		tr.Write(msg)
	}
}

const viewerPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>rtpcast</title>
<style>
body { font-family: sans-serif; background: #222; color: #eee; }
img { display: block; max-width: 100%; min-height: 240px; background: #000; }
</style>
</head>
<body>
<img id="frame" alt="">
<p>
<button data-cmd="negotiate">negotiate</button>
<button data-cmd="start">start</button>
<button data-cmd="pause">pause</button>
<button data-cmd="stop">stop</button>
<span id="state"></span>
</p>
<script>
const ws = new WebSocket(location.href.replace(/^http/, 'ws') + 'api/ws');
ws.binaryType = 'blob';
const img = document.getElementById('frame');
const state = document.getElementById('state');
ws.onmessage = ev => {
    if (typeof ev.data !== 'string') {
        const url = URL.createObjectURL(new Blob([ev.data], {type: 'image/jpeg'}));
        img.onload = () => URL.revokeObjectURL(url);
        img.src = url;
        return;
    }
    const msg = JSON.parse(ev.data);
    if (msg.type === 'state') {
        state.textContent = msg.value.state + (msg.value.session ? ' ' + msg.value.session : '') + ', frames: ' + msg.value.frames;
    } else if (msg.type === 'error') {
        state.textContent = 'error: ' + msg.value;
    }
};
document.querySelectorAll('button').forEach(b => {
    b.onclick = () => ws.send(JSON.stringify({type: 'command', value: b.dataset.cmd}));
});
</script>
</body>
</html>
`
