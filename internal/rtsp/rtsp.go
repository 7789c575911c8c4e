package rtsp

import (
	"errors"
	"net"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/AlexxIT/rtpcast/internal/api"
	"github.com/AlexxIT/rtpcast/internal/app"
	"github.com/AlexxIT/rtpcast/pkg/mdns"
	"github.com/AlexxIT/rtpcast/pkg/media"
	"github.com/AlexxIT/rtpcast/pkg/packet"
	"github.com/AlexxIT/rtpcast/pkg/rtsp"
	"github.com/AlexxIT/rtpcast/pkg/tcp"
	hmdns "github.com/hashicorp/mdns"
	"github.com/rs/zerolog"
)

func Init() {
	var conf struct {
		Mod struct {
			Listen      string        `yaml:"listen" json:"listen"`
			MediaDir    string        `yaml:"media_dir" json:"media_dir"`
			Interval    time.Duration `yaml:"interval" json:"interval"`
			PayloadType uint8         `yaml:"payload_type" json:"payload_type"`
			MDNS        bool          `yaml:"mdns" json:"mdns"`
			Name        string        `yaml:"name" json:"name,omitempty"`
		} `yaml:"server"`
	}

	// default config
	conf.Mod.Listen = ":" + tcp.DefaultPort
	conf.Mod.MediaDir = "."
	conf.Mod.Interval = media.DefaultInterval
	conf.Mod.PayloadType = packet.PayloadTypeJPEG

	app.LoadConfig(&conf)
	app.Info["server"] = conf.Mod

	log = app.GetLogger("rtsp")

	address := conf.Mod.Listen
	if address == "" {
		return
	}

	srv, err := tcp.NewServer(address)
	if err != nil {
		log.Error().Err(err).Msg("[rtsp] listen")
		return
	}

	log.Info().Str("addr", srv.Addr().String()).Str("media", conf.Mod.MediaDir).Msg("[rtsp] listen")

	opener = media.Dir(conf.Mod.MediaDir)
	interval = conf.Mod.Interval
	payloadType = conf.Mod.PayloadType

	srv.Listen(func(msg any) {
		if conn, ok := msg.(net.Conn); ok {
			handle(conn)
		}
	})

	go func() {
		if err := srv.Serve(); err != nil {
			log.Error().Err(err).Msg("[rtsp] serve")
		}
	}()

	api.HandleFunc("api/sessions", apiSessions)

	if conf.Mod.MDNS {
		port := srv.Addr().(*net.TCPAddr).Port
		go advertise(conf.Mod.Name, port)
	}
}

// internal

var log zerolog.Logger

var opener media.Opener
var interval time.Duration
var payloadType uint8

var mdnsServer *hmdns.Server

func handle(conn net.Conn) {
	remote := conn.RemoteAddr().String()

	log.Debug().Str("remote", remote).Msg("[rtsp] new connection")

	c := rtsp.NewServer(conn, opener)
	c.Interval = interval
	c.PayloadType = payloadType

	info := &connInfo{connView: connView{Remote: remote, State: rtsp.KindIdle.String()}}
	addConn(c, info)

	connectionsActive.Inc()

	var method string
	var prev = rtsp.KindIdle

	c.Listen(func(msg any) {
		switch msg := msg.(type) {
		case *rtsp.Request:
			method = msg.Method
			log.Trace().Msgf("[rtsp] server request:\n%s", msg)

		case *rtsp.Response:
			if method == "" {
				method = "unknown"
			}
			requestsTotal.WithLabelValues(method, strconv.Itoa(msg.Code)).Inc()
			method = ""
			log.Trace().Msgf("[rtsp] server response:\n%s", msg)

		case rtsp.State:
			kind := msg.Kind()
			trackState(prev, kind)
			prev = kind

			info.update(msg)

			log.Debug().Str("remote", remote).Str("state", kind.String()).Msg("[rtsp] state")

		case *packet.Packet:
			packetsSent.Inc()
			bytesSent.Add(float64(len(msg.Payload)))
			info.sent()

		case string:
			switch msg {
			case media.MsgEnd:
				log.Debug().Str("remote", remote).Msg("[rtsp] end of stream")
			case media.MsgCancel:
				log.Trace().Str("remote", remote).Msg("[rtsp] stream cancelled")
			}

		case error:
			if errors.Is(msg, media.ErrStopped) {
				streamFailures.Inc()
				log.Warn().Err(msg).Str("remote", remote).Msg("[rtsp] stream")
				return
			}
			log.Debug().Err(msg).Str("remote", remote).Msg("[rtsp] request")
		}
	})

	if err := c.Handle(); err != nil {
		log.Debug().Err(err).Str("remote", remote).Msg("[rtsp] connection")
	}

	delConn(c)

	connectionsActive.Dec()

	log.Debug().Str("remote", remote).Msg("[rtsp] close connection")
}

func advertise(name string, port int) {
	if name == "" {
		name, _ = os.Hostname()
	}

	var err error
	if mdnsServer, err = mdns.NewServer(name, port, nil, []string{"version=" + app.Version}); err != nil {
		log.Warn().Err(err).Msg("[rtsp] mdns")
		return
	}

	log.Info().Str("name", name).Int("port", port).Msg("[rtsp] mdns advertise")
}

type connInfo struct {
	connView
	mu sync.Mutex
}

func (i *connInfo) update(state rtsp.State) {
	i.mu.Lock()
	i.State = state.Kind().String()
	switch state := state.(type) {
	case rtsp.Negotiated:
		i.setSession(state.Session)
	case rtsp.Streaming:
		i.setSession(state.Session)
	default:
		i.setSession(nil)
	}
	i.mu.Unlock()
}

func (i *connInfo) setSession(session *rtsp.Session) {
	if session == nil {
		i.Session, i.Resource, i.Port = 0, "", 0
		return
	}
	i.Session = session.ID
	i.Resource = session.Resource
	i.Port = session.ClientPort
}

func (i *connInfo) sent() {
	i.mu.Lock()
	i.Packets++
	i.mu.Unlock()
}

var conns = map[*rtsp.Server]*connInfo{}
var connsMu sync.Mutex

func addConn(c *rtsp.Server, info *connInfo) {
	connsMu.Lock()
	conns[c] = info
	connsMu.Unlock()
}

func delConn(c *rtsp.Server) {
	connsMu.Lock()
	delete(conns, c)
	connsMu.Unlock()
}
