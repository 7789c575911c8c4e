package client

import (
	"errors"
	"os"
	"time"

	"github.com/AlexxIT/rtpcast/internal/app"
	"github.com/AlexxIT/rtpcast/pkg/mdns"
	"github.com/AlexxIT/rtpcast/pkg/media"
	"github.com/AlexxIT/rtpcast/pkg/packet"
	"github.com/AlexxIT/rtpcast/pkg/rtsp"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

func Init() {
	var cfg struct {
		Mod struct {
			Server    string        `yaml:"server" json:"server"`
			Resource  string        `yaml:"resource" json:"resource"`
			RTPPort   uint16        `yaml:"rtp_port" json:"rtp_port"`
			Console   bool          `yaml:"console" json:"console"`
			Viewer    bool          `yaml:"viewer" json:"viewer"`
			Discovery time.Duration `yaml:"discovery" json:"discovery"`
		} `yaml:"client"`
	}

	// default config
	cfg.Mod.Server = "localhost"
	cfg.Mod.Resource = "clip.bin"
	cfg.Mod.Console = true
	cfg.Mod.Viewer = true
	cfg.Mod.Discovery = 2 * time.Second

	app.LoadConfig(&cfg)
	app.Info["client"] = cfg.Mod

	log = app.GetLogger("client")

	done = make(chan struct{})

	address := cfg.Mod.Server
	if address == "mdns" {
		var err error
		if address, err = discovery(cfg.Mod.Discovery); err != nil {
			log.Error().Err(err).Msg("[client] discovery")
			close(done)
			return
		}
	}

	port := cfg.Mod.RTPPort
	if port == 0 {
		var err error
		if port, err = rtsp.GetUDPPort(nil, 10); err != nil {
			log.Error().Err(err).Msg("[client] rtp port")
			close(done)
			return
		}
	}

	conn, err := rtsp.Dial(address, cfg.Mod.Resource, port)
	if err != nil {
		log.Error().Err(err).Str("addr", address).Msg("[client] dial")
		close(done)
		return
	}

	log.Info().Str("addr", address).Str("resource", cfg.Mod.Resource).Uint16("rtp_port", port).Msg("[client] connected")

	conn.Listen(func(msg any) {
		switch msg := msg.(type) {
		case *rtsp.Request:
			log.Trace().Msgf("[client] request:\n%s", msg)
		case *rtsp.Response:
			log.Trace().Msgf("[client] response:\n%s", msg)
		case error:
			if errors.Is(msg, packet.ErrSize) || errors.Is(msg, packet.ErrVersion) {
				log.Debug().Err(msg).Msg("[client] skip datagram")
			}
		}
	})

	ctrl = NewController(conn)

	var viewer *Viewer
	if cfg.Mod.Viewer {
		viewer = NewViewer(ctrl)
		viewer.Init()
	}

	var console *Console
	if cfg.Mod.Console && term.IsTerminal(int(os.Stdin.Fd())) {
		console = startConsole(ctrl)
	}

	go ctrl.Run()

	go func() {
		dispatch(ctrl, console, viewer)
		close(done)
	}()
}

// Quit stops controller, safe to call many times
func Quit() {
	if ctrl != nil {
		ctrl.Send(CmdQuit)
	}
}

// Done closed when client finished
func Done() <-chan struct{} {
	return done
}

var log zerolog.Logger

var ctrl *Controller
var done chan struct{}

var errBusy = errors.New("client: command queue is full")

func discovery(timeout time.Duration) (string, error) {
	entries, err := mdns.Discovery(timeout)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", errors.New("client: no servers found")
	}
	for _, entry := range entries {
		log.Debug().Str("name", entry.Name).Str("addr", entry.Addr()).Msg("[client] mdns")
	}
	return entries[0].Addr(), nil
}

func startConsole(ctrl *Controller) *Console {
	fd := int(os.Stdin.Fd())

	state, err := term.MakeRaw(fd)
	if err != nil {
		log.Warn().Err(err).Msg("[client] console")
		return nil
	}

	console := NewConsole(&stdio{}, ctrl)

	go func() {
		console.Run()
	}()

	go func() {
		<-ctrl.Done()
		_ = term.Restore(fd, state)
	}()

	return console
}

// dispatch reads events until controller finish
func dispatch(ctrl *Controller, console *Console, viewer *Viewer) {
	for {
		select {
		case event := <-ctrl.Events:
			handleEvent(event, console, viewer)
		case <-ctrl.Done():
			// flush the rest
			for {
				select {
				case event := <-ctrl.Events:
					handleEvent(event, console, viewer)
				default:
					if n := ctrl.Dropped(); n > 0 {
						log.Debug().Int("frames", n).Msg("[client] dropped")
					}
					return
				}
			}
		}
	}
}

func handleEvent(event Event, console *Console, viewer *Viewer) {
	switch event := event.(type) {
	case StateEvent:
		log.Debug().Str("state", event.State.String()).Uint32("session", event.Session).Int("frames", event.Frames).Msg("[client] state")
	case ErrorEvent:
		if errors.Is(event.Err, rtsp.ErrTransport) {
			log.Error().Err(event.Err).Msg("[client] connection")
		} else if errors.Is(event.Err, media.ErrStopped) {
			log.Error().Err(event.Err).Msg("[client] media")
		} else {
			log.Warn().Err(event).Msg("[client] command")
		}
	case FrameEvent:
		log.Trace().Uint16("seq", event.Packet.SequenceNumber).Int("size", len(event.Packet.Payload)).Msg("[client] frame")
	}

	if console != nil {
		console.Print(event)
	}
	if viewer != nil {
		viewer.Broadcast(event)
	}
}

type stdio struct{}

func (stdio) Read(p []byte) (int, error) {
	return os.Stdin.Read(p)
}

func (stdio) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}
