package main

import (
	"github.com/AlexxIT/rtpcast/internal/api"
	"github.com/AlexxIT/rtpcast/internal/api/ws"
	"github.com/AlexxIT/rtpcast/internal/app"
	"github.com/AlexxIT/rtpcast/internal/client"
	"github.com/AlexxIT/rtpcast/pkg/shell"
)

func main() {
	app.Init("rtpcast-client") // init config and logs

	// server and client may run on the same host
	api.DefaultListen = ":1985"
	api.Init()
	ws.Init()

	client.Init() // control connection, console and viewer

	go func() {
		sig := shell.WaitSignal()
		app.Logger.Info().Str("signal", sig.String()).Msg("exit")
		client.Quit()
	}()

	<-client.Done()
}
