package main

import (
	"github.com/AlexxIT/rtpcast/internal/api"
	"github.com/AlexxIT/rtpcast/internal/app"
	"github.com/AlexxIT/rtpcast/internal/rtsp"
	"github.com/AlexxIT/rtpcast/pkg/shell"
)

func main() {
	app.Init("rtpcast") // init config and logs

	api.Init() // init API before all others

	rtsp.Init() // control server, media senders

	sig := shell.WaitSignal()
	app.Logger.Info().Str("signal", sig.String()).Msg("exit")
}
