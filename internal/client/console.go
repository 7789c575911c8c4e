package client

import (
	"fmt"
	"io"
	"strings"

	"github.com/AlexxIT/rtpcast/pkg/rtsp"
	"github.com/AlexxIT/rtpcast/pkg/shell"
	"golang.org/x/term"
)

const consoleHelp = "commands: negotiate, start, pause, stop, quit"

// Console reads commands from terminal and prints events
type Console struct {
	ctrl *Controller
	term *term.Terminal
}

func NewConsole(rw io.ReadWriter, ctrl *Controller) *Console {
	return &Console{
		ctrl: ctrl,
		term: term.NewTerminal(rw, "> "),
	}
}

// Run reads lines until quit command or end of input
func (c *Console) Run() {
	c.println(consoleHelp)

	for {
		line, err := c.term.ReadLine()
		if err != nil {
			// Ctrl+D or closed input
			c.ctrl.Send(CmdQuit)
			return
		}

		args := shell.QuoteSplit(line)
		if len(args) == 0 {
			continue
		}

		if args[0] == "help" {
			c.println(consoleHelp)
			continue
		}

		cmd, err := ParseCommand(strings.ToLower(args[0]))
		if err != nil {
			c.println(err.Error())
			continue
		}

		if !c.ctrl.Send(cmd) {
			c.println("busy, try again")
			continue
		}

		if cmd == CmdQuit {
			return
		}
	}
}

// Print writes event above the prompt
func (c *Console) Print(event Event) {
	switch event := event.(type) {
	case StateEvent:
		switch event.State {
		case rtsp.KindIdle:
			c.println(fmt.Sprintf("state: %s, frames: %d", event.State, event.Frames))
		default:
			c.println(fmt.Sprintf("state: %s, session: %d, frames: %d", event.State, event.Session, event.Frames))
		}
	case ErrorEvent:
		c.println("error: " + event.Error())
	}
}

func (c *Console) println(s string) {
	_, _ = c.term.Write([]byte(s + "\n"))
}
