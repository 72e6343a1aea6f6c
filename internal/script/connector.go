package script

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"vmail/internal/ipc"
	"vmail/internal/logging"
	"vmail/internal/reactor"
)

// Connector gates daemon-backed bodies on the vmaild socket.
type Connector struct {
	SocketPath string
	Loop       *reactor.Loop
	Log        *slog.Logger

	dial func(loop *reactor.Loop, path string) *reactor.Future[*ipc.AsyncClient]
}

// NewConnector returns a connector for the socket resolved for inv.
func NewConnector(inv *Invocation) *Connector {
	return &Connector{
		SocketPath: inv.SocketPath,
		Loop:       inv.Loop,
		Log:        logging.NewComponentLogger(inv.Log, "connector"),
	}
}

// Connect probes the socket and, when it exists, dials the daemon. onConnect
// issues the real call on the connected client and yields the exit code.
// onError maps a dial failure to an exit code; nil logs the failure and
// returns ExitUnavailable. The client is closed once the outcome settles.
func (c *Connector) Connect(onConnect func(*ipc.AsyncClient) *reactor.Future[int], onError func(error) int) Outcome {
	if _, err := os.Stat(c.SocketPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.Log.Error("vmaild not running", logging.String("socket", c.SocketPath))
		} else {
			c.Log.Error("unable to check vmaild socket", logging.String("socket", c.SocketPath), logging.Error(err))
		}
		return Immediate(ExitUnavailable)
	}
	if onError == nil {
		onError = c.connectFailed
	}

	dial := c.dial
	if dial == nil {
		dial = ipc.DialAsync
	}
	connected := dial(c.Loop, c.SocketPath)

	result := reactor.Chain(connected,
		func(client *ipc.AsyncClient) *reactor.Future[int] {
			c.Log.Debug("connected to vmaild", logging.String("socket", c.SocketPath))
			if onConnect == nil {
				_ = client.Close()
				return reactor.Resolved(c.Loop, ExitSuccess)
			}
			out := onConnect(client)
			if out == nil {
				_ = client.Close()
				return reactor.Resolved(c.Loop, ExitSuccess)
			}
			closeClient := func() { _ = client.Close() }
			out.AddCallbacks(func(int) { closeClient() }, func(error) { closeClient() })
			return out
		},
		func(err error) *reactor.Future[int] {
			return reactor.Resolved(c.Loop, onError(err))
		},
	)
	return Deferred(result)
}

func (c *Connector) connectFailed(err error) int {
	c.Log.Error("unable to connect to vmaild", logging.Error(err))
	return ExitUnavailable
}
