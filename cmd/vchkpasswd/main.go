// Command vchkpasswd checks a mailbox password against vmaild. It exits 0
// when the password is accepted, 1 when it is not, and 255 when vmaild
// cannot be reached.
package main

import (
	"vmail/internal/ipc"
	"vmail/internal/logging"
	"vmail/internal/reactor"
	"vmail/internal/script"
)

func main() {
	newScript().Main()
}

func newScript() *script.Script {
	return &script.Script{
		Name:  "vchkpasswd",
		Usage: "[options] user password",
		Short: "Check a mailbox password",
		Async: true,
		Run:   script.RequireArgs(2, run),
	}
}

func run(inv *script.Invocation) script.Outcome {
	user, password := inv.Args[0], inv.Args[1]
	return script.NewConnector(inv).Connect(func(client *ipc.AsyncClient) *reactor.Future[int] {
		return reactor.Handle(client.Authenticate(user, password),
			func(ok bool) (int, error) {
				if ok {
					inv.Log.Info(user + " successfully authenticated")
					return script.ExitSuccess, nil
				}
				inv.Log.Info(user + " failed to authenticate")
				return script.ExitFailure, nil
			},
			func(err error) (int, error) {
				inv.Log.Error("unable to check authentication, vmaild encountered an error", logging.Error(err))
				return script.ExitFailure, nil
			},
		)
	}, nil)
}
