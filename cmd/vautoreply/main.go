// Command vautoreply is the transport hook for autoreply addresses. It reads
// the inbound message on stdin and asks vmaild to answer the sender with the
// recipient's vacation message.
package main

import (
	"errors"
	"strings"

	"github.com/spf13/pflag"

	"vmail/internal/ipc"
	"vmail/internal/logging"
	"vmail/internal/reactor"
	"vmail/internal/script"
	"vmail/internal/vacation"
)

func main() {
	newScript().Main()
}

func newScript() *script.Script {
	return &script.Script{
		Name:  "vautoreply",
		Usage: "[options] recipient",
		Short: "Send a vacation autoreply",
		Async: true,
		Flags: func(fs *pflag.FlagSet) {
			fs.StringP("from", "f", "", "Envelope sender of the inbound message")
		},
		Run: script.RequireArgs(1, run),
	}
}

func run(inv *script.Invocation) script.Outcome {
	header, err := vacation.ReadHeader(inv.Stdin)
	if err != nil {
		inv.Log.Error("unable to read message", logging.Error(err))
		return script.Immediate(script.ExitFailure)
	}

	sender, _ := inv.Flags.GetString("from")
	if strings.TrimSpace(sender) == "" {
		sender = returnPath(header.Get("Return-Path"))
	}
	if err := vacation.CheckMessage(sender, header); err != nil {
		var ignored *vacation.IgnoredError
		if errors.As(err, &ignored) {
			inv.Log.Warn(ignored.Reason)
			return script.Immediate(script.ExitSuccess)
		}
		inv.Log.Error("unable to check message", logging.Error(err))
		return script.Immediate(script.ExitFailure)
	}

	recipient, err := vacation.DecodeAutoreplyAddress(inv.Args[0])
	if err != nil {
		inv.Log.Error("invalid autoreply recipient", logging.String("recipient", inv.Args[0]), logging.Error(err))
		return script.Immediate(script.ExitFailure)
	}

	return script.NewConnector(inv).Connect(func(client *ipc.AsyncClient) *reactor.Future[int] {
		return reactor.Handle(client.SendVacation(recipient, sender),
			func(sent bool) (int, error) {
				if sent {
					inv.Log.Info("sent vacation message to " + recipient)
				} else {
					inv.Log.Warn("not sending vacation message")
				}
				return script.ExitSuccess, nil
			},
			func(err error) (int, error) {
				inv.Log.Error("unable to send vacation message, vmaild encountered an error", logging.Error(err))
				return script.ExitFailure, nil
			},
		)
	}, nil)
}

func returnPath(value string) string {
	value = strings.TrimSpace(value)
	if value == "<>" {
		return value
	}
	return strings.TrimSuffix(strings.TrimPrefix(value, "<"), ">")
}
