package script

// RequireArgs wraps body so it only runs when at least count positional
// arguments were given. Otherwise it logs why and exits 1.
func RequireArgs(count int, body Body) Body {
	return func(inv *Invocation) Outcome {
		if len(inv.Args) == 0 {
			inv.Log.Error("no arguments specified")
			return Immediate(ExitFailure)
		}
		if len(inv.Args) < count {
			inv.Log.Error("incorrect number of arguments specified")
			return Immediate(ExitFailure)
		}
		return body(inv)
	}
}
