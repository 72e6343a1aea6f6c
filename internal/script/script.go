package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"vmail/internal/config"
	"vmail/internal/logging"
	"vmail/internal/reactor"
)

// Body is the command-specific part of a script.
type Body func(inv *Invocation) Outcome

// Invocation carries everything a body may need about one execution.
type Invocation struct {
	Name     string
	Args     []string
	Flags    *pflag.FlagSet
	LogLevel slog.Level
	LogFile  string
	Log      *slog.Logger
	Loop     *reactor.Loop
	Context  context.Context
	Stdin    io.Reader

	// Config and SocketPath are only populated for async scripts.
	Config     *config.Config
	SocketPath string
}

// Script describes one hook command.
type Script struct {
	// Name is the command name used in usage and as the logger name suffix.
	Name string
	// Usage follows the name in the usage line, e.g. "[options] user password".
	Usage string
	Short string
	// LogFormat selects the log format; empty means short.
	LogFormat string
	// Async enables the event loop, the daemon flags, and --timeout.
	Async bool
	// Flags registers command-specific flags.
	Flags func(fs *pflag.FlagSet)
	Run   Body

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// ConfigureLogging replaces logging.Configure, mainly in tests.
	ConfigureLogging func(logging.Options) (*slog.Logger, error)
	// LoopOptions are passed to the loop created for each invocation.
	LoopOptions []reactor.Option

	Lifecycle Lifecycle
}

// Main executes the script with os.Args and exits the process.
func (s *Script) Main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := s.Execute(ctx, os.Args[1:])
	cancel()
	os.Exit(code)
}

// Execute parses args, runs the body, and returns the process exit code.
func (s *Script) Execute(ctx context.Context, args []string) int {
	s.Lifecycle.enter(Created)

	code := ExitSuccess
	cmd := &cobra.Command{
		Use:           strings.TrimSpace(s.Name + " " + s.Usage),
		Short:         s.Short,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			code = s.run(cmd, args)
			return nil
		},
	}
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetIn(s.stdin())
	cmd.SetOut(s.stdout())
	cmd.SetErr(s.stderr())

	flags := cmd.Flags()
	flags.SortFlags = false
	flags.StringP("loglevel", "L", "info", "Set the log level (debug, info, warn, error, critical)")
	flags.StringP("log-file", "l", "-", "Write logs to this file instead of stdout")
	if s.Async {
		flags.StringP("config", "c", "", "Configuration file path")
		flags.String("socket", "", "vmaild socket path")
		flags.Duration("timeout", 0, "Give up waiting for vmaild after this long (0 waits forever)")
	}
	if s.Flags != nil {
		s.Flags(flags)
	}

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(s.stderr(), "Error: %v\n", err)
		fmt.Fprint(s.stderr(), cmd.UsageString())
		return ExitUsage
	}
	return code
}

func (s *Script) run(cmd *cobra.Command, args []string) int {
	flags := cmd.Flags()
	levelName, _ := flags.GetString("loglevel")
	logFile, _ := flags.GetString("log-file")

	configure := s.ConfigureLogging
	if configure == nil {
		configure = logging.Configure
	}
	logger, err := configure(logging.Options{
		Level:  levelName,
		Format: s.LogFormat,
		File:   logFile,
		Name:   "vmail.scripts." + s.Name,
	})
	if err != nil && !errors.Is(err, logging.ErrAlreadyConfigured) {
		fmt.Fprintf(s.stderr(), "configure logging: %v\n", err)
		return ExitFailure
	}
	s.Lifecycle.enter(Configured)

	inv := &Invocation{
		Name:     s.Name,
		Args:     args,
		Flags:    flags,
		LogLevel: logging.ParseLevel(levelName),
		LogFile:  logFile,
		Log:      logger,
		Context:  cmd.Context(),
		Stdin:    s.stdin(),
	}

	if !s.Async {
		inv.Loop = reactor.New(s.LoopOptions...)
		outcome := s.Run(inv)
		s.Lifecycle.enter(Ran)
		code := s.exitCode(inv, outcome)
		s.Lifecycle.enter(Exited)
		return code
	}

	timeout, err := s.prepareAsync(inv)
	if err != nil {
		logger.Error("load configuration", logging.Error(err))
		s.Lifecycle.enter(Exited)
		return ExitFailure
	}

	wait := newWaiter(inv.Log)
	inv.Loop = reactor.New(append(append([]reactor.Option(nil), s.LoopOptions...), reactor.WithPanicHandler(wait.panicked))...)

	outcome := s.runGuarded(inv)
	s.Lifecycle.enter(Ran)

	var code int
	if outcome.IsDeferred() {
		code = wait.await(inv.Context, inv.Loop, outcome.Future(), timeout)
	} else {
		code = s.exitCode(inv, outcome)
	}
	s.Lifecycle.enter(Exited)
	return normalizeCode(inv.Log, code)
}

func (s *Script) prepareAsync(inv *Invocation) (time.Duration, error) {
	configPath, _ := inv.Flags.GetString("config")
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		return 0, err
	}
	socket, _ := inv.Flags.GetString("socket")
	if strings.TrimSpace(socket) != "" {
		expanded, err := config.ExpandPath(socket)
		if err != nil {
			return 0, err
		}
		cfg.Paths.Socket = expanded
	}
	inv.Config = cfg
	inv.SocketPath = cfg.Paths.Socket

	timeout := cfg.ClientTimeout()
	if inv.Flags.Changed("timeout") {
		timeout, _ = inv.Flags.GetDuration("timeout")
	}
	if timeout < 0 {
		timeout = 0
	}
	return timeout, nil
}

func (s *Script) runGuarded(inv *Invocation) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			inv.Log.Error("unhandled error", logging.Panic(r))
			outcome = Immediate(ExitFailure)
		}
	}()
	return s.Run(inv)
}

// exitCode maps a plain outcome. A deferred outcome reaching a synchronous
// script is not awaited and counts as success.
func (s *Script) exitCode(inv *Invocation, outcome Outcome) int {
	if outcome.IsDeferred() {
		inv.Log.Debug("deferred outcome ignored by synchronous script")
		return ExitSuccess
	}
	return outcome.Code()
}

func normalizeCode(log *slog.Logger, code int) int {
	if code < 0 || code > 255 {
		log.Warn("exit code out of range", logging.Int("code", code))
		return ExitFailure
	}
	return code
}

func (s *Script) stdin() io.Reader {
	if s.Stdin != nil {
		return s.Stdin
	}
	return os.Stdin
}

func (s *Script) stdout() io.Writer {
	if s.Stdout != nil {
		return s.Stdout
	}
	return os.Stdout
}

func (s *Script) stderr() io.Writer {
	if s.Stderr != nil {
		return s.Stderr
	}
	return os.Stderr
}
