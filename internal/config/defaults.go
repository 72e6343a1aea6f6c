package config

const (
	defaultSocketPath        = "/run/vmail/vmaild.sock"
	defaultDataDir           = "/var/lib/vmail"
	defaultLogDir            = "/var/log/vmail"
	defaultDatabaseFile      = "vmail.db"
	defaultLogLevel          = "info"
	defaultLogFormat         = "full"
	defaultVacationInterval  = 7
	defaultVacationSubject   = "Auto: Out of Office"
	defaultSMTPAddress       = "127.0.0.1:25"
	defaultClientTimeout     = 0
	defaultSocketPermissions = 0o660
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			Socket:  defaultSocketPath,
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Database: Database{
			Path: "",
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Vacation: Vacation{
			IntervalDays:   defaultVacationInterval,
			DefaultSubject: defaultVacationSubject,
		},
		SMTP: SMTP{
			Address: defaultSMTPAddress,
		},
		Client: Client{
			TimeoutSeconds: defaultClientTimeout,
		},
		Daemon: Daemon{
			SocketMode: defaultSocketPermissions,
		},
	}
}
