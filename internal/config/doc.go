// Package config loads, normalizes, and validates vmail configuration data.
//
// A single TOML file is shared by the daemon, the hook scripts, and the admin
// CLI. The package supplies repository defaults, expands user paths (including
// tilde shortcuts), honours the VMAIL_CONFIG environment override, and
// exposes the resolved socket path the scripts probe before dialing vmaild.
//
// Always obtain settings through this package so every binary agrees on where
// the socket, database, and log files live.
package config
