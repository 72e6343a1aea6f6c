package preflight

import (
	"context"
	"path/filepath"

	"vmail/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every check that applies to cfg.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Socket directory", filepath.Dir(cfg.Paths.Socket)),
	}
	if cfg.SMTP.Address != "" {
		results = append(results, CheckSMTPRelay(ctx, cfg.Vacation.Hostname, cfg.SMTP.Address))
	}
	return results
}
