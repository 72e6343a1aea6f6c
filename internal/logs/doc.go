// Package logs reads the vmaild log file for `vmailctl logs`.
package logs
