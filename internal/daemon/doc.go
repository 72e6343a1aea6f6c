// Package daemon is the core of vmaild.
//
// It wires configuration, the accounts store, and the vacation sender into a
// single lifecycle with flock-based locking to prevent multiple instances, and
// answers the calls the hook scripts make over IPC: password checks, vacation
// replies, and status.
//
// Keep protocol and persistence details in ipc and accounts; the daemon
// focuses on startup, shutdown, and the decisions behind each call.
package daemon
