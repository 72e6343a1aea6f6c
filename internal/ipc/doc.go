// Package ipc exposes vmaild over JSON-RPC on a Unix domain socket and ships
// the matching clients used by the scripts and vmailctl.
//
// Client is the plain synchronous client. AsyncClient wraps it for the hook
// scripts: every call runs on a helper goroutine and returns a reactor.Future
// that settles on the script's event loop. The request/response DTOs in
// types.go are the wire contract between the two sides.
package ipc
