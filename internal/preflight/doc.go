// Package preflight runs environment checks shared by vmaild startup and
// `vmailctl status`: directory permissions and SMTP relay reachability.
package preflight
