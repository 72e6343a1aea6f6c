package preflight

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"golang.org/x/sys/unix"
)

const relayTimeout = 5 * time.Second

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSMTPRelay connects to the relay, greets it as hostname, and quits.
func CheckSMTPRelay(ctx context.Context, hostname, address string) Result {
	const name = "SMTP relay"

	address = strings.TrimSpace(address)
	if address == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	if strings.TrimSpace(hostname) == "" {
		hostname = "localhost"
	}

	checkCtx, cancel := context.WithTimeout(ctx, relayTimeout)
	defer cancel()

	dialer := net.Dialer{Timeout: relayTimeout}
	conn, err := dialer.DialContext(checkCtx, "tcp", address)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (unreachable: %v)", address, err)}
	}
	if deadline, ok := checkCtx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client := smtp.NewClient(conn)
	defer client.Close()
	if err := client.Hello(hostname); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (greeting failed: %v)", address, err)}
	}
	_ = client.Quit()
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (reachable)", address)}
}
