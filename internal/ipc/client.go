package ipc

import (
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"syscall"
	"time"
)

// DialTimeout bounds how long Dial waits for the socket to accept.
const DialTimeout = 2 * time.Second

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, DialTimeout)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		err := c.conn.Close()
		if errors.Is(err, net.ErrClosed) {
			return nil
		}
		return err
	}
	return nil
}

// Authenticate checks a username and password.
func (c *Client) Authenticate(username, password string) (bool, error) {
	var resp AuthenticateResponse
	if err := c.client.Call(ServiceName+".Authenticate", AuthenticateRequest{Username: username, Password: password}, &resp); err != nil {
		return false, err
	}
	return resp.OK, nil
}

// SendVacation asks the daemon to send recipient's vacation message to sender.
func (c *Client) SendVacation(recipient, sender string) (bool, error) {
	var resp SendVacationResponse
	if err := c.client.Call(ServiceName+".SendVacation", SendVacationRequest{Recipient: recipient, Sender: sender}, &resp); err != nil {
		return false, err
	}
	return resp.Sent, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call(ServiceName+".Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// IsUnavailable reports whether err means nothing is listening on the socket.
func IsUnavailable(err error) bool {
	return os.IsNotExist(err) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, syscall.ENOENT) ||
		errors.Is(err, syscall.ECONNREFUSED)
}

// WrapDialError turns a dial failure into an operator-facing message.
func WrapDialError(err error, socket string) error {
	switch {
	case errors.Is(err, syscall.ENOENT) || os.IsNotExist(err):
		return fmt.Errorf("connect to vmaild: socket %s not found; is vmaild running?", socket)
	case errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Errorf("connect to vmaild: socket %s refused the connection; verify the daemon is running", socket)
	default:
		return fmt.Errorf("connect to vmaild: %w", err)
	}
}
