package ipc

import (
	"vmail/internal/reactor"
)

// AsyncClient issues daemon calls whose results settle on an event loop.
type AsyncClient struct {
	loop   *reactor.Loop
	client *Client
}

// DialAsync dials path on a helper goroutine. The returned future settles
// with a connected client or the wrapped dial error.
func DialAsync(loop *reactor.Loop, path string) *reactor.Future[*AsyncClient] {
	return reactor.Go(loop, func() (*AsyncClient, error) {
		client, err := Dial(path)
		if err != nil {
			return nil, WrapDialError(err, path)
		}
		return &AsyncClient{loop: loop, client: client}, nil
	})
}

// NewAsyncClient binds an already connected client to loop.
func NewAsyncClient(loop *reactor.Loop, client *Client) *AsyncClient {
	return &AsyncClient{loop: loop, client: client}
}

// Authenticate checks credentials without blocking the loop.
func (a *AsyncClient) Authenticate(username, password string) *reactor.Future[bool] {
	return reactor.Go(a.loop, func() (bool, error) {
		return a.client.Authenticate(username, password)
	})
}

// SendVacation triggers an autoreply without blocking the loop.
func (a *AsyncClient) SendVacation(recipient, sender string) *reactor.Future[bool] {
	return reactor.Go(a.loop, func() (bool, error) {
		return a.client.SendVacation(recipient, sender)
	})
}

// Status fetches daemon status without blocking the loop.
func (a *AsyncClient) Status() *reactor.Future[*StatusResponse] {
	return reactor.Go(a.loop, a.client.Status)
}

// Close closes the connection.
func (a *AsyncClient) Close() error {
	if a == nil || a.client == nil {
		return nil
	}
	return a.client.Close()
}
