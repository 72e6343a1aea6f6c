package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"vmail/internal/logging"
	"vmail/internal/metrics"
)

// Backend is the daemon surface exposed over RPC.
type Backend interface {
	Authenticate(ctx context.Context, username, password string) (bool, error)
	SendVacation(ctx context.Context, recipient, sender string) (bool, error)
	Status(ctx context.Context) (StatusResponse, error)
}

// Server exposes daemon calls via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path. A non-zero
// mode is applied to the socket file after it is created.
func NewServer(ctx context.Context, path string, backend Backend, mode os.FileMode, logger *slog.Logger) (*Server, error) {
	if backend == nil {
		return nil, errors.New("ipc server requires backend")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}
	if mode != 0 {
		if err := os.Chmod(path, mode); err != nil {
			listener.Close()
			return nil, fmt.Errorf("chmod socket: %w", err)
		}
	}

	rpcServer := rpc.NewServer()
	srv := &service{backend: backend, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName(ServiceName, srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Path returns the socket path.
func (s *Server) Path() string {
	return s.path
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				if errors.Is(err, net.ErrClosed) {
					return
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"),
					logging.String(logging.FieldErrorHint, "check socket permissions and restart vmaild if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file. Connections already
// being served finish their current call before Close returns.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_socket_cleanup_failed"),
			logging.String(logging.FieldErrorHint, "remove the socket file manually before restarting vmaild"))
	}
}

type service struct {
	backend Backend
	logger  *slog.Logger
	ctx     context.Context
}

func (s *service) log() *slog.Logger {
	return logging.NewComponentLogger(s.logger, "ipc")
}

func (s *service) Authenticate(req AuthenticateRequest, resp *AuthenticateResponse) (err error) {
	defer func(started time.Time) { metrics.ObserveRPC("authenticate", started, err) }(time.Now())
	ok, err := s.backend.Authenticate(s.ctx, req.Username, req.Password)
	if err != nil {
		s.log().Error("authenticate failed", logging.String("user", req.Username), logging.Error(err))
		return err
	}
	resp.OK = ok
	return nil
}

func (s *service) SendVacation(req SendVacationRequest, resp *SendVacationResponse) (err error) {
	defer func(started time.Time) { metrics.ObserveRPC("send_vacation", started, err) }(time.Now())
	sent, err := s.backend.SendVacation(s.ctx, req.Recipient, req.Sender)
	if err != nil {
		s.log().Error("send vacation failed",
			logging.String("recipient", req.Recipient),
			logging.String("sender", req.Sender),
			logging.Error(err))
		return err
	}
	resp.Sent = sent
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) (err error) {
	defer func(started time.Time) { metrics.ObserveRPC("status", started, err) }(time.Now())
	status, err := s.backend.Status(s.ctx)
	if err != nil {
		return err
	}
	*resp = status
	return nil
}
