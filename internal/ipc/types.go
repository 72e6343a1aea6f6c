package ipc

// ServiceName is the RPC receiver name registered by the server.
const ServiceName = "Vmail"

// AuthenticateRequest carries credentials to check.
type AuthenticateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthenticateResponse reports whether the credentials matched.
type AuthenticateResponse struct {
	OK bool `json:"ok"`
}

// SendVacationRequest asks the daemon to autoreply to sender on behalf of
// recipient.
type SendVacationRequest struct {
	Recipient string `json:"recipient"`
	Sender    string `json:"sender"`
}

// SendVacationResponse reports whether a reply was sent.
type SendVacationResponse struct {
	Sent bool `json:"sent"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse describes the running daemon.
type StatusResponse struct {
	Running      bool   `json:"running"`
	PID          int    `json:"pid"`
	SessionID    string `json:"session_id"`
	SocketPath   string `json:"socket_path"`
	DatabasePath string `json:"database_path"`
	LockPath     string `json:"lock_path"`
	Domains      int    `json:"domains"`
	Users        int    `json:"users"`
	Vacations    int    `json:"vacations"`
	StartedAt    string `json:"started_at"`
}
