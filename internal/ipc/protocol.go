// Package ipc is the control channel of a running listener: a unix socket
// that doubles as the single-instance lock and answers status/stop requests
// with one JSON line each way.
package ipc

const (
	CommandStatus = "status"
	CommandStop   = "stop"
)

type Request struct {
	Command string `json:"command"`
}

type Response struct {
	OK      bool   `json:"ok"`
	State   string `json:"state,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
