package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lox/pokerequity/equity"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Maximum request size accepted from the peer
	maxMessageSize = 8192
)

// Stream message types.
const (
	MessageProgress = "progress"
	MessageResult   = "result"
	MessageError    = "error"
)

// streamMessage is one frame sent on /api/v1/equity/stream.
type streamMessage struct {
	Type   string         `json:"type"`
	Done   int64          `json:"done,omitempty"`
	Total  int64          `json:"total,omitempty"`
	Result *equity.Result `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// handleStream runs one calculation per connection: the client sends a request,
// receives progress frames and then a result or error frame. Closing the socket
// early cancels the calculation.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to upgrade connection")
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMessageSize)

	send := func(msg streamMessage) error {
		_ = conn.SetWriteDeadline(s.clock.Now().Add(writeWait))
		return conn.WriteJSON(msg)
	}

	var body equityRequest
	if err := conn.ReadJSON(&body); err != nil {
		_ = send(streamMessage{Type: MessageError, Error: "invalid request: " + err.Error()})
		return
	}
	req, err := body.toRequest()
	if err != nil {
		_ = send(streamMessage{Type: MessageError, Error: err.Error()})
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Any read error means the peer went away.
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()

	progress := func(p equity.Progress) {
		if err := send(streamMessage{Type: MessageProgress, Done: p.Done, Total: p.Total}); err != nil {
			cancel()
		}
	}

	res, err := s.calculate(ctx, req, progress)
	if err == nil && res.Partial && ctx.Err() != nil {
		s.logger.Debug().Int64("trials", res.Iterations).Msg("Stream calculation cancelled")
	}
	if err != nil {
		_ = send(streamMessage{Type: MessageError, Error: err.Error()})
		return
	}
	if err := send(streamMessage{Type: MessageResult, Result: res}); err != nil {
		return
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		s.clock.Now().Add(writeWait))
}
