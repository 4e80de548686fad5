// Package ws binds subscription sessions to WebSocket connections: each
// connection owns exactly one relay session, commands arrive as JSON text
// frames and the session's outbound stream is written back on the same
// connection.
package ws

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/yegors/vatmap/internal/relay"
	"github.com/yegors/vatmap/pkg/logger"
)

// Server upgrades HTTP requests into subscriber connections
type Server struct {
	relay    *relay.Relay
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

// NewServer creates a new WebSocket server
func NewServer(r *relay.Relay, log *logger.Logger) *Server {
	return &Server{
		relay: r,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Cross-origin access control happens at the HTTP layer
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: log.Named("ws"),
	}
}

// HandleConnection upgrades the request and runs the connection until the
// client goes away. Closing the connection tears the whole session down.
func (s *Server) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", logger.Error(err))
		return
	}

	sess := s.relay.NewSession()
	c := newClient(conn, sess, s.logger)
	s.logger.Info("client connected",
		logger.String("session_id", sess.ID()),
		logger.String("remote_addr", r.RemoteAddr))

	go c.writePump()
	c.readPump()

	s.relay.CloseSession(sess)
	conn.Close()
	s.logger.Info("client disconnected",
		logger.String("session_id", sess.ID()))
}
