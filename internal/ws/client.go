package ws

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yegors/vatmap/internal/model"
	"github.com/yegors/vatmap/internal/relay"
	"github.com/yegors/vatmap/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
)

// clientMessage is one inbound command frame
type clientMessage struct {
	Type string `json:"type"`

	// set_bounds; null clears the viewport
	Bounds *model.Bounds `json:"bounds,omitempty"`
	// set_filter; empty clears the filter
	Filter string `json:"filter,omitempty"`
	// set_show_wx
	ShowWX bool `json:"show_wx,omitempty"`
	// subscribe / unsubscribe
	ID    string `json:"id,omitempty"`
	Query string `json:"query,omitempty"`
}

// errorFrame reports a rejected command back to the client
type errorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

type client struct {
	conn   *websocket.Conn
	sess   *relay.Session
	logger *logger.Logger
	errs   chan errorFrame
}

func newClient(conn *websocket.Conn, sess *relay.Session, log *logger.Logger) *client {
	return &client{
		conn:   conn,
		sess:   sess,
		logger: log.Named("ws-client").With(logger.String("session_id", sess.ID())),
		errs:   make(chan errorFrame, 16),
	}
}

// readPump consumes command frames until the connection errors or closes.
// Commands execute in arrival order on this goroutine.
func (c *client) readPump() {
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("unexpected close", logger.Error(err))
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.reject(msg.Type, "", fmt.Sprintf("malformed message: %v", err))
			continue
		}
		c.dispatch(&msg)
	}
}

// dispatch executes one command. A rejected command affects nothing: the
// session keeps its previous state and an error frame is queued.
func (c *client) dispatch(msg *clientMessage) {
	switch msg.Type {
	case "set_bounds":
		c.sess.SetBounds(msg.Bounds)
	case "set_filter":
		if err := c.sess.SetFilter(msg.Filter); err != nil {
			c.reject(msg.Type, "", err.Error())
		}
	case "set_show_wx":
		c.sess.SetShowWeather(msg.ShowWX)
	case "subscribe":
		if msg.ID == "" {
			c.reject(msg.Type, "", "subscription id must not be empty")
			return
		}
		if err := c.sess.Subscribe(msg.ID, msg.Query); err != nil {
			c.reject(msg.Type, msg.ID, err.Error())
		}
	case "unsubscribe":
		c.sess.Unsubscribe(msg.ID)
	default:
		c.reject(msg.Type, "", fmt.Sprintf("unknown message type %q", msg.Type))
	}
}

func (c *client) reject(msgType, id, reason string) {
	c.logger.Debug("command rejected",
		logger.String("type", msgType),
		logger.String("reason", reason))
	select {
	case c.errs <- errorFrame{Type: "error", Message: reason, ID: id}:
	default:
	}
}

// writePump serializes everything going out on the connection: session
// frames, error frames and keepalive pings
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.sess.Out():
			if !ok {
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.writeJSON(msg); err != nil {
				return
			}
		case frame := <-c.errs:
			if err := c.writeJSON(frame); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) writeJSON(v interface{}) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(v); err != nil {
		c.logger.Debug("write failed", logger.Error(err))
		return err
	}
	return nil
}
