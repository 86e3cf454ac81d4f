package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/kode4food/feedlink/internal/wizard"
	"github.com/kode4food/feedlink/pkg/api"
	"github.com/kode4food/feedlink/pkg/log"
)

// Client represents a WebSocket connection receiving wizard state
type Client struct {
	conn     *websocket.Conn
	consumer wizard.StateConsumer
	initial  *api.WizardState
	done     chan struct{}
	onClose  func(*Client)
	once     sync.Once
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	wsBufferSize   = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  wsBufferSize,
	WriteBufferSize: wsBufferSize,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed",
			log.Error(err))
		return
	}

	// Subscribe before taking the initial snapshot so no change between
	// the two is missed
	consumer := s.wizard.Subscribe()
	client := &Client{
		conn:     conn,
		consumer: consumer,
		initial:  s.wizard.State(),
		done:     make(chan struct{}),
		onClose:  s.unregisterWebSocket,
	}
	s.registerWebSocket(client)

	go client.run()
}

// Close terminates the connection
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
		c.consumer.Close()
		_ = c.conn.Close()
		if c.onClose != nil {
			c.onClose(c)
		}
	})
}

func (c *Client) run() {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	closed := make(chan struct{})
	go c.readMessages(closed)

	if !c.sendState(c.initial) {
		return
	}

	for {
		select {
		case <-c.done:
			return

		case <-closed:
			return

		case state, ok := <-c.consumer.Receive():
			if !ok {
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if !c.sendState(state) {
				return
			}

		case <-ticker.C:
			if !c.sendPing() {
				return
			}
		}
	}
}

// readMessages discards client input; it exists to process control frames
// and to notice when the peer goes away
func (c *Client) readMessages(closed chan struct{}) {
	defer close(closed)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) sendState(state *api.WizardState) bool {
	msg := api.StateMessage{
		Type:      api.StateMessageType,
		Data:      state,
		Timestamp: time.Now().UnixMilli(),
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(msg); err != nil {
		slog.Error("WebSocket write failed",
			log.Error(err))
		return false
	}
	return true
}

func (c *Client) sendPing() bool {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	err := c.conn.WriteMessage(websocket.PingMessage, nil)
	return err == nil
}
