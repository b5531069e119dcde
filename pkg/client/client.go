package client

import (
	"sync"
	"time"

	"github.com/Sonoda-Arito/reception-queue-server/pkg/config"
	"github.com/Sonoda-Arito/reception-queue-server/pkg/msg"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer. Subscribers only ever
	// send pongs and close frames.
	maxMessageSize = 512
)

// Client is a middleman between one websocket subscriber and the hub.
// A subscriber watches exactly one service for its whole lifetime.
type Client struct {
	id        string
	serviceId int64

	conn *websocket.Conn
	hub  *Hub

	// Buffered channel of outbound messages.
	sendWsMessage chan *msg.WsMessage

	closeOnce sync.Once
}

func NewClient(conn *websocket.Conn, serviceId int64, hub *Hub) *Client {
	return &Client{
		id:            uuid.NewString(),
		serviceId:     serviceId,
		conn:          conn,
		hub:           hub,
		sendWsMessage: make(chan *msg.WsMessage, *config.CFG.SendBufferSize),
	}
}

func (c *Client) Run() {
	go c.writePump()
	go c.readPump()
}

// TryClose is safe to call from both pumps and the hub.
func (c *Client) TryClose() {
	c.closeOnce.Do(func() {
		close(c.sendWsMessage)
	})
}

// readPump only watches for disconnects, inbound payloads are
// ignored. Closes connection if client does not respond to ping for
// too long.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	pongWait := c.pingPeriod() * 5 / 2
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	pingTicker := time.NewTicker(c.pingPeriod())

	defer func() {
		pingTicker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case wsMessage, ok := <-c.sendWsMessage:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(wsMessage); err != nil {
				return
			}

		case <-pingTicker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) pingPeriod() time.Duration {
	return time.Duration(*config.CFG.PingIntervalSeconds) * time.Second
}
