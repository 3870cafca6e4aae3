package ws

import (
	"encoding/json"
	"log/slog"
	"time"

	"battleship/internal/game"
	"battleship/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 30 * time.Second
	pingPeriod     = 25 * time.Second
	maxMessageSize = 4096
)

// Client bridges one websocket connection to a hub subscription.
type Client struct {
	PlayerID string
	Conn     *websocket.Conn
	Hub      *Hub

	sub   *Subscriber
	reply chan Message
}

// NewClient wraps conn around sub, which the caller has already taken
// from hub so no update is lost while the connection is set up.
func NewClient(playerID string, conn *websocket.Conn, hub *Hub, sub *Subscriber) *Client {
	return &Client{
		PlayerID: playerID,
		Conn:     conn,
		Hub:      hub,
		sub:      sub,
		reply:    make(chan Message, 4),
	}
}

// Run sends the connected handshake and view, then pushes every update for
// the subscription until the connection ends. The subscription is always
// removed on return.
func (c *Client) Run(view *game.View) {
	defer c.Hub.Unsubscribe(c.sub)

	c.reply <- ConnectedMessage(view.ID)
	c.reply <- UpdateMessage(view)

	go c.writePump()
	c.readPump()
}

func (c *Client) log() *slog.Logger {
	return logger.ForGame(c.sub.GameID, string(c.sub.Role))
}

func (c *Client) readPump() {
	defer c.Conn.Close()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log().Debug("ws read error", "error", err)
			}
			return
		}

		var msg InboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.queue(ErrorMessage("invalid message"))
			continue
		}

		switch msg.Type {
		case MsgPing:
			c.queue(Message{Type: MsgPong})
		default:
			c.queue(ErrorMessage("unsupported message type"))
		}
	}
}

func (c *Client) queue(m Message) {
	select {
	case c.reply <- m:
	default:
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		var msg Message
		select {
		case msg = <-c.reply:
		case msg = <-c.sub.Updates():
		case <-c.sub.Done():
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			continue
		}

		c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.Conn.WriteJSON(msg); err != nil {
			c.log().Debug("ws write error", "error", err)
			return
		}
	}
}
