package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/anyoshi/bingo-live/game"
)

// Client is one connected viewer. Outbound messages go through a buffered
// send channel; a full buffer drops the message rather than blocking the
// broadcaster.
type Client struct {
	id      string
	conn    *websocket.Conn
	session *Session

	mu     sync.Mutex
	closed bool
	send   chan []byte
}

// Close shuts the send channel and the connection. Idempotent; senders
// racing with Close see the closed flag under the same mutex, so nobody
// writes to a closed channel.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	if c.conn != nil {
		c.conn.Close()
	}
}

func (c *Client) trySend(b []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

// intentMessage is the wire form of a user intent sent over the socket.
type intentMessage struct {
	Action    string `json:"action"`
	CardID    string `json:"card_id"`
	Numbers   []int  `json:"numbers"`
	Overwrite bool   `json:"overwrite"`
	PoolMax   int    `json:"pool_max"`
	Confirm   bool   `json:"confirm"`
	KeepCards bool   `json:"keep_cards"`
}

func (c *Client) readPump() {
	defer func() {
		c.session.removeClient(c.id)
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.session.log.Infof("viewer %s closed connection", c.id)
			} else {
				c.session.log.Warnf("viewer %s read error: %v", c.id, err)
			}
			return
		}

		var msg intentMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.session.log.Warnf("viewer %s sent invalid message: %v", c.id, err)
			continue
		}
		c.handleIntent(msg)
	}
}

func (c *Client) handleIntent(msg intentMessage) {
	ctx := context.Background()
	switch msg.Action {
	case "draw":
		if _, _, err := c.session.DrawOne(ctx); err != nil {
			c.session.notifyClient(c, intentError(err))
		}
	case "toggle_auto":
		if _, err := c.session.ToggleAutoDraw(); err != nil {
			c.session.notifyClient(c, intentError(err))
		}
	case "register_card":
		id, err := c.session.RegisterCard(ctx, msg.CardID, msg.Numbers, msg.Overwrite)
		if err != nil {
			c.session.notifyClient(c, intentError(err))
			return
		}
		c.session.notifyClient(c, fmt.Sprintf("Card '%s' registered.", id))
	case "reconfigure":
		if _, err := c.session.ChangeConfiguration(ctx, msg.PoolMax, msg.Confirm); err != nil {
			c.session.notifyClient(c, intentError(err))
		}
	case "reset":
		if _, err := c.session.ResetGame(ctx, msg.KeepCards); err != nil {
			c.session.notifyClient(c, intentError(err))
		}
	default:
		c.session.log.Warnf("viewer %s sent unknown action %q", c.id, msg.Action)
	}
}

// intentError turns engine and store errors into user-facing text.
func intentError(err error) string {
	var verr *game.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Msg
	case errors.Is(err, game.ErrWinnerAlreadyFound):
		return "The game already has a winner."
	case errors.Is(err, game.ErrCardExists):
		return "That card id already exists. Confirm the overwrite to replace it."
	case errors.Is(err, game.ErrConfirmRequired):
		return "Changing the configuration restarts the game and discards drawn balls. Confirm to continue."
	case errors.Is(err, game.ErrUnsupportedPoolSize):
		return "Unsupported pool size."
	default:
		return "Operation failed. Please try again."
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			c.session.log.Warnf("viewer %s write error: %v", c.id, err)
			return
		}
	}
}
