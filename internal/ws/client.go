package ws

import (
	"encoding/json"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// Frame is what a connected client sends to manage its subscriptions.
type Frame struct {
	Action string `json:"action"` // subscribe | unsubscribe
	Topic  string `json:"topic"`
}

// Client bridges one websocket connection to a hub subscription. A client is
// always subscribed to its own user topic; conversation topics come and go
// with subscribe/unsubscribe frames.
type Client struct {
	UserID string

	conn *websocket.Conn
	sub  *Subscription
	log  *zap.Logger
}

func NewClient(userID string, conn *websocket.Conn, sub *Subscription, log *zap.Logger) *Client {
	return &Client{UserID: userID, conn: conn, sub: sub, log: log}
}

// WritePump drains the subscription into the socket. Returns when the
// subscription closes or the socket dies.
func (c *Client) WritePump() {
	for ev := range c.sub.C {
		if err := c.conn.WriteJSON(ev); err != nil {
			c.log.Debug("ws write failed", zap.String("uid", c.UserID), zap.Error(err))
			return
		}
	}
}

// ReadPump consumes subscription frames until the socket closes.
func (c *Client) ReadPump() {
	defer c.sub.Close()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var f Frame
		if err := json.Unmarshal(data, &f); err != nil || f.Topic == "" {
			continue
		}
		switch f.Action {
		case "subscribe":
			c.sub.Add(f.Topic)
		case "unsubscribe":
			c.sub.Remove(f.Topic)
		}
	}
}
