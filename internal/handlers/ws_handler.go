package handlers

import (
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/mahamedadballa/circlechat-server/internal/events"
	"github.com/mahamedadballa/circlechat-server/internal/metrics"
	"github.com/mahamedadballa/circlechat-server/internal/ws"
)

type WSHandler struct {
	hub       *ws.Hub
	jwtSecret string
	log       *zap.Logger
}

func NewWSHandler(hub *ws.Hub, jwtSecret string, log *zap.Logger) *WSHandler {
	return &WSHandler{hub: hub, jwtSecret: jwtSecret, log: log}
}

// Serve handles an upgraded sync-feed connection: /ws?token=<jwt>.
// The client starts out subscribed to its own user topic and manages
// conversation topics with subscribe/unsubscribe frames.
func (h *WSHandler) Serve(c *websocket.Conn) {
	uid, err := h.authenticate(c.Query("token"))
	if err != nil {
		_ = c.WriteJSON(map[string]string{"error": "invalid token"})
		_ = c.Close()
		return
	}

	sub := h.hub.Subscribe(events.UserTopic(uid))
	client := ws.NewClient(uid, c, sub, h.log)

	metrics.ActiveConnections.Inc()
	defer metrics.ActiveConnections.Dec()
	h.log.Info("ws connected", zap.String("uid", uid))

	go client.WritePump()
	client.ReadPump() // returns when the socket closes; closes the subscription

	h.log.Info("ws disconnected", zap.String("uid", uid))
}

func (h *WSHandler) authenticate(token string) (string, error) {
	if token == "" {
		return "", jwt.ErrTokenMalformed
	}
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(h.jwtSecret), nil
	})
	if err != nil || !parsed.Valid {
		return "", jwt.ErrTokenUnverifiable
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", jwt.ErrTokenInvalidSubject
	}
	return sub, nil
}
