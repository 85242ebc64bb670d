package handler

import (
	"encoding/json"
	"time"

	"spacegame-combat/internal/model"
	"spacegame-combat/internal/service"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const wsReadTimeout = 60 * time.Second

type WSHandler struct {
	hub       *service.WSHub
	battles   *service.BattleService
	jwtSecret []byte
	log       *zap.Logger
}

func NewWSHandler(hub *service.WSHub, battles *service.BattleService, jwtSecret string, log *zap.Logger) *WSHandler {
	return &WSHandler{hub: hub, battles: battles, jwtSecret: []byte(jwtSecret), log: log}
}

func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	token := c.Query("token")
	if token == "" {
		return c.Status(401).JSON(fiber.Map{"error": "token required"})
	}
	playerID, username, err := service.ParseAccessToken(h.jwtSecret, token)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "invalid token"})
	}

	c.Locals("player_id", playerID)
	c.Locals("username", username)
	return websocket.New(h.handleConnection)(c)
}

func (h *WSHandler) handleConnection(c *websocket.Conn) {
	playerID, _ := c.Locals("player_id").(string)
	username, _ := c.Locals("username").(string)

	client := &service.WSClient{
		Conn:     c,
		PlayerID: playerID,
		Username: username,
		Send:     make(chan []byte, 256),
	}

	h.hub.Register(client)
	defer h.hub.Unregister(client)

	go func() {
		defer c.Close()
		for msg := range client.Send {
			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				break
			}
		}
	}()

	// A fresh connection gets the current battle right away.
	h.reply(client, model.WSBattleState, h.battles.State(playerID))

	_ = c.SetReadDeadline(time.Now().Add(wsReadTimeout))
	for {
		_, msg, err := c.ReadMessage()
		if err != nil {
			break
		}
		_ = c.SetReadDeadline(time.Now().Add(wsReadTimeout))

		var event model.WSEvent
		if err := json.Unmarshal(msg, &event); err != nil {
			continue
		}

		switch event.Type {
		case "ping":
			h.reply(client, "pong", nil)
		case model.WSBattleState:
			h.reply(client, model.WSBattleState, h.battles.State(playerID))
		default:
			h.log.Debug("ws unknown event", zap.String("type", event.Type), zap.String("player", username))
		}
	}
}

func (h *WSHandler) reply(client *service.WSClient, eventType string, payload interface{}) {
	event := model.WSEvent{Type: eventType}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return
		}
		event.Data = data
	}
	msg, _ := json.Marshal(event)
	h.hub.SendTo(client, msg)
}
