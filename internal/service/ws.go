package service

import (
	"encoding/json"
	"sync"

	"spacegame-combat/internal/model"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

type WSClient struct {
	Conn     *websocket.Conn
	PlayerID string
	Username string
	Send     chan []byte
}

// WSHub tracks live connections. Battle pushes go to the owning pilot only,
// announcements go to everyone.
type WSHub struct {
	clients    map[*WSClient]bool
	unregister chan *WSClient
	broadcast  chan []byte
	mu         sync.RWMutex
	done       chan struct{}
	log        *zap.Logger
}

func NewWSHub(log *zap.Logger) *WSHub {
	return &WSHub{
		clients:    make(map[*WSClient]bool),
		unregister: make(chan *WSClient),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

func (h *WSHub) Run() {
	for {
		select {
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("ws disconnected", zap.String("player", client.Username), zap.Int("total", n))

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()

		case <-h.done:
			return
		}
	}
}

func (h *WSHub) Shutdown() {
	close(h.done)
}

// Register adds the client before returning so it can be sent to at once.
func (h *WSHub) Register(client *WSClient) {
	h.mu.Lock()
	h.clients[client] = true
	n := len(h.clients)
	h.mu.Unlock()
	h.log.Debug("ws connected", zap.String("player", client.Username), zap.Int("total", n))
}

func (h *WSHub) Unregister(client *WSClient) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *WSHub) Broadcast(event *model.WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.log.Warn("ws broadcast queue full", zap.String("type", event.Type))
	}
}

// SendToPlayer delivers an event to every connection of one player. Slow
// connections miss the message rather than stall the caller.
func (h *WSHub) SendToPlayer(playerID string, event *model.WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if client.PlayerID == playerID {
			select {
			case client.Send <- data:
			default:
			}
		}
	}
}

// SendTo delivers raw data to one registered client. Dropped clients are
// ignored.
func (h *WSHub) SendTo(client *WSClient, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.clients[client] {
		return
	}
	select {
	case client.Send <- data:
	default:
	}
}

func (h *WSHub) OnlineCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
