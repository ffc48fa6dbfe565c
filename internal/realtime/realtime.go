package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// MessageType labels the payloads pushed over the dashboard socket.
type MessageType string

const (
	MessageTypeReport       MessageType = "consistency_report"
	MessageTypePayoutStatus MessageType = "payout_status"
	MessageTypeSubscribe    MessageType = "subscribe"
)

// Message is the envelope for every frame pushed to clients.
type Message struct {
	Type      MessageType `json:"type"`
	Topic     string      `json:"topic"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
	ClientID  string      `json:"client_id,omitempty"`
}

// SubscriptionRequest is the only frame clients send.
type SubscriptionRequest struct {
	Type   string   `json:"type"`
	Topics []string `json:"topics"`
}

// Hub fans dashboard events out to connected sockets and mirrors them
// through Redis pub/sub so every instance sees every event.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	redis      *redis.Client
	logger     *zap.Logger
	mutex      sync.RWMutex
}

// Client is one connected dashboard socket.
type Client struct {
	ID     string
	UserID string
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	topics map[string]bool
	mutex  sync.RWMutex
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const redisChannelPrefix = "dashboard:"

// NewHub creates a hub. Call Run and SubscribeToRedis to start it.
func NewHub(rdb *redis.Client, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		redis:      rdb,
		logger:     logger,
	}
}

// Run processes register and unregister events until the process exits.
// Intended to run in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			h.logger.Debug("realtime client connected",
				zap.String("client_id", client.ID),
				zap.String("user_id", client.UserID))

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()
			h.logger.Debug("realtime client disconnected", zap.String("client_id", client.ID))
		}
	}
}

// HandleWebSocket upgrades the request and registers the client. The auth
// middleware is expected to have stored the user id on the gin context.
func (h *Hub) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to upgrade connection"})
		return
	}

	client := &Client{
		ID:     uuid.NewString(),
		UserID: c.GetString("user_id"),
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 256),
		topics: make(map[string]bool),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

// CreatorTopic names the per-creator event topic.
func CreatorTopic(creatorID uint) string {
	return fmt.Sprintf("creator:%d", creatorID)
}

// BroadcastReport pushes a consistency report to subscribers of the
// creator's topic and mirrors it to peer instances over Redis.
func (h *Hub) BroadcastReport(creatorID uint, report interface{}) error {
	return h.broadcastToTopic(CreatorTopic(creatorID), &Message{
		Type:    MessageTypeReport,
		Payload: report,
	})
}

// BroadcastPayoutStatus pushes a payout state change to the creator's topic.
func (h *Hub) BroadcastPayoutStatus(creatorID uint, payout interface{}) error {
	return h.broadcastToTopic(CreatorTopic(creatorID), &Message{
		Type:    MessageTypePayoutStatus,
		Payload: payout,
	})
}

// ConnectedClients reports the number of live sockets on this instance.
func (h *Hub) ConnectedClients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcastToTopic(topic string, message *Message) error {
	message.Topic = topic
	message.Timestamp = time.Now().UTC()
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to encode realtime message: %w", err)
	}

	h.mutex.Lock()
	for client := range h.clients {
		client.mutex.RLock()
		subscribed := client.topics[topic]
		client.mutex.RUnlock()
		if !subscribed {
			continue
		}
		select {
		case client.send <- data:
		default:
			close(client.send)
			delete(h.clients, client)
		}
	}
	h.mutex.Unlock()

	if h.redis == nil {
		return nil
	}
	return h.redis.Publish(context.Background(), redisChannelPrefix+topic, data).Err()
}

// SubscribeToRedis relays events published by peer instances to local
// clients. Intended to run in its own goroutine.
func (h *Hub) SubscribeToRedis(ctx context.Context) {
	pubsub := h.redis.PSubscribe(ctx, redisChannelPrefix+"*")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		topic := strings.TrimPrefix(msg.Channel, redisChannelPrefix)
		h.relayLocal(topic, []byte(msg.Payload))
	}
}

func (h *Hub) relayLocal(topic string, data []byte) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for client := range h.clients {
		client.mutex.RLock()
		subscribed := client.topics[topic]
		client.mutex.RUnlock()
		if !subscribed {
			continue
		}
		select {
		case client.send <- data:
		default:
			close(client.send)
			delete(h.clients, client)
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read failed", zap.String("client_id", c.ID), zap.Error(err))
			}
			break
		}

		var req SubscriptionRequest
		if err := json.Unmarshal(message, &req); err == nil {
			c.handleSubscription(&req)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleSubscription(req *SubscriptionRequest) {
	c.mutex.Lock()
	switch req.Type {
	case "subscribe":
		for _, topic := range req.Topics {
			c.topics[topic] = true
		}
	case "unsubscribe":
		for _, topic := range req.Topics {
			delete(c.topics, topic)
		}
	}
	c.mutex.Unlock()

	ack := &Message{
		Type:      MessageTypeSubscribe,
		Topic:     "system",
		Payload:   fmt.Sprintf("subscription %sd", req.Type),
		Timestamp: time.Now().UTC(),
		ClientID:  c.ID,
	}
	data, _ := json.Marshal(ack)
	select {
	case c.send <- data:
	default:
	}
}
