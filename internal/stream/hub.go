package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	channelPrefix  = "speedtrack:"
	channelSuffix  = ":events"
	channelPattern = channelPrefix + "*" + channelSuffix
	clientBuffer   = 64
	relayBuffer    = 256
	publishTimeout = 2 * time.Second
)

// Hub fans tracker events out to websocket clients. With Redis configured,
// events are also relayed to clients connected to other instances.
type Hub struct {
	redis   *redis.Client
	origin  string
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
	outbox  chan relayMessage
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

type Client struct {
	TrackerID string
	Send      chan []byte
}

type relayMessage struct {
	channel string
	body    []byte
}

// envelope tags relayed events so an instance skips its own publications.
type envelope struct {
	Origin  string `json:"origin"`
	Payload []byte `json:"payload"`
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:   redisClient,
		origin:  uuid.NewString(),
		clients: map[string]map[*Client]struct{}{},
	}

	if redisClient == nil {
		return h
	}
	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	h.outbox = make(chan relayMessage, relayBuffer)
	pubsub := redisClient.PSubscribe(ctx, channelPattern)
	h.wg.Add(2)
	go h.relay(ctx, pubsub)
	go h.publish(ctx)
	return h
}

func (h *Hub) Register(trackerID string) *Client {
	client := &Client{
		TrackerID: trackerID,
		Send:      make(chan []byte, clientBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[trackerID] == nil {
		h.clients[trackerID] = map[*Client]struct{}{}
	}
	h.clients[trackerID][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if trackerClients, ok := h.clients[client.TrackerID]; ok {
		if _, registered := trackerClients[client]; !registered {
			return
		}
		delete(trackerClients, client)
		if len(trackerClients) == 0 {
			delete(h.clients, client.TrackerID)
		}
		close(client.Send)
	}
}

// Subscribers returns the number of local clients watching a tracker.
func (h *Hub) Subscribers(trackerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[trackerID])
}

func (h *Hub) Broadcast(trackerID string, payload []byte) {
	h.deliver(trackerID, payload)

	if h.redis == nil {
		return
	}
	msg, err := json.Marshal(envelope{Origin: h.origin, Payload: payload})
	if err != nil {
		slog.Error("encode relay envelope", "error", err)
		return
	}
	// Redis is only written from the publisher goroutine.
	select {
	case h.outbox <- relayMessage{channel: redisChannel(trackerID), body: msg}:
	default:
		slog.Warn("relay queue full, dropping event", "tracker_id", trackerID)
	}
}

func (h *Hub) publish(ctx context.Context) {
	defer h.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-h.outbox:
			pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
			err := h.redis.Publish(pubCtx, m.channel, m.body).Err()
			cancel()
			if err != nil && ctx.Err() == nil {
				slog.Warn("redis publish error", "channel", m.channel, "error", err)
			}
		}
	}
}

// Close stops the Redis relay and drops unpublished events.
func (h *Hub) Close() {
	if h.cancel != nil {
		h.cancel()
	}
	h.wg.Wait()
}

// deliver drops the payload for clients whose buffer is full.
func (h *Hub) deliver(trackerID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[trackerID] {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (h *Hub) relay(ctx context.Context, pubsub *redis.PubSub) {
	defer h.wg.Done()
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			trackerID := trackerIDFromChannel(msg.Channel)
			if trackerID == "" {
				continue
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				slog.Warn("drop malformed relay message", "channel", msg.Channel, "error", err)
				continue
			}
			if env.Origin == h.origin {
				continue
			}
			h.deliver(trackerID, env.Payload)
		}
	}
}

func redisChannel(trackerID string) string {
	return channelPrefix + trackerID + channelSuffix
}

func trackerIDFromChannel(ch string) string {
	// speedtrack:{tracker}:events
	if len(ch) <= len(channelPrefix)+len(channelSuffix) ||
		!strings.HasPrefix(ch, channelPrefix) || !strings.HasSuffix(ch, channelSuffix) {
		return ""
	}
	return ch[len(channelPrefix) : len(ch)-len(channelSuffix)]
}
