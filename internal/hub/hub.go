// Package hub implements the real-time core: authenticated websocket
// sessions, per-bus and per-user channels, and the event handlers that
// mutate trip state and fan out notifications.
package hub

import (
	"fmt"
	"log"
	"sync"

	"bus-tracker-backend/config"
	"bus-tracker-backend/internal/registry"
	"bus-tracker-backend/internal/store"
)

// Notifier receives the id of a freshly persisted notification for
// out-of-band delivery (web push). May be nil when push is disabled.
type Notifier interface {
	Dispatch(notificationID int64)
}

// Hub owns the channel membership index and dispatches inbound events.
// Membership is a bidirectional index: channel to clients for
// broadcasting, client to channels for cleanup on disconnect.
type Hub struct {
	gateway  store.Gateway
	registry *registry.Registry
	notifier Notifier
	logger   *log.Logger
	cfg      config.HubConfig

	mu          sync.RWMutex
	channels    map[string]map[*Client]struct{}
	clientRooms map[*Client]map[string]struct{}
}

// New creates a hub with empty membership.
func New(gw store.Gateway, reg *registry.Registry, cfg config.HubConfig, logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		gateway:     gw,
		registry:    reg,
		logger:      logger,
		cfg:         cfg,
		channels:    make(map[string]map[*Client]struct{}),
		clientRooms: make(map[*Client]map[string]struct{}),
	}
}

// SetNotifier wires the web-push worker pool into the hub.
func (h *Hub) SetNotifier(n Notifier) {
	h.notifier = n
}

// BusChannel names the broadcast channel for a bus.
func BusChannel(busID int64) string {
	return fmt.Sprintf("bus:%d", busID)
}

// UserChannel names a user's personal channel.
func UserChannel(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}

// register adds a freshly authenticated client and joins it to its
// personal channel for the lifetime of the session.
func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clientRooms[c] = make(map[string]struct{})
	h.mu.Unlock()

	h.Join(c, UserChannel(c.UserID))
	h.logger.Printf("user connected: %d (%s)", c.UserID, c.Role)
}

// unregister removes the client from every channel it joined. The
// location registry and persisted trip state are deliberately left
// untouched: a driver dropping off the network must not end the trip.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	for channel := range h.clientRooms[c] {
		h.removeLocked(c, channel)
	}
	delete(h.clientRooms, c)
	h.mu.Unlock()

	h.logger.Printf("user disconnected: %d", c.UserID)
}

// Join adds c to the named channel.
func (h *Hub) Join(c *Client, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.channels[channel]
	if !ok {
		members = make(map[*Client]struct{})
		h.channels[channel] = members
	}
	members[c] = struct{}{}
	if rooms, ok := h.clientRooms[c]; ok {
		rooms[channel] = struct{}{}
	}
}

// Leave removes c from the named channel.
func (h *Hub) Leave(c *Client, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c, channel)
	if rooms, ok := h.clientRooms[c]; ok {
		delete(rooms, channel)
	}
}

func (h *Hub) removeLocked(c *Client, channel string) {
	if members, ok := h.channels[channel]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.channels, channel)
		}
	}
}

// members returns a snapshot of the channel's current membership.
func (h *Hub) members(channel string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	list := make([]*Client, 0, len(h.channels[channel]))
	for c := range h.channels[channel] {
		list = append(list, c)
	}
	return list
}

// Broadcast delivers an event to every current member of a channel.
// Delivery is at-most-once: a member whose send buffer is full has
// fallen too far behind and is disconnected rather than blocked on.
func (h *Hub) Broadcast(channel, event string, data any) {
	frame, err := encodeEvent(event, data)
	if err != nil {
		h.logger.Printf("failed to encode %s event: %v", event, err)
		return
	}
	for _, c := range h.members(channel) {
		h.deliver(c, event, frame)
	}
}

// sendTo delivers an event to a single client only, without touching
// channel membership.
func (h *Hub) sendTo(c *Client, event string, data any) {
	frame, err := encodeEvent(event, data)
	if err != nil {
		h.logger.Printf("failed to encode %s event: %v", event, err)
		return
	}
	h.deliver(c, event, frame)
}

func (h *Hub) deliver(c *Client, event string, frame []byte) {
	select {
	case c.send <- frame:
	default:
		h.logger.Printf("dropping slow client %d on %s", c.UserID, event)
		c.close()
	}
}
