package broadcast

import (
	"context"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/gobang-backend/internal/entity"
)

// Client is one connected receiver of room events.
type Client interface {
	ID() string
	Send(ev entity.Event) error
}

// Hub fans events out to the clients connected to this process. Lobby events
// reach every client, game moves only the room's group.
type Hub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[string]Client
	groups  map[string]map[string]Client
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:  logger.With("component", "hub"),
		clients: make(map[string]Client),
		groups:  make(map[string]map[string]Client),
	}
}

func (that *Hub) Register(c Client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.clients[c.ID()] = c
}

// Unregister drops the client and all of its group memberships.
func (that *Hub) Unregister(c Client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.clients, c.ID())

	for roomID, group := range that.groups {
		delete(group, c.ID())
		if len(group) == 0 {
			delete(that.groups, roomID)
		}
	}
}

// Join adds the client to the room's group.
func (that *Hub) Join(roomID string, c Client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.groups[roomID] == nil {
		that.groups[roomID] = make(map[string]Client)
	}
	that.groups[roomID][c.ID()] = c
}

func (that *Hub) Leave(roomID string, c Client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	group := that.groups[roomID]
	delete(group, c.ID())

	if len(group) == 0 {
		delete(that.groups, roomID)
	}
}

// Deliver sends ev to its audience on this process.
func (that *Hub) Deliver(ev entity.Event) {
	for _, c := range that.audience(ev) {
		if err := c.Send(ev); err != nil {
			that.logger.Warn("failed to deliver event", "client", c.ID(), "kind", ev.Kind, "error", err)
		}
	}
}

// Publish delivers locally. It lets a single instance run without a relay.
func (that *Hub) Publish(_ context.Context, ev entity.Event) error {
	that.Deliver(ev)

	return nil
}

func (that *Hub) audience(ev entity.Event) []Client {
	that.mu.RLock()
	defer that.mu.RUnlock()

	source := that.clients
	if ev.RoomScoped() {
		source = that.groups[ev.RoomID]
	}

	targets := make([]Client, 0, len(source))
	for _, c := range source {
		targets = append(targets, c)
	}

	return targets
}
