package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Event is a dataset-change notification pushed to connected clients so
// they can re-run their queries. The server only signals invalidation; it
// never pushes the data itself.
type Event struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	CafeID    string `json:"cafeId,omitempty"`
	UserID    string `json:"userId,omitempty"`
}

const (
	EventStopsChanged     = "stops.changed"
	EventCafesChanged     = "cafes.changed"
	EventFavoritesChanged = "favorites.changed"
)

// deviceConn pairs a connection with a write mutex. gorilla/websocket
// allows at most one concurrent writer per connection, and broadcasts run
// from whatever goroutine triggered the mutation.
type deviceConn struct {
	writeMu sync.Mutex
	conn    *websocket.Conn
}

func (c *deviceConn) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// EventsHub manages WebSocket connections keyed by device identifier.
// A nil hub is valid and drops every notification (CLI usage).
type EventsHub struct {
	mu          sync.RWMutex
	connections map[string]*deviceConn
}

// NewEventsHub creates a new events hub
func NewEventsHub() *EventsHub {
	return &EventsHub{
		connections: make(map[string]*deviceConn),
	}
}

// Register registers a connection for a device, replacing any previous one.
func (h *EventsHub) Register(deviceID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.connections[deviceID]; ok {
		existing.conn.Close()
	}
	h.connections[deviceID] = &deviceConn{conn: conn}

	log.Info().Str("device_id", deviceID).Msg("WebSocket connection registered")
}

// Unregister removes a device's connection.
func (h *EventsHub) Unregister(deviceID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if dc, ok := h.connections[deviceID]; ok {
		dc.conn.Close()
		delete(h.connections, deviceID)
		log.Info().Str("device_id", deviceID).Msg("WebSocket connection unregistered")
	}
}

// SendToDevice sends an event to one device.
func (h *EventsHub) SendToDevice(deviceID string, event Event) error {
	h.mu.RLock()
	dc, ok := h.connections[deviceID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("device %s is not connected", deviceID)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := dc.write(data); err != nil {
		h.Unregister(deviceID)
		return fmt.Errorf("failed to send event: %w", err)
	}
	return nil
}

// Broadcast sends an event to every connected device.
func (h *EventsHub) Broadcast(event Event) {
	h.mu.RLock()
	deviceIDs := make([]string, 0, len(h.connections))
	for id := range h.connections {
		deviceIDs = append(deviceIDs, id)
	}
	h.mu.RUnlock()

	for _, id := range deviceIDs {
		if err := h.SendToDevice(id, event); err != nil {
			log.Debug().Err(err).Str("device_id", id).Msg("Failed to broadcast event")
		}
	}
}

// NotifyStopsChanged tells every client the stop collection changed.
func (h *EventsHub) NotifyStopsChanged() {
	if h == nil {
		return
	}
	h.Broadcast(Event{Type: EventStopsChanged, Timestamp: time.Now().UnixMilli()})
}

// NotifyCafesChanged tells every client the cafe catalog changed.
func (h *EventsHub) NotifyCafesChanged(cafeID string) {
	if h == nil {
		return
	}
	h.Broadcast(Event{Type: EventCafesChanged, Timestamp: time.Now().UnixMilli(), CafeID: cafeID})
}

// NotifyFavoritesChanged tells the owning device its favorites changed.
// Other devices never see another user's favorites, so no broadcast.
func (h *EventsHub) NotifyFavoritesChanged(userID string) {
	if h == nil {
		return
	}
	event := Event{Type: EventFavoritesChanged, Timestamp: time.Now().UnixMilli(), UserID: userID}
	if err := h.SendToDevice(userID, event); err != nil {
		log.Debug().Err(err).Str("user_id", userID).Msg("Favorites event not delivered")
	}
}
