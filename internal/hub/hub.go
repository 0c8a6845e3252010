package hub

import (
	"context"
	"encoding/json"
	"sync"
)

// Event represents a real-time event to be sent to clients.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Client represents a single subscriber connection.
// It's essentially a channel that the SSE handler will listen to.
type Client chan []byte

// Hub keeps in-process subscribers per channel and fans events out to them.
type Hub struct {
	channels map[string]map[Client]bool
	mu       sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		channels: make(map[string]map[Client]bool),
	}
}

// Subscribe adds a new client to a channel.
func (h *Hub) Subscribe(channel string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.channels[channel]; !ok {
		h.channels[channel] = make(map[Client]bool)
	}
	h.channels[channel][client] = true
}

// Unsubscribe removes a client from a channel.
func (h *Hub) Unsubscribe(channel string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.channels[channel]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client) // Close the channel to signal the SSE handler to stop.
			if len(clients) == 0 {
				delete(h.channels, channel)
			}
		}
	}
}

// Close unsubscribes every client, ending their streams.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for channel, clients := range h.channels {
		for client := range clients {
			close(client)
		}
		delete(h.channels, channel)
	}
}

// Subscribers returns the number of clients on a channel.
func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

// Broadcast sends an event to all clients on a channel.
func (h *Hub) Broadcast(channel string, event Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.channels[channel]
	if !ok {
		return nil
	}

	messageBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	for client := range clients {
		// Non-blocking send so a slow client cannot stall the hub.
		select {
		case client <- messageBytes:
		default:
		}
	}
	return nil
}

// Publisher adapts a Hub channel to the chat publisher interface.
type Publisher struct {
	Hub     *Hub
	Channel string
}

// Publish broadcasts data as a "message" event.
func (p Publisher) Publish(_ context.Context, data any) error {
	return p.Hub.Broadcast(p.Channel, Event{Type: "message", Payload: data})
}
