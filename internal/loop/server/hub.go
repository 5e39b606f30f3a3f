// Package server holds the state shared by every connected session.
package server

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Hub tracks connected sessions and fans out events between them.
// Each session still owns its own game; the hub only shares the best
// score and the server lifecycle.
type Hub struct {
	clients      map[int]*ClientHandle
	nextClientID int
	mu           sync.RWMutex
	logger       *log.Logger
}

// ClientHandle represents a session's connection to the hub.
type ClientHandle struct {
	ID        int
	Username  string          // Display name for this client
	SessionID string          // Correlates log lines for one connection
	EventsCh  chan ClientEvent // Events sent to client (best score, shutdown)
}

// ClientEvent represents an event sent from the hub to a client.
type ClientEvent struct {
	Type ClientEventType
	Best int    // For best score events
	From string // Username that set the best score
}

// ClientEventType identifies the type of client event.
type ClientEventType int

const (
	EventBestScore ClientEventType = iota
	EventServerShutdown
)

// NewHub creates an empty hub.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		clients:      make(map[int]*ClientHandle),
		nextClientID: 1,
		logger:       logger,
	}
}

// RegisterClient registers a new client and returns its handle.
func (h *Hub) RegisterClient(username, sessionID string) *ClientHandle {
	h.mu.Lock()
	defer h.mu.Unlock()

	handle := &ClientHandle{
		ID:        h.nextClientID,
		Username:  username,
		SessionID: sessionID,
		EventsCh:  make(chan ClientEvent, 16),
	}
	h.nextClientID++
	h.clients[handle.ID] = handle
	h.logger.Debug("client registered", "id", handle.ID, "user", username, "players", len(h.clients))
	return handle
}

// UnregisterClient removes a client and closes its event channel.
func (h *Hub) UnregisterClient(clientID int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if handle, ok := h.clients[clientID]; ok {
		close(handle.EventsCh)
		delete(h.clients, clientID)
		h.logger.Debug("client unregistered", "id", clientID, "players", len(h.clients))
	}
}

// Players returns the number of connected clients.
func (h *Hub) Players() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// PublishBest tells every other client that a new best score was stored.
// Slow clients miss the event rather than block the sender.
func (h *Hub) PublishBest(fromID, best int) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	from := ""
	if handle, ok := h.clients[fromID]; ok {
		from = handle.Username
	}
	for id, handle := range h.clients {
		if id == fromID {
			continue
		}
		select {
		case handle.EventsCh <- ClientEvent{Type: EventBestScore, Best: best, From: from}:
		default:
		}
	}
	h.logger.Info("new best score", "user", from, "best", best)
}

// Shutdown gracefully shuts down the hub by notifying all connected clients
// and waiting for them to disconnect (up to the given timeout).
func (h *Hub) Shutdown(timeout time.Duration) {
	// Notify all connected clients about the shutdown
	h.mu.RLock()
	for _, handle := range h.clients {
		select {
		case handle.EventsCh <- ClientEvent{Type: EventServerShutdown}:
		default:
		}
	}
	h.mu.RUnlock()

	// Wait for all clients to disconnect, or timeout
	deadline := time.After(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		if h.Players() == 0 {
			return
		}
		select {
		case <-deadline:
			h.logger.Warn("shutdown timeout with clients still connected", "players", h.Players())
			return
		case <-ticker.C:
		}
	}
}
