package ws

import (
	"sync"

	"battleship/internal/game"
	"battleship/internal/logger"
)

const subscriberBuffer = 16

// Subscriber is one open push connection for a seat in a game.
type Subscriber struct {
	GameID string
	Role   game.Role

	send chan Message
	done chan struct{}
}

// Updates delivers messages for this subscriber's role.
func (s *Subscriber) Updates() <-chan Message {
	return s.send
}

// Done is closed once the subscriber has been removed from the hub.
func (s *Subscriber) Done() <-chan struct{} {
	return s.done
}

// Hub keeps the subscribers of every game. It is created once per server
// and handed to whoever needs to publish or subscribe.
type Hub struct {
	games map[string]map[*Subscriber]struct{}
	mu    sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		games: make(map[string]map[*Subscriber]struct{}),
	}
}

func (h *Hub) Subscribe(gameID string, role game.Role) *Subscriber {
	s := &Subscriber{
		GameID: gameID,
		Role:   role,
		send:   make(chan Message, subscriberBuffer),
		done:   make(chan struct{}),
	}

	h.mu.Lock()
	subs, ok := h.games[gameID]
	if !ok {
		subs = make(map[*Subscriber]struct{})
		h.games[gameID] = subs
	}
	subs[s] = struct{}{}
	h.mu.Unlock()

	Subscribers.Inc()
	logger.ForGame(gameID, string(role)).Debug("subscribed")
	return s
}

// Unsubscribe removes s and closes its Done channel. Calling it more than
// once is harmless.
func (h *Hub) Unsubscribe(s *Subscriber) {
	h.mu.Lock()
	subs, ok := h.games[s.GameID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, ok := subs[s]; !ok {
		h.mu.Unlock()
		return
	}
	delete(subs, s)
	if len(subs) == 0 {
		delete(h.games, s.GameID)
	}
	close(s.done)
	h.mu.Unlock()

	Subscribers.Dec()
	logger.ForGame(s.GameID, string(s.Role)).Debug("unsubscribed")
}

// Publish hands each subscriber the view for its role. It never blocks: a
// subscriber whose buffer is full misses this update.
func (h *Hub) Publish(gameID string, views map[game.Role]*game.View) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.games[gameID] {
		v, ok := views[s.Role]
		if !ok || v == nil {
			continue
		}
		select {
		case s.send <- UpdateMessage(v):
		default:
			Dropped.Inc()
			logger.ForGame(gameID, string(s.Role)).Warn("subscriber too slow, update dropped")
		}
	}
}

// Count returns the number of subscribers for a game.
func (h *Hub) Count(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.games[gameID])
}

// Close removes every subscriber, ending their connections.
func (h *Hub) Close() {
	h.mu.Lock()
	var all []*Subscriber
	for _, subs := range h.games {
		for s := range subs {
			all = append(all, s)
		}
	}
	h.mu.Unlock()

	for _, s := range all {
		h.Unsubscribe(s)
	}
}
