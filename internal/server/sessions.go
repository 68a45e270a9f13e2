package server

import (
	"sync"
)

// SessionManager owns the mapping from room keys to the set of connected
// clients subscribed to each room. It keeps a reverse index per client so
// that all of a connection's subscriptions are discarded in one step on
// teardown.
type SessionManager struct {
	mu          sync.RWMutex
	rooms       map[string]map[*Client]struct{}
	memberships map[*Client]map[string]struct{}
}

func NewSessionManager() *SessionManager {
	return &SessionManager{
		rooms:       make(map[string]map[*Client]struct{}),
		memberships: make(map[*Client]map[string]struct{}),
	}
}

// Subscribe adds the client to a room. Re-subscribing is a no-op.
func (sm *SessionManager) Subscribe(room string, c *Client) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.rooms[room] == nil {
		sm.rooms[room] = make(map[*Client]struct{})
	}
	sm.rooms[room][c] = struct{}{}

	if sm.memberships[c] == nil {
		sm.memberships[c] = make(map[string]struct{})
	}
	sm.memberships[c][room] = struct{}{}
}

func (sm *SessionManager) Unsubscribe(room string, c *Client) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.dropMember(room, c)
	if rooms, ok := sm.memberships[c]; ok {
		delete(rooms, room)
		if len(rooms) == 0 {
			delete(sm.memberships, c)
		}
	}
}

// RemoveClient discards every subscription held by the client.
func (sm *SessionManager) RemoveClient(c *Client) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for room := range sm.memberships[c] {
		sm.dropMember(room, c)
	}
	delete(sm.memberships, c)
}

// dropMember removes a client from a room's member set. Caller must hold
// the lock.
func (sm *SessionManager) dropMember(room string, c *Client) {
	if members, ok := sm.rooms[room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(sm.rooms, room)
		}
	}
}

// Clients returns the current members of a room.
func (sm *SessionManager) Clients(room string) []*Client {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	members := make([]*Client, 0, len(sm.rooms[room]))
	for c := range sm.rooms[room] {
		members = append(members, c)
	}

	return members
}

// Count returns the number of clients subscribed to a room.
func (sm *SessionManager) Count(room string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return len(sm.rooms[room])
}

// Broadcast queues a message to every client in a room. Delivery is best
// effort: clients whose send buffers are full miss the message.
func (sm *SessionManager) Broadcast(room string, msg *ServerMessage) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for c := range sm.rooms[room] {
		c.queueMessage(msg)
	}
}
