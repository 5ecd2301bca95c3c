package realtime

import (
	"sync"
)

// Registry tracks every live connection per user. A user may hold any number
// of concurrent connections (multi-device); the registry is their sole owner
// and must see an Unregister on every connection exit path.
type Registry struct {
	mu    sync.RWMutex
	users map[int64]map[string]*Connection
}

// NewRegistry constructs an empty Registry
func NewRegistry() *Registry {
	return &Registry{users: make(map[int64]map[string]*Connection)}
}

// Register tracks the connection and returns its registry token
func (r *Registry) Register(c *Connection) string {
	r.mu.Lock()
	conns := r.users[c.UserID]
	if conns == nil {
		conns = make(map[string]*Connection)
		r.users[c.UserID] = conns
	}
	conns[c.Token] = c
	r.mu.Unlock()
	return c.Token
}

// Unregister removes the connection. Once Unregister returns the connection
// is never handed out again; in-flight sends already holding it are dropped
// by the closed send channel.
func (r *Registry) Unregister(c *Connection) {
	r.mu.Lock()
	if conns, ok := r.users[c.UserID]; ok {
		delete(conns, c.Token)
		if len(conns) == 0 {
			delete(r.users, c.UserID)
		}
	}
	r.mu.Unlock()
}

// ConnectionsFor returns a snapshot of the user's live connections
func (r *Registry) ConnectionsFor(userID int64) []*Connection {
	r.mu.RLock()
	conns := r.users[userID]
	out := make([]*Connection, 0, len(conns))
	for _, c := range conns {
		out = append(out, c)
	}
	r.mu.RUnlock()
	return out
}

// AllConnections returns a snapshot of every live connection
func (r *Registry) AllConnections() []*Connection {
	r.mu.RLock()
	var out []*Connection
	for _, conns := range r.users {
		for _, c := range conns {
			out = append(out, c)
		}
	}
	r.mu.RUnlock()
	return out
}

// CloseUser closes and removes every connection of the given user. Used when
// an admin bans or deletes an account mid-session.
func (r *Registry) CloseUser(userID int64, code int, reason string) {
	r.mu.Lock()
	conns := r.users[userID]
	delete(r.users, userID)
	r.mu.Unlock()

	for _, c := range conns {
		c.Close(code, reason)
	}
}

// Count returns the number of live connections
func (r *Registry) Count() int {
	r.mu.RLock()
	n := 0
	for _, conns := range r.users {
		n += len(conns)
	}
	r.mu.RUnlock()
	return n
}
