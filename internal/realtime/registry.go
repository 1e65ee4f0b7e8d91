package realtime

import (
	"sync"

	"github.com/samber/lo"
)

// Sender is the part of a connection the registry needs for fan-out.
type Sender interface {
	ID() string
	Send(payload []byte) error
}

// Registry associates identities with their open connections. A user may hold
// several connections at once (one per tab or device); each is tracked by its
// own id so removing one never disturbs the others.
type Registry struct {
	mu         sync.RWMutex
	byIdentity map[string]map[string]Sender // identity -> connID -> conn
	owners     map[string]string            // connID -> identity
}

func NewRegistry() *Registry {
	return &Registry{
		byIdentity: make(map[string]map[string]Sender),
		owners:     make(map[string]string),
	}
}

// Add associates conn with identity. Adding the same connection twice is a no-op;
// adding it under a different identity moves it.
func (r *Registry) Add(identity string, conn Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if previous, ok := r.owners[conn.ID()]; ok && previous != identity {
		r.removeLocked(conn.ID())
	}

	conns := r.byIdentity[identity]
	if conns == nil {
		conns = make(map[string]Sender)
		r.byIdentity[identity] = conns
	}
	conns[conn.ID()] = conn
	r.owners[conn.ID()] = identity
}

// Remove drops the association held by connID, if any, and reports whether one existed.
func (r *Registry) Remove(connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(connID)
}

func (r *Registry) removeLocked(connID string) bool {
	identity, ok := r.owners[connID]
	if !ok {
		return false
	}
	delete(r.owners, connID)

	conns := r.byIdentity[identity]
	delete(conns, connID)
	if len(conns) == 0 {
		delete(r.byIdentity, identity)
	}
	return true
}

// Connections returns a snapshot of the connections held by identity.
func (r *Registry) Connections(identity string) []Sender {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Values(r.byIdentity[identity])
}

func (r *Registry) Count(identity string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byIdentity[identity])
}

// Online lists identities with at least one open connection.
func (r *Registry) Online() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Keys(r.byIdentity)
}

// Drain removes every association and returns the connections that were held.
func (r *Registry) Drain() []Sender {
	r.mu.Lock()
	defer r.mu.Unlock()

	var all []Sender
	for _, conns := range r.byIdentity {
		all = append(all, lo.Values(conns)...)
	}
	r.byIdentity = make(map[string]map[string]Sender)
	r.owners = make(map[string]string)
	return all
}
