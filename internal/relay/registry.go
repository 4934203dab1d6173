package relay

import (
	"log/slog"
	"sync"

	"roomrelay/internal/metrics"
)

// Outbound is the delivery queue handle registered for a connection.
// Enqueue must never block; it reports false when the frame was dropped.
type Outbound interface {
	Enqueue(frame []byte) bool
}

// Registry maps connection ids to their outbound delivery queues. It is
// the sole owner of "who is reachable right now". All operations run
// under one mutex and never touch transport I/O: Send only enqueues, so
// registry latency is decoupled from network latency.
type Registry struct {
	log *slog.Logger

	mu    sync.RWMutex
	conns map[string]Outbound
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		log:   log,
		conns: make(map[string]Outbound),
	}
}

// Register inserts a new reachable endpoint. Ids are unique for the
// lifetime of the process; a duplicate is ErrDuplicateConn.
func (r *Registry) Register(id string, q Outbound) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[id]; ok {
		return ErrDuplicateConn
	}
	r.conns[id] = q
	metrics.ConnectionsActive.Inc()
	return nil
}

// Unregister removes the endpoint. Unregistering an absent id is a
// no-op: teardown can race between the reader and the delivery pump.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[id]; !ok {
		return
	}
	delete(r.conns, id)
	metrics.ConnectionsActive.Dec()
}

// Send enqueues a frame for delivery to id. ErrConnNotFound is not fatal
// to a broadcast; the caller logs and continues. A full queue drops the
// frame rather than blocking the registry.
func (r *Registry) Send(id string, frame []byte) error {
	r.mu.RLock()
	q, ok := r.conns[id]
	r.mu.RUnlock()
	if !ok {
		return ErrConnNotFound
	}
	if !q.Enqueue(frame) {
		metrics.DeliveriesDropped.Inc()
		r.log.Warn("delivery queue full, dropping frame", "conn", id)
	}
	return nil
}

// List returns a snapshot of registered connection ids. It reflects the
// registry at call time and may be stale by the time the caller acts on it.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.conns))
	for id := range r.conns {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
