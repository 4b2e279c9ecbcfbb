package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// Conn is the minimal surface the hub needs from a push connection. The
// production implementation wraps *websocket.Conn; tests use fakes.
type Conn interface {
	WriteText(data []byte) error
	Close() error
}

// Event is the message shape pushed to clients.
type Event struct {
	Title            string         `json:"title,omitempty"`
	Message          string         `json:"message,omitempty"`
	Type             string         `json:"type,omitempty"`
	NotificationType string         `json:"notification_type,omitempty"`
	Data             map[string]any `json:"data,omitempty"`
	Timestamp        string         `json:"timestamp,omitempty"`
}

// Counts reports live connection statistics.
type Counts struct {
	TotalUsers       int `json:"total_users"`
	TotalConnections int `json:"total_connections"`
	AdminConnections int `json:"admin_connections"`
}

// Hub tracks live push connections per user plus a separate admin set, and
// fans events out to them. It is constructed once in main and injected into
// every handler that dispatches notifications. Delivery is fire-and-forget:
// a connection that fails a write is pruned, and a missing recipient drops
// the event silently.
type Hub struct {
	mu     sync.RWMutex
	users  map[uint][]Conn
	admins []Conn
	logger *slog.Logger

	now func() time.Time
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		users:  make(map[uint][]Conn),
		logger: logger,
		now:    time.Now,
	}
}

// Connect registers a connection under the user's set, or the admin set when
// isAdmin is true. Admin connections are not also tracked per-user.
func (h *Hub) Connect(c Conn, userID uint, isAdmin bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if isAdmin {
		h.admins = append(h.admins, c)
		h.logger.Info("admin connected", "admin_connections", len(h.admins))
		return
	}
	h.users[userID] = append(h.users[userID], c)
	h.logger.Info("user connected", "user_id", userID, "connections", len(h.users[userID]))
}

// Disconnect removes a connection. A user entry whose set becomes empty is
// deleted entirely.
func (h *Hub) Disconnect(c Conn, userID uint, isAdmin bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c, userID, isAdmin)
}

func (h *Hub) removeLocked(c Conn, userID uint, isAdmin bool) {
	if isAdmin {
		for i, conn := range h.admins {
			if conn == c {
				h.admins = append(h.admins[:i], h.admins[i+1:]...)
				break
			}
		}
		return
	}

	conns := h.users[userID]
	for i, conn := range conns {
		if conn == c {
			conns = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(conns) == 0 {
		delete(h.users, userID)
	} else {
		h.users[userID] = conns
	}
}

// SendToUser delivers the event to every live connection of one user.
// Write failures prune the connection and never abort the rest of the
// fan-out or surface to the caller.
func (h *Hub) SendToUser(ev Event, userID uint) {
	data, err := h.encode(ev)
	if err != nil {
		h.logger.Error("encode event failed", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.dead(h.users[userID], data, userID) {
		h.removeLocked(c, userID, false)
	}
}

// SendToAdmins delivers the event to every admin connection. With no admins
// connected this is a no-op.
func (h *Hub) SendToAdmins(ev Event) {
	data, err := h.encode(ev)
	if err != nil {
		h.logger.Error("encode event failed", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.sendToAdminsLocked(data)
}

func (h *Hub) sendToAdminsLocked(data []byte) {
	for _, c := range h.dead(h.admins, data, 0) {
		h.removeLocked(c, 0, true)
	}
}

// Broadcast delivers the event to every user connection and every admin
// connection.
func (h *Hub) Broadcast(ev Event) {
	data, err := h.encode(ev)
	if err != nil {
		h.logger.Error("encode event failed", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, conns := range h.users {
		for _, c := range h.dead(conns, data, userID) {
			h.removeLocked(c, userID, false)
		}
	}
	h.sendToAdminsLocked(data)
}

// Stats returns live connection counts.
func (h *Hub) Stats() Counts {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, conns := range h.users {
		total += len(conns)
	}
	return Counts{
		TotalUsers:       len(h.users),
		TotalConnections: total,
		AdminConnections: len(h.admins),
	}
}

// dead writes data to each connection and returns the ones that failed.
func (h *Hub) dead(conns []Conn, data []byte, userID uint) []Conn {
	var failed []Conn
	for _, c := range conns {
		if err := c.WriteText(data); err != nil {
			h.logger.Error("push delivery failed", "user_id", userID, "error", err)
			failed = append(failed, c)
		}
	}
	return failed
}

func (h *Hub) encode(ev Event) ([]byte, error) {
	ev.Timestamp = h.now().UTC().Format(time.RFC3339)
	return json.Marshal(ev)
}
