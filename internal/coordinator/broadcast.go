package coordinator

import "log/slog"

// Router fans room-scoped events out to the connections in a room.
type Router struct {
	registry *Registry
	conns    *Directory
	log      *slog.Logger
}

func NewRouter(registry *Registry, conns *Directory, log *slog.Logger) *Router {
	return &Router{registry: registry, conns: conns, log: log}
}

// BroadcastExcluding delivers msg to every connection in roomID but the sender.
// It returns how many connections accepted the message.
func (r *Router) BroadcastExcluding(roomID, senderID string, msg Message) int {
	return r.fanOut(roomID, senderID, msg)
}

// BroadcastAll delivers msg to every connection in roomID, sender included.
func (r *Router) BroadcastAll(roomID string, msg Message) int {
	return r.fanOut(roomID, "", msg)
}

func (r *Router) fanOut(roomID, skip string, msg Message) int {
	sent := 0
	for _, p := range r.registry.List(roomID) {
		if skip != "" && p.ConnectionID == skip {
			continue
		}
		c, ok := r.conns.Get(p.ConnectionID)
		if !ok {
			continue
		}
		if err := c.Send(msg); err != nil {
			// best-effort
			r.log.Debug("broadcast send failed", "room", roomID, "conn", p.ConnectionID, "type", msg.Type, "err", err)
			continue
		}
		sent++
	}
	return sent
}
