package coordinator

import (
	"encoding/json"
	"log/slog"
)

// Relay forwards negotiation messages to a single connection.
// Targets are addressed by connection id only; rooms play no part.
type Relay struct {
	conns *Directory
	log   *slog.Logger
}

func NewRelay(conns *Directory, log *slog.Logger) *Relay {
	return &Relay{conns: conns, log: log}
}

// Relay reports whether the target accepted the message. A missing target is a silent drop.
func (r *Relay) Relay(targetID, kind string, payload json.RawMessage, fromID string) bool {
	c, ok := r.conns.Get(targetID)
	if !ok {
		r.log.Debug("signal target gone", "kind", kind, "target", targetID, "from", fromID)
		return false
	}
	err := c.Send(Message{
		Type:    kind,
		Payload: SignalPayload{Payload: payload, FromConnectionID: fromID},
	})
	if err != nil {
		r.log.Debug("signal send failed", "kind", kind, "target", targetID, "err", err)
		return false
	}
	return true
}
