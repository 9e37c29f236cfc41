// Package coordinator tracks live room membership and routes real-time events
// between the connections of a room.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type roomState struct {
	host  string
	state SharedState
}

type RoomSnapshot struct {
	RoomID           string            `json:"roomId"`
	HostConnectionID string            `json:"hostConnectionId"`
	Participants     []ParticipantItem `json:"participants"`
	State            SharedState       `json:"state"`
}

type Stats struct {
	Rooms       int `json:"rooms"`
	Connections int `json:"connections"`
}

type Option func(*Coordinator)

func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) { c.log = l }
}

// Coordinator owns the registry, the connection directory and every room entry.
// All of them are mutated under mu only.
type Coordinator struct {
	mu       sync.Mutex
	registry *Registry
	conns    *Directory
	router   *Router
	relay    *Relay
	rooms    map[string]*roomState

	now func() time.Time
	log *slog.Logger
}

func New(opts ...Option) *Coordinator {
	c := &Coordinator{
		registry: NewRegistry(),
		conns:    NewDirectory(),
		rooms:    make(map[string]*roomState),
		now:      time.Now,
		log:      slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	c.router = NewRouter(c.registry, c.conns, c.log)
	c.relay = NewRelay(c.conns, c.log)
	return c
}

// Connect makes conn addressable by id for broadcasts and signaling.
func (c *Coordinator) Connect(conn Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conns.Add(conn)
}

// Disconnect applies Leave to every room connID is in and forgets the connection.
func (c *Coordinator) Disconnect(connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, roomID := range c.registry.RoomsOf(connID) {
		c.leave(roomID, connID)
	}
	c.conns.Remove(connID)
}

// Join adds connID to roomID. The first participant of an absent room becomes host.
func (c *Coordinator) Join(roomID, connID string, p Participant) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.join(roomID, connID, p)
}

// Leave removes connID from roomID. It is a no-op if connID is not in the room.
func (c *Coordinator) Leave(roomID, connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.leave(roomID, connID)
}

func (c *Coordinator) join(roomID, connID string, p Participant) error {
	if roomID == "" {
		return fmt.Errorf("%w: roomId is required", ErrValidation)
	}
	if connID == "" {
		return fmt.Errorf("%w: connection id is required", ErrValidation)
	}
	if p.JoinedAt.IsZero() {
		p.JoinedAt = c.now()
	}
	if err := c.registry.Register(roomID, connID, p); err != nil {
		if errors.Is(err, ErrAlreadyRegistered) {
			return fmt.Errorf("join %s: %w", roomID, ErrDuplicateJoin)
		}
		return err
	}

	rs, ok := c.rooms[roomID]
	if !ok {
		rs = &roomState{host: connID}
		c.rooms[roomID] = rs
		c.log.Info("room activated", "room", roomID, "host", connID)
	}

	roster := c.roster(roomID, rs.host)
	c.router.BroadcastExcluding(roomID, connID, Message{
		Type: TypeUserJoined,
		Payload: UserJoinedPayload{
			UserID:           p.UserID,
			Username:         p.Username,
			Avatar:           p.Avatar,
			ConnectionID:     connID,
			HostConnectionID: rs.host,
			Participants:     roster,
		},
	})
	if conn, ok := c.conns.Get(connID); ok {
		_ = conn.Send(Message{
			Type: TypeRoomUsers,
			Payload: RoomUsersPayload{
				RoomID:           roomID,
				HostConnectionID: rs.host,
				Participants:     roster,
				State:            rs.state.clone(),
			},
		})
	}
	c.log.Info("joined room", "room", roomID, "conn", connID, "user", p.UserID, "participants", len(roster))
	return nil
}

func (c *Coordinator) leave(roomID, connID string) {
	p, err := c.registry.Unregister(roomID, connID)
	if err != nil {
		// already gone: disconnect may race an explicit leave
		return
	}
	if !c.registry.Exists(roomID) {
		delete(c.rooms, roomID)
		c.log.Info("room released", "room", roomID, "last", connID)
		return
	}

	rs := c.rooms[roomID]
	if rs.host == connID {
		rs.host = c.pickHost(roomID)
		c.log.Info("host handed off", "room", roomID, "from", connID, "to", rs.host)
	}
	c.router.BroadcastAll(roomID, Message{
		Type: TypeUserLeft,
		Payload: UserLeftPayload{
			UserID:           p.UserID,
			Username:         p.Username,
			ConnectionID:     connID,
			HostConnectionID: rs.host,
			Participants:     c.roster(roomID, rs.host),
		},
	})
	c.log.Info("left room", "room", roomID, "conn", connID, "user", p.UserID)
}

// pickHost returns the remaining participant with the earliest join time.
// Equal times resolve to the earlier registry entry.
func (c *Coordinator) pickHost(roomID string) string {
	var best Participant
	for i, p := range c.registry.List(roomID) {
		if i == 0 || p.JoinedAt.Before(best.JoinedAt) {
			best = p
		}
	}
	return best.ConnectionID
}

func (c *Coordinator) roster(roomID, host string) []ParticipantItem {
	list := c.registry.List(roomID)
	out := make([]ParticipantItem, 0, len(list))
	for _, p := range list {
		out = append(out, ParticipantItem{
			ConnectionID: p.ConnectionID,
			UserID:       p.UserID,
			Username:     p.Username,
			Avatar:       p.Avatar,
			JoinedAt:     formatTimestamp(p.JoinedAt),
			IsHost:       p.ConnectionID == host,
		})
	}
	return out
}

// Dispatch routes one inbound event from connID to its handler.
func (c *Coordinator) Dispatch(ctx context.Context, connID string, ev Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	switch e := ev.(type) {
	case JoinRoom:
		err = c.handleJoin(connID, e)
	case LeaveRoom:
		err = c.handleLeave(connID, e)
	case CodeChange:
		err = c.handleCodeChange(connID, e)
	case ChatMessage:
		err = c.handleChat(connID, e)
	case MusicControl:
		err = c.handleMusic(connID, e)
	case PlaylistUpdate:
		err = c.handlePlaylist(connID, e)
	case ToggleMedia:
		err = c.handleToggleMedia(connID, e)
	case CursorMove:
		err = c.handleCursor(connID, e)
	case TerminalCommand:
		err = c.handleTerminal(connID, e)
	case Signal:
		err = c.handleSignal(connID, e)
	default:
		err = fmt.Errorf("%w: unsupported event %T", ErrValidation, ev)
	}
	if err != nil {
		c.log.DebugContext(ctx, "dispatch failed", "conn", connID, "event", eventName(ev), "err", err)
	}
	return err
}

func eventName(ev Event) string {
	if ev == nil {
		return ""
	}
	return ev.EventName()
}

func (c *Coordinator) handleJoin(connID string, e JoinRoom) error {
	if e.Username == "" {
		return fmt.Errorf("%w: username is required", ErrValidation)
	}
	return c.join(e.RoomID, connID, Participant{
		UserID:   e.UserID,
		Username: e.Username,
		Avatar:   e.Avatar,
		JoinedAt: c.now(),
	})
}

func (c *Coordinator) handleLeave(connID string, e LeaveRoom) error {
	if e.RoomID == "" {
		return fmt.Errorf("%w: roomId is required", ErrValidation)
	}
	c.leave(e.RoomID, connID)
	return nil
}

// Snapshot returns the live view of roomID, or false if the room is absent.
func (c *Coordinator) Snapshot(roomID string) (RoomSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rs, ok := c.rooms[roomID]
	if !ok {
		return RoomSnapshot{}, false
	}
	return RoomSnapshot{
		RoomID:           roomID,
		HostConnectionID: rs.host,
		Participants:     c.roster(roomID, rs.host),
		State:            rs.state.clone(),
	}, true
}

func (c *Coordinator) Host(roomID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rs, ok := c.rooms[roomID]
	if !ok {
		return "", false
	}
	return rs.host, true
}

func (c *Coordinator) Participants(roomID string) []Participant {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.List(roomID)
}

func (c *Coordinator) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Rooms: c.registry.Len(), Connections: c.conns.Len()}
}

// Close closes every live connection. Their transports report back through Disconnect.
func (c *Coordinator) Close() {
	c.mu.Lock()
	conns := c.conns.All()
	c.mu.Unlock()

	for _, conn := range conns {
		if err := conn.Close(); err != nil {
			c.log.Debug("close conn failed", "conn", conn.ID(), "err", err)
		}
	}
}
