package coordinator

import (
	"fmt"
	"time"
)

// Participant describes one live connection inside a room.
type Participant struct {
	ConnectionID string
	UserID       string
	Username     string
	Avatar       string
	JoinedAt     time.Time
}

type roomEntry struct {
	order  []string // connection ids in join order
	byConn map[string]Participant
}

// Registry maps room ids to their ordered participants.
// It is not safe for concurrent use; the Coordinator serializes access.
type Registry struct {
	rooms map[string]*roomEntry
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*roomEntry)}
}

func (r *Registry) Register(roomID, connID string, p Participant) error {
	e, ok := r.rooms[roomID]
	if !ok {
		e = &roomEntry{byConn: make(map[string]Participant)}
		r.rooms[roomID] = e
	}
	if _, dup := e.byConn[connID]; dup {
		return fmt.Errorf("register %s in %s: %w", connID, roomID, ErrAlreadyRegistered)
	}
	p.ConnectionID = connID
	e.byConn[connID] = p
	e.order = append(e.order, connID)
	return nil
}

// Unregister removes the participant and drops the room entry once it is empty.
func (r *Registry) Unregister(roomID, connID string) (Participant, error) {
	e, ok := r.rooms[roomID]
	if !ok {
		return Participant{}, fmt.Errorf("room %s: %w", roomID, ErrNotFound)
	}
	p, ok := e.byConn[connID]
	if !ok {
		return Participant{}, fmt.Errorf("connection %s in %s: %w", connID, roomID, ErrNotFound)
	}
	delete(e.byConn, connID)
	for i, id := range e.order {
		if id == connID {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	if len(e.order) == 0 {
		delete(r.rooms, roomID)
	}
	return p, nil
}

// List returns participants in join order; unknown rooms yield an empty slice.
func (r *Registry) List(roomID string) []Participant {
	e, ok := r.rooms[roomID]
	if !ok {
		return []Participant{}
	}
	out := make([]Participant, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.byConn[id])
	}
	return out
}

func (r *Registry) Get(roomID, connID string) (Participant, bool) {
	e, ok := r.rooms[roomID]
	if !ok {
		return Participant{}, false
	}
	p, ok := e.byConn[connID]
	return p, ok
}

func (r *Registry) Exists(roomID string) bool {
	_, ok := r.rooms[roomID]
	return ok
}

func (r *Registry) Count(roomID string) int {
	if e, ok := r.rooms[roomID]; ok {
		return len(e.order)
	}
	return 0
}

// RoomsOf returns every room connID is registered in.
func (r *Registry) RoomsOf(connID string) []string {
	var out []string
	for roomID, e := range r.rooms {
		if _, ok := e.byConn[connID]; ok {
			out = append(out, roomID)
		}
	}
	return out
}

func (r *Registry) Len() int { return len(r.rooms) }
