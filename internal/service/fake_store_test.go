package service

import (
	"context"
	"time"

	"github.com/cwrk-planet/liveroom/internal/domain"
)

type memStore struct {
	rooms     map[string]*domain.Room
	members   map[string][]domain.Participant
	lastLimit int
	createErr error
}

func newMemStore() *memStore {
	return &memStore{rooms: map[string]*domain.Room{}, members: map[string][]domain.Participant{}}
}

func (m *memStore) Create(_ context.Context, room *domain.Room) error {
	if m.createErr != nil {
		return m.createErr
	}
	room.IsActive = true
	room.CreatedAt = time.Now()
	cp := *room
	m.rooms[room.ID] = &cp
	m.members[room.ID] = []domain.Participant{{RoomID: room.ID, UserID: room.OwnerID, Role: domain.RoleHost}}
	return nil
}

func (m *memStore) Get(_ context.Context, id string) (*domain.Room, error) {
	r, ok := m.rooms[id]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memStore) ListActive(_ context.Context, limit int, _ string) ([]domain.Room, string, error) {
	m.lastLimit = limit
	var out []domain.Room
	for _, r := range m.rooms {
		if r.IsActive {
			out = append(out, *r)
		}
	}
	return out, "", nil
}

func (m *memStore) UpdatePlaylist(_ context.Context, id string, playlist []domain.Track) error {
	r, ok := m.rooms[id]
	if !ok {
		return domain.ErrRoomNotFound
	}
	r.Playlist = playlist
	return nil
}

func (m *memStore) Join(_ context.Context, roomID, userID string) (*domain.Participant, error) {
	r, ok := m.rooms[roomID]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	for _, p := range m.members[roomID] {
		if p.UserID == userID {
			return nil, domain.ErrAlreadyJoined
		}
	}
	if int64(len(m.members[roomID])) >= r.MaxParticipants {
		return nil, domain.ErrRoomFull
	}
	p := domain.Participant{RoomID: roomID, UserID: userID, Role: domain.RoleParticipant, JoinedAt: time.Now()}
	m.members[roomID] = append(m.members[roomID], p)
	return &p, nil
}

func (m *memStore) Leave(_ context.Context, roomID, userID string) error {
	list := m.members[roomID]
	for i, p := range list {
		if p.UserID == userID {
			m.members[roomID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotInRoom
}

func (m *memStore) ListByRoom(_ context.Context, roomID string) ([]domain.Participant, error) {
	return m.members[roomID], nil
}
