package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cwrk-planet/liveroom/internal/domain"

	"github.com/google/uuid"
)

type RoomStore interface {
	Create(ctx context.Context, room *domain.Room) error
	Get(ctx context.Context, id string) (*domain.Room, error)
	ListActive(ctx context.Context, limit int, cursor string) ([]domain.Room, string, error)
	UpdatePlaylist(ctx context.Context, id string, playlist []domain.Track) error
}

type CreateRoomInput struct {
	Name            string
	Description     string
	Type            domain.RoomType
	MaxParticipants int64
	Features        *domain.Features
}

type RoomService struct {
	roomRepo RoomStore

	defaultMax int64
	maxMax     int64
}

func NewRoomService(roomRepo RoomStore, defaultMax, maxMax int64) *RoomService {
	if defaultMax <= 0 {
		defaultMax = 50
	}
	if maxMax < defaultMax {
		maxMax = defaultMax
	}
	return &RoomService{roomRepo: roomRepo, defaultMax: defaultMax, maxMax: maxMax}
}

// CreateRoom stores a new room owned by ownerID.
func (s *RoomService) CreateRoom(ctx context.Context, ownerID string, in CreateRoomInput) (*domain.Room, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidRoom)
	}
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", domain.ErrInvalidRoom)
	}
	roomType := in.Type
	if roomType == "" {
		roomType = domain.RoomPublic
	}
	if !roomType.Valid() {
		return nil, fmt.Errorf("%w: unknown room type %q", domain.ErrInvalidRoom, roomType)
	}
	max := in.MaxParticipants
	if max <= 0 {
		max = s.defaultMax
	}
	if max > s.maxMax {
		max = s.maxMax
	}
	features := domain.DefaultFeatures()
	if in.Features != nil {
		features = *in.Features
	}

	room := &domain.Room{
		ID:              uuid.NewString(),
		Name:            name,
		Description:     strings.TrimSpace(in.Description),
		OwnerID:         ownerID,
		Type:            roomType,
		MaxParticipants: max,
		Features:        features,
		Playlist:        []domain.Track{},
		Language:        "javascript",
	}

	if err := s.roomRepo.Create(ctx, room); err != nil {
		return nil, fmt.Errorf("roomRepo.Create: %w", err)
	}
	return room, nil
}

// GetRoom returns a room by id.
func (s *RoomService) GetRoom(ctx context.Context, id string) (*domain.Room, error) {
	room, err := s.roomRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}
	return room, nil
}

// ListRooms returns active rooms with cursor pagination.
func (s *RoomService) ListRooms(ctx context.Context, limit int, cursor string) ([]domain.Room, string, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	return s.roomRepo.ListActive(ctx, limit, cursor)
}

func (s *RoomService) UpdatePlaylist(ctx context.Context, id string, playlist []domain.Track) ([]domain.Track, error) {
	if playlist == nil {
		playlist = []domain.Track{}
	}
	for i, t := range playlist {
		if strings.TrimSpace(t.Title) == "" {
			return nil, fmt.Errorf("%w: track %d has no title", domain.ErrInvalidRoom, i)
		}
	}
	if err := s.roomRepo.UpdatePlaylist(ctx, id, playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}
