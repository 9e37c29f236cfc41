package http

import (
	"time"

	"github.com/cwrk-planet/liveroom/internal/domain"
)

type CreateRoomRequest struct {
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	RoomType        domain.RoomType  `json:"roomType"`
	MaxParticipants int64            `json:"maxParticipants"`
	EnabledFeatures *domain.Features `json:"enabledFeatures"`
}

type UpdatePlaylistRequest struct {
	Playlist []domain.Track `json:"playlist"`
}

type RoomItem struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	OwnerID         string          `json:"ownerId"`
	RoomType        domain.RoomType `json:"roomType"`
	MaxParticipants int64           `json:"maxParticipants"`
	Features        domain.Features `json:"enabledFeatures"`
	Playlist        []domain.Track  `json:"playlist"`
	Language        string          `json:"language"`
	IsActive        bool            `json:"isActive"`
	CreatedAt       time.Time       `json:"createdAt"`
}

type RoomsListResponse struct {
	Items      []RoomItem `json:"items"`
	NextCursor string     `json:"nextCursor,omitempty"`
}

type JoinRoomResponse struct {
	RoomID string      `json:"roomId"`
	UserID string      `json:"userId"`
	Role   domain.Role `json:"role,omitempty"`
}

type ParticipantItem struct {
	UserID   string      `json:"userId"`
	Role     domain.Role `json:"role"`
	JoinedAt time.Time   `json:"joinedAt"`
}

type ParticipantsResponse struct {
	Items []ParticipantItem `json:"items"`
}

type PlaylistResponse struct {
	RoomID   string         `json:"roomId"`
	Playlist []domain.Track `json:"playlist"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func toRoomItem(r *domain.Room) RoomItem {
	playlist := r.Playlist
	if playlist == nil {
		playlist = []domain.Track{}
	}
	return RoomItem{
		ID:              r.ID,
		Name:            r.Name,
		Description:     r.Description,
		OwnerID:         r.OwnerID,
		RoomType:        r.Type,
		MaxParticipants: r.MaxParticipants,
		Features:        r.Features,
		Playlist:        playlist,
		Language:        r.Language,
		IsActive:        r.IsActive,
		CreatedAt:       r.CreatedAt,
	}
}
