package domain

import "time"

type RoomType string

const (
	RoomPublic  RoomType = "public"
	RoomPrivate RoomType = "private"
)

func (t RoomType) Valid() bool {
	return t == RoomPublic || t == RoomPrivate
}

// Features are the per-room toggles chosen at creation time.
type Features struct {
	CodeSharing   bool `json:"codeSharing"`
	VideoMeeting  bool `json:"videoMeeting"`
	ScreenSharing bool `json:"screenSharing"`
	MusicPlaylist bool `json:"musicPlaylist"`
}

func DefaultFeatures() Features {
	return Features{CodeSharing: true, VideoMeeting: true, ScreenSharing: true, MusicPlaylist: true}
}

type Track struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Duration int    `json:"duration"`
	URL      string `json:"url"`
}

type Room struct {
	ID              string    `db:"id"`
	Name            string    `db:"name"`
	Description     string    `db:"description"`
	OwnerID         string    `db:"owner_id"`
	Type            RoomType  `db:"room_type"`
	MaxParticipants int64     `db:"max_participants"`
	Features        Features  `db:"features"`
	Playlist        []Track   `db:"playlist"`
	Language        string    `db:"language"`
	IsActive        bool      `db:"is_active"`
	CreatedAt       time.Time `db:"created_at"`
}
