package coordinator

import (
	"encoding/json"
	"time"
)

// Outbound event names.
const (
	TypeRoomUsers        = "room-users"
	TypeUserJoined       = "user-joined"
	TypeUserLeft         = "user-left"
	TypeCodeUpdate       = "code-update"
	TypeChatMessage      = "chat-message"
	TypeMusicUpdate      = "music-update"
	TypePlaylistChanged  = "playlist-changed"
	TypeUserMediaChanged = "user-media-changed"
	TypeCursorUpdate     = "cursor-update"
	TypeTerminalOutput   = "terminal-output"
	TypeError            = "error"
)

// TimestampLayout is the wire format of coordinator-assigned timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Message is one event delivered to a connection.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type ParticipantItem struct {
	ConnectionID string `json:"connectionId"`
	UserID       string `json:"userId"`
	Username     string `json:"username"`
	Avatar       string `json:"avatar,omitempty"`
	JoinedAt     string `json:"joinedAt"`
	IsHost       bool   `json:"isHost"`
}

type CodeState struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

type MusicState struct {
	Action string `json:"action"`
	Track  int    `json:"track"`
}

// SharedState is the last-known room state handed to a joiner.
type SharedState struct {
	Code     *CodeState      `json:"code,omitempty"`
	Music    *MusicState     `json:"music,omitempty"`
	Playlist json.RawMessage `json:"playlist,omitempty"`
}

type RoomUsersPayload struct {
	RoomID           string            `json:"roomId"`
	HostConnectionID string            `json:"hostConnectionId"`
	Participants     []ParticipantItem `json:"participants"`
	State            SharedState       `json:"state"`
}

type UserJoinedPayload struct {
	UserID           string            `json:"userId"`
	Username         string            `json:"username"`
	Avatar           string            `json:"avatar,omitempty"`
	ConnectionID     string            `json:"connectionId"`
	HostConnectionID string            `json:"hostConnectionId"`
	Participants     []ParticipantItem `json:"participants"`
}

type UserLeftPayload struct {
	UserID           string            `json:"userId"`
	Username         string            `json:"username"`
	ConnectionID     string            `json:"connectionId"`
	HostConnectionID string            `json:"hostConnectionId"`
	Participants     []ParticipantItem `json:"participants"`
}

type CodeUpdatePayload struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

type ChatMessagePayload struct {
	Message   string `json:"message"`
	Username  string `json:"username"`
	Avatar    string `json:"avatar,omitempty"`
	Timestamp string `json:"timestamp"`
}

type MusicUpdatePayload struct {
	Action string `json:"action"`
	Track  int    `json:"track"`
}

type PlaylistChangedPayload struct {
	Playlist json.RawMessage `json:"playlist"`
}

type UserMediaChangedPayload struct {
	UserID  string `json:"userId"`
	Type    string `json:"type"`
	Enabled bool   `json:"enabled"`
}

type CursorUpdatePayload struct {
	ConnectionID string          `json:"connectionId"`
	Position     json.RawMessage `json:"position"`
	Username     string          `json:"username"`
}

type TerminalOutputPayload struct {
	Command   string `json:"command"`
	Timestamp string `json:"timestamp"`
}

// SignalPayload is what the target of a negotiation message receives.
type SignalPayload struct {
	Payload          json.RawMessage `json:"payload"`
	FromConnectionID string          `json:"fromConnectionId"`
}

type ErrorPayload struct {
	Event   string `json:"event,omitempty"`
	Message string `json:"message"`
}
