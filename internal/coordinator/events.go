package coordinator

import "encoding/json"

// Inbound event names.
const (
	EventJoinRoom           = "join-room"
	EventLeaveRoom          = "leave-room"
	EventCodeChange         = "code-change"
	EventChatMessage        = "chat-message"
	EventMusicControl       = "music-control"
	EventPlaylistUpdate     = "playlist-update"
	EventToggleMedia        = "toggle-media"
	EventCursorMove         = "cursor-move"
	EventTerminalCommand    = "terminal-command"
	EventWebRTCOffer        = "webrtc-offer"
	EventWebRTCAnswer       = "webrtc-answer"
	EventWebRTCIceCandidate = "webrtc-ice-candidate"
)

// Event is an inbound event from a connection. Dispatch switches on the concrete type.
type Event interface {
	EventName() string
}

type JoinRoom struct {
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

type LeaveRoom struct {
	RoomID string `json:"roomId"`
}

type CodeChange struct {
	RoomID   string `json:"roomId"`
	Code     string `json:"code"`
	Language string `json:"language"`
}

type ChatMessage struct {
	RoomID   string `json:"roomId"`
	Message  string `json:"message"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

type MusicControl struct {
	RoomID string `json:"roomId"`
	Action string `json:"action"`
	Track  int    `json:"track"`
}

type PlaylistUpdate struct {
	RoomID   string          `json:"roomId"`
	Playlist json.RawMessage `json:"playlist"`
}

type ToggleMedia struct {
	RoomID  string `json:"roomId"`
	UserID  string `json:"userId"`
	Type    string `json:"type"`
	Enabled bool   `json:"enabled"`
}

type CursorMove struct {
	RoomID   string          `json:"roomId"`
	Position json.RawMessage `json:"position"`
	Username string          `json:"username"`
}

type TerminalCommand struct {
	RoomID  string `json:"roomId"`
	Command string `json:"command"`
}

// Signal is one of the three negotiation messages; Kind holds the event name.
type Signal struct {
	Kind               string          `json:"-"`
	TargetConnectionID string          `json:"targetConnectionId"`
	Payload            json.RawMessage `json:"payload"`
}

func (JoinRoom) EventName() string        { return EventJoinRoom }
func (LeaveRoom) EventName() string       { return EventLeaveRoom }
func (CodeChange) EventName() string      { return EventCodeChange }
func (ChatMessage) EventName() string     { return EventChatMessage }
func (MusicControl) EventName() string    { return EventMusicControl }
func (PlaylistUpdate) EventName() string  { return EventPlaylistUpdate }
func (ToggleMedia) EventName() string     { return EventToggleMedia }
func (CursorMove) EventName() string      { return EventCursorMove }
func (TerminalCommand) EventName() string { return EventTerminalCommand }
func (s Signal) EventName() string        { return s.Kind }

// IsSignalKind reports whether name is one of the relayed negotiation messages.
func IsSignalKind(name string) bool {
	switch name {
	case EventWebRTCOffer, EventWebRTCAnswer, EventWebRTCIceCandidate:
		return true
	}
	return false
}
