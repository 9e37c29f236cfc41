package ws

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cwrk-planet/liveroom/internal/coordinator"
)

var errUnknownEvent = errors.New("unknown event")

// Envelope is the frame format in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// decodeEvent turns an inbound frame into a coordinator event.
func decodeEvent(env Envelope) (coordinator.Event, error) {
	var (
		ev  coordinator.Event
		err error
	)
	switch env.Type {
	case coordinator.EventJoinRoom:
		ev, err = decodeAs[coordinator.JoinRoom](env.Payload)
	case coordinator.EventLeaveRoom:
		ev, err = decodeAs[coordinator.LeaveRoom](env.Payload)
	case coordinator.EventCodeChange:
		ev, err = decodeAs[coordinator.CodeChange](env.Payload)
	case coordinator.EventChatMessage:
		ev, err = decodeAs[coordinator.ChatMessage](env.Payload)
	case coordinator.EventMusicControl:
		ev, err = decodeAs[coordinator.MusicControl](env.Payload)
	case coordinator.EventPlaylistUpdate:
		ev, err = decodeAs[coordinator.PlaylistUpdate](env.Payload)
	case coordinator.EventToggleMedia:
		ev, err = decodeAs[coordinator.ToggleMedia](env.Payload)
	case coordinator.EventCursorMove:
		ev, err = decodeAs[coordinator.CursorMove](env.Payload)
	case coordinator.EventTerminalCommand:
		ev, err = decodeAs[coordinator.TerminalCommand](env.Payload)
	case coordinator.EventWebRTCOffer, coordinator.EventWebRTCAnswer, coordinator.EventWebRTCIceCandidate:
		var s coordinator.Signal
		s, err = decodeAs[coordinator.Signal](env.Payload)
		s.Kind = env.Type
		ev = s
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownEvent, env.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", coordinator.ErrValidation, env.Type, err)
	}
	return ev, nil
}

func decodeAs[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(raw) == 0 || string(raw) == "null" {
		return v, nil
	}
	err := json.Unmarshal(raw, &v)
	return v, err
}
