package coordinator

import "encoding/json"

func (s SharedState) clone() SharedState {
	out := SharedState{}
	if s.Code != nil {
		cs := *s.Code
		out.Code = &cs
	}
	if s.Music != nil {
		ms := *s.Music
		out.Music = &ms
	}
	if s.Playlist != nil {
		out.Playlist = append(json.RawMessage(nil), s.Playlist...)
	}
	return out
}
