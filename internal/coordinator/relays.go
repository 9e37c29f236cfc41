package coordinator

import "fmt"

// room resolves roomID for an ancillary event.
func (c *Coordinator) room(roomID string) (*roomState, error) {
	if roomID == "" {
		return nil, fmt.Errorf("%w: roomId is required", ErrValidation)
	}
	rs, ok := c.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("room %s: %w", roomID, ErrNotFound)
	}
	return rs, nil
}

func (c *Coordinator) handleCodeChange(from string, e CodeChange) error {
	rs, err := c.room(e.RoomID)
	if err != nil {
		return err
	}
	rs.state.Code = &CodeState{Code: e.Code, Language: e.Language}
	c.router.BroadcastExcluding(e.RoomID, from, Message{
		Type:    TypeCodeUpdate,
		Payload: CodeUpdatePayload{Code: e.Code, Language: e.Language},
	})
	return nil
}

func (c *Coordinator) handleChat(from string, e ChatMessage) error {
	if _, err := c.room(e.RoomID); err != nil {
		return err
	}
	if e.Message == "" {
		return fmt.Errorf("%w: message is required", ErrValidation)
	}
	username, avatar := e.Username, e.Avatar
	if p, ok := c.registry.Get(e.RoomID, from); ok {
		if username == "" {
			username = p.Username
		}
		if avatar == "" {
			avatar = p.Avatar
		}
	}
	c.router.BroadcastAll(e.RoomID, Message{
		Type: TypeChatMessage,
		Payload: ChatMessagePayload{
			Message:   e.Message,
			Username:  username,
			Avatar:    avatar,
			Timestamp: formatTimestamp(c.now()),
		},
	})
	return nil
}

func (c *Coordinator) handleMusic(from string, e MusicControl) error {
	rs, err := c.room(e.RoomID)
	if err != nil {
		return err
	}
	if e.Action == "" {
		return fmt.Errorf("%w: action is required", ErrValidation)
	}
	rs.state.Music = &MusicState{Action: e.Action, Track: e.Track}
	c.router.BroadcastExcluding(e.RoomID, from, Message{
		Type:    TypeMusicUpdate,
		Payload: MusicUpdatePayload{Action: e.Action, Track: e.Track},
	})
	return nil
}

func (c *Coordinator) handlePlaylist(_ string, e PlaylistUpdate) error {
	rs, err := c.room(e.RoomID)
	if err != nil {
		return err
	}
	if len(e.Playlist) == 0 {
		return fmt.Errorf("%w: playlist is required", ErrValidation)
	}
	rs.state.Playlist = append(rs.state.Playlist[:0:0], e.Playlist...)
	c.router.BroadcastAll(e.RoomID, Message{
		Type:    TypePlaylistChanged,
		Payload: PlaylistChangedPayload{Playlist: e.Playlist},
	})
	return nil
}

func (c *Coordinator) handleToggleMedia(from string, e ToggleMedia) error {
	if _, err := c.room(e.RoomID); err != nil {
		return err
	}
	if e.Type == "" {
		return fmt.Errorf("%w: type is required", ErrValidation)
	}
	userID := e.UserID
	if userID == "" {
		if p, ok := c.registry.Get(e.RoomID, from); ok {
			userID = p.UserID
		}
	}
	c.router.BroadcastExcluding(e.RoomID, from, Message{
		Type:    TypeUserMediaChanged,
		Payload: UserMediaChangedPayload{UserID: userID, Type: e.Type, Enabled: e.Enabled},
	})
	return nil
}

func (c *Coordinator) handleCursor(from string, e CursorMove) error {
	if _, err := c.room(e.RoomID); err != nil {
		return err
	}
	c.router.BroadcastExcluding(e.RoomID, from, Message{
		Type:    TypeCursorUpdate,
		Payload: CursorUpdatePayload{ConnectionID: from, Position: e.Position, Username: e.Username},
	})
	return nil
}

func (c *Coordinator) handleTerminal(from string, e TerminalCommand) error {
	if _, err := c.room(e.RoomID); err != nil {
		return err
	}
	if e.Command == "" {
		return fmt.Errorf("%w: command is required", ErrValidation)
	}
	c.router.BroadcastExcluding(e.RoomID, from, Message{
		Type:    TypeTerminalOutput,
		Payload: TerminalOutputPayload{Command: e.Command, Timestamp: formatTimestamp(c.now())},
	})
	return nil
}

func (c *Coordinator) handleSignal(from string, e Signal) error {
	if !IsSignalKind(e.Kind) {
		return fmt.Errorf("%w: unknown signal kind %q", ErrValidation, e.Kind)
	}
	if e.TargetConnectionID == "" {
		return fmt.Errorf("%w: targetConnectionId is required", ErrValidation)
	}
	c.relay.Relay(e.TargetConnectionID, e.Kind, e.Payload, from)
	return nil
}
