package domain

import "errors"

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomFull      = errors.New("room is full")
	ErrRoomInactive  = errors.New("room is not active")
	ErrAlreadyJoined = errors.New("user already joined the room")
	ErrNotInRoom     = errors.New("user not in the room")
	ErrInvalidRoom   = errors.New("invalid room")
)
