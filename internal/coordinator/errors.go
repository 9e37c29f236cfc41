package coordinator

import "errors"

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrDuplicateJoin     = errors.New("connection already joined the room")
	ErrAlreadyRegistered = errors.New("connection already registered in the room")
)
