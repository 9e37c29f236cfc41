package postgres

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cwrk-planet/liveroom/internal/domain"
)

var ErrInvalidCursor = errors.New("invalid cursor")

// Cursor is the keyset position of the last room on a page.
type Cursor struct {
	CreatedAt time.Time `json:"t"`
	ID        string    `json:"id"`
}

func EncodeCursor(c Cursor) (string, error) {
	// timestamptz keeps microseconds
	c.CreatedAt = c.CreatedAt.UTC().Truncate(time.Microsecond)
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// DecodeCursor returns nil for the first page.
func DecodeCursor(s string) (*Cursor, error) {
	if s == "" {
		return nil, nil
	}
	data, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: decode base64: %v", ErrInvalidCursor, err)
	}
	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: decode json: %v", ErrInvalidCursor, err)
	}
	if c.ID == "" || c.CreatedAt.IsZero() {
		return nil, fmt.Errorf("%w: incomplete position", ErrInvalidCursor)
	}
	return &c, nil
}

// nextRoomsCursor points past the last room of a full page, "" otherwise.
func nextRoomsCursor(rooms []domain.Room, limit int) string {
	if limit <= 0 || len(rooms) < limit {
		return ""
	}
	last := rooms[len(rooms)-1]
	next, err := EncodeCursor(Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	if err != nil {
		return ""
	}
	return next
}
