package domain

import "time"

type Role string

const (
	RoleHost        Role = "host"
	RoleParticipant Role = "participant"
)

// Participant is a persisted room membership, not a live connection.
type Participant struct {
	RoomID   string    `db:"room_id"`
	UserID   string    `db:"user_id"`
	Role     Role      `db:"role"`
	JoinedAt time.Time `db:"joined_at"`
}
