package postgres

import (
	"context"
	"errors"

	"github.com/cwrk-planet/liveroom/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ParticipantRepository struct {
	db *pgxpool.Pool
}

func NewParticipantRepository(db *pgxpool.Pool) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// Join locks the room row so concurrent joins cannot exceed max_participants.
func (r *ParticipantRepository) Join(ctx context.Context, roomID, userID string) (*domain.Participant, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var (
		maxParticipants int64
		active          bool
	)
	err = tx.QueryRow(ctx, `SELECT max_participants, is_active FROM rooms WHERE id=$1 FOR UPDATE`, roomID).
		Scan(&maxParticipants, &active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}

	var exists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM room_participants WHERE room_id=$1 AND user_id=$2)`,
		roomID, userID).Scan(&exists); err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrAlreadyJoined
	}

	var count int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM room_participants WHERE room_id=$1`, roomID).Scan(&count); err != nil {
		return nil, err
	}
	if count >= maxParticipants {
		return nil, domain.ErrRoomFull
	}

	// an emptied room comes back to life with its first new member as host
	role := domain.RoleParticipant
	if !active || count == 0 {
		role = domain.RoleHost
		if _, err := tx.Exec(ctx, `UPDATE rooms SET is_active=true, owner_id=$2 WHERE id=$1`, roomID, userID); err != nil {
			return nil, err
		}
	}

	p := domain.Participant{RoomID: roomID, UserID: userID, Role: role}
	if err := tx.QueryRow(ctx, `
		INSERT INTO room_participants (room_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING joined_at`, roomID, userID, string(role)).Scan(&p.JoinedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &p, nil
}

// Leave removes the membership. An owner leaving hands ownership to the
// earliest joined remaining participant; the last one out deactivates the room.
func (r *ParticipantRepository) Leave(ctx context.Context, roomID, userID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var owner string
	if err := tx.QueryRow(ctx, `SELECT owner_id FROM rooms WHERE id=$1 FOR UPDATE`, roomID).Scan(&owner); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrRoomNotFound
		}
		return err
	}

	cmd, err := tx.Exec(ctx, `DELETE FROM room_participants WHERE room_id=$1 AND user_id=$2`, roomID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotInRoom
	}

	var next string
	err = tx.QueryRow(ctx, `
		SELECT user_id FROM room_participants
		WHERE room_id=$1
		ORDER BY joined_at ASC, user_id ASC
		LIMIT 1`, roomID).Scan(&next)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		if _, err := tx.Exec(ctx, `UPDATE rooms SET is_active=false WHERE id=$1`, roomID); err != nil {
			return err
		}
	case err != nil:
		return err
	case owner == userID:
		if _, err := tx.Exec(ctx, `UPDATE rooms SET owner_id=$2 WHERE id=$1`, roomID, next); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`UPDATE room_participants SET role=$3 WHERE room_id=$1 AND user_id=$2`,
			roomID, next, string(domain.RoleHost)); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *ParticipantRepository) ListByRoom(ctx context.Context, roomID string) ([]domain.Participant, error) {
	rows, err := r.db.Query(ctx,
		`SELECT room_id, user_id, role, joined_at FROM room_participants WHERE room_id=$1 ORDER BY joined_at ASC`,
		roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []domain.Participant
	for rows.Next() {
		var (
			p    domain.Participant
			role string
		)
		if err := rows.Scan(&p.RoomID, &p.UserID, &role, &p.JoinedAt); err != nil {
			return nil, err
		}
		p.Role = domain.Role(role)
		list = append(list, p)
	}
	return list, rows.Err()
}
