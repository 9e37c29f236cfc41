package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cwrk-planet/liveroom/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const roomColumns = `id, name, description, owner_id, room_type, max_participants, features, playlist, language, is_active, created_at`

type RoomRepository struct {
	db *pgxpool.Pool
}

func NewRoomRepository(db *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{db: db}
}

// Create stores the room and its owner as the host participant.
func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	features, err := json.Marshal(room.Features)
	if err != nil {
		return fmt.Errorf("marshal features: %w", err)
	}
	playlist, err := json.Marshal(nonNilTracks(room.Playlist))
	if err != nil {
		return fmt.Errorf("marshal playlist: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO rooms (id, name, description, owner_id, room_type, max_participants, features, playlist, language)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING is_active, created_at`,
		room.ID, room.Name, room.Description, room.OwnerID, string(room.Type),
		room.MaxParticipants, features, playlist, room.Language,
	).Scan(&room.IsActive, &room.CreatedAt)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO room_participants (room_id, user_id, role)
		VALUES ($1, $2, $3)`,
		room.ID, room.OwnerID, string(domain.RoleHost)); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *RoomRepository) Get(ctx context.Context, id string) (*domain.Room, error) {
	row := r.db.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id=$1`, id)
	rm, err := scanRoom(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}
	return rm, nil
}

// ListActive returns active rooms, newest first, with cursor pagination.
func (r *RoomRepository) ListActive(ctx context.Context, limit int, cursorStr string) ([]domain.Room, string, error) {
	cur, err := DecodeCursor(cursorStr)
	if err != nil {
		return nil, "", err
	}

	query := `
		SELECT ` + roomColumns + `
		FROM rooms
		WHERE is_active
		  AND ($1::timestamptz IS NULL OR created_at < $1
		       OR (created_at = $1 AND id < $2))
		ORDER BY created_at DESC, id DESC
		LIMIT $3`

	var createdAt any
	var id any
	if cur != nil {
		createdAt = cur.CreatedAt
		id = cur.ID
	}

	rows, err := r.db.Query(ctx, query, createdAt, id, limit)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var rooms []domain.Room
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, "", err
		}
		rooms = append(rooms, *rm)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	return rooms, nextRoomsCursor(rooms, limit), nil
}

func (r *RoomRepository) UpdatePlaylist(ctx context.Context, id string, playlist []domain.Track) error {
	data, err := json.Marshal(nonNilTracks(playlist))
	if err != nil {
		return fmt.Errorf("marshal playlist: %w", err)
	}
	cmd, err := r.db.Exec(ctx, `UPDATE rooms SET playlist=$2 WHERE id=$1`, id, data)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}

func scanRoom(row pgx.Row) (*domain.Room, error) {
	var (
		rm       domain.Room
		roomType string
		features []byte
		playlist []byte
	)
	if err := row.Scan(&rm.ID, &rm.Name, &rm.Description, &rm.OwnerID, &roomType,
		&rm.MaxParticipants, &features, &playlist, &rm.Language, &rm.IsActive, &rm.CreatedAt); err != nil {
		return nil, err
	}
	rm.Type = domain.RoomType(roomType)
	if err := json.Unmarshal(features, &rm.Features); err != nil {
		return nil, fmt.Errorf("decode features: %w", err)
	}
	if err := json.Unmarshal(playlist, &rm.Playlist); err != nil {
		return nil, fmt.Errorf("decode playlist: %w", err)
	}
	return &rm, nil
}

func nonNilTracks(t []domain.Track) []domain.Track {
	if t == nil {
		return []domain.Track{}
	}
	return t
}
