package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/text-mate/chatroom-service/internal/domain"
	"github.com/text-mate/chatroom-service/internal/storage"
)

// Store — долговременная реализация storage.RoomStore поверх pgx.
// Подменяет инмемори-хранилище без изменений в сервисах.
type Store struct {
	pool *pgxpool.Pool
}

var _ storage.RoomStore = (*Store)(nil)

func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pool.Ping: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	ddl := `
	CREATE TABLE IF NOT EXISTS chat_rooms (
		id              UUID PRIMARY KEY,
		name            TEXT NOT NULL,
		room_type       TEXT NOT NULL,
		deleted         BOOLEAN NOT NULL DEFAULT FALSE,
		created_at      TIMESTAMPTZ NOT NULL,
		updated_at      TIMESTAMPTZ,
		last_message_at TIMESTAMPTZ
	);
	CREATE TABLE IF NOT EXISTS chat_room_pins (
		user_id BIGINT NOT NULL,
		room_id UUID NOT NULL,
		PRIMARY KEY (user_id, room_id)
	);`
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, room domain.Room) error {
	query := `
		INSERT INTO chat_rooms (id, name, room_type, deleted, created_at, updated_at, last_message_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name            = EXCLUDED.name,
			room_type       = EXCLUDED.room_type,
			deleted         = EXCLUDED.deleted,
			created_at      = EXCLUDED.created_at,
			updated_at      = EXCLUDED.updated_at,
			last_message_at = EXCLUDED.last_message_at`
	_, err := s.pool.Exec(ctx, query,
		room.ID, room.Name, string(room.Type), room.Deleted,
		room.CreatedAt, room.UpdatedAt, room.LastMessageAt)
	if err != nil {
		return fmt.Errorf("upsert room: %w", err)
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (domain.Room, error) {
	var (
		room domain.Room
		typ  string
	)
	query := `
		SELECT id, name, room_type, deleted, created_at, updated_at, last_message_at
		FROM chat_rooms WHERE id = $1`
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&room.ID, &room.Name, &typ, &room.Deleted,
		&room.CreatedAt, &room.UpdatedAt, &room.LastMessageAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Room{}, domain.ErrRoomNotFound
		}
		return domain.Room{}, fmt.Errorf("find room: %w", err)
	}
	room.Type = domain.RoomType(typ)
	return room, nil
}

func (s *Store) FindAll(ctx context.Context) ([]domain.Room, error) {
	query := `
		SELECT id, name, room_type, deleted, created_at, updated_at, last_message_at
		FROM chat_rooms`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	var out []domain.Room
	for rows.Next() {
		var (
			room domain.Room
			typ  string
		)
		if err := rows.Scan(&room.ID, &room.Name, &typ, &room.Deleted,
			&room.CreatedAt, &room.UpdatedAt, &room.LastMessageAt); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		room.Type = domain.RoomType(typ)
		out = append(out, room)
	}
	return out, rows.Err()
}

func (s *Store) IsPinned(ctx context.Context, userID int64, roomID uuid.UUID) (bool, error) {
	var pinned bool
	query := `SELECT EXISTS (SELECT 1 FROM chat_room_pins WHERE user_id = $1 AND room_id = $2)`
	if err := s.pool.QueryRow(ctx, query, userID, roomID).Scan(&pinned); err != nil {
		return false, fmt.Errorf("is pinned: %w", err)
	}
	return pinned, nil
}

func (s *Store) SetPinned(ctx context.Context, userID int64, roomID uuid.UUID, pinned bool) error {
	var err error
	if pinned {
		_, err = s.pool.Exec(ctx, `
			INSERT INTO chat_room_pins (user_id, room_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, userID, roomID)
	} else {
		_, err = s.pool.Exec(ctx, `
			DELETE FROM chat_room_pins WHERE user_id = $1 AND room_id = $2`, userID, roomID)
	}
	if err != nil {
		return fmt.Errorf("set pinned: %w", err)
	}
	return nil
}

func (s *Store) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM chat_room_pins WHERE room_id = $1`, id); err != nil {
		return fmt.Errorf("delete pins: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM chat_rooms WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() {
	s.pool.Close()
}
