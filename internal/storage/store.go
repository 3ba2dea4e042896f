package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/text-mate/chatroom-service/internal/domain"
)

// RoomStore — единственный владелец записей комнат и пин-леджера.
// Все операции безопасны для конкурентного вызова; Upsert заменяет
// запись по ключу атомарно (last-writer-wins, без слияния полей).
type RoomStore interface {
	Upsert(ctx context.Context, room domain.Room) error
	FindByID(ctx context.Context, id uuid.UUID) (domain.Room, error)
	// FindAll возвращает независимые копии записей; снапшот не обязан
	// быть согласованным по всем ключам сразу, но каждая запись —
	// ранее зафиксированное значение целиком.
	FindAll(ctx context.Context) ([]domain.Room, error)

	IsPinned(ctx context.Context, userID int64, roomID uuid.UUID) (bool, error)
	SetPinned(ctx context.Context, userID int64, roomID uuid.UUID, pinned bool) error

	// DeleteRoom — жёсткое удаление для административной чистки:
	// убирает комнату и вычищает её из пин-сетов всех пользователей.
	DeleteRoom(ctx context.Context, id uuid.UUID) error

	Ping(ctx context.Context) error
	Close()
}
