package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type RoomType string

const (
	RoomTypeGroup   RoomType = "GROUP"
	RoomTypePrivate RoomType = "PRIVATE"
)

// ParseRoomType разбирает тип комнаты из query/body.
func ParseRoomType(s string) (RoomType, error) {
	switch RoomType(strings.ToUpper(strings.TrimSpace(s))) {
	case RoomTypeGroup:
		return RoomTypeGroup, nil
	case RoomTypePrivate:
		return RoomTypePrivate, nil
	default:
		return "", fmt.Errorf("%w: unknown room type %q", ErrValidation, s)
	}
}

type RoomSort string

const (
	SortDefault        RoomSort = "DEFAULT"
	SortRecentlyActive RoomSort = "RECENTLY_ACTIVE"
	SortPinnedTop      RoomSort = "PINNED_TOP"
)

// ParseRoomSort: неизвестное значение трактуем как DEFAULT, а не как ошибку.
func ParseRoomSort(s string) RoomSort {
	switch RoomSort(strings.ToUpper(strings.TrimSpace(s))) {
	case SortRecentlyActive:
		return SortRecentlyActive
	case SortPinnedTop:
		return SortPinnedTop
	default:
		return SortDefault
	}
}

// Room — неизменяемое значение; любая мутация строит новую копию
// и заменяет запись в хранилище целиком (copy-on-write).
type Room struct {
	ID            uuid.UUID  `db:"id"`
	Name          string     `db:"name"`
	Type          RoomType   `db:"room_type"`
	Deleted       bool       `db:"deleted"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     *time.Time `db:"updated_at"`      // nil до первой мутации
	LastMessageAt *time.Time `db:"last_message_at"` // nil до первого сообщения
}

const (
	roomNameMinLen = 1
	roomNameMaxLen = 100
)

// ValidateRoomName проверяет длину имени после trim.
func ValidateRoomName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if n := len([]rune(trimmed)); n < roomNameMinLen || n > roomNameMaxLen {
		return "", fmt.Errorf("%w: room name must be 1..100 characters", ErrValidation)
	}
	return trimmed, nil
}
