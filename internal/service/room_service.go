package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/text-mate/chatroom-service/internal/domain"
	"github.com/text-mate/chatroom-service/internal/metrics"
	"github.com/text-mate/chatroom-service/internal/storage"
)

// RoomView — комната вместе с пин-статусом запрашивающего пользователя.
type RoomView struct {
	Room   domain.Room
	Pinned bool
}

// RoomService реализует работу с одной комнатой: чтение, частичное
// обновление и мягкое удаление. Комната — неизменяемое значение,
// поэтому каждая мутация собирает новую запись и заменяет старую
// через Upsert (read-modify-replace). Конкурентные патчи одной
// комнаты не сливаются по полям — побеждает последняя запись.
type RoomService struct {
	store storage.RoomStore
}

func NewRoomService(store storage.RoomStore) *RoomService {
	return &RoomService{store: store}
}

// parseRoomID: пустой id — ошибка валидации, непарсящийся — InvalidRoomID.
func parseRoomID(roomID string) (uuid.UUID, error) {
	if strings.TrimSpace(roomID) == "" {
		return uuid.Nil, fmt.Errorf("%w: roomId is required", domain.ErrValidation)
	}
	id, err := uuid.Parse(roomID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", domain.ErrInvalidRoomID, roomID)
	}
	return id, nil
}

func (s *RoomService) pinned(ctx context.Context, userID *int64, roomID uuid.UUID) (bool, error) {
	if userID == nil {
		return false, nil
	}
	return s.store.IsPinned(ctx, *userID, roomID)
}

// GetOne возвращает комнату по id. Мягко удалённые комнаты доступны:
// deleted влияет только на листинг, не на прямое обращение.
func (s *RoomService) GetOne(ctx context.Context, userID *int64, roomID string) (RoomView, error) {
	id, err := parseRoomID(roomID)
	if err != nil {
		return RoomView{}, err
	}
	room, err := s.store.FindByID(ctx, id)
	if err != nil {
		return RoomView{}, err
	}
	pinned, err := s.pinned(ctx, userID, id)
	if err != nil {
		return RoomView{}, fmt.Errorf("store.IsPinned: %w", err)
	}
	return RoomView{Room: room, Pinned: pinned}, nil
}

// Patch обновляет имя и/или тип. Опущенные поля сохраняют прежние
// значения; пустое/пробельное имя трактуется как опущенное, а не как
// ошибка. UpdatedAt выставляется всегда, даже если ничего не поменялось.
func (s *RoomService) Patch(ctx context.Context, userID *int64, roomID string, name *string, typ *domain.RoomType) (RoomView, error) {
	id, err := parseRoomID(roomID)
	if err != nil {
		return RoomView{}, err
	}
	cur, err := s.store.FindByID(ctx, id)
	if err != nil {
		return RoomView{}, err
	}

	nextName := cur.Name
	if name != nil && strings.TrimSpace(*name) != "" {
		nextName, err = domain.ValidateRoomName(*name)
		if err != nil {
			return RoomView{}, err
		}
	}
	nextType := cur.Type
	if typ != nil {
		nextType = *typ
	}

	now := time.Now()
	updated := domain.Room{
		ID:            cur.ID,
		Name:          nextName,
		Type:          nextType,
		Deleted:       cur.Deleted,
		CreatedAt:     cur.CreatedAt,
		UpdatedAt:     &now,
		LastMessageAt: cur.LastMessageAt,
	}
	if err := s.store.Upsert(ctx, updated); err != nil {
		return RoomView{}, fmt.Errorf("store.Upsert: %w", err)
	}

	pinned, err := s.pinned(ctx, userID, id)
	if err != nil {
		return RoomView{}, fmt.Errorf("store.IsPinned: %w", err)
	}
	return RoomView{Room: updated, Pinned: pinned}, nil
}

// SoftDelete помечает комнату удалённой (deleted=true). Пины при этом
// не трогаем: запись остаётся «запиненной» до явного снятия — возможен
// undelete. Повторный вызов — no-op по флагу, но UpdatedAt двигается.
func (s *RoomService) SoftDelete(ctx context.Context, roomID string) error {
	id, err := parseRoomID(roomID)
	if err != nil {
		return err
	}
	cur, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}

	now := time.Now()
	deleted := domain.Room{
		ID:            cur.ID,
		Name:          cur.Name,
		Type:          cur.Type,
		Deleted:       true,
		CreatedAt:     cur.CreatedAt,
		UpdatedAt:     &now,
		LastMessageAt: cur.LastMessageAt,
	}
	if err := s.store.Upsert(ctx, deleted); err != nil {
		return fmt.Errorf("store.Upsert: %w", err)
	}
	metrics.RoomsSoftDeleted.Inc()
	return nil
}

// SetPinned закрепляет/открепляет комнату для пользователя. Идемпотентно.
func (s *RoomService) SetPinned(ctx context.Context, userID int64, roomID string, pinned bool) error {
	id, err := parseRoomID(roomID)
	if err != nil {
		return err
	}
	if _, err := s.store.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.store.SetPinned(ctx, userID, id, pinned); err != nil {
		return fmt.Errorf("store.SetPinned: %w", err)
	}
	return nil
}

// Create — точка входа коллаборатора создания комнаты: id и CreatedAt
// назначаются здесь, остальное приходит от события.
func (s *RoomService) Create(ctx context.Context, name string, typ domain.RoomType) (domain.Room, error) {
	trimmed, err := domain.ValidateRoomName(name)
	if err != nil {
		return domain.Room{}, err
	}
	room := domain.Room{
		ID:        uuid.New(),
		Name:      trimmed,
		Type:      typ,
		CreatedAt: time.Now(),
	}
	if err := s.store.Upsert(ctx, room); err != nil {
		return domain.Room{}, fmt.Errorf("store.Upsert: %w", err)
	}
	metrics.RoomsCreated.WithLabelValues(string(typ)).Inc()
	return room, nil
}

// TouchLastMessage — событие «сообщение добавлено» / «анализ сохранён»:
// обновляет LastMessageAt тем же copy-on-write путём, что и Patch.
func (s *RoomService) TouchLastMessage(ctx context.Context, roomID uuid.UUID, at time.Time) error {
	cur, err := s.store.FindByID(ctx, roomID)
	if err != nil {
		return err
	}
	touched := cur
	touched.LastMessageAt = &at
	if err := s.store.Upsert(ctx, touched); err != nil {
		return fmt.Errorf("store.Upsert: %w", err)
	}
	return nil
}
