package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/text-mate/chatroom-service/internal/domain"
	"github.com/text-mate/chatroom-service/internal/storage"
)

// Store — инмемори-реализация storage.RoomStore.
// rooms хранит значения, а не указатели: каждое чтение отдаёт
// независимую копию, мутировать состояние извне нельзя.
type Store struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]domain.Room
	pins  map[int64]map[uuid.UUID]struct{} // userID -> set(roomID)
}

var _ storage.RoomStore = (*Store)(nil)

func New() *Store {
	return &Store{
		rooms: make(map[uuid.UUID]domain.Room),
		pins:  make(map[int64]map[uuid.UUID]struct{}),
	}
}

// cloneRoom копирует запись вместе с целями указателей на время,
// чтобы снапшот не делил память с хранимым значением.
func cloneRoom(r domain.Room) domain.Room {
	if r.UpdatedAt != nil {
		t := *r.UpdatedAt
		r.UpdatedAt = &t
	}
	if r.LastMessageAt != nil {
		t := *r.LastMessageAt
		r.LastMessageAt = &t
	}
	return r
}

func (s *Store) Upsert(_ context.Context, room domain.Room) error {
	room = cloneRoom(room)
	s.mu.Lock()
	s.rooms[room.ID] = room
	s.mu.Unlock()
	return nil
}

func (s *Store) FindByID(_ context.Context, id uuid.UUID) (domain.Room, error) {
	s.mu.RLock()
	room, ok := s.rooms[id]
	s.mu.RUnlock()
	if !ok {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	return cloneRoom(room), nil
}

func (s *Store) FindAll(_ context.Context) ([]domain.Room, error) {
	s.mu.RLock()
	out := make([]domain.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		out = append(out, cloneRoom(room))
	}
	s.mu.RUnlock()
	return out, nil
}

func (s *Store) IsPinned(_ context.Context, userID int64, roomID uuid.UUID) (bool, error) {
	s.mu.RLock()
	_, ok := s.pins[userID][roomID]
	s.mu.RUnlock()
	return ok, nil
}

func (s *Store) SetPinned(_ context.Context, userID int64, roomID uuid.UUID, pinned bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.pins[userID]
	if !ok {
		if !pinned {
			return nil // снимать нечего
		}
		set = make(map[uuid.UUID]struct{})
		s.pins[userID] = set
	}
	if pinned {
		set[roomID] = struct{}{}
	} else {
		delete(set, roomID)
		if len(set) == 0 {
			delete(s.pins, userID)
		}
	}
	return nil
}

func (s *Store) DeleteRoom(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.rooms, id)
	for userID, set := range s.pins {
		delete(set, id)
		if len(set) == 0 {
			delete(s.pins, userID)
		}
	}
	return nil
}

func (s *Store) Ping(_ context.Context) error { return nil }

func (s *Store) Close() {}

// Len — количество комнат, включая мягко удалённые.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}
