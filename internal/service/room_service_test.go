package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/text-mate/chatroom-service/internal/domain"
	"github.com/text-mate/chatroom-service/internal/storage/memory"
)

func ptr[T any](v T) *T { return &v }

func seedRoom(t *testing.T, svc *RoomService, name string, typ domain.RoomType) domain.Room {
	t.Helper()
	room, err := svc.Create(context.Background(), name, typ)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	return room
}

func TestGetOne_Errors(t *testing.T) {
	svc := NewRoomService(memory.New())
	ctx := context.Background()

	if _, err := svc.GetOne(ctx, nil, "  "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("blank id: expected ErrValidation, got %v", err)
	}
	if _, err := svc.GetOne(ctx, nil, "not-a-uuid"); !errors.Is(err, domain.ErrInvalidRoomID) {
		t.Fatalf("malformed id: expected ErrInvalidRoomID, got %v", err)
	}
	if _, err := svc.GetOne(ctx, nil, uuid.New().String()); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("absent id: expected ErrRoomNotFound, got %v", err)
	}
}

func TestGetOne_PinnedFlag(t *testing.T) {
	store := memory.New()
	svc := NewRoomService(store)
	ctx := context.Background()

	room := seedRoom(t, svc, "general", domain.RoomTypeGroup)
	_ = store.SetPinned(ctx, 7, room.ID, true)

	view, err := svc.GetOne(ctx, ptr(int64(7)), room.ID.String())
	if err != nil {
		t.Fatalf("getOne: %v", err)
	}
	if !view.Pinned {
		t.Fatal("expected pinned=true for user 7")
	}

	// аноним всегда видит pinned=false
	anon, err := svc.GetOne(ctx, nil, room.ID.String())
	if err != nil {
		t.Fatalf("getOne anon: %v", err)
	}
	if anon.Pinned {
		t.Fatal("expected pinned=false for anonymous")
	}
}

func TestGetOne_SoftDeletedStillRetrievable(t *testing.T) {
	svc := NewRoomService(memory.New())
	ctx := context.Background()

	room := seedRoom(t, svc, "general", domain.RoomTypeGroup)
	if err := svc.SoftDelete(ctx, room.ID.String()); err != nil {
		t.Fatalf("softDelete: %v", err)
	}

	view, err := svc.GetOne(ctx, nil, room.ID.String())
	if err != nil {
		t.Fatalf("soft-deleted room must stay retrievable: %v", err)
	}
	if !view.Room.Deleted {
		t.Fatal("expected deleted=true")
	}
}

func TestPatch_AllOmitted_OnlyUpdatedAtMoves(t *testing.T) {
	svc := NewRoomService(memory.New())
	ctx := context.Background()

	room := seedRoom(t, svc, "Old", domain.RoomTypeGroup)

	view, err := svc.Patch(ctx, nil, room.ID.String(), nil, nil)
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if view.Room.Name != "Old" || view.Room.Type != domain.RoomTypeGroup || view.Room.Deleted {
		t.Fatalf("fields changed unexpectedly: %+v", view.Room)
	}
	if !view.Room.CreatedAt.Equal(room.CreatedAt) {
		t.Fatal("createdAt must never change")
	}
	if view.Room.UpdatedAt == nil {
		t.Fatal("updatedAt must be set even without field changes")
	}
}

func TestPatch_BlankNameTreatedAsOmitted(t *testing.T) {
	svc := NewRoomService(memory.New())
	ctx := context.Background()

	room := seedRoom(t, svc, "Old", domain.RoomTypeGroup)

	view, err := svc.Patch(ctx, ptr(int64(7)), room.ID.String(), ptr("  "), nil)
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if view.Room.Name != "Old" {
		t.Fatalf("blank name must keep prior value, got %q", view.Room.Name)
	}
	if view.Room.UpdatedAt == nil {
		t.Fatal("updatedAt must be set")
	}
}

func TestPatch_NameAndType(t *testing.T) {
	svc := NewRoomService(memory.New())
	ctx := context.Background()

	room := seedRoom(t, svc, "Old", domain.RoomTypeGroup)

	view, err := svc.Patch(ctx, nil, room.ID.String(), ptr("  New Name  "), ptr(domain.RoomTypePrivate))
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if view.Room.Name != "New Name" {
		t.Fatalf("expected trimmed new name, got %q", view.Room.Name)
	}
	if view.Room.Type != domain.RoomTypePrivate {
		t.Fatalf("expected type PRIVATE, got %v", view.Room.Type)
	}
}

func TestPatch_NotFound(t *testing.T) {
	svc := NewRoomService(memory.New())
	if _, err := svc.Patch(context.Background(), nil, uuid.New().String(), ptr("x"), nil); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestSoftDelete_IdempotentEffect(t *testing.T) {
	store := memory.New()
	svc := NewRoomService(store)
	ctx := context.Background()

	room := seedRoom(t, svc, "general", domain.RoomTypeGroup)
	_ = store.SetPinned(ctx, 7, room.ID, true)

	if err := svc.SoftDelete(ctx, room.ID.String()); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	first, _ := store.FindByID(ctx, room.ID)

	if err := svc.SoftDelete(ctx, room.ID.String()); err != nil {
		t.Fatalf("second delete must not fail: %v", err)
	}
	second, _ := store.FindByID(ctx, room.ID)

	if !first.Deleted || !second.Deleted {
		t.Fatal("deleted flag must stay true")
	}
	if !second.UpdatedAt.After(*first.UpdatedAt) && !second.UpdatedAt.Equal(*first.UpdatedAt) {
		t.Fatalf("updatedAt must advance: %v -> %v", first.UpdatedAt, second.UpdatedAt)
	}

	// пины после мягкого удаления сохраняются — осознанная асимметрия
	if pinned, _ := store.IsPinned(ctx, 7, room.ID); !pinned {
		t.Fatal("pin must survive soft delete")
	}
}

func TestSetPinned(t *testing.T) {
	store := memory.New()
	svc := NewRoomService(store)
	ctx := context.Background()

	room := seedRoom(t, svc, "general", domain.RoomTypeGroup)

	if err := svc.SetPinned(ctx, 7, room.ID.String(), true); err != nil {
		t.Fatalf("pin: %v", err)
	}
	if pinned, _ := store.IsPinned(ctx, 7, room.ID); !pinned {
		t.Fatal("expected pinned")
	}

	if err := svc.SetPinned(ctx, 7, uuid.New().String(), true); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("pin of absent room: expected ErrRoomNotFound, got %v", err)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := NewRoomService(memory.New())
	ctx := context.Background()

	if _, err := svc.Create(ctx, "   ", domain.RoomTypeGroup); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("blank name: expected ErrValidation, got %v", err)
	}

	long := make([]rune, 101)
	for i := range long {
		long[i] = 'x'
	}
	if _, err := svc.Create(ctx, string(long), domain.RoomTypeGroup); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("101 chars: expected ErrValidation, got %v", err)
	}

	room, err := svc.Create(ctx, "  ok  ", domain.RoomTypePrivate)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if room.Name != "ok" || room.ID == uuid.Nil || room.CreatedAt.IsZero() {
		t.Fatalf("bad created room: %+v", room)
	}
	if room.UpdatedAt != nil || room.LastMessageAt != nil {
		t.Fatal("fresh room must have nil updatedAt/lastMessageAt")
	}
}

func TestTouchLastMessage(t *testing.T) {
	store := memory.New()
	svc := NewRoomService(store)
	ctx := context.Background()

	room := seedRoom(t, svc, "general", domain.RoomTypeGroup)
	at := time.Now().Add(-time.Minute)

	if err := svc.TouchLastMessage(ctx, room.ID, at); err != nil {
		t.Fatalf("touch: %v", err)
	}

	got, _ := store.FindByID(ctx, room.ID)
	if got.LastMessageAt == nil || !got.LastMessageAt.Equal(at) {
		t.Fatalf("lastMessageAt not updated: %v", got.LastMessageAt)
	}
	if got.Name != room.Name || got.Deleted {
		t.Fatalf("unrelated fields changed: %+v", got)
	}

	if err := svc.TouchLastMessage(ctx, uuid.New(), at); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}
