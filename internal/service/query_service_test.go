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

func insertRoom(t *testing.T, store *memory.Store, room domain.Room) domain.Room {
	t.Helper()
	if room.ID == uuid.Nil {
		room.ID = uuid.New()
	}
	if room.Type == "" {
		room.Type = domain.RoomTypeGroup
	}
	if err := store.Upsert(context.Background(), room); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	return room
}

func names(views []RoomView) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.Room.Name)
	}
	return out
}

func at(offset time.Duration) time.Time {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	return base.Add(offset)
}

func TestListAll_ExcludesDeleted(t *testing.T) {
	store := memory.New()
	svc := NewQueryService(store)
	ctx := context.Background()

	insertRoom(t, store, domain.Room{Name: "alive", CreatedAt: at(0)})
	insertRoom(t, store, domain.Room{Name: "gone", CreatedAt: at(time.Minute), Deleted: true})

	views, err := svc.ListAll(ctx, nil, "", nil, domain.SortDefault)
	if err != nil {
		t.Fatalf("listAll: %v", err)
	}
	if got := names(views); len(got) != 1 || got[0] != "alive" {
		t.Fatalf("deleted room leaked into listing: %v", got)
	}
}

func TestListAll_SubstringFilter_DefaultSort(t *testing.T) {
	store := memory.New()
	svc := NewQueryService(store)
	ctx := context.Background()

	insertRoom(t, store, domain.Room{Name: "Alpha Team", CreatedAt: at(0)})
	insertRoom(t, store, domain.Room{Name: "beta", CreatedAt: at(time.Minute)})
	insertRoom(t, store, domain.Room{Name: "ALPHA2", CreatedAt: at(2 * time.Minute)})

	views, err := svc.ListAll(ctx, nil, "alpha", nil, domain.SortDefault)
	if err != nil {
		t.Fatalf("listAll: %v", err)
	}
	got := names(views)
	want := []string{"ALPHA2", "Alpha Team"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestListAll_TypeFilter(t *testing.T) {
	store := memory.New()
	svc := NewQueryService(store)
	ctx := context.Background()

	insertRoom(t, store, domain.Room{Name: "g", Type: domain.RoomTypeGroup, CreatedAt: at(0)})
	insertRoom(t, store, domain.Room{Name: "p", Type: domain.RoomTypePrivate, CreatedAt: at(time.Minute)})

	typ := domain.RoomTypePrivate
	views, err := svc.ListAll(ctx, nil, "", &typ, domain.SortDefault)
	if err != nil {
		t.Fatalf("listAll: %v", err)
	}
	if got := names(views); len(got) != 1 || got[0] != "p" {
		t.Fatalf("type filter broken: %v", got)
	}
}

func TestSort_RecentlyActive_NullsLast(t *testing.T) {
	store := memory.New()
	svc := NewQueryService(store)
	ctx := context.Background()

	// A без сообщений, но создана позже; B активна
	insertRoom(t, store, domain.Room{Name: "A", CreatedAt: at(time.Hour)})
	lastMsg := at(30 * time.Minute)
	insertRoom(t, store, domain.Room{Name: "B", CreatedAt: at(0), LastMessageAt: &lastMsg})

	views, err := svc.ListAll(ctx, nil, "", nil, domain.SortRecentlyActive)
	if err != nil {
		t.Fatalf("listAll: %v", err)
	}
	got := names(views)
	if got[0] != "B" || got[1] != "A" {
		t.Fatalf("rooms with activity must sort first: %v", got)
	}
}

func TestSort_RecentlyActive_CreatedAtTiebreak(t *testing.T) {
	store := memory.New()
	svc := NewQueryService(store)
	ctx := context.Background()

	msgAt := at(time.Hour)
	insertRoom(t, store, domain.Room{Name: "older", CreatedAt: at(0), LastMessageAt: &msgAt})
	insertRoom(t, store, domain.Room{Name: "newer", CreatedAt: at(time.Minute), LastMessageAt: &msgAt})

	views, err := svc.ListAll(ctx, nil, "", nil, domain.SortRecentlyActive)
	if err != nil {
		t.Fatalf("listAll: %v", err)
	}
	got := names(views)
	if got[0] != "newer" || got[1] != "older" {
		t.Fatalf("createdAt tiebreak broken: %v", got)
	}
}

func TestSort_PinnedTop_BeatsRecency(t *testing.T) {
	store := memory.New()
	svc := NewQueryService(store)
	ctx := context.Background()

	// A запинена, но старше; B свежее и без пина
	roomA := insertRoom(t, store, domain.Room{Name: "A", CreatedAt: at(0)})
	insertRoom(t, store, domain.Room{Name: "B", CreatedAt: at(time.Hour)})
	_ = store.SetPinned(ctx, 7, roomA.ID, true)

	views, err := svc.ListAll(ctx, ptr(int64(7)), "", nil, domain.SortPinnedTop)
	if err != nil {
		t.Fatalf("listAll: %v", err)
	}
	got := names(views)
	if got[0] != "A" || got[1] != "B" {
		t.Fatalf("pinned room must sort first: %v", got)
	}
	if !views[0].Pinned || views[1].Pinned {
		t.Fatalf("pinned flags wrong: %+v", views)
	}

	// для анонима пин-приоритета нет: порядок по активности/созданию
	anon, err := svc.ListAll(ctx, nil, "", nil, domain.SortPinnedTop)
	if err != nil {
		t.Fatalf("listAll anon: %v", err)
	}
	if names(anon)[0] != "B" {
		t.Fatalf("anonymous caller must get no pin advantage: %v", names(anon))
	}
}

func TestListPage_Validation(t *testing.T) {
	svc := NewQueryService(memory.New())
	ctx := context.Background()

	cases := []struct {
		name       string
		page, size int
	}{
		{"negative page", -1, 10},
		{"zero size", 0, 0},
		{"oversized", 0, 101},
	}
	for _, tc := range cases {
		if _, err := svc.ListPage(ctx, nil, "", nil, domain.SortDefault, tc.page, tc.size); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got %v", tc.name, err)
		}
	}
}

func TestListPage_PaginationMath(t *testing.T) {
	store := memory.New()
	svc := NewQueryService(store)
	ctx := context.Background()

	for i, name := range []string{"r1", "r2", "r3"} {
		insertRoom(t, store, domain.Room{Name: name, CreatedAt: at(time.Duration(i) * time.Minute)})
	}

	page, err := svc.ListPage(ctx, nil, "", nil, domain.SortDefault, 1, 2)
	if err != nil {
		t.Fatalf("listPage: %v", err)
	}
	if len(page.Content) != 1 {
		t.Fatalf("expected 1 item on second page, got %d", len(page.Content))
	}
	if page.TotalElements != 3 || page.TotalPages != 2 {
		t.Fatalf("totals wrong: %+v", page)
	}

	// сумма по страницам равна totalElements
	sum := 0
	for p := 0; p < page.TotalPages; p++ {
		pg, err := svc.ListPage(ctx, nil, "", nil, domain.SortDefault, p, 2)
		if err != nil {
			t.Fatalf("page %d: %v", p, err)
		}
		sum += len(pg.Content)
	}
	if sum != page.TotalElements {
		t.Fatalf("page sizes sum to %d, want %d", sum, page.TotalElements)
	}

	// страница за пределами — пусто, не ошибка
	beyond, err := svc.ListPage(ctx, nil, "", nil, domain.SortDefault, 5, 2)
	if err != nil {
		t.Fatalf("out-of-range page: %v", err)
	}
	if len(beyond.Content) != 0 {
		t.Fatalf("expected empty page, got %d items", len(beyond.Content))
	}
}

func TestListPage_SameOrderAsListAll(t *testing.T) {
	store := memory.New()
	svc := NewQueryService(store)
	ctx := context.Background()

	msgAt := at(2 * time.Hour)
	insertRoom(t, store, domain.Room{Name: "a", CreatedAt: at(0), LastMessageAt: &msgAt})
	insertRoom(t, store, domain.Room{Name: "b", CreatedAt: at(time.Minute)})
	insertRoom(t, store, domain.Room{Name: "c", CreatedAt: at(2 * time.Minute)})

	all, err := svc.ListAll(ctx, nil, "", nil, domain.SortRecentlyActive)
	if err != nil {
		t.Fatalf("listAll: %v", err)
	}

	var paged []RoomView
	for p := 0; ; p++ {
		pg, err := svc.ListPage(ctx, nil, "", nil, domain.SortRecentlyActive, p, 2)
		if err != nil {
			t.Fatalf("page %d: %v", p, err)
		}
		if len(pg.Content) == 0 {
			break
		}
		paged = append(paged, pg.Content...)
	}

	if len(all) != len(paged) {
		t.Fatalf("length mismatch: %d vs %d", len(all), len(paged))
	}
	for i := range all {
		if all[i].Room.ID != paged[i].Room.ID {
			t.Fatalf("order diverged at %d: %v vs %v", i, names(all), names(paged))
		}
	}
}

func TestSort_DefaultZeroCreatedAtLast(t *testing.T) {
	store := memory.New()
	svc := NewQueryService(store)
	ctx := context.Background()

	insertRoom(t, store, domain.Room{Name: "normal", CreatedAt: at(0)})
	insertRoom(t, store, domain.Room{Name: "weird"}) // нулевой createdAt

	views, err := svc.ListAll(ctx, nil, "", nil, domain.SortDefault)
	if err != nil {
		t.Fatalf("listAll: %v", err)
	}
	got := names(views)
	if got[len(got)-1] != "weird" {
		t.Fatalf("zero createdAt must sort last: %v", got)
	}
}
