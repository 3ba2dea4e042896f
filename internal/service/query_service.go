package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/text-mate/chatroom-service/internal/domain"
	"github.com/text-mate/chatroom-service/internal/storage"
)

const maxPageSize = 100

// Page — страница листинга.
type Page struct {
	Content       []RoomView
	Page          int
	Size          int
	TotalElements int
	TotalPages    int
}

// QueryService строит отфильтрованный и отсортированный срез всех
// неудалённых комнат. Пагинированный и полный варианты проходят один
// и тот же конвейер, поэтому порядок у них совпадает.
type QueryService struct {
	store storage.RoomStore
}

func NewQueryService(store storage.RoomStore) *QueryService {
	return &QueryService{store: store}
}

// ListPage возвращает страницу. Страница за пределами результата —
// пустой контент, не ошибка.
func (s *QueryService) ListPage(ctx context.Context, userID *int64, query string, typ *domain.RoomType, sort domain.RoomSort, page, size int) (Page, error) {
	if page < 0 {
		return Page{}, fmt.Errorf("%w: page must be >= 0", domain.ErrValidation)
	}
	if size <= 0 || size > maxPageSize {
		return Page{}, fmt.Errorf("%w: size must be in 1..%d", domain.ErrValidation, maxPageSize)
	}

	views, err := s.collect(ctx, userID, query, typ, sort)
	if err != nil {
		return Page{}, err
	}

	total := len(views)
	from := page * size
	to := min(from+size, total)

	content := []RoomView{}
	if from < total {
		content = views[from:to]
	}

	// size после валидации всегда > 0; ветка — защита от деления на ноль.
	totalPages := 1
	if size > 0 {
		totalPages = (total + size - 1) / size
	}

	return Page{
		Content:       content,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
	}, nil
}

// ListAll возвращает всё, что проходит фильтр, без пагинации.
func (s *QueryService) ListAll(ctx context.Context, userID *int64, query string, typ *domain.RoomType, sort domain.RoomSort) ([]RoomView, error) {
	return s.collect(ctx, userID, query, typ, sort)
}

// collect: снапшот -> фильтры (deleted, подстрока имени, тип) -> сортировка.
func (s *QueryService) collect(ctx context.Context, userID *int64, query string, typ *domain.RoomType, sort domain.RoomSort) ([]RoomView, error) {
	rooms, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("store.FindAll: %w", err)
	}

	q := strings.ToLower(strings.TrimSpace(query))
	filtered := rooms[:0]
	for _, r := range rooms {
		if r.Deleted {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(r.Name), q) {
			continue
		}
		if typ != nil && r.Type != *typ {
			continue
		}
		filtered = append(filtered, r)
	}

	pins, err := s.pinnedSet(ctx, userID, filtered)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(filtered, comparator(sort, pins))

	views := make([]RoomView, 0, len(filtered))
	for _, r := range filtered {
		views = append(views, RoomView{Room: r, Pinned: pins[r.ID]})
	}
	return views, nil
}

// pinnedSet собирает пин-статусы один раз, чтобы компаратор
// не ходил в хранилище на каждое сравнение.
func (s *QueryService) pinnedSet(ctx context.Context, userID *int64, rooms []domain.Room) (map[uuid.UUID]bool, error) {
	pins := make(map[uuid.UUID]bool, len(rooms))
	if userID == nil {
		return pins, nil
	}
	for _, r := range rooms {
		pinned, err := s.store.IsPinned(ctx, *userID, r.ID)
		if err != nil {
			return nil, fmt.Errorf("store.IsPinned: %w", err)
		}
		if pinned {
			pins[r.ID] = true
		}
	}
	return pins, nil
}

// Три режима сортировки собраны из трёх примитивных порядков:
// пин-статус, активность, время создания. Правила разрешения ничьих
// живут только здесь.

func comparator(sort domain.RoomSort, pins map[uuid.UUID]bool) func(a, b domain.Room) int {
	switch sort {
	case domain.SortRecentlyActive:
		return chain(cmpRecentlyActive, cmpCreatedDesc)
	case domain.SortPinnedTop:
		return chain(cmpPinned(pins), cmpRecentlyActive, cmpCreatedDesc)
	default:
		return cmpCreatedDesc
	}
}

func chain(cmps ...func(a, b domain.Room) int) func(a, b domain.Room) int {
	return func(a, b domain.Room) int {
		for _, cmp := range cmps {
			if c := cmp(a, b); c != 0 {
				return c
			}
		}
		return 0
	}
}

// cmpCreatedDesc: новые впереди; нулевой CreatedAt (не должен
// встречаться, но обрабатываем) уходит в конец.
func cmpCreatedDesc(a, b domain.Room) int {
	az, bz := a.CreatedAt.IsZero(), b.CreatedAt.IsZero()
	switch {
	case az && bz:
		return 0
	case az:
		return 1
	case bz:
		return -1
	}
	return b.CreatedAt.Compare(a.CreatedAt)
}

// cmpRecentlyActive: комнаты с сообщениями впереди комнат без;
// внутри группы — по убыванию LastMessageAt.
func cmpRecentlyActive(a, b domain.Room) int {
	switch {
	case a.LastMessageAt == nil && b.LastMessageAt == nil:
		return 0
	case a.LastMessageAt == nil:
		return 1
	case b.LastMessageAt == nil:
		return -1
	}
	return b.LastMessageAt.Compare(*a.LastMessageAt)
}

// cmpPinned: закреплённые впереди.
func cmpPinned(pins map[uuid.UUID]bool) func(a, b domain.Room) int {
	return func(a, b domain.Room) int {
		ap, bp := pins[a.ID], pins[b.ID]
		switch {
		case ap == bp:
			return 0
		case ap:
			return -1
		default:
			return 1
		}
	}
}
