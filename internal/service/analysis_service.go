package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/korean"

	"github.com/text-mate/chatroom-service/internal/cache"
	"github.com/text-mate/chatroom-service/internal/domain"
	"github.com/text-mate/chatroom-service/internal/metrics"
)

// Analyzer — внешний коллаборатор (LLM-анализ выгрузки переписки).
// Сервис не знает ничего о промптах и моделях, только контракт.
type Analyzer interface {
	Analyze(ctx context.Context, typ domain.RoomType, text string) (resultJSON, summary string, err error)
}

type AnalysisResult struct {
	ID         uuid.UUID
	RoomID     uuid.UUID
	Type       domain.RoomType
	Summary    string
	ResultJSON string
	CreatedAt  time.Time
}

// AnalysisService принимает выгрузку чата, прогоняет её через Analyzer
// и создаёт комнату из события анализа. Результаты кешируются по хешу
// текста: повторная загрузка того же файла не дёргает анализатор.
type AnalysisService struct {
	rooms    *RoomService
	analyzer Analyzer
	cache    cache.Cache
	cacheTTL time.Duration
}

func NewAnalysisService(rooms *RoomService, analyzer Analyzer, c cache.Cache, ttl time.Duration) *AnalysisService {
	return &AnalysisService{rooms: rooms, analyzer: analyzer, cache: c, cacheTTL: ttl}
}

func (s *AnalysisService) Analyze(ctx context.Context, typ domain.RoomType, filename string, data []byte) (AnalysisResult, error) {
	if len(data) == 0 {
		return AnalysisResult{}, fmt.Errorf("%w: uploaded file is empty", domain.ErrValidation)
	}
	metrics.AnalysisRequests.WithLabelValues(string(typ)).Inc()

	text := decodeExport(data)

	resultJSON, summary, err := s.analyzeCached(ctx, typ, text)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("analyzer: %w", err)
	}

	room, err := s.rooms.Create(ctx, roomNameFromFilename(filename), typ)
	if err != nil {
		return AnalysisResult{}, err
	}

	now := time.Now()
	// событие «анализ сохранён» идёт тем же путём, что и обычное сообщение
	if err := s.rooms.TouchLastMessage(ctx, room.ID, now); err != nil {
		return AnalysisResult{}, err
	}

	return AnalysisResult{
		ID:         uuid.New(),
		RoomID:     room.ID,
		Type:       typ,
		Summary:    summary,
		ResultJSON: resultJSON,
		CreatedAt:  now,
	}, nil
}

func (s *AnalysisService) analyzeCached(ctx context.Context, typ domain.RoomType, text string) (resultJSON, summary string, err error) {
	key := cacheKey(typ, text)

	if cached, cerr := s.cache.Get(ctx, key); cerr == nil {
		metrics.AnalysisCacheHits.Inc()
		return cached, summaryFor(typ), nil
	} else if !errors.Is(cerr, cache.ErrMiss) {
		// кеш недоступен — не причина ронять запрос
		slog.Warn("analysis cache get failed", slog.Any("err", cerr))
	}

	resultJSON, summary, err = s.analyzer.Analyze(ctx, typ, text)
	if err != nil {
		return "", "", err
	}

	if cerr := s.cache.Set(ctx, key, resultJSON, s.cacheTTL); cerr != nil {
		slog.Warn("analysis cache set failed", slog.Any("err", cerr))
	}
	return resultJSON, summary, nil
}

func cacheKey(typ domain.RoomType, text string) string {
	sum := sha256.Sum256([]byte(text))
	return "analysis:" + string(typ) + ":" + hex.EncodeToString(sum[:])
}

func summaryFor(typ domain.RoomType) string {
	if typ == domain.RoomTypeGroup {
		return "group chat analysis complete"
	}
	return "private chat analysis complete"
}

// decodeExport: выгрузки KakaoTalk с Windows приходят в MS949.
// Если после UTF-8 остались replacement-руны — перечитываем как EUC-KR.
func decodeExport(data []byte) string {
	text := string(data)
	if !strings.ContainsRune(text, '�') {
		return text
	}
	decoded, err := korean.EUCKR.NewDecoder().Bytes(data)
	if err != nil {
		slog.Warn("euc-kr decode failed, keeping utf-8", slog.Any("err", err))
		return text
	}
	return string(decoded)
}

// roomNameFromFilename режет расширение и ужимает имя до лимита комнаты.
func roomNameFromFilename(filename string) string {
	base := filepath.Base(filename)
	name := strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
	if name == "" || name == "." {
		name = "imported chat"
	}
	if runes := []rune(name); len(runes) > 100 {
		name = string(runes[:100])
	}
	return name
}
