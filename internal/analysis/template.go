package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/text-mate/chatroom-service/internal/domain"
)

// TemplateAnalyzer — заглушка LLM-коллаборатора: вместо похода в модель
// отдаёт базовую статистику по выгрузке. Боевая реализация подключается
// через тот же интерфейс service.Analyzer.
type TemplateAnalyzer struct{}

func New() *TemplateAnalyzer {
	return &TemplateAnalyzer{}
}

func (a *TemplateAnalyzer) Analyze(_ context.Context, typ domain.RoomType, text string) (string, string, error) {
	lines := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines++
		}
	}

	result, err := json.Marshal(map[string]any{
		"type":      string(typ),
		"lineCount": lines,
		"byteSize":  len(text),
	})
	if err != nil {
		return "", "", fmt.Errorf("marshal result: %w", err)
	}

	summary := "private chat analysis complete"
	if typ == domain.RoomTypeGroup {
		summary = "group chat analysis complete"
	}
	return string(result), summary, nil
}
