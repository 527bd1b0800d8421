package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lyssareba/flika-app-sub001/internal/models"
)

// MilestoneStore хранит вехи, ожидающие показа, в хэше пользователя.
// Поле хэша: "<prospectID>:<kind>", повторное событие перезаписывает поле.
type MilestoneStore struct {
	cache *Cache
}

// NewMilestoneStore создаёт хранилище вех поверх redis.
func NewMilestoneStore(c *Cache) *MilestoneStore {
	return &MilestoneStore{cache: c}
}

func milestonesKey(userID string) string {
	return "milestones:" + userID
}

// Add сохраняет веху.
func (s *MilestoneStore) Add(ctx context.Context, userID string, ev models.MilestoneEvent) error {
	return s.cache.HashSet(ctx, milestonesKey(userID), ev.ProspectID+":"+ev.Kind, ev)
}

// List возвращает вехи пользователя, упорядоченные по проспекту и виду.
func (s *MilestoneStore) List(ctx context.Context, userID string) ([]models.MilestoneEvent, error) {
	const op = "cache.MilestoneStore.List"
	vals, err := s.cache.HashValues(ctx, milestonesKey(userID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	fields := make([]string, 0, len(vals))
	for f := range vals {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	out := make([]models.MilestoneEvent, 0, len(vals))
	for _, f := range fields {
		var ev models.MilestoneEvent
		if err := json.Unmarshal(vals[f], &ev); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, ev)
	}
	return out, nil
}

// RemoveProspect удаляет вехи проспекта, произошедшие не позже upTo.
// Более поздние вехи остаются ждать показа.
func (s *MilestoneStore) RemoveProspect(ctx context.Context, userID, prospectID string, upTo time.Time) error {
	const op = "cache.MilestoneStore.RemoveProspect"
	vals, err := s.cache.HashValues(ctx, milestonesKey(userID))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	var fields []string
	for f, raw := range vals {
		if !strings.HasPrefix(f, prospectID+":") {
			continue
		}
		var ev models.MilestoneEvent
		if err := json.Unmarshal(raw, &ev); err == nil && ev.OccurredAt.After(upTo) {
			continue
		}
		fields = append(fields, f)
	}
	return s.cache.HashDelete(ctx, milestonesKey(userID), fields...)
}
