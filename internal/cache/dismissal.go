package cache

import (
	"context"
	"fmt"
	"time"
)

// DismissalStore хранит время последнего скрытия подсказки по ключу.
// Записи не имеют срока жизни: устаревшие отбрасываются при чтении планировщиком.
type DismissalStore struct {
	cache *Cache
}

// NewDismissalStore создаёт хранилище скрытий поверх redis.
func NewDismissalStore(c *Cache) *DismissalStore {
	return &DismissalStore{cache: c}
}

func dismissalKey(userID, key string) string {
	return fmt.Sprintf("dismissal:%s:%s", userID, key)
}

// Get возвращает время скрытия, false: записи нет.
func (s *DismissalStore) Get(ctx context.Context, userID, key string) (time.Time, bool, error) {
	var at time.Time
	found, err := s.cache.Get(ctx, dismissalKey(userID, key), &at)
	if err != nil || !found {
		return time.Time{}, false, err
	}
	return at, true, nil
}

// Set перезаписывает время скрытия (последняя запись побеждает).
func (s *DismissalStore) Set(ctx context.Context, userID, key string, at time.Time) error {
	return s.cache.Set(ctx, dismissalKey(userID, key), at.UTC(), 0)
}
