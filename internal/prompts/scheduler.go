package prompts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lyssareba/flika-app-sub001/internal/lib/sl"
	"github.com/lyssareba/flika-app-sub001/internal/metrics"
	"github.com/lyssareba/flika-app-sub001/internal/models"
)

var (
	// ErrNoUser операция требует идентификатор пользователя.
	ErrNoUser = errors.New("user id is required")
	// ErrEmptyKey ключ скрытия не задан.
	ErrEmptyKey = errors.New("dismissal key is required")
)

// DismissalStore хранилище времени последнего скрытия по ключу. Последняя запись побеждает.
type DismissalStore interface {
	Get(ctx context.Context, userID, key string) (time.Time, bool, error)
	Set(ctx context.Context, userID, key string, at time.Time) error
}

// Select чистый выбор подсказки. Дубликаты по ID схлопываются в более срочный,
// кандидаты с неистёкшим cooldown отбрасываются, затем берётся минимальный
// приоритет; при равенстве решает порядок типов, потом ProspectID.
func (r Rules) Select(candidates []models.InAppPrompt, records map[string]time.Time, now time.Time) (models.InAppPrompt, bool) {
	var (
		best  models.InAppPrompt
		found bool
	)
	for _, c := range dedupe(candidates) {
		if at, ok := records[c.DismissalKey]; ok && now.Sub(at) < r.Cooldown(c.Type) {
			continue
		}
		if !found || moreUrgent(c, best) {
			best, found = c, true
		}
	}
	return best, found
}

func dedupe(candidates []models.InAppPrompt) []models.InAppPrompt {
	index := make(map[string]int, len(candidates))
	out := make([]models.InAppPrompt, 0, len(candidates))
	for _, c := range candidates {
		if i, ok := index[c.ID]; ok {
			if moreUrgent(c, out[i]) {
				out[i] = c
			}
			continue
		}
		index[c.ID] = len(out)
		out = append(out, c)
	}
	return out
}

func moreUrgent(a, b models.InAppPrompt) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	if ra, rb := a.Type.Rank(), b.Type.Rank(); ra != rb {
		return ra < rb
	}
	pa, pb := deref(a.ProspectID), deref(b.ProspectID)
	if pa != pb {
		return pa < pb
	}
	return a.ID < b.ID
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Scheduler выбирает подсказку, читая записи скрытия из хранилища.
// Сбой чтения трактуется как отсутствие записи, сбой записи только логируется.
type Scheduler struct {
	rules Rules
	store DismissalStore
	log   *slog.Logger
}

// NewScheduler создаёт Scheduler.
func NewScheduler(rules Rules, store DismissalStore, log *slog.Logger) *Scheduler {
	return &Scheduler{
		rules: rules,
		store: store,
		log:   log,
	}
}

// Records загружает записи скрытия для ключей кандидатов.
func (s *Scheduler) Records(ctx context.Context, userID string, keys []string) map[string]time.Time {
	const op = "prompts.Scheduler.Records"
	records := make(map[string]time.Time, len(keys))
	for _, key := range keys {
		if _, seen := records[key]; seen {
			continue
		}
		at, ok, err := s.store.Get(ctx, userID, key)
		if err != nil {
			metrics.StoreFailures.WithLabelValues("get").Inc()
			s.log.Warn("failed to read dismissal record, treating as absent",
				sl.Op(op),
				slog.String("key", key),
				sl.Err(err),
			)
			continue
		}
		if ok {
			records[key] = at
		}
	}
	return records
}

// SelectPrompt возвращает не более одной подсказки для показа. Повторные вызовы
// с теми же входными данными дают тот же результат.
func (s *Scheduler) SelectPrompt(ctx context.Context, userID string, candidates []models.InAppPrompt, now time.Time) (models.InAppPrompt, bool, error) {
	const op = "prompts.Scheduler.SelectPrompt"
	if userID == "" {
		return models.InAppPrompt{}, false, fmt.Errorf("%s: %w", op, ErrNoUser)
	}
	keys := make([]string, 0, len(candidates))
	for _, c := range candidates {
		keys = append(keys, c.DismissalKey)
	}
	prompt, ok := s.rules.Select(candidates, s.Records(ctx, userID, keys), now)
	if ok {
		metrics.PromptsSelected.WithLabelValues(string(prompt.Type)).Inc()
	}
	return prompt, ok, nil
}

// RecordShown отмечает показ подсказки. Вызывается, когда подсказка реально отрисована.
func (s *Scheduler) RecordShown(ctx context.Context, userID, key string, now time.Time) error {
	return s.write(ctx, "prompts.Scheduler.RecordShown", "shown", userID, key, now)
}

// Dismiss отмечает скрытие подсказки пользователем.
func (s *Scheduler) Dismiss(ctx context.Context, userID, key string, now time.Time) error {
	return s.write(ctx, "prompts.Scheduler.Dismiss", "dismissed", userID, key, now)
}

func (s *Scheduler) write(ctx context.Context, op, event, userID, key string, now time.Time) error {
	if userID == "" {
		return fmt.Errorf("%s: %w", op, ErrNoUser)
	}
	if key == "" {
		return fmt.Errorf("%s: %w", op, ErrEmptyKey)
	}
	metrics.PromptEvents.WithLabelValues(event).Inc()
	if err := s.store.Set(ctx, userID, key, now); err != nil {
		metrics.StoreFailures.WithLabelValues("set").Inc()
		s.log.Warn("failed to write dismissal record",
			sl.Op(op),
			slog.String("key", key),
			sl.Err(err),
		)
	}
	return nil
}
