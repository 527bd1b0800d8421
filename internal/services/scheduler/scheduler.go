// Package services реализует фоновый планировщик напоминаний о свиданиях.
// Планировщик находит проспекты без свиданий дольше окна напоминания и
// публикует сообщения в очередь для отправки по почте.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/lyssareba/flika-app-sub001/internal/lib/rabbitmq"
	"github.com/lyssareba/flika-app-sub001/internal/lib/sl"
	"github.com/lyssareba/flika-app-sub001/internal/metrics"
	"github.com/lyssareba/flika-app-sub001/internal/models"
	"github.com/lyssareba/flika-app-sub001/internal/prompts"
)

// sentKeyPrefix префикс ключа, которым отмечается отправленное напоминание.
const sentKeyPrefix = "reminder_sent:"

// ReminderRepository выборка проспектов для напоминаний.
type ReminderRepository interface {
	FindStaleProspects(ctx context.Context, cutoff time.Time, limit, offset int) ([]models.ReminderInfo, error)
}

// SchedulerService публикует напоминания, пропуская ключи в cooldown.
type SchedulerService struct {
	repo       ReminderRepository
	dismissals prompts.DismissalStore
	rules      prompts.Rules
	batchSize  int
	log        *slog.Logger
	now        func() time.Time
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo ReminderRepository, dismissals prompts.DismissalStore, rules prompts.Rules, batchSize int, log *slog.Logger) *SchedulerService {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &SchedulerService{
		repo:       repo,
		dismissals: dismissals,
		rules:      rules,
		batchSize:  batchSize,
		log:        log,
		now:        time.Now,
	}
}

// Run выполняет проход сразу и затем с интервалом, пока не отменён ctx.
func (s *SchedulerService) Run(ctx context.Context, channel rabbitmq.Channel, interval time.Duration) {
	s.RunOnce(ctx, channel)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("reminder scheduler stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx, channel)
		}
	}
}

// RunOnce один проход по всем устаревшим проспектам. Возвращает число
// опубликованных напоминаний.
func (s *SchedulerService) RunOnce(ctx context.Context, channel rabbitmq.Channel) int {
	const op = "services.scheduler.RunOnce"
	log := s.log.With(sl.Op(op))
	now := s.now().UTC()
	cutoff := now.Add(-s.rules.ReminderWindow)

	log.Info("starting search for prospects without recent dates", slog.Time("cutoff", cutoff))
	published := 0
	for offset := 0; ; offset += s.batchSize {
		batch, err := s.repo.FindStaleProspects(ctx, cutoff, s.batchSize, offset)
		if err != nil {
			log.Error("failed to find stale prospects", sl.Err(err))
			break
		}
		for _, info := range batch {
			if s.publish(ctx, log, channel, info, now) {
				published++
			}
		}
		if len(batch) < s.batchSize || ctx.Err() != nil {
			break
		}
	}
	log.Info("reminder pass finished", slog.Int("published", published))
	return published
}

func (s *SchedulerService) publish(ctx context.Context, log *slog.Logger, channel rabbitmq.Channel, info models.ReminderInfo, now time.Time) bool {
	key := models.DismissalKeyFor(models.PromptDateReminder, info.ProspectID)
	cooldown := s.rules.Cooldown(models.PromptDateReminder)
	if s.coolingDown(ctx, log, info.UserID, key, now, cooldown) ||
		s.coolingDown(ctx, log, info.UserID, sentKeyPrefix+key, now, cooldown) {
		return false
	}

	if err := rabbitmq.PublishMessage(channel, rabbitmq.ExchangeReminders, rabbitmq.RoutingKeyDateReminder, info); err != nil {
		log.Error("failed to publish message", slog.String("prospect_id", info.ProspectID), sl.Err(err))
		return false
	}
	metrics.RemindersPublished.Inc()
	if err := s.dismissals.Set(ctx, info.UserID, sentKeyPrefix+key, now); err != nil {
		metrics.StoreFailures.WithLabelValues("set").Inc()
		log.Warn("failed to mark reminder as sent", sl.Err(err))
	}
	return true
}

// ошибка чтения трактуется как отсутствие записи
func (s *SchedulerService) coolingDown(ctx context.Context, log *slog.Logger, userID, key string, now time.Time, cooldown time.Duration) bool {
	at, ok, err := s.dismissals.Get(ctx, userID, key)
	if err != nil {
		metrics.StoreFailures.WithLabelValues("get").Inc()
		log.Warn("failed to read dismissal record", slog.String("key", key), sl.Err(err))
		return false
	}
	return ok && now.Sub(at) < cooldown
}
