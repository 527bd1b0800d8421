// Package services реализует сервис подсказок: собирает снимок состояния
// пользователя, генерирует кандидатов и выбирает одну подсказку для показа.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lyssareba/flika-app-sub001/internal/lib/sl"
	"github.com/lyssareba/flika-app-sub001/internal/models"
	"github.com/lyssareba/flika-app-sub001/internal/prompts"
)

// ProspectSource источник снимков проспектов, только чтение.
type ProspectSource interface {
	ListProspectSnapshots(ctx context.Context, userID string) ([]models.ProspectSnapshot, error)
}

// MilestoneStore вехи, ожидающие показа.
type MilestoneStore interface {
	Add(ctx context.Context, userID string, ev models.MilestoneEvent) error
	List(ctx context.Context, userID string) ([]models.MilestoneEvent, error)
	RemoveProspect(ctx context.Context, userID, prospectID string, upTo time.Time) error
}

// PromptService связывает генератор, планировщик и источники данных.
type PromptService struct {
	prospects  ProspectSource
	milestones MilestoneStore
	generator  *prompts.Generator
	scheduler  *prompts.Scheduler
	log        *slog.Logger
	now        func() time.Time
}

// NewPromptService создаёт PromptService.
func NewPromptService(prospects ProspectSource, milestones MilestoneStore, generator *prompts.Generator, scheduler *prompts.Scheduler, log *slog.Logger) *PromptService {
	return &PromptService{
		prospects:  prospects,
		milestones: milestones,
		generator:  generator,
		scheduler:  scheduler,
		log:        log,
		now:        time.Now,
	}
}

// Next возвращает подсказку для показа, false: показывать нечего. Сбои
// источников данных не ломают выдачу: правило без данных просто не срабатывает.
func (s *PromptService) Next(ctx context.Context, userID string) (models.InAppPrompt, bool, error) {
	const op = "services.prompts.Next"
	if userID == "" {
		return models.InAppPrompt{}, false, fmt.Errorf("%s: %w", op, prompts.ErrNoUser)
	}
	log := s.log.With(sl.Op(op), slog.String("user_id", userID))
	now := s.now().UTC()

	prospects, err := s.prospects.ListProspectSnapshots(ctx, userID)
	if err != nil {
		log.Warn("failed to load prospects, skipping prospect rules", sl.Err(err))
		prospects = nil
	}
	milestones, err := s.milestones.List(ctx, userID)
	if err != nil {
		log.Warn("failed to load pending milestones", sl.Err(err))
		milestones = nil
	}

	tipKey := models.DismissalKeyFor(models.PromptGeneralTip, "")
	lastShown := make(map[models.PromptType]time.Time, 1)
	if at, ok := s.scheduler.Records(ctx, userID, []string{tipKey})[tipKey]; ok {
		lastShown[models.PromptGeneralTip] = at
	}

	candidates := s.generator.Generate(prompts.Snapshot{
		UserID:     userID,
		Now:        now,
		Prospects:  prospects,
		LastShown:  lastShown,
		Milestones: milestones,
	})
	log.Debug("prompt candidates generated", slog.Int("count", len(candidates)))

	prompt, ok, err := s.scheduler.SelectPrompt(ctx, userID, candidates, now)
	if err != nil {
		return models.InAppPrompt{}, false, fmt.Errorf("%s: %w", op, err)
	}
	return prompt, ok, nil
}

// RecordShown отмечает показ подсказки. Показ запускает cooldown ключа.
func (s *PromptService) RecordShown(ctx context.Context, userID, key string) error {
	const op = "services.prompts.RecordShown"
	now := s.now().UTC()
	if err := s.scheduler.RecordShown(ctx, userID, key, now); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.consumeMilestone(ctx, op, userID, key, now)
	return nil
}

// Dismiss отмечает скрытие подсказки.
func (s *PromptService) Dismiss(ctx context.Context, userID, key string) error {
	const op = "services.prompts.Dismiss"
	now := s.now().UTC()
	if err := s.scheduler.Dismiss(ctx, userID, key, now); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.consumeMilestone(ctx, op, userID, key, now)
	return nil
}

// AddMilestone принимает внешнее событие и возвращает построенного кандидата.
func (s *PromptService) AddMilestone(ctx context.Context, userID string, ev models.MilestoneEvent) (models.InAppPrompt, error) {
	const op = "services.prompts.AddMilestone"
	if userID == "" {
		return models.InAppPrompt{}, fmt.Errorf("%s: %w", op, prompts.ErrNoUser)
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = s.now().UTC()
	}
	if err := s.milestones.Add(ctx, userID, ev); err != nil {
		return models.InAppPrompt{}, fmt.Errorf("%s: %w", op, err)
	}
	return s.generator.OnMilestone(ev), nil
}

// показанные или скрытые вехи больше не ожидают показа; вехи позже at остаются
func (s *PromptService) consumeMilestone(ctx context.Context, op, userID, key string, at time.Time) {
	prospectID, ok := strings.CutPrefix(key, string(models.PromptMilestone)+":")
	if !ok || prospectID == "" {
		return
	}
	if err := s.milestones.RemoveProspect(ctx, userID, prospectID, at); err != nil {
		s.log.Warn("failed to drop pending milestones", sl.Op(op), slog.String("prospect_id", prospectID), sl.Err(err))
	}
}
