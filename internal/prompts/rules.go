// Package prompts генерирует кандидатов в подсказки и выбирает не более одной
// для показа с учётом приоритета и cooldown после скрытия.
package prompts

import (
	"time"

	"github.com/lyssareba/flika-app-sub001/internal/config"
	"github.com/lyssareba/flika-app-sub001/internal/models"
)

const day = 24 * time.Hour

// Rules неизменяемые пороги правил, приоритеты и cooldown. Строится из
// config.Engine один раз при старте.
type Rules struct {
	ReminderWindow         time.Duration
	MinDatesForDealbreaker int
	MinUnknownDealbreakers int
	TipWindow              time.Duration
	TipPoolSize            int

	priorities      map[models.PromptType]int
	cooldowns       map[models.PromptType]time.Duration
	defaultPriority int
	defaultCooldown time.Duration
}

// NewRules собирает Rules из конфигурации движка.
func NewRules(engine config.Engine) Rules {
	r := Rules{
		ReminderWindow:         time.Duration(engine.Prompts.ReminderDays) * day,
		MinDatesForDealbreaker: engine.Prompts.MinDatesForDealbreaker,
		MinUnknownDealbreakers: engine.Prompts.MinUnknownDealbreakers,
		TipWindow:              time.Duration(engine.Prompts.TipWindowDays) * day,
		TipPoolSize:            engine.Prompts.TipPoolSize,
		priorities:             make(map[models.PromptType]int, len(models.PromptTypes)),
		cooldowns:              make(map[models.PromptType]time.Duration, len(models.PromptTypes)),
		defaultPriority:        engine.Priority(""),
		defaultCooldown:        time.Duration(engine.DefaultCooldownDays) * day,
	}
	for _, t := range models.PromptTypes {
		r.priorities[t] = engine.Priority(string(t))
		r.cooldowns[t] = engine.Cooldown(string(t))
	}
	if r.TipPoolSize <= 0 {
		r.TipPoolSize = 1
	}
	return r
}

// DefaultRules правила со значениями по умолчанию.
func DefaultRules() Rules {
	return NewRules(config.DefaultEngine())
}

// Priority приоритет типа. Меньше: срочнее.
func (r Rules) Priority(t models.PromptType) int {
	if p, ok := r.priorities[t]; ok {
		return p
	}
	return r.defaultPriority
}

// Cooldown минимальное время между скрытием и повторным показом.
func (r Rules) Cooldown(t models.PromptType) time.Duration {
	if c, ok := r.cooldowns[t]; ok {
		return c
	}
	return r.defaultCooldown
}
