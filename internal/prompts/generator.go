package prompts

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/lyssareba/flika-app-sub001/internal/models"
)

// Snapshot входные данные одного прохода генератора. Только чтение.
type Snapshot struct {
	UserID     string
	Now        time.Time
	Prospects  []models.ProspectSnapshot
	LastShown  map[models.PromptType]time.Time
	Milestones []models.MilestoneEvent
}

// Generator применяет независимые правила к снимку и возвращает кандидатов.
// Правила чистые: генератор ничего не записывает.
type Generator struct {
	rules Rules
}

// NewGenerator создаёт генератор.
func NewGenerator(rules Rules) *Generator {
	return &Generator{rules: rules}
}

// Generate возвращает по одному кандидату на каждое сработавшее правило.
func (g *Generator) Generate(s Snapshot) []models.InAppPrompt {
	var out []models.InAppPrompt
	for _, ev := range s.Milestones {
		out = append(out, g.OnMilestone(ev))
	}
	for _, p := range s.Prospects {
		if prompt, ok := g.dateReminder(p, s.Now); ok {
			out = append(out, prompt)
		}
		if prompt, ok := g.dealbreakerCheck(p); ok {
			out = append(out, prompt)
		}
	}
	if prompt, ok := g.generalTip(s.UserID, s.LastShown, s.Now); ok {
		out = append(out, prompt)
	}
	return out
}

// OnMilestone превращает внешнее событие в кандидата. Скрытие действует на
// все вехи проспекта.
func (g *Generator) OnMilestone(ev models.MilestoneEvent) models.InAppPrompt {
	id, name := ev.ProspectID, ev.ProspectName
	return models.InAppPrompt{
		ID:            fmt.Sprintf("%s:%s:%s", models.PromptMilestone, ev.ProspectID, ev.Kind),
		Type:          models.PromptMilestone,
		Priority:      g.rules.Priority(models.PromptMilestone),
		ProspectID:    &id,
		ProspectName:  &name,
		MessageKey:    "prompts.milestone." + ev.Kind,
		MessageParams: map[string]string{"name": ev.ProspectName},
		DismissalKey:  models.DismissalKeyFor(models.PromptMilestone, ev.ProspectID),
	}
}

func (g *Generator) dateReminder(p models.ProspectSnapshot, now time.Time) (models.InAppPrompt, bool) {
	if p.Status != models.ProspectActive || p.IsArchived {
		return models.InAppPrompt{}, false
	}
	ref := p.CreatedAt
	if p.LastDateAt != nil {
		ref = *p.LastDateAt
	}
	since := now.Sub(ref)
	if since < g.rules.ReminderWindow {
		return models.InAppPrompt{}, false
	}
	days := int(since / day)
	return g.prospectPrompt(models.PromptDateReminder, p, "prompts.date_reminder", map[string]string{
		"name": p.Name,
		"days": strconv.Itoa(days),
	}), true
}

func (g *Generator) dealbreakerCheck(p models.ProspectSnapshot) (models.InAppPrompt, bool) {
	if p.IsArchived || p.Status == models.ProspectEnded {
		return models.InAppPrompt{}, false
	}
	if p.DateCount < g.rules.MinDatesForDealbreaker || p.UnresolvedDealbreakers < g.rules.MinUnknownDealbreakers {
		return models.InAppPrompt{}, false
	}
	return g.prospectPrompt(models.PromptDealbreakerCheck, p, "prompts.dealbreaker_check", map[string]string{
		"name":  p.Name,
		"count": strconv.Itoa(p.UnresolvedDealbreakers),
	}), true
}

func (g *Generator) prospectPrompt(t models.PromptType, p models.ProspectSnapshot, key string, params map[string]string) models.InAppPrompt {
	id, name := p.ID, p.Name
	dk := models.DismissalKeyFor(t, p.ID)
	return models.InAppPrompt{
		ID:            dk,
		Type:          t,
		Priority:      g.rules.Priority(t),
		ProspectID:    &id,
		ProspectName:  &name,
		MessageKey:    key,
		MessageParams: params,
		DismissalKey:  dk,
	}
}

func (g *Generator) generalTip(userID string, lastShown map[models.PromptType]time.Time, now time.Time) (models.InAppPrompt, bool) {
	if last, ok := lastShown[models.PromptGeneralTip]; ok && now.Sub(last) < g.rules.TipWindow {
		return models.InAppPrompt{}, false
	}
	n := TipIndex(userID, now, g.rules.TipPoolSize)
	return models.InAppPrompt{
		ID:           fmt.Sprintf("%s:%d", models.PromptGeneralTip, n+1),
		Type:         models.PromptGeneralTip,
		Priority:     g.rules.Priority(models.PromptGeneralTip),
		MessageKey:   fmt.Sprintf("prompts.tips.tip_%d", n+1),
		DismissalKey: models.DismissalKeyFor(models.PromptGeneralTip, ""),
	}, true
}

// TipIndex номер совета в пуле: FNV-1a от "userID:год-Wнеделя" по ISO в UTC.
// Одинаков в пределах недели и между перезапусками.
func TipIndex(userID string, now time.Time, poolSize int) int {
	if poolSize <= 0 {
		return 0
	}
	year, week := now.UTC().ISOWeek()
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s:%04d-W%02d", userID, year, week)
	return int(h.Sum32() % uint32(poolSize))
}
