package models

import "time"

// PromptType тип подсказки.
type PromptType string

const (
	PromptDateReminder     PromptType = "date_reminder"
	PromptDealbreakerCheck PromptType = "dealbreaker_check"
	PromptMilestone        PromptType = "milestone"
	PromptGeneralTip       PromptType = "general_tip"
)

// PromptTypes все типы в порядке от самого срочного к наименее срочному.
// Порядок используется для разрешения равных приоритетов.
var PromptTypes = []PromptType{
	PromptMilestone,
	PromptDealbreakerCheck,
	PromptDateReminder,
	PromptGeneralTip,
}

// Rank возвращает позицию типа в порядке срочности. Неизвестные типы идут последними.
func (t PromptType) Rank() int {
	for i, pt := range PromptTypes {
		if pt == t {
			return i
		}
	}
	return len(PromptTypes)
}

// Valid проверяет, что тип известен.
func (t PromptType) Valid() bool {
	return t.Rank() < len(PromptTypes)
}

// InAppPrompt подсказка для показа в приложении. Создаётся заново на каждом проходе
// и не изменяется. Меньший Priority: более срочная подсказка.
type InAppPrompt struct {
	ID            string            `json:"id"`
	Type          PromptType        `json:"type"`
	Priority      int               `json:"priority"`
	ProspectID    *string           `json:"prospect_id,omitempty"`
	ProspectName  *string           `json:"prospect_name,omitempty"`
	MessageKey    string            `json:"message_key"`
	MessageParams map[string]string `json:"message_params,omitempty"`
	DismissalKey  string            `json:"dismissal_key"`
}

// DismissalKeyFor строит составной ключ: тип или тип:проспект.
func DismissalKeyFor(t PromptType, prospectID string) string {
	if prospectID == "" {
		return string(t)
	}
	return string(t) + ":" + prospectID
}

// DismissalRecord время последнего скрытия подсказки по ключу.
type DismissalRecord struct {
	DismissalKey string    `json:"dismissal_key"`
	DismissedAt  time.Time `json:"dismissed_at"`
}

// MilestoneEvent событие, пришедшее извне движка (например, смена статуса проспекта).
type MilestoneEvent struct {
	ProspectID   string    `json:"prospect_id" validate:"required"`
	ProspectName string    `json:"prospect_name" validate:"required"`
	Kind         string    `json:"kind" validate:"required"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// PromptKeyRequest тело запросов показа и скрытия подсказки.
type PromptKeyRequest struct {
	DismissalKey string `json:"dismissal_key" validate:"required,max=200"`
}
