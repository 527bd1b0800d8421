// Package metrics prometheus метрики движка доступа и подсказок.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Reconciliations количество сверок прав по источнику результата.
	Reconciliations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flika",
		Name:      "entitlement_reconciliations_total",
		Help:      "Entitlement reconciliations by resulting source.",
	}, []string{"source"})

	// GateDecisions решения premium гейта.
	GateDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flika",
		Name:      "feature_gate_decisions_total",
		Help:      "Premium gate decisions by feature and outcome.",
	}, []string{"feature", "outcome"})

	// PromptsSelected выбранные для показа подсказки.
	PromptsSelected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flika",
		Name:      "prompts_selected_total",
		Help:      "Prompts selected for display by type.",
	}, []string{"type"})

	// PromptEvents показы и скрытия подсказок.
	PromptEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flika",
		Name:      "prompt_events_total",
		Help:      "Prompt shown/dismissed events.",
	}, []string{"event"})

	// StoreFailures ошибки хранилища скрытий, которые были проглочены.
	StoreFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flika",
		Name:      "dismissal_store_failures_total",
		Help:      "Dismissal store failures degraded to fail-open.",
	}, []string{"operation"})

	// AnalyticsDropped события аналитики, которые не удалось опубликовать.
	AnalyticsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "flika",
		Name:      "analytics_events_dropped_total",
		Help:      "Analytics events that failed to publish.",
	})

	// RemindersPublished напоминания, отправленные планировщиком в очередь.
	RemindersPublished = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "flika",
		Name:      "date_reminders_published_total",
		Help:      "Date reminders published by the scheduler.",
	})
)
