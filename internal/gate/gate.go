// Package gate решает, доступна ли premium функция пользователю. Ядро
// (Decide) чистое; аналитика, колбэки и навигация выполняются в RequirePremium.
package gate

import (
	"context"
	"log/slog"

	"github.com/lyssareba/flika-app-sub001/internal/analytics"
	"github.com/lyssareba/flika-app-sub001/internal/metrics"
	"github.com/lyssareba/flika-app-sub001/internal/models"
)

// UpgradeRoute маршрут экрана покупки подписки.
const UpgradeRoute = "Paywall"

// DefaultFeature идентификатор функции, если вызывающий его не передал.
const DefaultFeature = "unknown"

// Reason причина блокировки.
type Reason string

const (
	ReasonNotPremium         Reason = "not_premium"
	ReasonEntitlementUnknown Reason = "entitlement_unknown"
)

// Decision результат проверки. Для разрешённого действия заполнен только Allowed.
type Decision struct {
	Allowed bool              `json:"allowed"`
	Reason  Reason            `json:"reason,omitempty"`
	Feature string            `json:"feature,omitempty"`
	Route   string            `json:"route,omitempty"`
	Params  map[string]string `json:"params,omitempty"`
}

// Blocked обратный к Allowed.
func (d Decision) Blocked() bool {
	return !d.Allowed
}

// Navigator переход на экран клиента.
type Navigator interface {
	Navigate(ctx context.Context, route string, params map[string]string)
}

// Decide чистая функция статус -> решение. Неизвестный статус считается не premium.
func Decide(status models.EntitlementStatus, feature string) Decision {
	if status.IsPremium() {
		return Decision{Allowed: true}
	}
	if feature == "" {
		feature = DefaultFeature
	}
	reason := ReasonNotPremium
	if !status.Known {
		reason = ReasonEntitlementUnknown
	}
	return Decision{
		Reason:  reason,
		Feature: feature,
		Route:   UpgradeRoute,
		Params:  map[string]string{"feature": feature},
	}
}

// Gate выполняет побочные эффекты решения.
type Gate struct {
	sink      analytics.Sink
	navigator Navigator
	log       *slog.Logger
}

// New создаёт Gate. navigator может быть nil, тогда навигация пропускается.
func New(sink analytics.Sink, navigator Navigator, log *slog.Logger) *Gate {
	return &Gate{
		sink:      sink,
		navigator: navigator,
		log:       log,
	}
}

// Decide принимает решение и учитывает его в метриках, без побочных эффектов для клиента.
func (g *Gate) Decide(status models.EntitlementStatus, feature string) Decision {
	d := Decide(status, feature)
	outcome := "allowed"
	if d.Blocked() {
		outcome = "blocked"
	}
	label := feature
	if label == "" {
		label = DefaultFeature
	}
	metrics.GateDecisions.WithLabelValues(label, outcome).Inc()
	return d
}

// Allow разрешение, выданное лимитами тарифа без проверки premium.
func (g *Gate) Allow(feature string) Decision {
	if feature == "" {
		feature = DefaultFeature
	}
	metrics.GateDecisions.WithLabelValues(feature, "allowed").Inc()
	return Decision{Allowed: true}
}

// RequirePremium для premium пользователя синхронно вызывает action. Иначе
// в фиксированном порядке: событие feature_gated, onBlocked, навигация на экран
// покупки. Событие аналитики берёт пользователя из analytics.WithUserID.
// Блокировка не ошибка.
func (g *Gate) RequirePremium(ctx context.Context, status models.EntitlementStatus, action func(), feature string, onBlocked func()) Decision {
	d := g.Decide(status, feature)
	if d.Allowed {
		if action != nil {
			action()
		}
		return d
	}

	g.track(ctx, d)
	if onBlocked != nil {
		onBlocked()
	}
	if g.navigator != nil {
		g.navigator.Navigate(ctx, d.Route, d.Params)
	}
	return d
}

func (g *Gate) track(ctx context.Context, d Decision) {
	if g.sink == nil {
		return
	}
	g.sink.Track(ctx, analytics.NewEvent(analytics.EventFeatureGated, analytics.UserIDFrom(ctx), map[string]string{
		"action":  "blocked",
		"feature": d.Feature,
		"reason":  string(d.Reason),
	}))
}
