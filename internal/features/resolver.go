// Package features сопоставляет статус подписки с лимитами тарифа и
// проверяет действия пользователя против этих лимитов.
package features

import (
	"github.com/lyssareba/flika-app-sub001/internal/config"
	"github.com/lyssareba/flika-app-sub001/internal/models"
)

// Resolver возвращает один из двух фиксированных наборов лимитов.
type Resolver struct {
	free    models.FeatureLimits
	premium models.FeatureLimits
}

// NewResolver создаёт Resolver из конфигурации движка. Конфигурация должна
// пройти config.Engine.Validate.
func NewResolver(engine config.Engine) *Resolver {
	free, premium := config.DefaultFreeLimits(), config.DefaultPremiumLimits()
	if engine.Limits.Free != nil {
		free = *engine.Limits.Free
	}
	if engine.Limits.Premium != nil {
		premium = *engine.Limits.Premium
	}
	return &Resolver{
		free:    toModel(free),
		premium: toModel(premium),
	}
}

// Resolve чистая функция isPremium -> лимиты.
func (r *Resolver) Resolve(isPremium bool) models.FeatureLimits {
	if isPremium {
		return r.premium
	}
	return r.free
}

// ForStatus лимиты для результата сверки прав. Неизвестный статус получает free лимиты.
func (r *Resolver) ForStatus(status models.EntitlementStatus) models.FeatureLimits {
	return r.Resolve(status.IsPremium())
}

func toModel(l config.Limits) models.FeatureLimits {
	return models.FeatureLimits{
		MaxActiveProspects:        l.MaxActiveProspects,
		MaxArchivedProspects:      l.MaxArchivedProspects,
		MaxDatesPerProspect:       l.MaxDatesPerProspect,
		HasCompatibilityBreakdown: l.HasCompatibilityBreakdown,
		HasDataExport:             l.HasDataExport,
		HasCloudSync:              l.HasCloudSync,
		HasDatingRecaps:           l.HasDatingRecaps,
	}
}
