package features

import "github.com/lyssareba/flika-app-sub001/internal/models"

// Feature идентификатор функции, закрытой premium.
type Feature string

const (
	FeatureCompatibilityBreakdown Feature = "compatibility_breakdown"
	FeatureDataExport             Feature = "data_export"
	FeatureCloudSync              Feature = "cloud_sync"
	FeatureDatingRecaps           Feature = "dating_recaps"
)

// Evaluator сравнивает счётчики, переданные вызывающим кодом, с лимитами.
// Хранилище не запрашивает.
type Evaluator struct {
	limits models.FeatureLimits
}

// NewEvaluator создаёт Evaluator для набора лимитов.
func NewEvaluator(limits models.FeatureLimits) Evaluator {
	return Evaluator{limits: limits}
}

// Limits возвращает лимиты, с которыми работает Evaluator.
func (e Evaluator) Limits() models.FeatureLimits {
	return e.limits
}

// CanAddProspect можно ли добавить ещё одного активного проспекта.
func (e Evaluator) CanAddProspect(activeCount int) bool {
	return clamp(activeCount) < e.limits.MaxActiveProspects
}

// CanArchiveMore можно ли архивировать ещё одного проспекта.
func (e Evaluator) CanArchiveMore(archivedCount int) bool {
	return clamp(archivedCount) < e.limits.MaxArchivedProspects
}

// GetDateLimit лимит свиданий для проспекта.
func (e Evaluator) GetDateLimit(prospectDatesCount int) models.DateLimit {
	count := clamp(prospectDatesCount)
	return models.DateLimit{
		CanAddDate: count < e.limits.MaxDatesPerProspect,
		DateCount:  count,
		DateLimit:  e.limits.MaxDatesPerProspect,
	}
}

// HasFeature включена ли булева функция. Для неизвестных функций false.
func (e Evaluator) HasFeature(f Feature) bool {
	switch f {
	case FeatureCompatibilityBreakdown:
		return e.limits.HasCompatibilityBreakdown
	case FeatureDataExport:
		return e.limits.HasDataExport
	case FeatureCloudSync:
		return e.limits.HasCloudSync
	case FeatureDatingRecaps:
		return e.limits.HasDatingRecaps
	default:
		return false
	}
}

// отрицательные счётчики: ошибка вызывающего кода, считаем их нулём
func clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
