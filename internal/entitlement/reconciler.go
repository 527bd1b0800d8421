package entitlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lyssareba/flika-app-sub001/internal/lib/sl"
	"github.com/lyssareba/flika-app-sub001/internal/metrics"
	"github.com/lyssareba/flika-app-sub001/internal/models"
	"github.com/lyssareba/flika-app-sub001/internal/purchases"
)

// ErrUnauthenticated операция требует идентификатор пользователя.
var ErrUnauthenticated = errors.New("user is not authenticated")

// Provider источник снимка покупателя.
type Provider interface {
	GetCustomerInfo(ctx context.Context, appUserID string) (models.CustomerInfo, error)
}

// Providers выбирает провайдера для платформы клиента.
type Providers interface {
	Provider(platform string) (Provider, error)
}

// SnapshotCache хранит последний известный снимок на случай недоступности провайдера.
type SnapshotCache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Reconciler сверяет права пользователя. Провайдер: источник истины;
// кеш используется только как запасной вариант и никогда не понижает статус.
type Reconciler struct {
	providers Providers
	cache     SnapshotCache
	timeout   time.Duration
	cacheTTL  time.Duration
	log       *slog.Logger
	now       func() time.Time
}

// NewReconciler создаёт Reconciler. timeout ограничивает один запрос к провайдеру.
func NewReconciler(providers Providers, cache SnapshotCache, timeout, cacheTTL time.Duration, log *slog.Logger) *Reconciler {
	return &Reconciler{
		providers: providers,
		cache:     cache,
		timeout:   timeout,
		cacheTTL:  cacheTTL,
		log:       log,
		now:       time.Now,
	}
}

func snapshotKey(userID string) string {
	return "entitlement:" + userID
}

// Reconcile возвращает статус прав пользователя. Ошибка возвращается только
// для доменных проблем (нет пользователя); сбои провайдера и кеша деградируют
// до последнего известного снимка или неизвестного статуса.
func (r *Reconciler) Reconcile(ctx context.Context, platform, userID string) (models.EntitlementStatus, error) {
	const op = "entitlement.Reconcile"
	if userID == "" {
		return models.EntitlementStatus{}, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}
	log := r.log.With(sl.Op(op), slog.String("platform", platform))

	// без платформы нельзя выбрать провайдера, но и отключённым его считать нельзя
	if platform == "" {
		log.Warn("client platform is not set, using last known entitlement")
		return r.fallback(ctx, log, userID), nil
	}

	provider, err := r.providers.Provider(platform)
	if err != nil {
		if errors.Is(err, purchases.ErrNotConfigured) {
			log.Warn("purchase provider disabled for platform, premium unavailable")
			metrics.Reconciliations.WithLabelValues(string(models.SourceDisabled)).Inc()
			return models.EntitlementStatus{
				Known:     true,
				Source:    models.SourceDisabled,
				CheckedAt: r.now(),
			}, nil
		}
		log.Warn("purchase provider unavailable", sl.Err(err))
		return r.fallback(ctx, log, userID), nil
	}

	callCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	info, err := provider.GetCustomerInfo(callCtx, userID)
	if err != nil {
		log.Warn("failed to fetch customer info, using last known entitlement", sl.Err(err))
		return r.fallback(ctx, log, userID), nil
	}

	status := StatusFrom(info, models.SourceProvider)
	if err := r.cache.Set(ctx, snapshotKey(userID), status, r.cacheTTL); err != nil {
		log.Warn("failed to cache entitlement snapshot", sl.Err(err))
	}
	metrics.Reconciliations.WithLabelValues(string(models.SourceProvider)).Inc()
	return status, nil
}

func (r *Reconciler) fallback(ctx context.Context, log *slog.Logger, userID string) models.EntitlementStatus {
	var cached models.EntitlementStatus
	found, err := r.cache.Get(ctx, snapshotKey(userID), &cached)
	if err != nil {
		log.Warn("failed to read cached entitlement", sl.Err(err))
	}
	if err != nil || !found {
		metrics.Reconciliations.WithLabelValues(string(models.SourceNone)).Inc()
		return models.EntitlementStatus{Known: false, Source: models.SourceNone, CheckedAt: r.now()}
	}
	cached.Source = models.SourceCache
	metrics.Reconciliations.WithLabelValues(string(models.SourceCache)).Inc()
	return cached
}

// LogIn привязывает пользователя к провайдеру и прогревает кеш прав.
func (r *Reconciler) LogIn(ctx context.Context, platform, userID string) (models.EntitlementStatus, error) {
	return r.Reconcile(ctx, platform, userID)
}

// LogOut забывает закешированный снимок пользователя.
func (r *Reconciler) LogOut(ctx context.Context, userID string) error {
	const op = "entitlement.LogOut"
	if userID == "" {
		return fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}
	if err := r.cache.Invalidate(ctx, snapshotKey(userID)); err != nil {
		r.log.Warn("failed to drop cached entitlement", sl.Op(op), sl.Err(err))
	}
	return nil
}

type registryProviders struct {
	registry *purchases.Registry
}

// FromRegistry адаптирует реестр клиентов провайдера к Providers.
func FromRegistry(r *purchases.Registry) Providers {
	return registryProviders{registry: r}
}

func (p registryProviders) Provider(platform string) (Provider, error) {
	c, err := p.registry.For(platform)
	if err != nil {
		return nil, err
	}
	return c, nil
}
