// Package services реализует сервис доступа к функциям: сверку прав,
// лимиты тарифа с текущими счётчиками и проверку premium функций.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lyssareba/flika-app-sub001/internal/analytics"
	"github.com/lyssareba/flika-app-sub001/internal/features"
	"github.com/lyssareba/flika-app-sub001/internal/gate"
	"github.com/lyssareba/flika-app-sub001/internal/models"
)

// Reconciler сверка прав пользователя.
type Reconciler interface {
	Reconcile(ctx context.Context, platform, userID string) (models.EntitlementStatus, error)
	LogIn(ctx context.Context, platform, userID string) (models.EntitlementStatus, error)
	LogOut(ctx context.Context, userID string) error
}

// Counter счётчики пользователя из хранилища.
type Counter interface {
	CountProspects(ctx context.Context, userID string) (models.ProspectCounts, error)
	CountDates(ctx context.Context, userID, prospectID string) (int, error)
}

// LimitsReport лимиты тарифа вместе с текущими счётчиками и решениями.
type LimitsReport struct {
	Entitlement    models.EntitlementStatus `json:"entitlement"`
	Limits         models.FeatureLimits     `json:"limits"`
	Counts         models.ProspectCounts    `json:"counts"`
	CanAddProspect bool                     `json:"can_add_prospect"`
	CanArchiveMore bool                     `json:"can_archive_more"`
}

// AccessService связывает сверку прав, резолвер лимитов и premium гейт.
type AccessService struct {
	reconciler Reconciler
	resolver   *features.Resolver
	counter    Counter
	gate       *gate.Gate
	log        *slog.Logger
}

// NewAccessService создаёт AccessService.
func NewAccessService(reconciler Reconciler, resolver *features.Resolver, counter Counter, g *gate.Gate, log *slog.Logger) *AccessService {
	return &AccessService{
		reconciler: reconciler,
		resolver:   resolver,
		counter:    counter,
		gate:       g,
		log:        log,
	}
}

// Entitlement возвращает результат сверки прав.
func (s *AccessService) Entitlement(ctx context.Context, platform, userID string) (models.EntitlementStatus, error) {
	const op = "services.access.Entitlement"
	status, err := s.reconciler.Reconcile(ctx, platform, userID)
	if err != nil {
		return models.EntitlementStatus{}, fmt.Errorf("%s: %w", op, err)
	}
	return status, nil
}

func (s *AccessService) evaluator(ctx context.Context, op, platform, userID string) (models.EntitlementStatus, features.Evaluator, error) {
	status, err := s.reconciler.Reconcile(ctx, platform, userID)
	if err != nil {
		return models.EntitlementStatus{}, features.Evaluator{}, fmt.Errorf("%s: %w", op, err)
	}
	return status, features.NewEvaluator(s.resolver.ForStatus(status)), nil
}

// Limits возвращает лимиты тарифа пользователя и решения по текущим счётчикам.
func (s *AccessService) Limits(ctx context.Context, platform, userID string) (LimitsReport, error) {
	const op = "services.access.Limits"
	status, ev, err := s.evaluator(ctx, op, platform, userID)
	if err != nil {
		return LimitsReport{}, err
	}
	counts, err := s.counter.CountProspects(ctx, userID)
	if err != nil {
		return LimitsReport{}, fmt.Errorf("%s: %w", op, err)
	}
	return LimitsReport{
		Entitlement:    status,
		Limits:         ev.Limits(),
		Counts:         counts,
		CanAddProspect: ev.CanAddProspect(counts.Active),
		CanArchiveMore: ev.CanArchiveMore(counts.Archived),
	}, nil
}

// DateLimit лимит свиданий для проспекта пользователя.
func (s *AccessService) DateLimit(ctx context.Context, platform, userID, prospectID string) (models.DateLimit, error) {
	const op = "services.access.DateLimit"
	_, ev, err := s.evaluator(ctx, op, platform, userID)
	if err != nil {
		return models.DateLimit{}, err
	}
	count, err := s.counter.CountDates(ctx, userID, prospectID)
	if err != nil {
		return models.DateLimit{}, fmt.Errorf("%s: %w", op, err)
	}
	return ev.GetDateLimit(count), nil
}

// CheckFeature проверяет функцию. Если она включена в лимитах тарифа
// пользователя, доступ разрешён сразу, иначе решает premium гейт.
// Блокировка возвращается как решение, а не ошибка.
func (s *AccessService) CheckFeature(ctx context.Context, platform, userID, feature string) (gate.Decision, error) {
	const op = "services.access.CheckFeature"
	status, ev, err := s.evaluator(ctx, op, platform, userID)
	if err != nil {
		return gate.Decision{}, err
	}
	if ev.HasFeature(features.Feature(feature)) {
		return s.gate.Allow(feature), nil
	}
	return s.gate.RequirePremium(analytics.WithUserID(ctx, userID), status, nil, feature, nil), nil
}

// LogIn привязывает пользователя к провайдеру покупок.
func (s *AccessService) LogIn(ctx context.Context, platform, userID string) (models.EntitlementStatus, error) {
	const op = "services.access.LogIn"
	status, err := s.reconciler.LogIn(ctx, platform, userID)
	if err != nil {
		return models.EntitlementStatus{}, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user logged in to purchase provider", slog.String("user_id", userID), slog.String("source", string(status.Source)))
	return status, nil
}

// LogOut забывает закешированные права пользователя.
func (s *AccessService) LogOut(ctx context.Context, userID string) error {
	const op = "services.access.LogOut"
	if err := s.reconciler.LogOut(ctx, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
