package config

import (
	"fmt"
	"time"
)

// Limits набор лимитов одного тарифа.
type Limits struct {
	MaxActiveProspects        int  `yaml:"max_active_prospects"`
	MaxArchivedProspects      int  `yaml:"max_archived_prospects"`
	MaxDatesPerProspect       int  `yaml:"max_dates_per_prospect"`
	HasCompatibilityBreakdown bool `yaml:"has_compatibility_breakdown"`
	HasDataExport             bool `yaml:"has_data_export"`
	HasCloudSync              bool `yaml:"has_cloud_sync"`
	HasDatingRecaps           bool `yaml:"has_dating_recaps"`
}

// Tiers пара тарифов. Промежуточных уровней нет.
type Tiers struct {
	Free    *Limits `yaml:"free"`
	Premium *Limits `yaml:"premium"`
}

// Prompts пороги правил генерации подсказок.
type Prompts struct {
	ReminderDays           int `yaml:"reminder_days" env-default:"12"`
	MinDatesForDealbreaker int `yaml:"min_dates_for_dealbreaker" env-default:"4"`
	MinUnknownDealbreakers int `yaml:"min_unknown_dealbreakers" env-default:"3"`
	TipWindowDays          int `yaml:"tip_window_days" env-default:"30"`
	TipPoolSize            int `yaml:"tip_pool_size" env-default:"5"`
}

// Engine неизменяемая конфигурация движка. Загружается один раз при старте
// и передаётся в резолвер, генератор и планировщик при конструировании.
type Engine struct {
	Limits     Tiers          `yaml:"limits"`
	Prompts    Prompts        `yaml:"prompts"`
	Cooldowns  map[string]int `yaml:"cooldown_days"`
	Priorities map[string]int `yaml:"priorities"`
	// DefaultCooldownDays применяется к типам, отсутствующим в Cooldowns.
	DefaultCooldownDays int `yaml:"default_cooldown_days" env-default:"7"`
}

// DefaultFreeLimits лимиты бесплатного тарифа.
func DefaultFreeLimits() Limits {
	return Limits{
		MaxActiveProspects:   3,
		MaxArchivedProspects: 10,
		MaxDatesPerProspect:  10,
	}
}

// DefaultPremiumLimits лимиты premium тарифа.
func DefaultPremiumLimits() Limits {
	return Limits{
		MaxActiveProspects:        1000,
		MaxArchivedProspects:      1000,
		MaxDatesPerProspect:       1000,
		HasCompatibilityBreakdown: true,
		HasDataExport:             true,
		HasCloudSync:              true,
		HasDatingRecaps:           true,
	}
}

// DefaultEngine конфигурация движка со значениями по умолчанию.
func DefaultEngine() Engine {
	e := Engine{
		Prompts: Prompts{
			ReminderDays:           12,
			MinDatesForDealbreaker: 4,
			MinUnknownDealbreakers: 3,
			TipWindowDays:          30,
			TipPoolSize:            5,
		},
		DefaultCooldownDays: 7,
	}
	e.applyDefaults()
	return e
}

func (e *Engine) applyDefaults() {
	if e.Limits.Free == nil {
		free := DefaultFreeLimits()
		e.Limits.Free = &free
	}
	if e.Limits.Premium == nil {
		premium := DefaultPremiumLimits()
		e.Limits.Premium = &premium
	}
	if e.Cooldowns == nil {
		e.Cooldowns = map[string]int{
			"date_reminder":     7,
			"dealbreaker_check": 7,
			"milestone":         7,
			"general_tip":       30,
		}
	}
	if e.Priorities == nil {
		e.Priorities = map[string]int{
			"milestone":         1,
			"dealbreaker_check": 2,
			"date_reminder":     3,
			"general_tip":       5,
		}
	}
}

// Validate проверяет, что premium лимиты не меньше free покомпонентно,
// а булевы функции монотонны (free=true не может стать premium=false).
func (e Engine) Validate() error {
	free, premium := e.Limits.Free, e.Limits.Premium
	if free == nil || premium == nil {
		return fmt.Errorf("%w: both free and premium limits are required", ErrInvalidEngine)
	}
	if free.MaxActiveProspects < 0 || free.MaxArchivedProspects < 0 || free.MaxDatesPerProspect < 0 {
		return fmt.Errorf("%w: negative free limit", ErrInvalidEngine)
	}
	if premium.MaxActiveProspects < free.MaxActiveProspects ||
		premium.MaxArchivedProspects < free.MaxArchivedProspects ||
		premium.MaxDatesPerProspect < free.MaxDatesPerProspect {
		return fmt.Errorf("%w: premium limits must dominate free limits", ErrInvalidEngine)
	}
	if (free.HasCompatibilityBreakdown && !premium.HasCompatibilityBreakdown) ||
		(free.HasDataExport && !premium.HasDataExport) ||
		(free.HasCloudSync && !premium.HasCloudSync) ||
		(free.HasDatingRecaps && !premium.HasDatingRecaps) {
		return fmt.Errorf("%w: premium cannot lose a free feature", ErrInvalidEngine)
	}
	if e.Prompts.TipPoolSize <= 0 {
		return fmt.Errorf("%w: tip_pool_size must be positive", ErrInvalidEngine)
	}
	if e.Prompts.ReminderDays <= 0 || e.Prompts.TipWindowDays <= 0 {
		return fmt.Errorf("%w: prompt windows must be positive", ErrInvalidEngine)
	}
	for typ, days := range e.Cooldowns {
		if days < 0 {
			return fmt.Errorf("%w: negative cooldown for %s", ErrInvalidEngine, typ)
		}
	}
	return nil
}

// Cooldown возвращает длительность cooldown для типа подсказки.
func (e Engine) Cooldown(promptType string) time.Duration {
	days, ok := e.Cooldowns[promptType]
	if !ok {
		days = e.DefaultCooldownDays
	}
	return time.Duration(days) * 24 * time.Hour
}

// Priority возвращает приоритет по умолчанию для типа подсказки.
func (e Engine) Priority(promptType string) int {
	if p, ok := e.Priorities[promptType]; ok {
		return p
	}
	return 10
}
