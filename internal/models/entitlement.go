// Package models содержит доменные структуры движка доступа к функциям и подсказок:
// права (entitlements) от провайдера покупок, лимиты тарифов, подсказки и
// снимки данных о проспектах, которые движок читает, но не изменяет.
package models

import "time"

// EntitlementID идентификатор права у провайдера покупок.
type EntitlementID string

const (
	// EntitlementPremium: оплаченная подписка.
	EntitlementPremium EntitlementID = "premium"
	// EntitlementEarlyAdopter: бессрочный premium для ранних пользователей.
	EntitlementEarlyAdopter EntitlementID = "early_adopter"
)

// Entitlement представляет одно право пользователя у провайдера покупок.
type Entitlement struct {
	ID                EntitlementID `json:"id"`
	IsActive          bool          `json:"is_active"`
	ExpirationDate    *time.Time    `json:"expiration_date,omitempty"`
	ProductIdentifier *string       `json:"product_identifier,omitempty"`
	IsSandbox         bool          `json:"is_sandbox"`
	WillRenew         bool          `json:"will_renew"`
}

// CustomerInfo нормализованный снимок данных покупателя от провайдера.
// ActiveEntitlements содержит только активные права, ключ: идентификатор права.
type CustomerInfo struct {
	AppUserID          string                 `json:"app_user_id"`
	ActiveEntitlements map[string]Entitlement `json:"active_entitlements"`
	RequestDate        time.Time              `json:"request_date"`
}

// StatusSource откуда получен статус прав.
type StatusSource string

const (
	// SourceProvider: свежий ответ провайдера.
	SourceProvider StatusSource = "provider"
	// SourceCache: последний известный снимок, провайдер недоступен.
	SourceCache StatusSource = "cache"
	// SourceDisabled: провайдер не настроен для платформы, premium недоступен.
	SourceDisabled StatusSource = "disabled"
	// SourceNone: провайдер недоступен и кеша нет.
	SourceNone StatusSource = "none"
)

// EntitlementStatus неизменяемый результат сверки прав пользователя.
// Known=false означает неизвестное состояние, отличное от "не premium".
type EntitlementStatus struct {
	Known        bool          `json:"known"`
	Premium      bool          `json:"premium"`
	Source       StatusSource  `json:"source"`
	CheckedAt    time.Time     `json:"checked_at"`
	Entitlements []Entitlement `json:"entitlements,omitempty"`
}

// IsPremium возвращает true только для известного premium статуса.
// Неизвестный статус считается не premium.
func (s EntitlementStatus) IsPremium() bool {
	return s.Known && s.Premium
}
