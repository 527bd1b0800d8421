// Package entitlement сверяет права пользователя с провайдером покупок и
// превращает снимок покупателя в неизменяемый статус premium.
package entitlement

import "github.com/lyssareba/flika-app-sub001/internal/models"

// premiumIDs права, дающие premium.
var premiumIDs = []models.EntitlementID{
	models.EntitlementPremium,
	models.EntitlementEarlyAdopter,
}

// IsPremiumFrom true, если среди активных прав есть premium или early_adopter.
// Прочие ключи игнорируются.
func IsPremiumFrom(info models.CustomerInfo) bool {
	for _, id := range premiumIDs {
		if _, ok := info.ActiveEntitlements[string(id)]; ok {
			return true
		}
	}
	return false
}

// StatusFrom строит статус из свежего снимка провайдера.
func StatusFrom(info models.CustomerInfo, source models.StatusSource) models.EntitlementStatus {
	ents := make([]models.Entitlement, 0, len(premiumIDs))
	for _, id := range premiumIDs {
		if e, ok := info.ActiveEntitlements[string(id)]; ok {
			ents = append(ents, e)
		}
	}
	return models.EntitlementStatus{
		Known:        true,
		Premium:      IsPremiumFrom(info),
		Source:       source,
		CheckedAt:    info.RequestDate,
		Entitlements: ents,
	}
}
