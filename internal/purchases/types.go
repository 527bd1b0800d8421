package purchases

import "time"

// subscriberResponse ответ GET /subscribers/{app_user_id}.
type subscriberResponse struct {
	RequestDate time.Time  `json:"request_date"`
	Subscriber  subscriber `json:"subscriber"`
}

type subscriber struct {
	OriginalAppUserID string                      `json:"original_app_user_id"`
	Entitlements      map[string]entitlementInfo  `json:"entitlements"`
	Subscriptions     map[string]subscriptionInfo `json:"subscriptions"`
}

// entitlementInfo право в ответе провайдера. ExpiresDate == nil: бессрочное право.
type entitlementInfo struct {
	ExpiresDate            *time.Time `json:"expires_date"`
	GracePeriodExpiresDate *time.Time `json:"grace_period_expires_date"`
	ProductIdentifier      string     `json:"product_identifier"`
	PurchaseDate           *time.Time `json:"purchase_date"`
}

// subscriptionInfo данные о подписке на конкретный продукт.
type subscriptionInfo struct {
	ExpiresDate             *time.Time `json:"expires_date"`
	IsSandbox               bool       `json:"is_sandbox"`
	UnsubscribeDetectedAt   *time.Time `json:"unsubscribe_detected_at"`
	BillingIssuesDetectedAt *time.Time `json:"billing_issues_detected_at"`
}
