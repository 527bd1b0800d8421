// Package purchases клиент REST API провайдера покупок. Клиент только читает
// снимок данных покупателя; биллинг и оплата здесь не выполняются.
package purchases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/lyssareba/flika-app-sub001/internal/config"
	"github.com/lyssareba/flika-app-sub001/internal/models"
)

var (
	// ErrNotConfigured для платформы не задан API ключ.
	ErrNotConfigured = errors.New("purchase provider is not configured for platform")
	// ErrUnexpectedStatus провайдер ответил не 2xx.
	ErrUnexpectedStatus = errors.New("unexpected status from purchase provider")
)

// Client клиент провайдера покупок для одной платформы.
type Client struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент провайдера. Таймаут задаётся на уровне http.Client.
func NewClient(apiURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		apiKey:     apiKey,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// GetCustomerInfo запрашивает снимок покупателя и нормализует его.
// Провайдер создаёт покупателя при первом запросе, поэтому тот же вызов
// используется для привязки идентификатора при входе.
func (c *Client) GetCustomerInfo(ctx context.Context, appUserID string) (models.CustomerInfo, error) {
	const op = "purchases.GetCustomerInfo"

	req, err := c.newRequest(ctx, http.MethodGet, "/subscribers/"+url.PathEscape(appUserID))
	if err != nil {
		return models.CustomerInfo{}, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.CustomerInfo{}, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return models.CustomerInfo{}, fmt.Errorf("%s: %w: %s", op, ErrUnexpectedStatus, resp.Status)
	}

	var body subscriberResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.CustomerInfo{}, fmt.Errorf("%s: %w", op, err)
	}
	return normalize(appUserID, body), nil
}

// normalize оставляет только активные права. Право активно, если срок не задан
// или ещё не истёк (с учётом grace period) на момент запроса.
func normalize(appUserID string, body subscriberResponse) models.CustomerInfo {
	now := body.RequestDate
	if now.IsZero() {
		now = time.Now()
	}

	info := models.CustomerInfo{
		AppUserID:          appUserID,
		ActiveEntitlements: make(map[string]models.Entitlement),
		RequestDate:        now,
	}
	for id, e := range body.Subscriber.Entitlements {
		expires := e.ExpiresDate
		if e.GracePeriodExpiresDate != nil && (expires == nil || e.GracePeriodExpiresDate.After(*expires)) {
			expires = e.GracePeriodExpiresDate
		}
		if expires != nil && !expires.After(now) {
			continue
		}

		product := e.ProductIdentifier
		sub := body.Subscriber.Subscriptions[product]
		info.ActiveEntitlements[id] = models.Entitlement{
			ID:                models.EntitlementID(id),
			IsActive:          true,
			ExpirationDate:    e.ExpiresDate,
			ProductIdentifier: &product,
			IsSandbox:         sub.IsSandbox,
			WillRenew:         e.ExpiresDate != nil && sub.UnsubscribeDetectedAt == nil && sub.BillingIssuesDetectedAt == nil,
		}
	}
	return info
}

// Registry клиенты по платформам.
type Registry struct {
	clients map[string]*Client
}

// NewRegistry создаёт клиентов для всех платформ с непустым ключом.
func NewRegistry(cfg config.Purchases) *Registry {
	clients := make(map[string]*Client, len(cfg.APIKeys))
	for platform, key := range cfg.APIKeys {
		if key == "" {
			continue
		}
		clients[platform] = NewClient(cfg.BaseURL, key, cfg.Timeout)
	}
	return &Registry{clients: clients}
}

// For возвращает клиента платформы или ErrNotConfigured.
func (r *Registry) For(platform string) (*Client, error) {
	if r == nil {
		return nil, ErrNotConfigured
	}
	c, ok := r.clients[platform]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotConfigured, platform)
	}
	return c, nil
}
