package dto

import "time"

type WebhookTestRequest struct {
	Type string          `json:"type"`
	Data WebhookTestData `json:"data"`
}

// WebhookTestData holds optional overrides for the synthetic record.
type WebhookTestData struct {
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Message    string `json:"message,omitempty"`
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	Quantity   int    `json:"quantity,omitempty"`
	TotalPrice string `json:"totalPrice,omitempty"`
}

type WebhookConfigStatus struct {
	ContactWebhook bool `json:"contactWebhook"`
	OrderWebhook   bool `json:"orderWebhook"`
	Enabled        bool `json:"enabled"`
}

type WebhookCheckResponse struct {
	Success   bool                `json:"success"`
	Message   string              `json:"message"`
	Timestamp *time.Time          `json:"timestamp,omitempty"`
	Config    WebhookConfigStatus `json:"config"`
}

type WebhookTestResponse struct {
	Success   bool       `json:"success"`
	Message   string     `json:"message"`
	Type      string     `json:"type,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}
