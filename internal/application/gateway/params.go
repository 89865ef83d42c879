// Package gateway holds the configuration surface shared by all gateway
// actions and the webhook reconciler.
package gateway

import "strings"

// Params carries the gateway settings resolved once per request. Sandbox
// mode selects the test API key; an empty key for the active mode means the
// gateway is not set up and every action must stop with a friendly error.
type Params struct {
	Name       string
	LiveAPIKey string
	TestAPIKey string
	Sandbox    bool
	Develop    bool
	Locale     string
	BaseURL    string
}

// APIKey returns the key for the active mode, or "" when not configured.
func (p Params) APIKey() string {
	if p.Sandbox {
		return p.TestAPIKey
	}
	return p.LiveAPIKey
}

// Active reports whether an API key is configured for the active mode.
func (p Params) Active() bool {
	return p.APIKey() != ""
}

// WebhookURL returns the absolute callback URL passed to Mollie on payment
// creation. Develop mode returns "" so local payments get no webhook.
func (p Params) WebhookURL() string {
	if p.Develop {
		return ""
	}
	return p.AbsoluteURL("/gateway/mollierecurring/webhook")
}

// AbsoluteURL joins a request path onto the configured base URL. Mollie
// rejects relative redirect and webhook URLs.
func (p Params) AbsoluteURL(path string) string {
	return strings.TrimRight(p.BaseURL, "/") + path
}
