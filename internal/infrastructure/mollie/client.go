// Package mollie implements the outbound Mollie v2 API client. Plain
// net/http with a request timeout and bounded response reads; API errors are
// mapped to the gateway's error variants so callers never see status codes.
package mollie

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	molliePort "molliebridge/internal/application/gateway/mollie"
	apperrors "molliebridge/internal/shared/errors"
	"molliebridge/internal/shared/logger"
)

const (
	defaultBaseURL = "https://api.mollie.com/v2"
	requestTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     logger.Interface
}

type Option func(*Client)

// WithBaseURL points the client at a different API host, used by tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

func NewClient(apiKey string, logger logger.Interface, opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ molliePort.Client = (*Client)(nil)

type amountPayload struct {
	Currency string `json:"currency"`
	Value    string `json:"value"`
}

type customerResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type mandateResponse struct {
	Status string `json:"status"`
}

type mandateListResponse struct {
	Embedded struct {
		Mandates []mandateResponse `json:"mandates"`
	} `json:"_embedded"`
}

type paymentResponse struct {
	ID       string        `json:"id"`
	Status   string        `json:"status"`
	Mode     string        `json:"mode"`
	Amount   amountPayload `json:"amount"`
	Metadata struct {
		// Mollie echoes metadata back as stored; older rows carry the
		// invoice ID as a string, newer ones as a number.
		InvoiceID json.RawMessage `json:"invoice_id"`
	} `json:"metadata"`
	Links struct {
		Checkout struct {
			Href string `json:"href"`
		} `json:"checkout"`
	} `json:"_links"`
}

type refundResponse struct {
	ID        string        `json:"id"`
	PaymentID string        `json:"paymentId"`
	Amount    amountPayload `json:"amount"`
}

type errorResponse struct {
	Status int    `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

func (c *Client) CreateCustomer(ctx context.Context, name, email string, clientID uint) (*molliePort.Customer, error) {
	body := map[string]any{
		"name":  name,
		"email": email,
		"metadata": map[string]any{
			"client_id": clientID,
		},
	}

	var resp customerResponse
	if err := c.do(ctx, http.MethodPost, "/customers", body, &resp); err != nil {
		return nil, err
	}

	return &molliePort.Customer{ID: resp.ID, Name: resp.Name, Email: resp.Email}, nil
}

func (c *Client) GetCustomer(ctx context.Context, customerID string) (*molliePort.Customer, error) {
	var resp customerResponse
	if err := c.do(ctx, http.MethodGet, "/customers/"+customerID, nil, &resp); err != nil {
		return nil, err
	}

	hasMandate, err := c.hasValidMandate(ctx, customerID)
	if err != nil {
		return nil, err
	}

	return &molliePort.Customer{
		ID:              resp.ID,
		Name:            resp.Name,
		Email:           resp.Email,
		HasValidMandate: hasMandate,
	}, nil
}

func (c *Client) hasValidMandate(ctx context.Context, customerID string) (bool, error) {
	var resp mandateListResponse
	if err := c.do(ctx, http.MethodGet, "/customers/"+customerID+"/mandates", nil, &resp); err != nil {
		return false, err
	}

	for _, mandate := range resp.Embedded.Mandates {
		if mandate.Status == "valid" {
			return true, nil
		}
	}
	return false, nil
}

func (c *Client) CreateRecurringPayment(ctx context.Context, req molliePort.PaymentRequest) (*molliePort.Payment, error) {
	return c.createPayment(ctx, req, "recurring")
}

func (c *Client) CreateFirstRecurringPayment(ctx context.Context, req molliePort.PaymentRequest) (*molliePort.Payment, error) {
	return c.createPayment(ctx, req, "first")
}

func (c *Client) createPayment(ctx context.Context, req molliePort.PaymentRequest, sequenceType string) (*molliePort.Payment, error) {
	body := map[string]any{
		"amount":       amountPayload{Currency: "EUR", Value: formatAmount(req.Amount)},
		"description":  req.Description,
		"sequenceType": sequenceType,
		"metadata": map[string]any{
			"invoice_id": req.InvoiceID,
		},
	}
	if req.RedirectURL != "" {
		body["redirectUrl"] = req.RedirectURL
	}
	if req.WebhookURL != "" {
		body["webhookUrl"] = req.WebhookURL
	}

	var resp paymentResponse
	if err := c.do(ctx, http.MethodPost, "/customers/"+req.CustomerID+"/payments", body, &resp); err != nil {
		return nil, err
	}

	return toPayment(&resp), nil
}

func (c *Client) GetPayment(ctx context.Context, paymentID string) (*molliePort.Payment, error) {
	var resp paymentResponse
	if err := c.do(ctx, http.MethodGet, "/payments/"+paymentID, nil, &resp); err != nil {
		return nil, err
	}
	return toPayment(&resp), nil
}

func (c *Client) CreateRefund(ctx context.Context, paymentID string, amount float64) (*molliePort.Refund, error) {
	body := map[string]any{
		"amount": amountPayload{Currency: "EUR", Value: formatAmount(amount)},
	}

	var resp refundResponse
	if err := c.do(ctx, http.MethodPost, "/payments/"+paymentID+"/refunds", body, &resp); err != nil {
		return nil, err
	}

	return &molliePort.Refund{
		ID:        resp.ID,
		PaymentID: resp.PaymentID,
		Amount:    parseAmount(resp.Amount.Value),
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mollie request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return c.apiError(method, path, resp.StatusCode, data)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) apiError(method, path string, status int, data []byte) error {
	var apiErr errorResponse
	detail := ""
	if err := json.Unmarshal(data, &apiErr); err == nil {
		detail = apiErr.Detail
		if detail == "" {
			detail = apiErr.Title
		}
	}

	c.logger.Warnw("mollie API error",
		"method", method, "path", path, "status", status, "detail", detail)

	switch status {
	case http.StatusNotFound, http.StatusGone:
		return molliePort.ErrNotFound
	case http.StatusUnprocessableEntity:
		return apperrors.NewValidationError("mollie rejected the request", detail)
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperrors.NewUnavailableError("mollie rejected the API key", detail)
	default:
		return apperrors.NewInternalError(fmt.Sprintf("mollie returned status %d", status), detail)
	}
}

func toPayment(resp *paymentResponse) *molliePort.Payment {
	return &molliePort.Payment{
		ID:          resp.ID,
		Status:      molliePort.PaymentStatus(resp.Status),
		Amount:      parseAmount(resp.Amount.Value),
		Mode:        resp.Mode,
		InvoiceID:   parseInvoiceID(resp.Metadata.InvoiceID),
		CheckoutURL: resp.Links.Checkout.Href,
	}
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

func parseAmount(value string) float64 {
	amount, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return amount
}

// parseInvoiceID accepts both numeric and string-encoded metadata values and
// returns 0 for anything else, which callers treat as missing metadata.
func parseInvoiceID(raw json.RawMessage) uint {
	if len(raw) == 0 {
		return 0
	}

	var asNumber uint
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return asNumber
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if id, err := strconv.ParseUint(asString, 10, 32); err == nil {
			return uint(id)
		}
	}
	return 0
}
