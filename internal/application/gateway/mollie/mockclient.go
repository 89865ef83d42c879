package mollie

import (
	"context"
	"fmt"
	"sync"
)

// MockClient is an in-memory Client used by usecase tests and local runs.
// Behavior is controlled through the public fields; calls are recorded so
// tests can assert that no charge was attempted.
type MockClient struct {
	mu sync.Mutex

	Customers map[string]*Customer
	Payments  map[string]*Payment

	NextCustomerID string
	NextPaymentID  string
	CheckoutURL    string

	CreateCustomerErr  error
	GetCustomerErr     error
	CreatePaymentErr   error
	GetPaymentErr      error
	CreateRefundErr    error

	CreatedPayments []PaymentRequest
	CreatedRefunds  []Refund
}

func NewMockClient() *MockClient {
	return &MockClient{
		Customers:      make(map[string]*Customer),
		Payments:       make(map[string]*Payment),
		NextCustomerID: "cst_mock",
		NextPaymentID:  "tr_mock",
		CheckoutURL:    "https://www.mollie.com/checkout/select-method/mock",
	}
}

var _ Client = (*MockClient)(nil)

func (m *MockClient) CreateCustomer(ctx context.Context, name, email string, clientID uint) (*Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateCustomerErr != nil {
		return nil, m.CreateCustomerErr
	}

	c := &Customer{
		ID:    m.NextCustomerID,
		Name:  name,
		Email: email,
	}
	m.Customers[c.ID] = c

	return c, nil
}

func (m *MockClient) GetCustomer(ctx context.Context, customerID string) (*Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetCustomerErr != nil {
		return nil, m.GetCustomerErr
	}

	c, ok := m.Customers[customerID]
	if !ok {
		return nil, ErrNotFound
	}

	return c, nil
}

func (m *MockClient) CreateRecurringPayment(ctx context.Context, req PaymentRequest) (*Payment, error) {
	return m.createPayment(req, false)
}

func (m *MockClient) CreateFirstRecurringPayment(ctx context.Context, req PaymentRequest) (*Payment, error) {
	return m.createPayment(req, true)
}

func (m *MockClient) createPayment(req PaymentRequest, first bool) (*Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreatePaymentErr != nil {
		return nil, m.CreatePaymentErr
	}

	m.CreatedPayments = append(m.CreatedPayments, req)

	p := &Payment{
		ID:        m.NextPaymentID,
		Status:    PaymentStatusOpen,
		Amount:    req.Amount,
		Mode:      "test",
		InvoiceID: req.InvoiceID,
	}
	if first {
		p.CheckoutURL = m.CheckoutURL
	}
	m.Payments[p.ID] = p

	return p, nil
}

func (m *MockClient) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetPaymentErr != nil {
		return nil, m.GetPaymentErr
	}

	p, ok := m.Payments[paymentID]
	if !ok {
		return nil, ErrNotFound
	}

	return p, nil
}

func (m *MockClient) CreateRefund(ctx context.Context, paymentID string, amount float64) (*Refund, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateRefundErr != nil {
		return nil, m.CreateRefundErr
	}

	if _, ok := m.Payments[paymentID]; !ok {
		return nil, ErrNotFound
	}

	r := Refund{
		ID:        fmt.Sprintf("re_mock_%d", len(m.CreatedRefunds)+1),
		PaymentID: paymentID,
		Amount:    amount,
	}
	m.CreatedRefunds = append(m.CreatedRefunds, r)

	return &r, nil
}
