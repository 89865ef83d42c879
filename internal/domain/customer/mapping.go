// Package customer maps billing clients to their Mollie customer IDs.
package customer

import "fmt"

// Mapping links a billing client to the Mollie customer created for them.
// The customer ID is encrypted at rest by the repository implementation.
type Mapping struct {
	clientID   uint
	customerID string
}

func NewMapping(clientID uint, customerID string) (*Mapping, error) {
	if clientID == 0 {
		return nil, fmt.Errorf("client ID is required")
	}
	return &Mapping{
		clientID:   clientID,
		customerID: customerID,
	}, nil
}

func (m *Mapping) ClientID() uint {
	return m.clientID
}

func (m *Mapping) CustomerID() string {
	return m.customerID
}
