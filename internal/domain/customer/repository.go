package customer

import "context"

// Repository stores client-to-Mollie-customer mappings.
//
// CustomerID returns "" when no mapping exists or the stored value cannot be
// decrypted; a broken ciphertext behaves like a missing mapping so a new
// customer gets created on the next setup instead of failing the flow.
type Repository interface {
	CustomerID(ctx context.Context, clientID uint) (string, error)
	SetCustomerID(ctx context.Context, clientID uint, customerID string) error
}
