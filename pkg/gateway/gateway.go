package gateway

import (
	"context"
)

// CreateOrderRequest describes a payment order to open against the gateway.
// AmountPaise is in the currency's minor unit, as the gateway requires.
type CreateOrderRequest struct {
	AmountPaise int64
	Currency    string
	Receipt     string
	Notes       map[string]string
}

// Order is the gateway's handle for a pending payment. Mock orders are issued
// by the MockProvider only and carry an id the verifier can recognise.
type Order struct {
	ID          string
	AmountPaise int64
	Currency    string
	Receipt     string
	Mock        bool
}

// Provider creates payment orders against a gateway. The payer completes
// payment out-of-band; the confirmation (order id, payment id, signature)
// comes back through the client and is checked by VerifySignature.
type Provider interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error)
}
