package gateway

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// MockProvider issues synthetic orders when no gateway credentials are
// configured. Development and demo only: the router selects it at startup and
// never when real keys are present.
type MockProvider struct{}

func (MockProvider) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	return &Order{
		ID:          fmt.Sprintf("mock_order_%s", uuid.NewString()),
		AmountPaise: req.AmountPaise,
		Currency:    req.Currency,
		Receipt:     req.Receipt,
		Mock:        true,
	}, nil
}

// MockPaymentID generates a synthetic payment id for a mock confirmation.
func MockPaymentID() string {
	return fmt.Sprintf("mock_pay_%s", uuid.NewString())
}
