package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RazorpayProvider creates orders against the Razorpay Orders API using
// key-id/key-secret basic auth.
type RazorpayProvider struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	client    *http.Client
}

func NewRazorpayProvider(baseURL, keyID, keySecret string, timeout time.Duration) *RazorpayProvider {
	if baseURL == "" {
		baseURL = "https://api.razorpay.com"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RazorpayProvider{
		BaseURL:   baseURL,
		KeyID:     keyID,
		KeySecret: keySecret,
		client:    &http.Client{Timeout: timeout},
	}
}

type razorpayOrderReq struct {
	Amount   int64             `json:"amount"` // paise
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type razorpayOrderResp struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type razorpayErrorResp struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (p *RazorpayProvider) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	body, err := json.Marshal(razorpayOrderReq{
		Amount:   req.AmountPaise,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	})
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(p.KeyID, p.KeySecret)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("razorpay order: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr razorpayErrorResp
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Description != "" {
			return nil, fmt.Errorf("razorpay order: %s (%s)", apiErr.Error.Description, apiErr.Error.Code)
		}
		return nil, fmt.Errorf("razorpay order: status %d", resp.StatusCode)
	}
	var out razorpayOrderResp
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("razorpay order: decode: %w", err)
	}
	return &Order{
		ID:          out.ID,
		AmountPaise: out.Amount,
		Currency:    out.Currency,
		Receipt:     out.Receipt,
	}, nil
}
