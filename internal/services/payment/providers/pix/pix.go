package pix

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PixProvider is a client for the PIX payment gateway
type PixProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// PixConfig holds configuration for the PIX provider
type PixConfig struct {
	APIKey  string
	BaseURL string
}

// NewPixProvider creates a new PIX provider
func NewPixProvider(config PixConfig) *PixProvider {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://api.pixgateway.com.br"
	}

	return &PixProvider{
		apiKey:  config.APIKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// CreateChargeRequest represents a request to create a PIX charge
type CreateChargeRequest struct {
	Amount        float64 `json:"amount"`
	Reference     string  `json:"reference"`
	PayerEmail    string  `json:"payer_email"`
	ExpiresIn     int     `json:"expires_in"` // seconds
	Description   string  `json:"description"`
	NotifyWebhook bool    `json:"notify_webhook"`
}

// CreateChargeResponse represents a response to a charge creation
type CreateChargeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		TxID      string `json:"txid"`
		QRCode    string `json:"qr_code"`
		CopyPaste string `json:"copy_paste"`
		ExpiresAt string `json:"expires_at"`
	} `json:"data"`
}

// GetChargeResponse represents the state of a charge on the gateway
type GetChargeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		TxID      string  `json:"txid"`
		Reference string  `json:"reference"`
		Amount    float64 `json:"amount"`
		Status    string  `json:"status"` // pending, paid, expired
		PaidAt    string  `json:"paid_at"`
	} `json:"data"`
}

// WebhookPayload represents a PIX webhook payload
type WebhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		TxID      string  `json:"txid"`
		Reference string  `json:"reference"`
		Amount    float64 `json:"amount"`
		Status    string  `json:"status"`
		PaidAt    string  `json:"paid_at"`
		EndToEnd  string  `json:"end_to_end_id"`
	} `json:"data"`
}

// Charge holds the fields the platform keeps from a created charge
type Charge struct {
	TxID   string
	QRCode string
}

// CreateCharge creates a PIX charge and returns its txid and QR code
func (p *PixProvider) CreateCharge(amount float64, reference, payerEmail string) (*Charge, error) {
	req := CreateChargeRequest{
		Amount:        amount,
		Reference:     reference,
		PayerEmail:    payerEmail,
		ExpiresIn:     3600,
		Description:   "Account deposit",
		NotifyWebhook: true,
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	httpReq, err := http.NewRequest("POST", p.baseURL+"/v1/charges", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	var chargeResp CreateChargeResponse
	if err := json.Unmarshal(respBody, &chargeResp); err != nil {
		return nil, fmt.Errorf("error parsing response: %w", err)
	}
	if !chargeResp.Status {
		return nil, fmt.Errorf("pix gateway error: %s", chargeResp.Message)
	}

	return &Charge{
		TxID:   chargeResp.Data.TxID,
		QRCode: chargeResp.Data.QRCode,
	}, nil
}

// GetCharge fetches the current state of a charge by txid
func (p *PixProvider) GetCharge(txID string) (*GetChargeResponse, error) {
	httpReq, err := http.NewRequest("GET", p.baseURL+"/v1/charges/"+txID, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	var chargeResp GetChargeResponse
	if err := json.Unmarshal(respBody, &chargeResp); err != nil {
		return nil, fmt.Errorf("error parsing response: %w", err)
	}
	if !chargeResp.Status {
		return nil, fmt.Errorf("pix gateway error: %s", chargeResp.Message)
	}

	return &chargeResp, nil
}

// ParseWebhook parses a webhook body from the gateway
func ParseWebhook(data []byte) (*WebhookPayload, error) {
	var payload WebhookPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("error parsing webhook payload: %w", err)
	}
	return &payload, nil
}
