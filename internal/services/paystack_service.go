package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// CardCheckout is the result of initializing a card transaction: the
// provider-issued reference and the hosted checkout page the payer is
// redirected to.
type CardCheckout struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url"`
}

// PaystackConfig holds Paystack API configuration
type PaystackConfig struct {
	SecretKey string
	BaseURL   string
}

// PaystackClient talks to the Paystack transaction API
type PaystackClient struct {
	config PaystackConfig
	client *http.Client
	logger *logrus.Logger
}

// NewPaystackClient creates a new Paystack API client
func NewPaystackClient(config PaystackConfig, logger *logrus.Logger) *PaystackClient {
	return &PaystackClient{
		config: config,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

type paystackInitRequest struct {
	Email  string `json:"email"`
	Amount int64  `json:"amount"`
}

type paystackInitResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

// InitializeTransaction creates a transaction on Paystack and returns the
// provider reference together with the hosted checkout URL. Amount is in
// minor currency units.
func (p *PaystackClient) InitializeTransaction(email string, amount int64) (*CardCheckout, error) {
	payload := paystackInitRequest{
		Email:  email,
		Amount: amount,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal paystack request: %w", err)
	}

	url := fmt.Sprintf("%s/transaction/initialize", p.config.BaseURL)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create paystack request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.config.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paystack request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read paystack response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		p.logger.WithFields(logrus.Fields{
			"status_code": resp.StatusCode,
			"response":    string(respBody),
		}).Error("Paystack initialize returned non-200")
		return nil, fmt.Errorf("paystack returned status %d", resp.StatusCode)
	}

	var initResp paystackInitResponse
	if err := json.Unmarshal(respBody, &initResp); err != nil {
		return nil, fmt.Errorf("failed to parse paystack response: %w", err)
	}

	if !initResp.Status || initResp.Data.Reference == "" {
		return nil, fmt.Errorf("paystack initialize rejected: %s", initResp.Message)
	}

	p.logger.WithField("reference", initResp.Data.Reference).Info("Paystack transaction initialized")

	return &CardCheckout{
		Reference:        initResp.Data.Reference,
		AuthorizationURL: initResp.Data.AuthorizationURL,
	}, nil
}

type paystackWebhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
	} `json:"data"`
}

// ParsePaystackWebhook extracts the transaction reference and outcome from
// a webhook payload. The second return value is false for event types the
// ledger does not track; those are acknowledged and dropped.
func ParsePaystackWebhook(body []byte) (string, bool, bool) {
	var event paystackWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return "", false, false
	}
	if event.Data.Reference == "" {
		return "", false, false
	}

	switch event.Event {
	case "charge.success":
		return event.Data.Reference, true, true
	case "charge.failed", "transaction.failed":
		return event.Data.Reference, false, true
	}
	return "", false, false
}
