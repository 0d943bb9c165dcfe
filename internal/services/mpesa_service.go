package services

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// MpesaConfig holds Safaricom Daraja API configuration
type MpesaConfig struct {
	ConsumerKey    string
	ConsumerSecret string
	Shortcode      string
	Passkey        string
	BaseURL        string
	CallbackURL    string
}

// MpesaClient talks to the Safaricom Daraja API. Every STK push fetches a
// fresh OAuth token; Daraja tokens are short-lived and the push volume does
// not justify caching them.
type MpesaClient struct {
	config MpesaConfig
	client *http.Client
	logger *logrus.Logger
}

// NewMpesaClient creates a new Daraja API client
func NewMpesaClient(config MpesaConfig, logger *logrus.Logger) *MpesaClient {
	return &MpesaClient{
		config: config,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

type mpesaTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

func (m *MpesaClient) fetchToken() (string, error) {
	url := fmt.Sprintf("%s/oauth/v1/generate?grant_type=client_credentials", m.config.BaseURL)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.SetBasicAuth(m.config.ConsumerKey, m.config.ConsumerSecret)

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("mpesa token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("mpesa token endpoint returned status %d", resp.StatusCode)
	}

	var tokenResp mpesaTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("failed to parse mpesa token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("mpesa token response missing access_token")
	}

	return tokenResp.AccessToken, nil
}

type stkPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type stkPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// STKPush prompts the given phone for payment and returns the
// CheckoutRequestID, the reference the asynchronous callback will carry.
// Phone must already be normalized to 254XXXXXXXXX; amount is in whole
// shillings as Daraja requires.
func (m *MpesaClient) STKPush(phone string, amount int64) (string, error) {
	token, err := m.fetchToken()
	if err != nil {
		return "", err
	}

	timestamp := time.Now().Format("20060102150405")
	password := base64.StdEncoding.EncodeToString(
		[]byte(m.config.Shortcode + m.config.Passkey + timestamp))

	payload := stkPushRequest{
		BusinessShortCode: m.config.Shortcode,
		Password:          password,
		Timestamp:         timestamp,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            amount,
		PartyA:            phone,
		PartyB:            m.config.Shortcode,
		PhoneNumber:       phone,
		CallBackURL:       m.config.CallbackURL,
		AccountReference:  "LandLink",
		TransactionDesc:   "Land survey payment",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal stk push request: %w", err)
	}

	url := fmt.Sprintf("%s/mpesa/stkpush/v1/processrequest", m.config.BaseURL)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create stk push request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("stk push request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read stk push response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		m.logger.WithFields(logrus.Fields{
			"status_code": resp.StatusCode,
			"response":    string(respBody),
		}).Error("M-Pesa STK push returned non-200")
		return "", fmt.Errorf("mpesa returned status %d", resp.StatusCode)
	}

	var pushResp stkPushResponse
	if err := json.Unmarshal(respBody, &pushResp); err != nil {
		return "", fmt.Errorf("failed to parse stk push response: %w", err)
	}

	if pushResp.ResponseCode != "0" || pushResp.CheckoutRequestID == "" {
		return "", fmt.Errorf("stk push rejected: %s", pushResp.ResponseDescription)
	}

	m.logger.WithField("checkout_request_id", pushResp.CheckoutRequestID).Info("M-Pesa STK push sent")

	return pushResp.CheckoutRequestID, nil
}

type mpesaCallbackEnvelope struct {
	Body struct {
		StkCallback struct {
			MerchantRequestID string `json:"MerchantRequestID"`
			CheckoutRequestID string `json:"CheckoutRequestID"`
			ResultCode        int    `json:"ResultCode"`
			ResultDesc        string `json:"ResultDesc"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

// ParseMpesaCallback extracts the CheckoutRequestID and outcome from a
// Daraja STK callback. ResultCode zero means the payer completed the
// payment; any other code is a failure. The second return value is false
// when the payload does not carry a callback at all.
func ParseMpesaCallback(body []byte) (string, bool, bool) {
	var envelope mpesaCallbackEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", false, false
	}

	cb := envelope.Body.StkCallback
	if cb.CheckoutRequestID == "" {
		return "", false, false
	}

	return cb.CheckoutRequestID, cb.ResultCode == 0, true
}
