package sms

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TwilioGateway implements SMS sending via the Twilio Messages API
type TwilioGateway struct {
	accountSID          string
	authToken           string
	messagingServiceSID string
	apiURL              string
	client              *http.Client
}

// TwilioConfig holds configuration for the Twilio SMS gateway
type TwilioConfig struct {
	AccountSID          string
	AuthToken           string
	MessagingServiceSID string
	APIURL              string // override for testing; defaults to the Twilio API
}

// twilioMessageResponse is the subset of the Twilio response we care about
type twilioMessageResponse struct {
	SID          string `json:"sid"`
	Status       string `json:"status"`
	ErrorCode    *int   `json:"error_code"`
	ErrorMessage string `json:"error_message"`
	Message      string `json:"message"` // populated on API-level errors
}

// NewTwilioGateway creates a new Twilio SMS gateway client
func NewTwilioGateway(config TwilioConfig) *TwilioGateway {
	apiURL := config.APIURL
	if apiURL == "" {
		apiURL = "https://api.twilio.com"
	}
	return &TwilioGateway{
		accountSID:          config.AccountSID,
		authToken:           config.AuthToken,
		messagingServiceSID: config.MessagingServiceSID,
		apiURL:              apiURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Send delivers a text message through the Twilio Messages endpoint
func (g *TwilioGateway) Send(phone, body string) (string, error) {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", g.apiURL, g.accountSID)

	form := url.Values{}
	form.Set("To", phone)
	form.Set("MessagingServiceSid", g.messagingServiceSID)
	form.Set("Body", body)

	req, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build Twilio request: %w", err)
	}
	req.SetBasicAuth(g.accountSID, g.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call Twilio API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read Twilio response: %w", err)
	}

	var msg twilioMessageResponse
	if err := json.Unmarshal(respBody, &msg); err != nil {
		return "", fmt.Errorf("failed to parse Twilio response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reason := msg.Message
		if reason == "" {
			reason = msg.ErrorMessage
		}
		return "", fmt.Errorf("Twilio API returned %d: %s", resp.StatusCode, reason)
	}

	if msg.ErrorCode != nil {
		return "", fmt.Errorf("Twilio rejected message: %d %s", *msg.ErrorCode, msg.ErrorMessage)
	}

	return msg.SID, nil
}

// GetName returns the gateway name
func (g *TwilioGateway) GetName() string {
	return "twilio"
}
