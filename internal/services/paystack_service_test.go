package services

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeTransaction(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/transaction/initialize", r.URL.Path)
			assert.Equal(t, "Bearer sk_test_secret", r.Header.Get("Authorization"))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"status": true,
				"message": "Authorization URL created",
				"data": {
					"authorization_url": "https://checkout.paystack.com/abc123",
					"access_code": "abc123",
					"reference": "ps_ref_abc123"
				}
			}`))
		}))
		defer server.Close()

		client := NewPaystackClient(PaystackConfig{
			SecretKey: "sk_test_secret",
			BaseURL:   server.URL,
		}, newTestLogger())

		checkout, err := client.InitializeTransaction("client@example.com", 15000)
		require.NoError(t, err)
		assert.Equal(t, "ps_ref_abc123", checkout.Reference)
		assert.Equal(t, "https://checkout.paystack.com/abc123", checkout.AuthorizationURL)
	})

	t.Run("Rejected Initialization", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status": false, "message": "Invalid amount"}`))
		}))
		defer server.Close()

		client := NewPaystackClient(PaystackConfig{
			SecretKey: "sk_test_secret",
			BaseURL:   server.URL,
		}, newTestLogger())

		_, err := client.InitializeTransaction("client@example.com", 0)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid amount")
	})

	t.Run("Non-200 Response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		client := NewPaystackClient(PaystackConfig{
			SecretKey: "sk_wrong",
			BaseURL:   server.URL,
		}, newTestLogger())

		_, err := client.InitializeTransaction("client@example.com", 15000)
		assert.Error(t, err)
	})
}

func TestParsePaystackWebhook(t *testing.T) {
	t.Run("Charge Success", func(t *testing.T) {
		reference, succeeded, ok := ParsePaystackWebhook([]byte(
			`{"event": "charge.success", "data": {"reference": "ps_ref_abc123"}}`))
		assert.True(t, ok)
		assert.True(t, succeeded)
		assert.Equal(t, "ps_ref_abc123", reference)
	})

	t.Run("Charge Failed", func(t *testing.T) {
		reference, succeeded, ok := ParsePaystackWebhook([]byte(
			`{"event": "charge.failed", "data": {"reference": "ps_ref_abc123"}}`))
		assert.True(t, ok)
		assert.False(t, succeeded)
		assert.Equal(t, "ps_ref_abc123", reference)
	})

	t.Run("Untracked Event Is Dropped", func(t *testing.T) {
		_, _, ok := ParsePaystackWebhook([]byte(
			`{"event": "subscription.create", "data": {"reference": "ps_ref_abc123"}}`))
		assert.False(t, ok)
	})

	t.Run("Missing Reference Is Dropped", func(t *testing.T) {
		_, _, ok := ParsePaystackWebhook([]byte(`{"event": "charge.success", "data": {}}`))
		assert.False(t, ok)
	})

	t.Run("Malformed Payload Is Dropped", func(t *testing.T) {
		_, _, ok := ParsePaystackWebhook([]byte(`not json`))
		assert.False(t, ok)
	})
}
