package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testRazorpayService(baseURL string) *RazorpayService {
	return &RazorpayService{
		config: &RazorpayConfig{
			KeyID:         "rzp_test_key",
			KeySecret:     "test_secret",
			WebhookSecret: "whsec",
		},
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func signHMAC(secret, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestCreateOrderSendsPaise(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "test_secret", pass)

		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_abc","amount":16750,"currency":"INR"}`))
	}))
	defer server.Close()

	rs := testRazorpayService(server.URL)
	order, err := rs.CreateOrder(dec("167.50"), "PJ-TEST1")
	assert.NoError(t, err)
	assert.Equal(t, "order_abc", order.ID)
	assert.Equal(t, int64(16750), order.Amount)
	assert.Equal(t, "INR", order.Currency)

	assert.Equal(t, float64(16750), received["amount"])
	assert.Equal(t, "INR", received["currency"])
	assert.Equal(t, "PJ-TEST1", received["receipt"])
}

func TestCreateOrderGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"description":"bad key"}}`))
	}))
	defer server.Close()

	rs := testRazorpayService(server.URL)
	_, err := rs.CreateOrder(dec("100.00"), "PJ-TEST2")
	assert.Error(t, err)
}

func TestVerifyPaymentSignature(t *testing.T) {
	rs := testRazorpayService("")

	good := signHMAC("test_secret", "order_abc|pay_xyz")
	assert.True(t, rs.VerifyPaymentSignature("order_abc", "pay_xyz", good))
	assert.False(t, rs.VerifyPaymentSignature("order_abc", "pay_xyz", "forged"))
	assert.False(t, rs.VerifyPaymentSignature("order_abc", "pay_other", good))
	assert.False(t, rs.VerifyPaymentSignature("order_abc", "pay_xyz", ""))
}

func TestVerifyWebhookSignature(t *testing.T) {
	rs := testRazorpayService("")
	body := []byte(`{"event":"payment.captured"}`)

	assert.True(t, rs.VerifyWebhookSignature(body, signHMAC("whsec", string(body))))
	assert.False(t, rs.VerifyWebhookSignature(body, "forged"))
	assert.False(t, rs.VerifyWebhookSignature(body, ""))

	// Without a configured webhook secret the check is skipped.
	rs.config.WebhookSecret = ""
	assert.True(t, rs.VerifyWebhookSignature(body, ""))
}
