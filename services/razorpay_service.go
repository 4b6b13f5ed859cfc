package services

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/peelojuice/backend/utils"
)

const razorpayBaseURL = "https://api.razorpay.com/v1"

// RazorpayConfig holds the gateway credentials.
type RazorpayConfig struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
}

// RazorpayService talks to the Razorpay REST API and checks the HMAC
// signatures the gateway attaches to callbacks and webhooks.
type RazorpayService struct {
	config     *RazorpayConfig
	baseURL    string
	httpClient *http.Client
}

var (
	razorpayService *RazorpayService
	razorpayOnce    sync.Once
)

// GetRazorpayService returns the singleton gateway client configured from
// the RAZORPAY_* environment variables.
func GetRazorpayService() *RazorpayService {
	razorpayOnce.Do(func() {
		keyID := os.Getenv("RAZORPAY_KEY_ID")
		keySecret := os.Getenv("RAZORPAY_KEY_SECRET")
		webhookSecret := os.Getenv("RAZORPAY_WEBHOOK_SECRET")

		if keyID == "" || keySecret == "" {
			utils.ErrorLogger.Println("RAZORPAY_KEY_ID / RAZORPAY_KEY_SECRET not set; gateway calls will fail")
		}

		razorpayService = &RazorpayService{
			config: &RazorpayConfig{
				KeyID:         keyID,
				KeySecret:     keySecret,
				WebhookSecret: webhookSecret,
			},
			baseURL: razorpayBaseURL,
			httpClient: &http.Client{
				Timeout: 30 * time.Second,
			},
		}
	})
	return razorpayService
}

// ValidateConfig reports whether the gateway credentials are usable.
func (rs *RazorpayService) ValidateConfig() error {
	if rs.config.KeyID == "" {
		return fmt.Errorf("RAZORPAY_KEY_ID is not set")
	}
	if rs.config.KeySecret == "" {
		return fmt.Errorf("RAZORPAY_KEY_SECRET is not set")
	}
	return nil
}

// KeyID exposes the public key for clients that open the gateway's checkout
// widget.
func (rs *RazorpayService) KeyID() string {
	return rs.config.KeyID
}

// CreateOrder registers a remote order with the gateway. Razorpay amounts
// are in paise; grand totals are always exact to 2 decimal places so the
// conversion is lossless.
func (rs *RazorpayService) CreateOrder(amount decimal.Decimal, receipt string) (*GatewayOrder, error) {
	if err := rs.ValidateConfig(); err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"amount":   amount.Mul(decimal.NewFromInt(100)).IntPart(),
		"currency": "INR",
		"receipt":  receipt,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, rs.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(rs.config.KeyID, rs.config.KeySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := rs.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("razorpay create order: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("razorpay create order: status %d: %s", resp.StatusCode, respBody)
	}

	var gatewayOrder GatewayOrder
	if err := json.Unmarshal(respBody, &gatewayOrder); err != nil {
		return nil, err
	}
	return &gatewayOrder, nil
}

// VerifyPaymentSignature checks the checkout callback signature:
// HMAC-SHA256(order_id|payment_id) under the key secret.
func (rs *RazorpayService) VerifyPaymentSignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	if rs.config.KeySecret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(rs.config.KeySecret))
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyWebhookSignature checks the X-Razorpay-Signature header against the
// raw request body. With no webhook secret configured the check is skipped,
// matching gateway dashboards where the secret is optional.
func (rs *RazorpayService) VerifyWebhookSignature(body []byte, signature string) bool {
	if rs.config.WebhookSecret == "" {
		return true
	}
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(rs.config.WebhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
