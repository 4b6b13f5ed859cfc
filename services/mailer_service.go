package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/peelojuice/backend/models"
)

const brevoEndpoint = "https://api.brevo.com/v3/smtp/email"

// MailerService sends transactional email through the Brevo HTTP API.
// SMTP ports are blocked on the hosting platform, so everything goes over
// HTTPS. All sends are best-effort; callers log and move on.
type MailerService struct {
	apiKey     string
	fromEmail  string
	fromName   string
	endpoint   string
	httpClient *http.Client
}

var (
	mailerService *MailerService
	mailerOnce    sync.Once
)

func GetMailerService() *MailerService {
	mailerOnce.Do(func() {
		mailerService = &MailerService{
			apiKey:    os.Getenv("BREVO_API_KEY"),
			fromEmail: os.Getenv("MAIL_FROM_EMAIL"),
			fromName:  os.Getenv("MAIL_FROM_NAME"),
			endpoint:  brevoEndpoint,
			httpClient: &http.Client{
				Timeout: 15 * time.Second,
			},
		}
		if mailerService.fromEmail == "" {
			mailerService.fromEmail = "orders@peelojuice.example"
		}
		if mailerService.fromName == "" {
			mailerService.fromName = "PeelOJuice"
		}
	})
	return mailerService
}

// SendOTPEmail delivers an email verification code.
func (ms *MailerService) SendOTPEmail(toEmail, otp string) error {
	subject := "Verify your email"
	body := fmt.Sprintf(
		"Hi,\n\nYour OTP is: %s\n\nThis code is valid for 5 minutes.\n\nIf you didn't request this, please ignore this email.\n",
		otp,
	)
	return ms.send(toEmail, subject, body)
}

// SendOrderConfirmation tells the customer their order was placed.
func (ms *MailerService) SendOrderConfirmation(order *models.Order, user *models.User) error {
	name := user.FullName
	if name == "" {
		name = user.Email
	}
	subject := fmt.Sprintf("Order Confirmation - %s | PeelOJuice", order.OrderNumber)
	body := fmt.Sprintf(
		"Hi %s,\n\nWe've received your order %s.\nTotal: Rs.%s\n\nYour juices are on their way soon!\n",
		name, order.OrderNumber, order.TotalAmount.StringFixed(2),
	)
	return ms.send(user.Email, subject, body)
}

func (ms *MailerService) send(toEmail, subject, textBody string) error {
	if ms.apiKey == "" {
		return fmt.Errorf("BREVO_API_KEY is not set")
	}

	payload := map[string]interface{}{
		"sender": map[string]string{
			"email": ms.fromEmail,
			"name":  ms.fromName,
		},
		"to":          []map[string]string{{"email": toEmail}},
		"subject":     subject,
		"textContent": textBody,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, ms.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", ms.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := ms.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("brevo send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("brevo send: status %d", resp.StatusCode)
	}
	return nil
}
