package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SMSService sends text messages through an HTTP SMS gateway
type SMSService struct {
	gatewayURL string
	apiKey     string
	sender     string
	client     *http.Client
}

// NewSMSService creates a new SMS service
func NewSMSService(gatewayURL, apiKey, sender string) *SMSService {
	return &SMSService{
		gatewayURL: gatewayURL,
		apiKey:     apiKey,
		sender:     sender,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

// IsConfigured reports whether the gateway is usable
func (s *SMSService) IsConfigured() bool {
	return s.gatewayURL != "" && s.apiKey != ""
}

// Send sends a single SMS. Without gateway configuration the send is
// simulated so development flows keep working.
func (s *SMSService) Send(to, message string) error {
	if !s.IsConfigured() {
		fmt.Printf("[sms] gateway not configured, simulating send to %s\n", to)
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"to":      to,
		"from":    s.sender,
		"message": message,
	})
	if err != nil {
		return fmt.Errorf("failed to encode SMS payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.gatewayURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build SMS request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("SMS gateway returned status %d", resp.StatusCode)
	}

	return nil
}

// SendOTP sends a one-time login code
func (s *SMSService) SendOTP(to, code string) error {
	return s.Send(to, fmt.Sprintf("KefyStore: votre code de vérification est %s. Il expire dans 10 minutes.", code))
}
