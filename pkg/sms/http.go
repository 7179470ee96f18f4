package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://www.smslocal.com/dev/bulkV2"
	defaultTimeout = 15 * time.Second
)

// HTTPSender posts codes to a bulk SMS gateway using its OTP route.
type HTTPSender struct {
	APIKey     string
	BaseURL    string
	SenderID   string
	HTTPClient *http.Client
}

func NewHTTPSender(apiKey, baseURL, senderID string) *HTTPSender {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &HTTPSender{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		SenderID:   senderID,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

type otpRequest struct {
	Route     string `json:"route"`
	Numbers   string `json:"numbers"`
	Variables string `json:"variables"`
	SenderID  string `json:"sender_id,omitempty"`
}

// SendOTP does not log the code.
func (s *HTTPSender) SendOTP(ctx context.Context, phone, code string) error {
	raw, err := json.Marshal(otpRequest{
		Route:     "otp",
		Numbers:   phone,
		Variables: code,
		SenderID:  s.SenderID,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", s.APIKey)

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("sms: send to %s: %w", phone, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("sms: request failed status=%d body=%s", resp.StatusCode, string(b))
	}
	return nil
}
