// Package sms sends and checks one-time passwords through Twilio Verify.
package sms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://verify.twilio.com/v2"

var ErrInvalidServiceSID = errors.New("twilio verify service SID is invalid: must start with VA")

// Verifier is the provider side of OTP delivery.
type Verifier interface {
	Send(ctx context.Context, to string) (status string, err error)
	Check(ctx context.Context, to, code string) (approved bool, err error)
}

type TwilioVerify struct {
	AccountSID string
	AuthToken  string
	ServiceSID string
	BaseURL    string
	httpClient *http.Client
}

func NewTwilioVerify(accountSID, authToken, serviceSID string) *TwilioVerify {
	return &TwilioVerify{
		AccountSID: accountSID,
		AuthToken:  authToken,
		ServiceSID: serviceSID,
		BaseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *TwilioVerify) validate() error {
	if !strings.HasPrefix(t.ServiceSID, "VA") {
		return ErrInvalidServiceSID
	}
	return nil
}

func (t *TwilioVerify) Send(ctx context.Context, to string) (string, error) {
	if err := t.validate(); err != nil {
		return "", err
	}
	status, err := t.post(ctx, "Verifications", url.Values{"To": {to}, "Channel": {"sms"}})
	if err != nil {
		return "", fmt.Errorf("twilio verify send: %w", err)
	}
	return status, nil
}

func (t *TwilioVerify) Check(ctx context.Context, to, code string) (bool, error) {
	if err := t.validate(); err != nil {
		return false, err
	}
	status, err := t.post(ctx, "VerificationCheck", url.Values{"To": {to}, "Code": {code}})
	if err != nil {
		return false, fmt.Errorf("twilio verify check: %w", err)
	}
	return status == "approved", nil
}

func (t *TwilioVerify) post(ctx context.Context, resource string, form url.Values) (string, error) {
	endpoint := fmt.Sprintf("%s/Services/%s/%s", strings.TrimRight(t.BaseURL, "/"), t.ServiceSID, resource)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(t.AccountSID, t.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	var res struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Code    int    `json:"code"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return "", fmt.Errorf("decode: http=%d err=%w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("http=%d code=%d message=%s", resp.StatusCode, res.Code, res.Message)
	}
	return res.Status, nil
}
