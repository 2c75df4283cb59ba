package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bulkwala/internal/store"
)

const razorpayBaseURL = "https://api.razorpay.com/v1"

var ErrMissingSignature = fmt.Errorf("razorpay verify requires order id, payment id and signature: %w", store.ErrValidation)

type RazorpayAdapter struct {
	KeyID      string
	Secret     string
	BaseURL    string
	httpClient *http.Client
}

func NewRazorpayAdapter(keyID, secret string) *RazorpayAdapter {
	return &RazorpayAdapter{
		KeyID:      keyID,
		Secret:     secret,
		BaseURL:    razorpayBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// InitiatePayment creates a Razorpay order. The client finishes checkout
// with the returned order id and key id.
func (r *RazorpayAdapter) InitiatePayment(ctx context.Context, req PaymentRequest) (PaymentResponse, error) {
	payload := map[string]any{
		"amount":   MinorUnits(req.Amount),
		"currency": currencyOrDefault(req.Currency),
		"receipt":  req.TransactionID,
	}
	body, _ := json.Marshal(payload)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(r.BaseURL, "/")+"/orders", bytes.NewReader(body))
	if err != nil {
		return PaymentResponse{}, err
	}
	httpReq.SetBasicAuth(r.KeyID, r.Secret)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return PaymentResponse{}, fmt.Errorf("razorpay order request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return PaymentResponse{}, fmt.Errorf("razorpay order failed: http=%d body=%s", resp.StatusCode, string(raw))
	}

	var res struct {
		ID       string `json:"id"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
		Receipt  string `json:"receipt"`
		Status   string `json:"status"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return PaymentResponse{}, fmt.Errorf("razorpay order decode: %w body=%s", err, string(raw))
	}

	return PaymentResponse{
		Method:   MethodRazorpay,
		OrderID:  res.ID,
		Amount:   res.Amount,
		Currency: res.Currency,
		Status:   res.Status,
		KeyID:    r.KeyID,
		Data:     map[string]string{"receipt": res.Receipt},
	}, nil
}

// VerifyPayment checks the checkout signature, an HMAC-SHA256 of
// "order_id|payment_id" keyed with the API secret.
func (r *RazorpayAdapter) VerifyPayment(_ context.Context, req PaymentVerifyRequest) (PaymentVerifyResponse, error) {
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		return PaymentVerifyResponse{Success: false}, ErrMissingSignature
	}

	expected := Sign(r.Secret, req.OrderID, req.PaymentID)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(req.Signature))) {
		return PaymentVerifyResponse{Success: false, State: "signature_mismatch"}, nil
	}
	return PaymentVerifyResponse{Success: true, State: "captured"}, nil
}

func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
