package payments

import (
	"context"

	"github.com/shopspring/decimal"
)

// PaymentGateway is one checkout method. InitiatePayment creates the order
// the storefront pays against; VerifyPayment checks the gateway's callback.
type PaymentGateway interface {
	InitiatePayment(ctx context.Context, req PaymentRequest) (PaymentResponse, error)
	VerifyPayment(ctx context.Context, req PaymentVerifyRequest) (PaymentVerifyResponse, error)
}

type PaymentRequest struct {
	TransactionID string          `json:"transactionId"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	CustomerName  string          `json:"customerName,omitempty"`
	CustomerEmail string          `json:"customerEmail,omitempty"`
	CustomerPhone string          `json:"customerPhone,omitempty"`
}

// PaymentResponse describes the provider order the client completes payment
// against. Amount is in the currency's minor unit.
type PaymentResponse struct {
	Method    string            `json:"method"`
	OrderID   string            `json:"orderId"`
	Amount    int64             `json:"amount"`
	Currency  string            `json:"currency"`
	Status    string            `json:"status"`
	KeyID     string            `json:"keyId,omitempty"`
	Simulated bool              `json:"simulated,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
}

type PaymentVerifyRequest struct {
	OrderID   string            `json:"orderId"`
	PaymentID string            `json:"paymentId"`
	Signature string            `json:"signature"`
	Data      map[string]string `json:"data,omitempty"`
}

type PaymentVerifyResponse struct {
	Success bool   `json:"success"`
	State   string `json:"state"`
}

// MinorUnits converts an amount such as 499.99 to 49999.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
