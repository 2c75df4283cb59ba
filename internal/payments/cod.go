package payments

import (
	"context"
	"strings"
)

// CODAdapter is cash on delivery: the order is accepted now and settled by
// the courier, so there is nothing to call or verify.
type CODAdapter struct{}

func (CODAdapter) InitiatePayment(_ context.Context, req PaymentRequest) (PaymentResponse, error) {
	return PaymentResponse{
		Method:   MethodCOD,
		OrderID:  "cod_" + req.TransactionID,
		Amount:   MinorUnits(req.Amount),
		Currency: currencyOrDefault(req.Currency),
		Status:   "pending",
	}, nil
}

func (CODAdapter) VerifyPayment(_ context.Context, req PaymentVerifyRequest) (PaymentVerifyResponse, error) {
	return PaymentVerifyResponse{Success: strings.HasPrefix(req.OrderID, "cod_"), State: "pending"}, nil
}

func currencyOrDefault(c string) string {
	if c == "" {
		return "INR"
	}
	return c
}
