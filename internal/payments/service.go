package payments

import (
	"context"
	"fmt"

	"bulkwala/internal/degrade"
	"bulkwala/internal/store"
)

var ErrInvalidAmount = fmt.Errorf("amount must be greater than 0: %w", store.ErrValidation)

// Service routes payment calls. Razorpay is gated on the payments capability
// and stands in with a simulated order when it is missing; other methods go
// straight to their gateway.
type Service struct {
	manager *PaymentManager
	exec    *degrade.Executor
}

func NewService(m *PaymentManager, exec *degrade.Executor) *Service {
	return &Service{manager: m, exec: exec}
}

func (s *Service) CreateOrder(ctx context.Context, method string, req PaymentRequest) degrade.Outcome[PaymentResponse] {
	if !req.Amount.IsPositive() {
		return degrade.Failed[PaymentResponse](ErrInvalidAmount)
	}

	if method != MethodRazorpay {
		resp, err := s.manager.InitiatePayment(ctx, method, req)
		if err != nil {
			return degrade.Failed[PaymentResponse](err)
		}
		return degrade.Succeeded(resp)
	}

	op := degrade.StandIn("create razorpay order", degrade.Payments)
	return degrade.Run(ctx, s.exec, op, func(ctx context.Context) (PaymentResponse, error) {
		return s.manager.InitiatePayment(ctx, method, req)
	}, func() (PaymentResponse, error) {
		return PaymentResponse{
			Method:    MethodRazorpay,
			OrderID:   "order_sim_" + req.TransactionID,
			Amount:    MinorUnits(req.Amount),
			Currency:  currencyOrDefault(req.Currency),
			Status:    "created",
			Simulated: true,
		}, nil
	})
}

// Verify checks a completed payment. Verification never degrades: an
// unconfigured provider cannot vouch for a payment.
func (s *Service) Verify(ctx context.Context, method string, req PaymentVerifyRequest) degrade.Outcome[PaymentVerifyResponse] {
	if method != MethodRazorpay {
		resp, err := s.manager.VerifyPayment(ctx, method, req)
		if err != nil {
			return degrade.Failed[PaymentVerifyResponse](err)
		}
		return degrade.Succeeded(resp)
	}

	op := degrade.Write("verify razorpay payment", degrade.Payments)
	return degrade.Run(ctx, s.exec, op, func(ctx context.Context) (PaymentVerifyResponse, error) {
		return s.manager.VerifyPayment(ctx, method, req)
	}, nil)
}

func (s *Service) Methods() []string {
	return s.manager.Methods()
}
