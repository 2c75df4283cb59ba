package sms

import (
	"context"
	"strings"

	"bulkwala/internal/degrade"
)

// StatusPending is what Twilio reports for a freshly sent code, and what the
// stand-in reports when SMS is not configured.
const StatusPending = "pending"

type Service struct {
	verifier    Verifier
	exec        *degrade.Executor
	countryCode string
}

func NewService(v Verifier, exec *degrade.Executor, countryCode string) *Service {
	return &Service{verifier: v, exec: exec, countryCode: countryCode}
}

// E164 prefixes the configured country code to local numbers.
func (s *Service) E164(phone string) string {
	phone = strings.TrimSpace(phone)
	if strings.HasPrefix(phone, "+") {
		return phone
	}
	return s.countryCode + phone
}

func (s *Service) SendOTP(ctx context.Context, phone string) degrade.Outcome[string] {
	op := degrade.StandIn("send otp", degrade.SMS)
	return degrade.Run(ctx, s.exec, op, func(ctx context.Context) (string, error) {
		return s.verifier.Send(ctx, s.E164(phone))
	}, degrade.Value(StatusPending))
}

// VerifyOTP checks code with the provider. Without a provider any non-empty
// code is accepted.
func (s *Service) VerifyOTP(ctx context.Context, phone, code string) degrade.Outcome[bool] {
	op := degrade.StandIn("verify otp", degrade.SMS)
	return degrade.Run(ctx, s.exec, op, func(ctx context.Context) (bool, error) {
		return s.verifier.Check(ctx, s.E164(phone), code)
	}, func() (bool, error) {
		return strings.TrimSpace(code) != "", nil
	})
}
