package mailer

import (
	"context"
	"fmt"

	"bulkwala/internal/degrade"

	"go.uber.org/zap"
)

// Delivery reports what happened to a message.
type Delivery string

const (
	Sent      Delivery = "sent"
	Simulated Delivery = "simulated"
	Failed    Delivery = "failed"
)

// Service sends account mail through the executor. Without SMTP settings it
// logs the token instead, so local sign-ups keep working.
type Service struct {
	client      Client
	exec        *degrade.Executor
	logger      *zap.SugaredLogger
	frontendURL string
}

func NewService(client Client, exec *degrade.Executor, logger *zap.SugaredLogger, frontendURL string) *Service {
	return &Service{client: client, exec: exec, logger: logger, frontendURL: frontendURL}
}

func (s *Service) SendVerification(ctx context.Context, username, email, token string) Delivery {
	data := map[string]any{"Username": username, "Token": token}
	return s.deliver(ctx, VerifyEmailTemplate, username, email, data, "token", token)
}

// ResetLink is the storefront page that accepts a reset token.
func (s *Service) ResetLink(userID, token string) string {
	return fmt.Sprintf("%s/reset-password/%s/%s", s.frontendURL, userID, token)
}

func (s *Service) SendPasswordReset(ctx context.Context, username, email, userID, token string) Delivery {
	link := s.ResetLink(userID, token)
	data := map[string]any{"Username": username, "ResetLink": link}
	return s.deliver(ctx, ResetPasswordTemplate, username, email, data, "resetLink", link)
}

func (s *Service) deliver(ctx context.Context, tmpl, username, email string, data any, secretKey, secret string) Delivery {
	op := degrade.BestEffort("send "+tmpl, degrade.Email)
	out := degrade.Run(ctx, s.exec, op, func(context.Context) (Delivery, error) {
		if _, err := s.client.Send(tmpl, username, email, data); err != nil {
			return Failed, err
		}
		return Sent, nil
	}, degrade.Value(Failed))

	switch {
	case out.Skipped:
		s.logger.Infow("email not configured, skipping send", "template", tmpl, "email", email, secretKey, secret)
		return Simulated
	case out.IsFailure():
		return Failed
	default:
		return out.Value
	}
}
