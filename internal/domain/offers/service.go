package offers

import (
	"context"
	"errors"
	"time"

	"bulkwala/internal/degrade"
)

// Service drives the offer lifecycle: NoOffer, Active, Expired. Expiry is
// lazy; the first read after ExpiresAt flips and persists isActive=false.
type Service struct {
	store Store
	exec  *degrade.Executor
	now   func() time.Time
}

func NewService(s Store, exec *degrade.Executor) *Service {
	return &Service{store: s, exec: exec, now: time.Now}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Start upserts the singleton as active for Duration from now. When the
// database is missing or the write fails the caller gets an inactive offer.
func (s *Service) Start(ctx context.Context, req StartRequest) degrade.Outcome[*Offer] {
	if err := req.Validate(); err != nil {
		return degrade.Failed[*Offer](err)
	}

	op := degrade.BestEffort("start offer", degrade.Database)
	return degrade.Run(ctx, s.exec, op, func(ctx context.Context) (*Offer, error) {
		now := s.now().UTC()
		o := &Offer{
			IsActive:          true,
			DiscountPercent:   req.DiscountPercent,
			MaxDiscountAmount: req.MaxDiscountAmount,
			StartedAt:         now,
			ExpiresAt:         now.Add(Duration),
		}
		if err := s.store.Upsert(ctx, o); err != nil {
			return nil, err
		}
		return o, nil
	}, degrade.Value(Inactive()))
}

// Active returns the live offer or an inactive one.
func (s *Service) Active(ctx context.Context) degrade.Outcome[*Offer] {
	op := degrade.Read("get active offer", degrade.Database)
	return degrade.Run(ctx, s.exec, op, s.active, degrade.Value(Inactive()))
}

func (s *Service) active(ctx context.Context) (*Offer, error) {
	o, err := s.store.Get(ctx)
	if errors.Is(err, ErrNoOffer) {
		return Inactive(), nil
	}
	if err != nil {
		return nil, err
	}

	if o.LiveAt(s.now()) {
		return o, nil
	}
	if o.IsActive {
		if err := s.store.Deactivate(ctx); err != nil {
			return nil, err
		}
	}
	return Inactive(), nil
}

// Delete removes any offer. Failures degrade to an empty success.
func (s *Service) Delete(ctx context.Context) degrade.Outcome[struct{}] {
	op := degrade.BestEffort("delete offer", degrade.Database)
	return degrade.Run(ctx, s.exec, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.store.DeleteAll(ctx)
	}, nil)
}
