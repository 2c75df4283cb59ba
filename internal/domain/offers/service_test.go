package offers_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"bulkwala/internal/degrade"
	"bulkwala/internal/domain/offers"
	"bulkwala/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu          sync.Mutex
	rows        []offers.Offer
	calls       int
	deactivated int
	err         error
}

func (m *memStore) Get(context.Context) (*offers.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.rows) == 0 {
		return nil, offers.ErrNoOffer
	}
	o := m.rows[0]
	return &o, nil
}

func (m *memStore) Upsert(_ context.Context, o *offers.Offer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	if len(m.rows) == 0 {
		m.rows = append(m.rows, *o)
	} else {
		m.rows[0] = *o
	}
	return nil
}

func (m *memStore) Deactivate(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.deactivated++
	if len(m.rows) > 0 {
		m.rows[0].IsActive = false
	}
	return nil
}

func (m *memStore) DeleteAll(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	m.rows = nil
	return nil
}

var t0 = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

func newService(s offers.Store, configured bool, now *time.Time) *offers.Service {
	exec := degrade.New(degrade.Capabilities{degrade.Database: configured}, nil)
	return offers.NewService(s, exec).WithClock(func() time.Time { return *now })
}

func validRequest() offers.StartRequest {
	return offers.StartRequest{
		DiscountPercent:   decimal.NewFromInt(10),
		MaxDiscountAmount: decimal.NewFromInt(200),
	}
}

func TestStartCreatesSingleton(t *testing.T) {
	ms := &memStore{}
	now := t0
	svc := newService(ms, true, &now)

	out := svc.Start(t.Context(), validRequest())
	require.Equal(t, degrade.StatusSuccess, out.Status)
	assert.True(t, out.Value.IsActive)
	assert.Equal(t, t0, out.Value.StartedAt)
	assert.Equal(t, t0.Add(15*time.Minute), out.Value.ExpiresAt)

	now = t0.Add(time.Minute)
	second := validRequest()
	second.DiscountPercent = decimal.NewFromInt(25)
	out = svc.Start(t.Context(), second)
	require.Equal(t, degrade.StatusSuccess, out.Status)

	require.Len(t, ms.rows, 1, "a second start replaces the singleton")
	assert.True(t, ms.rows[0].DiscountPercent.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, now.Add(15*time.Minute), ms.rows[0].ExpiresAt)
}

func TestStartValidates(t *testing.T) {
	tests := []struct {
		name string
		req  offers.StartRequest
		want error
	}{
		{"zero percent", offers.StartRequest{MaxDiscountAmount: decimal.NewFromInt(1)}, offers.ErrInvalidPercent},
		{"over 100", offers.StartRequest{DiscountPercent: decimal.NewFromInt(101), MaxDiscountAmount: decimal.NewFromInt(1)}, offers.ErrInvalidPercent},
		{"missing max", offers.StartRequest{DiscountPercent: decimal.NewFromInt(5)}, offers.ErrInvalidMaxValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := &memStore{}
			now := t0
			out := newService(ms, true, &now).Start(t.Context(), tt.req)

			assert.True(t, out.IsFailure())
			assert.ErrorIs(t, out.Err, tt.want)
			assert.ErrorIs(t, out.Err, store.ErrValidation)
			assert.Zero(t, ms.calls)
		})
	}
}

func TestStartDegrades(t *testing.T) {
	t.Run("unconfigured", func(t *testing.T) {
		ms := &memStore{}
		now := t0
		out := newService(ms, false, &now).Start(t.Context(), validRequest())

		assert.True(t, out.IsDegraded())
		assert.True(t, out.Skipped)
		assert.False(t, out.Value.IsActive)
		assert.Zero(t, ms.calls)
	})

	t.Run("store error", func(t *testing.T) {
		ms := &memStore{err: errors.New("connection refused")}
		now := t0
		out := newService(ms, true, &now).Start(t.Context(), validRequest())

		assert.True(t, out.IsDegraded())
		assert.False(t, out.Skipped)
		assert.False(t, out.Value.IsActive)
	})
}

func TestActive(t *testing.T) {
	ms := &memStore{}
	now := t0
	svc := newService(ms, true, &now)

	out := svc.Active(t.Context())
	require.Equal(t, degrade.StatusSuccess, out.Status)
	assert.False(t, out.Value.IsActive, "no offer")

	require.False(t, svc.Start(t.Context(), validRequest()).IsFailure())

	now = t0.Add(14 * time.Minute)
	out = svc.Active(t.Context())
	assert.True(t, out.Value.IsActive)
	assert.Zero(t, ms.deactivated)
}

func TestActiveExpiresLazily(t *testing.T) {
	ms := &memStore{}
	now := t0
	svc := newService(ms, true, &now)
	require.False(t, svc.Start(t.Context(), validRequest()).IsFailure())

	now = t0.Add(offers.Duration)
	out := svc.Active(t.Context())

	require.Equal(t, degrade.StatusSuccess, out.Status)
	assert.False(t, out.Value.IsActive, "expired exactly at expiresAt")
	assert.False(t, ms.rows[0].IsActive, "expiry is persisted")
	assert.Equal(t, 1, ms.deactivated)

	svc.Active(t.Context())
	assert.Equal(t, 1, ms.deactivated, "already inactive rows are not rewritten")
}

func TestActiveConcurrentExpiry(t *testing.T) {
	ms := &memStore{rows: []offers.Offer{{
		IsActive:        true,
		DiscountPercent: decimal.NewFromInt(10),
		StartedAt:       t0,
		ExpiresAt:       t0.Add(offers.Duration),
	}}}
	now := t0.Add(time.Hour)
	svc := newService(ms, true, &now)

	var wg sync.WaitGroup
	results := make([]degrade.Outcome[*offers.Offer], 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = svc.Active(context.Background())
		}()
	}
	wg.Wait()

	for _, out := range results {
		assert.Equal(t, degrade.StatusSuccess, out.Status)
		assert.False(t, out.Value.IsActive)
	}
	assert.False(t, ms.rows[0].IsActive)
}

func TestActiveDegrades(t *testing.T) {
	ms := &memStore{}
	now := t0
	out := newService(ms, false, &now).Active(t.Context())

	assert.True(t, out.IsDegraded())
	assert.Equal(t, "database not configured", out.Reason)
	assert.Zero(t, ms.calls, "store is never touched without a database")

	ms.err = errors.New("i/o timeout")
	out = newService(ms, true, &now).Active(t.Context())
	assert.True(t, out.IsDegraded())
	assert.Equal(t, "i/o timeout", out.Reason)
}

func TestDelete(t *testing.T) {
	ms := &memStore{}
	now := t0
	svc := newService(ms, true, &now)
	require.False(t, svc.Start(t.Context(), validRequest()).IsFailure())

	out := svc.Delete(t.Context())
	assert.Equal(t, degrade.StatusSuccess, out.Status)
	assert.Empty(t, ms.rows)

	ms.err = errors.New("down")
	assert.True(t, svc.Delete(t.Context()).IsDegraded())
}

func TestOfferJSON(t *testing.T) {
	raw, err := json.Marshal(offers.Inactive())
	require.NoError(t, err)
	assert.JSONEq(t, `{"isActive":false}`, string(raw))

	live := offers.Offer{
		IsActive:          true,
		DiscountPercent:   decimal.NewFromInt(10),
		MaxDiscountAmount: decimal.NewFromInt(200),
		StartedAt:         t0,
		ExpiresAt:         t0.Add(offers.Duration),
		UpdatedAt:         t0,
	}
	raw, err = json.Marshal(live)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"isActive": true,
		"discountPercent": "10",
		"maxDiscountAmount": "200",
		"startedAt": "2025-03-01T12:00:00Z",
		"expiresAt": "2025-03-01T12:15:00Z",
		"updatedAt": "2025-03-01T12:00:00Z"
	}`, string(raw))
}
