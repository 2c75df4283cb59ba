package offers

import (
	"encoding/json"
	"fmt"
	"time"

	"bulkwala/internal/store"

	"github.com/shopspring/decimal"
)

// Duration is how long a flash offer stays live after it is started.
const Duration = 15 * time.Minute

var (
	ErrNoOffer         = fmt.Errorf("offer %w", store.ErrNotFound)
	ErrInvalidPercent  = fmt.Errorf("discount percent must be greater than 0 and at most 100: %w", store.ErrValidation)
	ErrInvalidMaxValue = fmt.Errorf("max discount amount must be greater than 0: %w", store.ErrValidation)
)

// Offer is the singleton flash offer.
type Offer struct {
	IsActive          bool            `json:"isActive"`
	DiscountPercent   decimal.Decimal `json:"discountPercent"`
	MaxDiscountAmount decimal.Decimal `json:"maxDiscountAmount"`
	StartedAt         time.Time       `json:"startedAt"`
	ExpiresAt         time.Time       `json:"expiresAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// Inactive is what clients see when there is no live offer.
func Inactive() *Offer { return &Offer{} }

// ExpiredAt reports whether the offer is past its expiry at now.
// An offer expires at exactly ExpiresAt.
func (o *Offer) ExpiredAt(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}

// LiveAt reports whether the offer applies at now.
func (o *Offer) LiveAt(now time.Time) bool {
	return o.IsActive && !o.ExpiredAt(now)
}

// MarshalJSON collapses an inactive offer to {"isActive":false} so that an
// expired record and no record look the same to clients.
func (o Offer) MarshalJSON() ([]byte, error) {
	if !o.IsActive {
		return []byte(`{"isActive":false}`), nil
	}
	type alias Offer
	return json.Marshal(alias(o))
}

// StartRequest is the admin payload for starting an offer.
type StartRequest struct {
	DiscountPercent   decimal.Decimal `json:"discountPercent"`
	MaxDiscountAmount decimal.Decimal `json:"maxDiscountAmount"`
}

func (r StartRequest) Validate() error {
	if !r.DiscountPercent.IsPositive() || r.DiscountPercent.GreaterThan(decimal.NewFromInt(100)) {
		return ErrInvalidPercent
	}
	if !r.MaxDiscountAmount.IsPositive() {
		return ErrInvalidMaxValue
	}
	return nil
}
