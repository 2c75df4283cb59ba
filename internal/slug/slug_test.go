package slug

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMake(t *testing.T) {
	tests := map[string]string{
		"Mobile Phones":        "mobile-phones",
		"  T-Shirt   Premium ": "t-shirt-premium",
		"Kids' Toys & Games!":  "kids-toys-games",
		"Laptop ABC 2024":      "laptop-abc-2024",
		"---":                  "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Make(in), in)
	}
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("mobile-phones"))
	assert.False(t, Valid("Mobile"))
	assert.False(t, Valid("-lead"))
	assert.False(t, Valid("double--hyphen"))
}

func TestUnique(t *testing.T) {
	g, err := NewGenerator("test-salt")
	require.NoError(t, err)

	taken := map[string]bool{"laptops": true}
	exists := func(_ context.Context, s string) (bool, error) { return taken[s], nil }

	got, err := g.Unique(context.Background(), "Tablets", exists)
	require.NoError(t, err)
	assert.Equal(t, "tablets", got)

	got, err = g.Unique(context.Background(), "Laptops", exists)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "laptops-"), got)
	assert.True(t, Valid(got), got)
}

func TestUniqueExhausted(t *testing.T) {
	g, err := NewGenerator("s")
	require.NoError(t, err)

	_, err = g.Unique(context.Background(), "x", func(context.Context, string) (bool, error) { return true, nil })
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestUniquePropagatesStoreErrors(t *testing.T) {
	g, err := NewGenerator("s")
	require.NoError(t, err)

	boom := errors.New("db down")
	_, err = g.Unique(context.Background(), "x", func(context.Context, string) (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)

	_, err = g.Unique(context.Background(), "!!!", nil)
	assert.Error(t, err)
}
