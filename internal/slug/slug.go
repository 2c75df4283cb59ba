// Package slug turns display names into URL slugs.
package slug

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/speps/go-hashids/v2"
)

const maxAttempts = 5

var (
	nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
	validRe  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

	ErrExhausted = errors.New("slug: no free slug found")
)

// Make lowercases name and collapses every run of other characters into a
// single hyphen.
func Make(name string) string {
	s := nonAlnum.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}

func Valid(s string) bool {
	return len(s) <= 120 && validRe.MatchString(s)
}

// ExistsFunc reports whether a slug is taken.
type ExistsFunc func(ctx context.Context, slug string) (bool, error)

// Generator appends a short hashid suffix when the plain slug is taken.
type Generator struct {
	hd  *hashids.HashID
	now func() time.Time
}

func NewGenerator(salt string) (*Generator, error) {
	data := hashids.NewData()
	data.Salt = salt
	data.MinLength = 5
	data.Alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

	hd, err := hashids.NewWithData(data)
	if err != nil {
		return nil, fmt.Errorf("slug: %w", err)
	}
	return &Generator{hd: hd, now: time.Now}, nil
}

func (g *Generator) suffix(attempt int) (string, error) {
	return g.hd.EncodeInt64([]int64{g.now().UnixNano() % 1_000_000_007, int64(attempt)})
}

// Unique returns Make(name), or Make(name) plus a suffix if that is taken.
func (g *Generator) Unique(ctx context.Context, name string, exists ExistsFunc) (string, error) {
	base := Make(name)
	if base == "" {
		return "", fmt.Errorf("slug: %q has no usable characters", name)
	}

	candidate := base
	for attempt := 0; attempt < maxAttempts; attempt++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}

		sfx, err := g.suffix(attempt)
		if err != nil {
			return "", fmt.Errorf("slug: %w", err)
		}
		candidate = base + "-" + sfx
	}
	return "", ErrExhausted
}
