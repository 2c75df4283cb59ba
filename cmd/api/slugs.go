package main

import (
	"context"
	"fmt"

	"bulkwala/internal/slug"
	"bulkwala/internal/store"
)

// resolveSlug normalises a client supplied slug, or derives a free one from
// name. A supplied slug that is already taken returns taken.
func (app *application) resolveSlug(ctx context.Context, requested, name string, exists slug.ExistsFunc, taken error) (string, error) {
	if requested != "" {
		s := slug.Make(requested)
		if !slug.Valid(s) {
			return "", fmt.Errorf("invalid slug %q: %w", requested, store.ErrValidation)
		}
		inUse, err := exists(ctx, s)
		if err != nil {
			return "", err
		}
		if inUse {
			return "", taken
		}
		return s, nil
	}

	if slug.Make(name) == "" {
		return "", fmt.Errorf("cannot derive a slug from %q: %w", name, store.ErrValidation)
	}
	return app.slugs.Unique(ctx, name, exists)
}
