package categories

import (
	"errors"
	"fmt"
	"time"

	"bulkwala/internal/store"
)

var (
	ErrCategoryNotFound = fmt.Errorf("category %w", store.ErrNotFound)
	ErrDuplicateSlug    = fmt.Errorf("category slug: %w", store.ErrConflict)
	ErrEmptyName        = fmt.Errorf("category name cannot be empty: %w", store.ErrValidation)
	errNilCategory      = errors.New("category cannot be nil")
)

// Ref is the embedded summary used wherever another entity points at a
// category or subcategory.
type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Category struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	ImgURL        string    `json:"imgUrl"`
	Banner        []string  `json:"banner"`
	Subcategories []Ref     `json:"subcategories"`
	IsDeleted     bool      `json:"isDeleted"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (c *Category) Ref() Ref {
	return Ref{ID: c.ID, Name: c.Name, Slug: c.Slug}
}

// Patch carries the fields of an update. Nil means unchanged.
type Patch struct {
	Name   *string
	Slug   *string
	ImgURL *string
	Banner []string
}

func (p Patch) Empty() bool {
	return p.Name == nil && p.Slug == nil && p.ImgURL == nil && p.Banner == nil
}

// Apply copies the set fields of p onto c.
func (c *Category) Apply(p Patch) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Slug != nil {
		c.Slug = *p.Slug
	}
	if p.ImgURL != nil {
		c.ImgURL = *p.ImgURL
	}
	if p.Banner != nil {
		c.Banner = p.Banner
	}
}
