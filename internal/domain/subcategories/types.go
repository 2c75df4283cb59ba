package subcategories

import (
	"fmt"
	"time"

	"bulkwala/internal/domain/categories"
	"bulkwala/internal/store"
)

var (
	ErrSubcategoryNotFound = fmt.Errorf("subcategory %w", store.ErrNotFound)
	ErrNotDeleted          = fmt.Errorf("subcategory not found or not deleted: %w", store.ErrNotFound)
	ErrDuplicateSlug       = fmt.Errorf("slug already exists: %w", store.ErrConflict)
)

type Subcategory struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Slug      string         `json:"slug"`
	ImgURL    string         `json:"imgUrl"`
	Category  categories.Ref `json:"category"`
	IsDeleted bool           `json:"isDeleted"`
	DeletedAt *time.Time     `json:"deletedAt,omitempty"`
	DeletedBy *string        `json:"deletedBy,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func (s *Subcategory) Ref() categories.Ref {
	return categories.Ref{ID: s.ID, Name: s.Name, Slug: s.Slug}
}

// Patch carries the fields of an update. Nil means unchanged. Category must
// already be resolved to an existing live category.
type Patch struct {
	Name     *string
	Category *categories.Ref
	ImgURL   *string
}

func (p Patch) Empty() bool {
	return p.Name == nil && p.Category == nil && p.ImgURL == nil
}

func (s *Subcategory) Apply(p Patch) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Category != nil {
		s.Category = *p.Category
	}
	if p.ImgURL != nil {
		s.ImgURL = *p.ImgURL
	}
}
