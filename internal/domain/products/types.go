package products

import (
	"fmt"
	"time"

	"bulkwala/internal/domain/categories"
	"bulkwala/internal/params"
	"bulkwala/internal/store"

	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = fmt.Errorf("product %w", store.ErrNotFound)
	ErrDuplicateSlug   = fmt.Errorf("product slug: %w", store.ErrConflict)

	ErrInvalidPrice     = fmt.Errorf("price must be greater than 0: %w", store.ErrValidation)
	ErrNegativeDiscount = fmt.Errorf("discount price must not be negative: %w", store.ErrValidation)
	ErrDiscountTooHigh  = fmt.Errorf("discount price must be lower than price: %w", store.ErrValidation)
)

type Product struct {
	ID               string              `json:"id"`
	Title            string              `json:"title"`
	Slug             string              `json:"slug"`
	Description      string              `json:"description"`
	Price            decimal.Decimal     `json:"price"`
	DiscountPrice    decimal.NullDecimal `json:"discountPrice"`
	Stock            int                 `json:"stock"`
	Category         categories.Ref      `json:"category"`
	Subcategory      *categories.Ref     `json:"subcategory"`
	Images           []string            `json:"images"`
	Videos           []string            `json:"videos"`
	Tags             []string            `json:"tags"`
	IsActive         bool                `json:"isActive"`
	IsFeatured       bool                `json:"isFeatured"`
	SKU              string              `json:"sku"`
	Color            []string            `json:"color"`
	GenericName      string              `json:"genericName"`
	CountryOfOrigin  string              `json:"countryOfOrigin"`
	ManufacturerName string              `json:"manufacturerName"`
	CreatedBy        string              `json:"createdBy"`
	GSTSlab          int                 `json:"gstSlab"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

// EffectivePrice is the price a customer pays: the discounted price when one
// is set, otherwise the list price.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice.Valid && !p.DiscountPrice.Decimal.IsZero() {
		return p.DiscountPrice.Decimal
	}
	return p.Price
}

// CheckPrices requires a positive list price and, when a discount is set,
// a discount below it. A zero discount means none.
func (p *Product) CheckPrices() error {
	if !p.Price.IsPositive() {
		return ErrInvalidPrice
	}
	if !p.DiscountPrice.Valid || p.DiscountPrice.Decimal.IsZero() {
		return nil
	}
	if p.DiscountPrice.Decimal.IsNegative() {
		return ErrNegativeDiscount
	}
	if !p.DiscountPrice.Decimal.LessThan(p.Price) {
		return ErrDiscountTooHigh
	}
	return nil
}

// Page is the list response shared by the database and fallback paths.
type Page struct {
	Items      []Product `json:"items"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"totalPages"`
	HasNext    bool      `json:"hasNext"`
	HasPrev    bool      `json:"hasPrev"`
}

// NewPage wraps items, one page out of total matches, with the page meta.
func NewPage(items []Product, total int, p params.Pagination) Page {
	p.ComputeMeta(total)
	return Page{
		Items:      items,
		Total:      p.Total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages,
		HasNext:    p.HasNext,
		HasPrev:    p.HasPrev,
	}
}

// Patch carries the fields of an update. Nil means unchanged.
type Patch struct {
	Title            *string
	Description      *string
	Price            *decimal.Decimal
	DiscountPrice    *decimal.NullDecimal
	Stock            *int
	Category         *categories.Ref
	Subcategory      *categories.Ref
	Images           []string
	Videos           []string
	Tags             []string
	Color            []string
	IsActive         *bool
	IsFeatured       *bool
	SKU              *string
	GenericName      *string
	CountryOfOrigin  *string
	ManufacturerName *string
	GSTSlab          *int
}

// Apply merges in and checks the resulting prices, so a discount-only
// patch is validated against the stored list price.
func (p *Product) Apply(in Patch) error {
	setString(&p.Title, in.Title)
	setString(&p.Description, in.Description)
	setString(&p.SKU, in.SKU)
	setString(&p.GenericName, in.GenericName)
	setString(&p.CountryOfOrigin, in.CountryOfOrigin)
	setString(&p.ManufacturerName, in.ManufacturerName)

	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.DiscountPrice != nil {
		p.DiscountPrice = *in.DiscountPrice
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.GSTSlab != nil {
		p.GSTSlab = *in.GSTSlab
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.Subcategory != nil {
		sub := *in.Subcategory
		p.Subcategory = &sub
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if in.IsFeatured != nil {
		p.IsFeatured = *in.IsFeatured
	}
	if in.Images != nil {
		p.Images = in.Images
	}
	if in.Videos != nil {
		p.Videos = in.Videos
	}
	if in.Tags != nil {
		p.Tags = in.Tags
	}
	if in.Color != nil {
		p.Color = in.Color
	}
	return p.CheckPrices()
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
