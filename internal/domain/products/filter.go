package products

import (
	"fmt"
	"net/url"
	"strings"

	"bulkwala/internal/params"
	"bulkwala/internal/store"

	"github.com/shopspring/decimal"
)

// Filter holds the listing predicates. Category and Subcategory match either
// the id or the slug. Price bounds are inclusive and apply to EffectivePrice.
type Filter struct {
	Category    string
	Subcategory string
	Search      string
	MinPrice    decimal.NullDecimal
	MaxPrice    decimal.NullDecimal
	params.Pagination
}

// ParseFilter reads ?category=&subcategory=&search=&minPrice=&maxPrice=&page=&limit=.
func ParseFilter(q url.Values) (Filter, error) {
	f := Filter{
		Category:    strings.TrimSpace(q.Get("category")),
		Subcategory: strings.TrimSpace(q.Get("subcategory")),
		Search:      strings.TrimSpace(q.Get("search")),
		Pagination:  params.ParsePagination(q),
	}

	var err error
	if f.MinPrice, err = parsePrice(q.Get("minPrice")); err != nil {
		return Filter{}, fmt.Errorf("minPrice: %w", err)
	}
	if f.MaxPrice, err = parsePrice(q.Get("maxPrice")); err != nil {
		return Filter{}, fmt.Errorf("maxPrice: %w", err)
	}
	return f, nil
}

func parsePrice(raw string) (decimal.NullDecimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("invalid price %q: %w", raw, store.ErrValidation)
	}
	if d.IsNegative() {
		return decimal.NullDecimal{}, fmt.Errorf("price must not be negative: %w", store.ErrValidation)
	}
	return decimal.NewNullDecimal(d), nil
}

// Matches reports whether p is listed under f. Inactive products never are.
func (f Filter) Matches(p *Product) bool {
	if !p.IsActive {
		return false
	}
	if f.Category != "" && p.Category.ID != f.Category && p.Category.Slug != f.Category {
		return false
	}
	if f.Subcategory != "" {
		if p.Subcategory == nil || (p.Subcategory.ID != f.Subcategory && p.Subcategory.Slug != f.Subcategory) {
			return false
		}
	}
	if f.Search != "" && !matchesSearch(p, strings.ToLower(f.Search)) {
		return false
	}

	price := p.EffectivePrice()
	if f.MinPrice.Valid && price.LessThan(f.MinPrice.Decimal) {
		return false
	}
	if f.MaxPrice.Valid && price.GreaterThan(f.MaxPrice.Decimal) {
		return false
	}
	return true
}

func matchesSearch(p *Product, term string) bool {
	if strings.Contains(strings.ToLower(p.Title), term) ||
		strings.Contains(strings.ToLower(p.Description), term) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

// Apply filters and paginates an in-memory product set.
func (f Filter) Apply(all []Product) Page {
	f.Pagination = params.New(f.Page, f.Limit)

	matched := make([]Product, 0, len(all))
	for i := range all {
		if f.Matches(&all[i]) {
			matched = append(matched, all[i])
		}
	}

	items := []Product{}
	if f.Offset < len(matched) {
		end := min(f.Offset+f.Limit, len(matched))
		items = matched[f.Offset:end]
	}

	return NewPage(items, len(matched), f.Pagination)
}
