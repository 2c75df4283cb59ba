// Package fallback is the fixed catalog served when the database cannot
// answer. Every value uses the same Go types as the database path, so the
// JSON a client receives has the same shape either way.
package fallback

import (
	"fmt"
	"time"

	"bulkwala/internal/domain/categories"
	"bulkwala/internal/domain/products"
	"bulkwala/internal/domain/subcategories"

	"github.com/shopspring/decimal"
)

// seededAt is fixed so repeated fallback responses are byte-identical.
var seededAt = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

var (
	electronics = categories.Ref{ID: "mock-category-1", Name: "Electronics", Slug: "electronics"}
	clothing    = categories.Ref{ID: "mock-category-2", Name: "Clothing", Slug: "clothing"}

	mobilePhones = categories.Ref{ID: "mock-subcategory-1", Name: "Mobile Phones", Slug: "mobile-phones"}
	laptops      = categories.Ref{ID: "mock-subcategory-2", Name: "Laptops", Slug: "laptops"}
	tShirts      = categories.Ref{ID: "mock-subcategory-3", Name: "T-Shirts", Slug: "t-shirts"}
	jeans        = categories.Ref{ID: "mock-subcategory-4", Name: "Jeans", Slug: "jeans"}
)

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func discount(s string) decimal.NullDecimal { return decimal.NewNullDecimal(price(s)) }

func ref(r categories.Ref) *categories.Ref { return &r }

// Products returns a fresh copy of the mock product set.
func Products() []products.Product {
	return []products.Product{
		{
			ID:               "mock-product-1",
			Title:            "Smartphone XYZ",
			Slug:             "smartphone-xyz",
			Description:      "Latest smartphone with advanced features",
			Price:            price("599.99"),
			DiscountPrice:    discount("499.99"),
			Stock:            25,
			Category:         electronics,
			Subcategory:      ref(mobilePhones),
			Images:           []string{},
			Videos:           []string{},
			Tags:             []string{"smartphone", "mobile", "electronics"},
			IsActive:         true,
			IsFeatured:       true,
			SKU:              "SP-XYZ-001",
			Color:            []string{"Black", "White"},
			GenericName:      "Smartphone",
			CountryOfOrigin:  "China",
			ManufacturerName: "TechCorp",
			CreatedBy:        "mock-admin-id",
			GSTSlab:          18,
			CreatedAt:        seededAt,
			UpdatedAt:        seededAt,
		},
		{
			ID:               "mock-product-2",
			Title:            "Laptop ABC",
			Slug:             "laptop-abc",
			Description:      "High-performance laptop for professionals",
			Price:            price("1299.99"),
			DiscountPrice:    discount("1199.99"),
			Stock:            15,
			Category:         electronics,
			Subcategory:      ref(laptops),
			Images:           []string{},
			Videos:           []string{},
			Tags:             []string{"laptop", "computer", "electronics"},
			IsActive:         true,
			IsFeatured:       true,
			SKU:              "LP-ABC-001",
			Color:            []string{"Silver", "Black"},
			GenericName:      "Laptop",
			CountryOfOrigin:  "USA",
			ManufacturerName: "CompTech",
			CreatedBy:        "mock-admin-id",
			GSTSlab:          18,
			CreatedAt:        seededAt,
			UpdatedAt:        seededAt,
		},
		{
			ID:               "mock-product-3",
			Title:            "T-Shirt Premium",
			Slug:             "t-shirt-premium",
			Description:      "Comfortable cotton t-shirt",
			Price:            price("29.99"),
			DiscountPrice:    discount("24.99"),
			Stock:            100,
			Category:         clothing,
			Subcategory:      ref(tShirts),
			Images:           []string{},
			Videos:           []string{},
			Tags:             []string{"clothing", "t-shirt", "cotton"},
			IsActive:         true,
			IsFeatured:       false,
			SKU:              "TS-PRM-001",
			Color:            []string{"Red", "Blue", "Green"},
			GenericName:      "T-Shirt",
			CountryOfOrigin:  "India",
			ManufacturerName: "FashionHub",
			CreatedBy:        "mock-seller-id",
			GSTSlab:          12,
			CreatedAt:        seededAt,
			UpdatedAt:        seededAt,
		},
	}
}

func Categories() []categories.Category {
	return []categories.Category{
		{
			ID:            electronics.ID,
			Name:          electronics.Name,
			Slug:          electronics.Slug,
			ImgURL:        "https://ik.imagekit.io/bulkwala/Banner/Electronics.png",
			Banner:        []string{},
			Subcategories: []categories.Ref{mobilePhones, laptops},
			CreatedAt:     seededAt,
			UpdatedAt:     seededAt,
		},
		{
			ID:            clothing.ID,
			Name:          clothing.Name,
			Slug:          clothing.Slug,
			ImgURL:        "https://ik.imagekit.io/bulkwala/Banner/Clothing.png",
			Banner:        []string{},
			Subcategories: []categories.Ref{tShirts, jeans},
			CreatedAt:     seededAt,
			UpdatedAt:     seededAt,
		},
	}
}

func Subcategories() []subcategories.Subcategory {
	return []subcategories.Subcategory{
		{
			ID:        mobilePhones.ID,
			Name:      mobilePhones.Name,
			Slug:      mobilePhones.Slug,
			Category:  electronics,
			CreatedAt: seededAt,
			UpdatedAt: seededAt,
		},
		{
			ID:        laptops.ID,
			Name:      laptops.Name,
			Slug:      laptops.Slug,
			Category:  electronics,
			CreatedAt: seededAt,
			UpdatedAt: seededAt,
		},
	}
}

// ListProducts applies f to the mock products.
func ListProducts(f products.Filter) products.Page {
	return f.Apply(Products())
}

// ListSubcategories filters by parent category id; empty returns all.
func ListSubcategories(categoryID string) []subcategories.Subcategory {
	all := Subcategories()
	if categoryID == "" {
		return all
	}
	out := []subcategories.Subcategory{}
	for _, s := range all {
		if s.Category.ID == categoryID {
			out = append(out, s)
		}
	}
	return out
}

func ProductBySlug(slug string) (*products.Product, error) {
	for _, p := range Products() {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", products.ErrProductNotFound, slug)
}

func CategoryBySlug(slug string) (*categories.Category, error) {
	for _, c := range Categories() {
		if c.Slug == slug {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", categories.ErrCategoryNotFound, slug)
}

func SubcategoryBySlug(slug string) (*subcategories.Subcategory, error) {
	for _, s := range Subcategories() {
		if s.Slug == slug {
			return &s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", subcategories.ErrSubcategoryNotFound, slug)
}
