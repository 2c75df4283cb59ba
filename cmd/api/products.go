package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"bulkwala/internal/degrade"
	"bulkwala/internal/domain/categories"
	"bulkwala/internal/domain/products"
	"bulkwala/internal/fallback"
	"bulkwala/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

var (
	errSubcategoryParent = fmt.Errorf("subcategory does not belong to category: %w", store.ErrValidation)
	errProductCategory   = fmt.Errorf("product category %w", store.ErrNotFound)
)

type createProductPayload struct {
	Title            string           `json:"title" validate:"required,max=200"`
	Description      string           `json:"description" validate:"max=5000"`
	Price            decimal.Decimal  `json:"price"`
	DiscountPrice    *decimal.Decimal `json:"discountPrice"`
	Stock            int              `json:"stock" validate:"gte=0"`
	Category         string           `json:"category" validate:"required"`
	Subcategory      string           `json:"subcategory"`
	Images           []string         `json:"images" validate:"max=10,dive,url"`
	Videos           []string         `json:"videos" validate:"max=5,dive,url"`
	Tags             []string         `json:"tags"`
	Color            []string         `json:"color"`
	IsActive         *bool            `json:"isActive"`
	IsFeatured       bool             `json:"isFeatured"`
	SKU              string           `json:"sku" validate:"max=64"`
	GenericName      string           `json:"genericName"`
	CountryOfOrigin  string           `json:"countryOfOrigin"`
	ManufacturerName string           `json:"manufacturerName"`
	GSTSlab          int              `json:"gstSlab" validate:"oneof=0 5 12 18 28"`
}

type updateProductPayload struct {
	Title            *string          `json:"title" validate:"omitempty,min=1,max=200"`
	Description      *string          `json:"description" validate:"omitempty,max=5000"`
	Price            *decimal.Decimal `json:"price"`
	DiscountPrice    *decimal.Decimal `json:"discountPrice"`
	Stock            *int             `json:"stock" validate:"omitempty,gte=0"`
	Category         *string          `json:"category"`
	Subcategory      *string          `json:"subcategory"`
	Images           []string         `json:"images" validate:"omitempty,max=10,dive,url"`
	Videos           []string         `json:"videos" validate:"omitempty,max=5,dive,url"`
	Tags             []string         `json:"tags"`
	Color            []string         `json:"color"`
	IsActive         *bool            `json:"isActive"`
	IsFeatured       *bool            `json:"isFeatured"`
	SKU              *string          `json:"sku" validate:"omitempty,max=64"`
	GenericName      *string          `json:"genericName"`
	CountryOfOrigin  *string          `json:"countryOfOrigin"`
	ManufacturerName *string          `json:"manufacturerName"`
	GSTSlab          *int             `json:"gstSlab" validate:"omitempty,oneof=0 5 12 18 28"`
}

func checkPrices(price decimal.Decimal, discount *decimal.Decimal) error {
	p := products.Product{Price: price, DiscountPrice: nullDecimal(discount)}
	return p.CheckPrices()
}

// checkPatchPrices rejects values that are wrong on their own. The pair is
// checked against the stored row when the patch is applied.
func checkPatchPrices(price, discount *decimal.Decimal) error {
	if price != nil && !price.IsPositive() {
		return products.ErrInvalidPrice
	}
	if discount != nil && discount.IsNegative() {
		return products.ErrNegativeDiscount
	}
	if price != nil && discount != nil {
		return checkPrices(*price, discount)
	}
	return nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil || d.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

// resolveCategory accepts a category id or slug.
func (app *application) resolveCategory(ctx context.Context, idOrSlug string) (categories.Ref, error) {
	c, err := app.store.Categories.GetByID(ctx, idOrSlug)
	if errors.Is(err, store.ErrNotFound) {
		c, err = app.store.Categories.GetBySlug(ctx, idOrSlug)
	}
	if errors.Is(err, store.ErrNotFound) {
		return categories.Ref{}, errProductCategory
	}
	if err != nil {
		return categories.Ref{}, err
	}
	return c.Ref(), nil
}

// resolveSubcategory loads a subcategory by slug and checks its parent.
func (app *application) resolveSubcategory(ctx context.Context, slug string, parent categories.Ref) (categories.Ref, error) {
	s, err := app.store.Subcategories.GetBySlug(ctx, slug)
	if err != nil {
		return categories.Ref{}, err
	}
	if s.Category.ID != parent.ID {
		return categories.Ref{}, errSubcategoryParent
	}
	return s.Ref(), nil
}

// listProductsHandler godoc
//
//	@Summary		List products
//	@Description	Filters by category or subcategory (id or slug), search term and effective price range
//	@Tags			products
//	@Produce		json
//	@Param			category	query		string	false	"Category id or slug"
//	@Param			subcategory	query		string	false	"Subcategory id or slug"
//	@Param			search		query		string	false	"Search in title, description and tags"
//	@Param			minPrice	query		number	false	"Minimum effective price"
//	@Param			maxPrice	query		number	false	"Maximum effective price"
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			limit		query		int		false	"Page size"		default(10)
//	@Success		200			{object}	products.Page
//	@Failure		400			{object}	envelope
//	@Router			/products [get]
func (app *application) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	filter, err := products.ParseFilter(r.URL.Query())
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	op := degrade.Read("list products", degrade.Database)
	out := degrade.Run(r.Context(), app.exec, op, func(ctx context.Context) (products.Page, error) {
		return app.store.Products.List(ctx, filter)
	}, func() (products.Page, error) {
		return fallback.ListProducts(filter), nil
	})

	writeOutcome(app, w, r, out, http.StatusOK, messages{
		OK:       "Products fetched successfully",
		Degraded: "Products fetched successfully (mock data)",
	})
}

// getProductHandler godoc
//
//	@Summary	Get a product by slug
//	@Tags		products
//	@Produce	json
//	@Param		slug	path		string	true	"Product slug"
//	@Success	200		{object}	products.Product
//	@Failure	404		{object}	envelope
//	@Router		/products/{slug} [get]
func (app *application) getProductHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	op := degrade.Read("get product", degrade.Database)
	out := degrade.Run(r.Context(), app.exec, op, func(ctx context.Context) (*products.Product, error) {
		return app.store.Products.GetBySlug(ctx, slug)
	}, func() (*products.Product, error) {
		return fallback.ProductBySlug(slug)
	})

	writeOutcome(app, w, r, out, http.StatusOK, messages{
		OK:       "Product fetched successfully",
		Degraded: "Product fetched successfully (mock data)",
	})
}

// createProductHandler godoc
//
//	@Summary	Create a product
//	@Tags		products
//	@Accept		json
//	@Produce	json
//	@Param		payload	body		createProductPayload	true	"Product"
//	@Success	201		{object}	products.Product
//	@Failure	400		{object}	envelope
//	@Failure	404		{object}	envelope
//	@Failure	503		{object}	envelope
//	@Security	ApiKeyAuth
//	@Router		/products [post]
func (app *application) createProductHandler(w http.ResponseWriter, r *http.Request) {
	var payload createProductPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := checkPrices(payload.Price, payload.DiscountPrice); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	claims := getClaimsFromContext(r)

	op := degrade.Write("create product", degrade.Database)
	out := degrade.Run(r.Context(), app.exec, op, func(ctx context.Context) (*products.Product, error) {
		category, err := app.resolveCategory(ctx, payload.Category)
		if err != nil {
			return nil, err
		}

		p := &products.Product{
			Title:            payload.Title,
			Description:      payload.Description,
			Price:            payload.Price,
			DiscountPrice:    nullDecimal(payload.DiscountPrice),
			Stock:            payload.Stock,
			Category:         category,
			Images:           payload.Images,
			Videos:           payload.Videos,
			Tags:             payload.Tags,
			Color:            payload.Color,
			IsActive:         payload.IsActive == nil || *payload.IsActive,
			IsFeatured:       payload.IsFeatured,
			SKU:              payload.SKU,
			GenericName:      payload.GenericName,
			CountryOfOrigin:  payload.CountryOfOrigin,
			ManufacturerName: payload.ManufacturerName,
			CreatedBy:        claims.Subject,
			GSTSlab:          payload.GSTSlab,
		}

		if payload.Subcategory != "" {
			sub, err := app.resolveSubcategory(ctx, payload.Subcategory, category)
			if err != nil {
				return nil, err
			}
			p.Subcategory = &sub
		}

		if p.Slug, err = app.resolveSlug(ctx, "", payload.Title, app.store.Products.SlugExists, products.ErrDuplicateSlug); err != nil {
			return nil, err
		}

		if err := app.store.Products.Create(ctx, p); err != nil {
			return nil, err
		}
		return p, nil
	}, nil)

	writeOutcome(app, w, r, out, http.StatusCreated, messages{OK: "Product created successfully"})
}

// updateProductHandler godoc
//
//	@Summary		Update a product
//	@Description	Fields that are omitted stay unchanged
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Param			slug	path		string					true	"Product slug"
//	@Param			payload	body		updateProductPayload	true	"Fields to change"
//	@Success		200		{object}	products.Product
//	@Failure		400		{object}	envelope
//	@Failure		404		{object}	envelope
//	@Failure		503		{object}	envelope
//	@Security		ApiKeyAuth
//	@Router			/products/{slug} [put]
func (app *application) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	var payload updateProductPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := checkPatchPrices(payload.Price, payload.DiscountPrice); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	patch := products.Patch{
		Title:            payload.Title,
		Description:      payload.Description,
		Price:            payload.Price,
		Stock:            payload.Stock,
		Images:           payload.Images,
		Videos:           payload.Videos,
		Tags:             payload.Tags,
		Color:            payload.Color,
		IsActive:         payload.IsActive,
		IsFeatured:       payload.IsFeatured,
		SKU:              payload.SKU,
		GenericName:      payload.GenericName,
		CountryOfOrigin:  payload.CountryOfOrigin,
		ManufacturerName: payload.ManufacturerName,
		GSTSlab:          payload.GSTSlab,
	}
	if payload.DiscountPrice != nil {
		d := nullDecimal(payload.DiscountPrice)
		patch.DiscountPrice = &d
	}

	op := degrade.Write("update product", degrade.Database)
	out := degrade.Run(r.Context(), app.exec, op, func(ctx context.Context) (*products.Product, error) {
		if payload.Category != nil || payload.Subcategory != nil {
			current, err := app.store.Products.GetBySlug(ctx, slug)
			if err != nil {
				return nil, err
			}

			category := current.Category
			if payload.Category != nil {
				if category, err = app.resolveCategory(ctx, *payload.Category); err != nil {
					return nil, err
				}
				patch.Category = &category
			}
			if payload.Subcategory != nil && *payload.Subcategory != "" {
				sub, err := app.resolveSubcategory(ctx, *payload.Subcategory, category)
				if err != nil {
					return nil, err
				}
				patch.Subcategory = &sub
			}
		}

		return app.store.Products.Update(ctx, slug, patch)
	}, nil)

	writeOutcome(app, w, r, out, http.StatusOK, messages{OK: "Product updated successfully"})
}

// deleteProductHandler godoc
//
//	@Summary	Delete a product
//	@Tags		products
//	@Produce	json
//	@Param		slug	path		string	true	"Product slug"
//	@Success	200		{object}	envelope
//	@Failure	404		{object}	envelope
//	@Failure	503		{object}	envelope
//	@Security	ApiKeyAuth
//	@Router		/products/{slug} [delete]
func (app *application) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	op := degrade.Write("delete product", degrade.Database)
	out := degrade.Run(r.Context(), app.exec, op, func(ctx context.Context) (any, error) {
		return nil, app.store.Products.Delete(ctx, slug)
	}, nil)

	writeOutcome(app, w, r, out, http.StatusOK, messages{OK: "Product deleted successfully"})
}

// uploadProductImageHandler godoc
//
//	@Summary		Add an image to a product
//	@Description	Uploads the file and appends its URL to the product images
//	@Tags			products
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			slug	path		string	true	"Product slug"
//	@Param			image	formData	file	true	"Product image"
//	@Success		200		{object}	products.Product
//	@Failure		400		{object}	envelope
//	@Failure		503		{object}	envelope
//	@Security		ApiKeyAuth
//	@Router			/products/{slug}/images [post]
func (app *application) uploadProductImageHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	if err := parseForm(w, r); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	image, err := formImage(r, "image")
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	if image == nil {
		app.badRequestResponse(w, r, errImageRequired)
		return
	}
	defer image.Close()

	op := degrade.Write("add product image", degrade.Database)
	out := degrade.Run(r.Context(), app.exec, op, func(ctx context.Context) (*products.Product, error) {
		p, err := app.store.Products.GetBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}

		upload := app.images.UploadRequired(ctx, image, "products")
		if upload.IsFailure() {
			return nil, upload.Err
		}

		updated, err := app.store.Products.Update(ctx, slug, products.Patch{Images: append(p.Images, upload.Value)})
		if err != nil {
			app.images.Delete(ctx, upload.Value)
			return nil, err
		}
		return updated, nil
	}, nil)

	writeOutcome(app, w, r, out, http.StatusOK, messages{OK: "Product image uploaded successfully"})
}
