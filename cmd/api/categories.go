package main

import (
	"context"
	"fmt"
	"net/http"

	"bulkwala/internal/degrade"
	"bulkwala/internal/domain/categories"
	"bulkwala/internal/fallback"
	"bulkwala/internal/store"

	"github.com/go-chi/chi/v5"
)

// listCategoriesHandler godoc
//
//	@Summary		List categories
//	@Description	Returns live categories with their subcategory refs. Serves the built-in catalog when the database is unavailable.
//	@Tags			categories
//	@Produce		json
//	@Success		200	{array}	categories.Category
//	@Router			/categories [get]
func (app *application) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	op := degrade.Read("list categories", degrade.Database)
	out := degrade.Run(r.Context(), app.exec, op, app.store.Categories.List, func() ([]categories.Category, error) {
		return fallback.Categories(), nil
	})

	writeOutcome(app, w, r, out, http.StatusOK, messages{
		OK:       "Categories fetched successfully",
		Degraded: "Categories fetched successfully (mock data)",
	})
}

// getCategoryHandler godoc
//
//	@Summary	Get a category by slug
//	@Tags		categories
//	@Produce	json
//	@Param		slug	path		string	true	"Category slug"
//	@Success	200		{object}	categories.Category
//	@Failure	404		{object}	envelope
//	@Router		/categories/{slug} [get]
func (app *application) getCategoryHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	op := degrade.Read("get category", degrade.Database)
	out := degrade.Run(r.Context(), app.exec, op, func(ctx context.Context) (*categories.Category, error) {
		return app.store.Categories.GetBySlug(ctx, slug)
	}, func() (*categories.Category, error) {
		return fallback.CategoryBySlug(slug)
	})

	writeOutcome(app, w, r, out, http.StatusOK, messages{
		OK:       "Category fetched successfully",
		Degraded: "Category fetched successfully (mock data)",
	})
}

// createCategoryHandler godoc
//
//	@Summary		Create a category
//	@Description	Multipart form with name, optional slug and optional image
//	@Tags			categories
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			name	formData	string	true	"Category name"
//	@Param			slug	formData	string	false	"Custom slug"
//	@Param			image	formData	file	false	"Category image"
//	@Success		201		{object}	categories.Category
//	@Failure		400		{object}	envelope
//	@Failure		409		{object}	envelope
//	@Failure		503		{object}	envelope
//	@Security		ApiKeyAuth
//	@Router			/categories [post]
func (app *application) createCategoryHandler(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	name, _ := formString(r, "name")
	if name == "" {
		app.badRequestResponse(w, r, categories.ErrEmptyName)
		return
	}
	requestedSlug, _ := formString(r, "slug")

	image, err := formImage(r, "image")
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	if image != nil {
		defer image.Close()
	}

	op := degrade.Write("create category", degrade.Database)
	out := degrade.Run(r.Context(), app.exec, op, func(ctx context.Context) (*categories.Category, error) {
		s, err := app.resolveSlug(ctx, requestedSlug, name, app.store.Categories.SlugExists, categories.ErrDuplicateSlug)
		if err != nil {
			return nil, err
		}

		c := &categories.Category{Name: name, Slug: s, Banner: []string{}}
		if image != nil {
			upload := app.images.UploadOptional(ctx, image, "categories")
			if upload.IsFailure() {
				return nil, upload.Err
			}
			c.ImgURL = upload.Value
		}

		if err := app.store.Categories.Create(ctx, c); err != nil {
			app.images.Delete(ctx, c.ImgURL)
			return nil, err
		}
		return c, nil
	}, nil)

	writeOutcome(app, w, r, out, http.StatusCreated, messages{OK: "Category created successfully"})
}

// updateCategoryHandler godoc
//
//	@Summary		Update a category
//	@Description	Multipart form; fields that are not sent stay unchanged
//	@Tags			categories
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			slug	path		string	true	"Category slug"
//	@Param			name	formData	string	false	"Category name"
//	@Param			newSlug	formData	string	false	"New slug"
//	@Param			image	formData	file	false	"Category image"
//	@Success		200		{object}	categories.Category
//	@Failure		404		{object}	envelope
//	@Failure		503		{object}	envelope
//	@Security		ApiKeyAuth
//	@Router			/categories/{slug} [put]
func (app *application) updateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	if err := parseForm(w, r); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var patch categories.Patch
	if name, ok := formString(r, "name"); ok {
		if name == "" {
			app.badRequestResponse(w, r, categories.ErrEmptyName)
			return
		}
		patch.Name = &name
	}
	newSlug, _ := formString(r, "newSlug")

	image, err := formImage(r, "image")
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	if image != nil {
		defer image.Close()
	}

	if patch.Empty() && newSlug == "" && image == nil {
		app.badRequestResponse(w, r, fmt.Errorf("nothing to update: %w", store.ErrValidation))
		return
	}

	op := degrade.Write("update category", degrade.Database)
	out := degrade.Run(r.Context(), app.exec, op, func(ctx context.Context) (*categories.Category, error) {
		if newSlug != "" && newSlug != slug {
			s, err := app.resolveSlug(ctx, newSlug, "", app.store.Categories.SlugExists, categories.ErrDuplicateSlug)
			if err != nil {
				return nil, err
			}
			patch.Slug = &s
		}

		if image != nil {
			upload := app.images.UploadOptional(ctx, image, "categories")
			if upload.IsFailure() {
				return nil, upload.Err
			}
			if upload.Value != "" {
				patch.ImgURL = &upload.Value
			}
		}

		return app.store.Categories.Update(ctx, slug, patch)
	}, nil)

	writeOutcome(app, w, r, out, http.StatusOK, messages{OK: "Category updated successfully"})
}

// deleteCategoryHandler godoc
//
//	@Summary	Soft delete a category
//	@Tags		categories
//	@Produce	json
//	@Param		slug	path		string	true	"Category slug"
//	@Success	200		{object}	envelope
//	@Failure	404		{object}	envelope
//	@Failure	503		{object}	envelope
//	@Security	ApiKeyAuth
//	@Router		/categories/{slug} [delete]
func (app *application) deleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	claims := getClaimsFromContext(r)

	op := degrade.Write("delete category", degrade.Database)
	out := degrade.Run(r.Context(), app.exec, op, func(ctx context.Context) (any, error) {
		return nil, app.store.Categories.SoftDelete(ctx, slug, claims.Subject)
	}, nil)

	writeOutcome(app, w, r, out, http.StatusOK, messages{OK: "Category deleted successfully"})
}
