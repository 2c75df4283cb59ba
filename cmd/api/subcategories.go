package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"bulkwala/internal/degrade"
	"bulkwala/internal/domain/categories"
	"bulkwala/internal/domain/subcategories"
	"bulkwala/internal/fallback"
	"bulkwala/internal/store"

	"github.com/go-chi/chi/v5"
)

var (
	errParentNotFound    = fmt.Errorf("parent category %w", store.ErrNotFound)
	errNewParentNotFound = fmt.Errorf("new parent category %w", store.ErrNotFound)
)

// listSubcategoriesHandler godoc
//
//	@Summary		List subcategories
//	@Description	Optionally filtered by parent category id
//	@Tags			subcategories
//	@Produce		json
//	@Param			category	query	string	false	"Parent category id"
//	@Success		200			{array}	subcategories.Subcategory
//	@Router			/subcategories [get]
func (app *application) listSubcategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categoryID := strings.TrimSpace(r.URL.Query().Get("category"))

	op := degrade.Read("list subcategories", degrade.Database)
	out := degrade.Run(r.Context(), app.exec, op, func(ctx context.Context) ([]subcategories.Subcategory, error) {
		return app.store.Subcategories.List(ctx, categoryID)
	}, func() ([]subcategories.Subcategory, error) {
		return fallback.ListSubcategories(categoryID), nil
	})

	writeOutcome(app, w, r, out, http.StatusOK, messages{
		OK:       "Subcategories fetched successfully",
		Degraded: "Subcategories fetched successfully (mock data)",
	})
}

// getSubcategoryHandler godoc
//
//	@Summary	Get a subcategory by slug
//	@Tags		subcategories
//	@Produce	json
//	@Param		slug	path		string	true	"Subcategory slug"
//	@Success	200		{object}	subcategories.Subcategory
//	@Failure	404		{object}	envelope
//	@Router		/subcategories/{slug} [get]
func (app *application) getSubcategoryHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	op := degrade.Read("get subcategory", degrade.Database)
	out := degrade.Run(r.Context(), app.exec, op, func(ctx context.Context) (*subcategories.Subcategory, error) {
		return app.store.Subcategories.GetBySlug(ctx, slug)
	}, func() (*subcategories.Subcategory, error) {
		return fallback.SubcategoryBySlug(slug)
	})

	writeOutcome(app, w, r, out, http.StatusOK, messages{
		OK:       "Subcategory fetched successfully",
		Degraded: "Subcategory fetched successfully (mock data)",
	})
}

// parentCategory loads a live category, translating a miss into notFound.
func (app *application) parentCategory(ctx context.Context, id string, notFound error) (*categories.Category, error) {
	c, err := app.store.Categories.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound
	}
	return c, err
}

// createSubcategoryHandler godoc
//
//	@Summary		Create a subcategory
//	@Description	Multipart form with name, parent category id, optional slug and a required image
//	@Tags			subcategories
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			name		formData	string	true	"Subcategory name"
//	@Param			category	formData	string	true	"Parent category id"
//	@Param			slug		formData	string	false	"Custom slug"
//	@Param			image		formData	file	true	"Subcategory image"
//	@Success		201			{object}	subcategories.Subcategory
//	@Failure		400			{object}	envelope
//	@Failure		404			{object}	envelope
//	@Failure		409			{object}	envelope
//	@Failure		503			{object}	envelope
//	@Security		ApiKeyAuth
//	@Router			/subcategories [post]
func (app *application) createSubcategoryHandler(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	name, _ := formString(r, "name")
	categoryID, _ := formString(r, "category")
	requestedSlug, _ := formString(r, "slug")
	if name == "" || categoryID == "" {
		app.badRequestResponse(w, r, fmt.Errorf("name and category are required: %w", store.ErrValidation))
		return
	}

	image, err := formImage(r, "image")
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	if image == nil {
		app.badRequestResponse(w, r, fmt.Errorf("subcategory %w", errImageRequired))
		return
	}
	defer image.Close()

	op := degrade.Write("create subcategory", degrade.Database)
	out := degrade.Run(r.Context(), app.exec, op, func(ctx context.Context) (*subcategories.Subcategory, error) {
		s, err := app.resolveSlug(ctx, requestedSlug, name, app.store.Subcategories.SlugExists, subcategories.ErrDuplicateSlug)
		if err != nil {
			return nil, err
		}

		parent, err := app.parentCategory(ctx, categoryID, errParentNotFound)
		if err != nil {
			return nil, err
		}

		upload := app.images.UploadRequired(ctx, image, "subcategories")
		if upload.IsFailure() {
			return nil, upload.Err
		}

		sub := &subcategories.Subcategory{Name: name, Slug: s, ImgURL: upload.Value, Category: parent.Ref()}
		if err := app.store.Subcategories.Create(ctx, sub); err != nil {
			app.images.Delete(ctx, sub.ImgURL)
			return nil, err
		}
		return sub, nil
	}, nil)

	writeOutcome(app, w, r, out, http.StatusCreated, messages{OK: "Subcategory created successfully"})
}

// updateSubcategoryHandler godoc
//
//	@Summary		Update a subcategory
//	@Description	Multipart form; fields that are not sent stay unchanged
//	@Tags			subcategories
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			slug		path		string	true	"Subcategory slug"
//	@Param			name		formData	string	false	"Subcategory name"
//	@Param			category	formData	string	false	"New parent category id"
//	@Param			image		formData	file	false	"Subcategory image"
//	@Success		200			{object}	subcategories.Subcategory
//	@Failure		404			{object}	envelope
//	@Failure		500			{object}	envelope
//	@Failure		503			{object}	envelope
//	@Security		ApiKeyAuth
//	@Router			/subcategories/{slug} [put]
func (app *application) updateSubcategoryHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	if err := parseForm(w, r); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var patch subcategories.Patch
	if name, _ := formString(r, "name"); name != "" {
		patch.Name = &name
	}
	categoryID, _ := formString(r, "category")

	image, err := formImage(r, "image")
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	if image != nil {
		defer image.Close()
	}

	op := degrade.Write("update subcategory", degrade.Database)
	out := degrade.Run(r.Context(), app.exec, op, func(ctx context.Context) (*subcategories.Subcategory, error) {
		if categoryID != "" {
			parent, err := app.parentCategory(ctx, categoryID, errNewParentNotFound)
			if err != nil {
				return nil, err
			}
			ref := parent.Ref()
			patch.Category = &ref
		}

		// a sent image is required to upload
		if image != nil {
			upload := app.images.UploadRequired(ctx, image, "subcategories")
			if upload.IsFailure() {
				return nil, upload.Err
			}
			patch.ImgURL = &upload.Value
		}

		sub, err := app.store.Subcategories.Update(ctx, slug, patch)
		if err != nil && patch.ImgURL != nil {
			app.images.Delete(ctx, *patch.ImgURL)
		}
		return sub, err
	}, nil)

	writeOutcome(app, w, r, out, http.StatusOK, messages{OK: "Subcategory updated successfully"})
}

// deleteSubcategoryHandler godoc
//
//	@Summary	Soft delete a subcategory
//	@Tags		subcategories
//	@Produce	json
//	@Param		slug	path		string	true	"Subcategory slug"
//	@Success	200		{object}	envelope
//	@Failure	404		{object}	envelope
//	@Failure	503		{object}	envelope
//	@Security	ApiKeyAuth
//	@Router		/subcategories/{slug} [delete]
func (app *application) deleteSubcategoryHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	claims := getClaimsFromContext(r)

	op := degrade.Write("delete subcategory", degrade.Database)
	out := degrade.Run(r.Context(), app.exec, op, func(ctx context.Context) (any, error) {
		return nil, app.store.Subcategories.SoftDelete(ctx, slug, claims.Subject)
	}, nil)

	writeOutcome(app, w, r, out, http.StatusOK, messages{OK: "Subcategory deleted successfully"})
}

// restoreSubcategoryHandler godoc
//
//	@Summary	Restore a soft deleted subcategory
//	@Tags		subcategories
//	@Produce	json
//	@Param		slug	path		string	true	"Subcategory slug"
//	@Success	200		{object}	subcategories.Subcategory
//	@Failure	404		{object}	envelope
//	@Failure	503		{object}	envelope
//	@Security	ApiKeyAuth
//	@Router		/subcategories/{slug}/restore [patch]
func (app *application) restoreSubcategoryHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	op := degrade.Write("restore subcategory", degrade.Database)
	out := degrade.Run(r.Context(), app.exec, op, func(ctx context.Context) (*subcategories.Subcategory, error) {
		return app.store.Subcategories.Restore(ctx, slug)
	}, nil)

	writeOutcome(app, w, r, out, http.StatusOK, messages{OK: "Subcategory restored successfully"})
}
