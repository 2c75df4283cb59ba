package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"testing"

	"bulkwala/internal/degrade"
	"bulkwala/internal/domain/categories"
	"bulkwala/internal/domain/products"
	"bulkwala/internal/domain/subcategories"
	"bulkwala/internal/imagehost"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMultipartForm(t *testing.T, fields map[string]string, image []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		part, err := mw.CreateFormFile("image", "upload.png")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func withImages(t *testing.T, stores *testStores, up *fakeUploader) *application {
	t.Helper()
	app := newTestApplication(t, degrade.Capabilities{degrade.Database: true, degrade.Images: true}, stores)
	app.images = imagehost.NewService(up, app.exec, "test")
	return app
}

func TestUpdateSubcategory(t *testing.T) {
	t.Run("name only", func(t *testing.T) {
		stores := newTestStores()
		app := newTestApplication(t, withDB(), stores)

		body, ct := newMultipartForm(t, map[string]string{"name": "Notebooks"}, nil)
		rr, env := do(t, app, http.MethodPut, "/api/v1/subcategories/laptops", bearer(t, app, "admin"), body, ct)

		checkResponseCode(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Subcategory updated successfully", env.Message)
		assert.Equal(t, "Notebooks", stores.subcategories.items[0].Name)
	})

	t.Run("image without image host", func(t *testing.T) {
		stores := newTestStores()
		app := newTestApplication(t, withDB(), stores)

		body, ct := newMultipartForm(t, map[string]string{"name": "Notebooks"}, pngHeader)
		rr, env := do(t, app, http.MethodPut, "/api/v1/subcategories/laptops", bearer(t, app, "admin"), body, ct)

		checkResponseCode(t, http.StatusServiceUnavailable, rr.Code)
		assert.Equal(t, "images not configured", env.Message)
		assert.Equal(t, "Laptops", stores.subcategories.items[0].Name, "nothing is written")
	})

	t.Run("upload error", func(t *testing.T) {
		stores := newTestStores()
		up := &fakeUploader{err: errors.New("cloudinary: 502")}
		app := withImages(t, stores, up)

		body, ct := newMultipartForm(t, map[string]string{"name": "Notebooks"}, pngHeader)
		rr, env := do(t, app, http.MethodPut, "/api/v1/subcategories/laptops", bearer(t, app, "admin"), body, ct)

		checkResponseCode(t, http.StatusInternalServerError, rr.Code)
		assert.False(t, env.Success)
		assert.Empty(t, rr.Header().Get(degradedHeader))
		assert.Equal(t, "Laptops", stores.subcategories.items[0].Name)
	})

	t.Run("new image", func(t *testing.T) {
		stores := newTestStores()
		up := &fakeUploader{}
		app := withImages(t, stores, up)

		body, ct := newMultipartForm(t, nil, pngHeader)
		rr, env := do(t, app, http.MethodPut, "/api/v1/subcategories/laptops", bearer(t, app, "admin"), body, ct)

		checkResponseCode(t, http.StatusOK, rr.Code)
		var got subcategories.Subcategory
		require.NoError(t, json.Unmarshal(env.Data, &got))
		require.Len(t, up.uploaded, 1)
		assert.Equal(t, up.uploaded[0], got.ImgURL)
		assert.Equal(t, "Laptops", got.Name)
	})

	t.Run("missing subcategory drops the upload", func(t *testing.T) {
		up := &fakeUploader{}
		app := withImages(t, nil, up)

		body, ct := newMultipartForm(t, nil, pngHeader)
		rr, _ := do(t, app, http.MethodPut, "/api/v1/subcategories/tablets", bearer(t, app, "admin"), body, ct)

		checkResponseCode(t, http.StatusNotFound, rr.Code)
		require.Len(t, up.uploaded, 1)
		assert.Equal(t, up.uploaded, up.destroyed)
	})

	t.Run("unknown parent", func(t *testing.T) {
		app := newTestApplication(t, withDB(), nil)

		body, ct := newMultipartForm(t, map[string]string{"category": "cat-9"}, nil)
		rr, env := do(t, app, http.MethodPut, "/api/v1/subcategories/laptops", bearer(t, app, "admin"), body, ct)

		checkResponseCode(t, http.StatusNotFound, rr.Code)
		assert.Contains(t, env.Message, "new parent category")
	})
}

func TestDeleteAndRestoreSubcategory(t *testing.T) {
	stores := newTestStores()
	app := newTestApplication(t, withDB(), stores)
	admin := bearer(t, app, "admin")

	rr, env := doJSON(t, app, http.MethodDelete, "/api/v1/subcategories/laptops", admin, "")
	checkResponseCode(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Subcategory deleted successfully", env.Message)
	assert.True(t, stores.subcategories.items[0].IsDeleted)

	// laptops is also in the mock catalog; a miss must not fall back to it
	rr, _ = doJSON(t, app, http.MethodGet, "/api/v1/subcategories/laptops", "", "")
	checkResponseCode(t, http.StatusNotFound, rr.Code)
	assert.Empty(t, rr.Header().Get(degradedHeader))

	rr, _ = doJSON(t, app, http.MethodDelete, "/api/v1/subcategories/laptops", admin, "")
	checkResponseCode(t, http.StatusNotFound, rr.Code)

	rr, env = doJSON(t, app, http.MethodPatch, "/api/v1/subcategories/laptops/restore", admin, "")
	checkResponseCode(t, http.StatusOK, rr.Code)
	var restored subcategories.Subcategory
	require.NoError(t, json.Unmarshal(env.Data, &restored))
	assert.False(t, restored.IsDeleted)

	rr, _ = doJSON(t, app, http.MethodGet, "/api/v1/subcategories/laptops", "", "")
	checkResponseCode(t, http.StatusOK, rr.Code)

	// only deleted rows can be restored
	rr, _ = doJSON(t, app, http.MethodPatch, "/api/v1/subcategories/laptops/restore", admin, "")
	checkResponseCode(t, http.StatusNotFound, rr.Code)
}

func TestGetSubcategoryNotFoundIsNeverDegraded(t *testing.T) {
	app := newTestApplication(t, withDB(), nil)

	// present in the mock catalog but not in the store
	rr, env := doJSON(t, app, http.MethodGet, "/api/v1/subcategories/jeans", "", "")

	checkResponseCode(t, http.StatusNotFound, rr.Code)
	assert.Empty(t, rr.Header().Get(degradedHeader))
	assert.False(t, env.Success)
}

func TestUpdateCategory(t *testing.T) {
	tests := []struct {
		name   string
		target string
		fields map[string]string
		want   int
	}{
		{"rename and reslug", "/api/v1/categories/electronics", map[string]string{"name": "Gadgets", "newSlug": "gadgets"}, http.StatusOK},
		{"empty name", "/api/v1/categories/electronics", map[string]string{"name": ""}, http.StatusBadRequest},
		{"nothing to update", "/api/v1/categories/electronics", nil, http.StatusBadRequest},
		{"unknown category", "/api/v1/categories/toys", map[string]string{"name": "Toys"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApplication(t, withDB(), nil)

			body, ct := newMultipartForm(t, tt.fields, nil)
			rr, _ := do(t, app, http.MethodPut, tt.target, bearer(t, app, "admin"), body, ct)

			checkResponseCode(t, tt.want, rr.Code)
		})
	}

	t.Run("new slug is served", func(t *testing.T) {
		app := newTestApplication(t, withDB(), nil)

		body, ct := newMultipartForm(t, map[string]string{"newSlug": "gadgets"}, nil)
		rr, _ := do(t, app, http.MethodPut, "/api/v1/categories/electronics", bearer(t, app, "admin"), body, ct)
		checkResponseCode(t, http.StatusOK, rr.Code)

		rr, env := doJSON(t, app, http.MethodGet, "/api/v1/categories/gadgets", "", "")
		checkResponseCode(t, http.StatusOK, rr.Code)
		var got categories.Category
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, "cat-1", got.ID)
		assert.Equal(t, "Electronics", got.Name)
	})
}

func TestDeleteCategory(t *testing.T) {
	stores := newTestStores()
	app := newTestApplication(t, withDB(), stores)
	admin := bearer(t, app, "admin")

	rr, env := doJSON(t, app, http.MethodDelete, "/api/v1/categories/electronics", admin, "")
	checkResponseCode(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Category deleted successfully", env.Message)
	assert.Empty(t, stores.categories.items)

	rr, _ = doJSON(t, app, http.MethodGet, "/api/v1/categories/electronics", "", "")
	checkResponseCode(t, http.StatusNotFound, rr.Code)
	assert.Empty(t, rr.Header().Get(degradedHeader))

	rr, _ = doJSON(t, app, http.MethodDelete, "/api/v1/categories/electronics", admin, "")
	checkResponseCode(t, http.StatusNotFound, rr.Code)
}

func seedProduct(stores *testStores) *products.Product {
	stores.products.items = append(stores.products.items, products.Product{
		ID:          "prod-1",
		Title:       "Gaming Laptop",
		Slug:        "gaming-laptop",
		Description: "RTX inside",
		Price:       decimal.NewFromInt(100),
		Stock:       5,
		Category:    stores.categories.items[0].Ref(),
		Tags:        []string{"gaming"},
		IsActive:    true,
		GSTSlab:     18,
	})
	return &stores.products.items[len(stores.products.items)-1]
}

func TestUpdateProductLeavesUnsentFields(t *testing.T) {
	stores := newTestStores()
	stored := seedProduct(stores)
	app := newTestApplication(t, withDB(), stores)

	rr, env := doJSON(t, app, http.MethodPut, "/api/v1/products/gaming-laptop", bearer(t, app, "admin"), `{"stock":9}`)

	checkResponseCode(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Product updated successfully", env.Message)

	var got products.Product
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, 9, got.Stock)
	assert.Equal(t, "Gaming Laptop", got.Title)
	assert.Equal(t, "RTX inside", got.Description)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(100)))
	assert.False(t, got.DiscountPrice.Valid)
	assert.Equal(t, []string{"gaming"}, got.Tags)
	assert.Equal(t, "cat-1", got.Category.ID)
	assert.True(t, got.IsActive)
	assert.Equal(t, 18, got.GSTSlab)
	assert.Equal(t, 9, stored.Stock)
}

func TestUpdateProductChecksStoredPrices(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"discount above stored price", `{"discountPrice":500}`, http.StatusBadRequest},
		{"discount equal to stored price", `{"discountPrice":"100"}`, http.StatusBadRequest},
		{"negative discount", `{"discountPrice":-20}`, http.StatusBadRequest},
		{"zero price", `{"price":0}`, http.StatusBadRequest},
		{"discount below stored price", `{"discountPrice":60}`, http.StatusOK},
		{"price above discount", `{"price":150,"discountPrice":"120"}`, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stores := newTestStores()
			stored := seedProduct(stores)
			app := newTestApplication(t, withDB(), stores)

			rr, _ := doJSON(t, app, http.MethodPut, "/api/v1/products/gaming-laptop", bearer(t, app, "admin"), tt.body)

			checkResponseCode(t, tt.want, rr.Code)
			if tt.want != http.StatusOK {
				assert.True(t, stored.Price.Equal(decimal.NewFromInt(100)))
				assert.False(t, stored.DiscountPrice.Valid, "a rejected update leaves the row unchanged")
			}
		})
	}

	t.Run("price below stored discount", func(t *testing.T) {
		stores := newTestStores()
		stored := seedProduct(stores)
		stored.DiscountPrice = decimal.NewNullDecimal(decimal.NewFromInt(90))
		app := newTestApplication(t, withDB(), stores)

		rr, _ := doJSON(t, app, http.MethodPut, "/api/v1/products/gaming-laptop", bearer(t, app, "admin"), `{"price":80}`)

		checkResponseCode(t, http.StatusBadRequest, rr.Code)
		assert.True(t, stored.Price.Equal(decimal.NewFromInt(100)))
	})
}

func TestDeleteProduct(t *testing.T) {
	stores := newTestStores()
	seedProduct(stores)
	app := newTestApplication(t, withDB(), stores)
	admin := bearer(t, app, "admin")

	rr, env := doJSON(t, app, http.MethodDelete, "/api/v1/products/gaming-laptop", admin, "")
	checkResponseCode(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Product deleted successfully", env.Message)
	assert.Empty(t, stores.products.items)

	rr, _ = doJSON(t, app, http.MethodGet, "/api/v1/products/gaming-laptop", "", "")
	checkResponseCode(t, http.StatusNotFound, rr.Code)

	rr, _ = doJSON(t, app, http.MethodDelete, "/api/v1/products/gaming-laptop", admin, "")
	checkResponseCode(t, http.StatusNotFound, rr.Code)
}
