package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"storefront/internal/upload"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type categoryResponse struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Top      *int64  `json:"top"`
	IsActive bool    `json:"isActive"`
	Parents  []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"parents"`
	Children []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"children"`
}

type productResponse struct {
	Key           int64    `json:"_id"`
	ID            int64    `json:"id"`
	ItemName      string   `json:"itemName"`
	Category      *int64   `json:"category"`
	FeaturedImage *string  `json:"featuredImage"`
	GalleryImages []string `json:"galleryImages"`
}

func (ta *testApp) createChild(t *testing.T, name string, parents ...string) categoryResponse {
	t.Helper()
	for _, p := range parents {
		ta.doJSON(t, http.MethodPost, "/parentcategories/add", map[string]any{"name": p})
	}
	rr := ta.doJSON(t, http.MethodPost, "/childcategories/add", map[string]any{"name": name, "parents": parents})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[categoryResponse](t, rr)
}

func TestCategoryLifecycle(t *testing.T) {
	app := newTestApplication(t)

	rr := app.doJSON(t, http.MethodPost, "/parentcategories/add", map[string]any{"name": "  Men "})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	parent := decode[categoryResponse](t, rr)
	assert.Equal(t, "men", parent.Name)
	assert.True(t, parent.IsActive)

	rr = app.doJSON(t, http.MethodPost, "/childcategories/add", map[string]any{"name": "Shirts", "parents": []string{"Men"}})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	child := decode[categoryResponse](t, rr)
	assert.Equal(t, "shirts", child.Name)
	require.Len(t, child.Parents, 1)
	assert.Equal(t, parent.ID, child.Parents[0].ID)

	rr = app.doJSON(t, http.MethodGet, fmt.Sprintf("/parentcategories/%d", parent.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	got := decode[categoryResponse](t, rr)
	require.Len(t, got.Children, 1)
	assert.Equal(t, child.ID, got.Children[0].ID)

	rr = app.doJSON(t, http.MethodDelete, fmt.Sprintf("/parentcategories/%d", parent.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, decode[map[string]string](t, rr)["message"], "deleted")

	rr = app.doJSON(t, http.MethodGet, fmt.Sprintf("/childcategories/%d", child.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	child = decode[categoryResponse](t, rr)
	assert.NotNil(t, child.Parents)
	assert.Empty(t, child.Parents)
}

func TestTopCategoryLinksParents(t *testing.T) {
	app := newTestApplication(t)

	rr := app.doJSON(t, http.MethodPost, "/topcategories/add", map[string]any{"name": "Clothing", "showInNavbar": "yes"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	top := decode[categoryResponse](t, rr)

	rr = app.doJSON(t, http.MethodPost, "/parentcategories/add", map[string]any{"name": "Men", "top": "clothing"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	parent := decode[categoryResponse](t, rr)
	require.NotNil(t, parent.Top)
	assert.Equal(t, top.ID, *parent.Top)

	rr = app.doJSON(t, http.MethodGet, fmt.Sprintf("/topcategories/%d/children", top.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]categoryResponse](t, rr), 1)

	rr = app.doJSON(t, http.MethodPost, "/parentcategories/add", map[string]any{"name": "Women", "top": "missing"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCategoryErrors(t *testing.T) {
	app := newTestApplication(t)
	app.createChild(t, "Shirts", "Men")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"unknown field", http.MethodPost, "/topcategories/add", map[string]any{"name": "x", "color": "red"}, http.StatusBadRequest},
		{"missing name", http.MethodPost, "/topcategories/add", map[string]any{}, http.StatusBadRequest},
		{"short name", http.MethodPost, "/parentcategories/add", map[string]any{"name": "ab"}, http.StatusBadRequest},
		{"duplicate parent", http.MethodPost, "/parentcategories/add", map[string]any{"name": "MEN"}, http.StatusBadRequest},
		{"missing parent", http.MethodPost, "/childcategories/add", map[string]any{"name": "Pants", "parents": []string{"Kids"}}, http.StatusNotFound},
		{"duplicate child under same parents", http.MethodPost, "/childcategories/add", map[string]any{"name": "shirts", "parents": "Men"}, http.StatusBadRequest},
		{"unknown top", http.MethodGet, "/topcategories/999", nil, http.StatusNotFound},
		{"unknown child", http.MethodDelete, "/childcategories/999", nil, http.StatusNotFound},
		{"bad id", http.MethodGet, "/parentcategories/abc", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := app.doJSON(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
			assert.NotEmpty(t, decode[map[string]string](t, rr)["message"])
		})
	}
}

func TestUpdateChildReparents(t *testing.T) {
	app := newTestApplication(t)
	child := app.createChild(t, "Shoes", "Men", "Women")
	app.doJSON(t, http.MethodPost, "/parentcategories/add", map[string]any{"name": "Kids"})

	rr := app.doJSON(t, http.MethodPut, fmt.Sprintf("/childcategories/%d", child.ID), map[string]any{"parents": []string{"women", "kids"}})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	updated := decode[categoryResponse](t, rr)
	names := []string{}
	for _, p := range updated.Parents {
		names = append(names, p.Name)
	}
	assert.ElementsMatch(t, []string{"women", "kids"}, names)
}

func TestProductLifecycle(t *testing.T) {
	app := newTestApplication(t)
	child := app.createChild(t, "Shirts", "Men")

	req := multipartRequest(t, "/products/add", map[string]string{
		"id":       "101",
		"itemName": "Oxford Shirt",
		"category": strconv.FormatInt(child.ID, 10),
		"newPrice": "29.99",
		"variants": `[{"sku":"OX-M","quantity":3,"attributes":{"size":"M"}}]`,
	},
		formFile{upload.FieldFeatured, "front.png", pngBytes},
		formFile{upload.FieldGallery, "side.png", pngBytes},
	)
	rr := app.do(t, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	body := decode[struct {
		Message string          `json:"message"`
		Product productResponse `json:"product"`
	}](t, rr)
	assert.Equal(t, "Product added successfully", body.Message)
	assert.Equal(t, int64(101), body.Product.ID)
	require.NotNil(t, body.Product.FeaturedImage)
	require.Len(t, body.Product.GalleryImages, 1)

	featured, err := app.files.Path(upload.FieldFeatured, *body.Product.FeaturedImage)
	require.NoError(t, err)
	gallery, err := app.files.Path(upload.FieldGallery, body.Product.GalleryImages[0])
	require.NoError(t, err)
	assert.FileExists(t, featured)
	assert.FileExists(t, gallery)

	// images are served from the upload dir
	rel, err := filepath.Rel(app.files.Root(), featured)
	require.NoError(t, err)
	rr = app.doJSON(t, http.MethodGet, "/uploads/"+filepath.ToSlash(rel), nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = app.doJSON(t, http.MethodGet, "/products?page=1&limit=10", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "1", rr.Header().Get("X-Total-Count"))
	assert.Len(t, decode[[]productResponse](t, rr), 1)

	rr = app.doJSON(t, http.MethodGet, fmt.Sprintf("/products/category/%d", child.Parents[0].ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]productResponse](t, rr), 1)

	path := fmt.Sprintf("/products/%d", body.Product.Key)
	rr = app.doJSON(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Oxford Shirt", decode[productResponse](t, rr).ItemName)

	rr = app.doJSON(t, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	_, err = os.Stat(featured)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(gallery)
	assert.True(t, os.IsNotExist(err))

	assert.Equal(t, http.StatusNotFound, app.doJSON(t, http.MethodGet, path, nil).Code)
}

func TestAddProductRejected(t *testing.T) {
	app := newTestApplication(t)
	child := app.createChild(t, "Shirts", "Men")
	category := strconv.FormatInt(child.ID, 10)

	tests := []struct {
		name   string
		values map[string]string
		files  []formFile
		status int
	}{
		{
			name:   "missing item name",
			values: map[string]string{"id": "1", "category": category},
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown category",
			values: map[string]string{"id": "1", "itemName": "Tee", "category": "999"},
			status: http.StatusNotFound,
		},
		{
			name:   "bad image type",
			values: map[string]string{"id": "1", "itemName": "Tee", "category": category},
			files:  []formFile{{upload.FieldFeatured, "notes.txt", []byte("plain text")}},
			status: http.StatusBadRequest,
		},
		{
			name:   "unexpected file field",
			values: map[string]string{"id": "1", "itemName": "Tee", "category": category},
			files:  []formFile{{"avatar", "a.png", pngBytes}},
			status: http.StatusBadRequest,
		},
		{
			name:   "malformed variants",
			values: map[string]string{"id": "1", "itemName": "Tee", "category": category, "variants": "{"},
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := app.do(t, multipartRequest(t, "/products/add", tt.values, tt.files...))
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
		})
	}

	entries, err := os.ReadDir(app.files.Root())
	if err == nil {
		for _, e := range entries {
			sub, _ := os.ReadDir(filepath.Join(app.files.Root(), e.Name()))
			assert.Empty(t, sub, "no files left behind in %s", e.Name())
		}
	}
}

func TestSizes(t *testing.T) {
	app := newTestApplication(t)

	rr := app.doJSON(t, http.MethodPost, "/sizes/add", map[string]string{"sizeName": " XL "})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	size := decode[map[string]any](t, rr)
	assert.Equal(t, "xl", size["sizeName"])

	rr = app.doJSON(t, http.MethodPost, "/sizes/add", map[string]string{"sizeName": "xl"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = app.doJSON(t, http.MethodGet, "/sizes", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]map[string]any](t, rr), 1)

	id := int64(size["id"].(float64))
	rr = app.doJSON(t, http.MethodDelete, fmt.Sprintf("/sizes/%d", id), nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, http.StatusNotFound, app.doJSON(t, http.MethodDelete, fmt.Sprintf("/sizes/%d", id), nil).Code)
}
