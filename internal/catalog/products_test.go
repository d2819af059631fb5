package catalog

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"testing"

	"storefront/internal/upload"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

func imageForm(t *testing.T, fields ...string) map[string][]*multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for _, field := range fields {
		w, err := mw.CreateFormFile(field, "image.png")
		require.NoError(t, err)
		_, err = w.Write(pngBytes)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File
}

func (f *fixture) exists(t *testing.T, field, name string) bool {
	t.Helper()
	path, err := f.files.Path(field, name)
	require.NoError(t, err)
	_, err = os.Stat(path)
	return err == nil
}

func TestAddAndDeleteProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.parent(t, "Men")
	shirts := f.child(t, "Shirts", "Men")

	_, err := f.svc.CreateSize(ctx, " XL ")
	require.NoError(t, err)

	in := ProductInput{
		BusinessID: 1001,
		ItemName:   "Oxford shirt",
		NewPrice:   decimal.RequireFromString("29.99"),
		OldPrice:   decimal.RequireFromString("39.99"),
		CategoryID: &shirts.ID,
		Variants: []VariantInput{{
			SKU:        "OX-XL",
			Quantity:   3,
			Attributes: map[string]any{"size": []any{"xl", "huge"}, "color": "blue"},
		}},
	}
	form := imageForm(t,
		upload.FieldFeatured,
		upload.FieldGallery, upload.FieldGallery,
		"variants[0][variantFeaturedImage]",
	)

	p, err := f.svc.AddProduct(ctx, in, form)
	require.NoError(t, err)
	require.NotNil(t, p.FeaturedImage)
	assert.Len(t, p.GalleryImages, 2)
	require.Len(t, p.Variants, 1)
	require.NotNil(t, p.Variants[0].VariantFeaturedImage)
	assert.Len(t, p.Variants[0].Attributes["size"], 1)
	assert.Equal(t, "blue", p.Variants[0].Attributes["color"])

	assert.True(t, f.exists(t, upload.FieldFeatured, *p.FeaturedImage))
	assert.True(t, f.exists(t, upload.FieldVariantFeatured, *p.Variants[0].VariantFeaturedImage))

	child, err := f.svc.GetChildCategory(ctx, shirts.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{p.ID}, child.ProductIDs)

	_, err = f.svc.AddProduct(ctx, in, nil)
	assert.ErrorIs(t, err, ErrConflict)

	require.NoError(t, f.svc.DeleteProduct(ctx, p.ID))
	assert.False(t, f.exists(t, upload.FieldFeatured, *p.FeaturedImage))
	for _, name := range p.GalleryImages {
		assert.False(t, f.exists(t, upload.FieldGallery, name))
	}
	assert.False(t, f.exists(t, upload.FieldVariantFeatured, *p.Variants[0].VariantFeaturedImage))

	child, err = f.svc.GetChildCategory(ctx, shirts.ID)
	require.NoError(t, err)
	assert.Empty(t, child.ProductIDs)

	assert.ErrorIs(t, f.svc.DeleteProduct(ctx, p.ID), ErrNotFound)
}

func TestAddProductRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.parent(t, "Men")
	shirts := f.child(t, "Shirts", "Men")
	missing := int64(999)

	tests := []struct {
		name string
		in   ProductInput
		form map[string][]*multipart.FileHeader
		want error
	}{
		{"no category", ProductInput{BusinessID: 1, ItemName: "x"}, nil, ErrValidation},
		{"unknown category", ProductInput{BusinessID: 1, ItemName: "x", CategoryID: &missing}, nil, ErrNotFound},
		{"two featured images", ProductInput{BusinessID: 1, ItemName: "x", CategoryID: &shirts.ID},
			imageForm(t, upload.FieldFeatured, upload.FieldFeatured), ErrUpload},
		{"images for missing variant", ProductInput{BusinessID: 1, ItemName: "x", CategoryID: &shirts.ID},
			imageForm(t, "variants[0][variantGalleryImages]"), ErrUpload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.AddProduct(ctx, tt.in, tt.form)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	list, total, err := f.svc.ListProducts(ctx, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, total)
}

func TestUpdateProductAndVariants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	men := f.parent(t, "Men")
	f.parent(t, "Women")
	shirts := f.child(t, "Shirts", "Men")
	dresses := f.child(t, "Dresses", "Women")

	p, err := f.svc.AddProduct(ctx, ProductInput{BusinessID: 7, ItemName: "Tee", CategoryID: &shirts.ID}, nil)
	require.NoError(t, err)

	byParent, err := f.svc.ListProductsByParent(ctx, men)
	require.NoError(t, err)
	require.Len(t, byParent, 1)

	price := decimal.NewFromInt(12)
	updated, err := f.svc.UpdateProduct(ctx, p.ID, ProductUpdate{NewPrice: &price, CategoryID: &dresses.ID})
	require.NoError(t, err)
	assert.True(t, price.Equal(updated.NewPrice))
	assert.Equal(t, dresses.ID, *updated.CategoryID)

	byParent, err = f.svc.ListProductsByParent(ctx, men)
	require.NoError(t, err)
	assert.Empty(t, byParent)

	missing := int64(999)
	_, err = f.svc.UpdateProduct(ctx, p.ID, ProductUpdate{CategoryID: &missing})
	assert.ErrorIs(t, err, ErrNotFound)

	withVariant, err := f.svc.AddVariant(ctx, p.ID, VariantInput{SKU: "TEE-S", Quantity: 2})
	require.NoError(t, err)
	assert.Len(t, withVariant.Variants, 1)

	_, err = f.svc.AddVariant(ctx, p.ID, VariantInput{SKU: "TEE-S"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestSizes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sz, err := f.svc.CreateSize(ctx, "Medium")
	require.NoError(t, err)
	assert.Equal(t, "medium", sz.SizeName)

	_, err = f.svc.CreateSize(ctx, " MEDIUM")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.svc.CreateSize(ctx, "  ")
	assert.ErrorIs(t, err, ErrValidation)

	list, err := f.svc.ListSizes(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, f.svc.DeleteSize(ctx, sz.ID))
	assert.ErrorIs(t, f.svc.DeleteSize(ctx, sz.ID), ErrNotFound)
}
