package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"storefront/internal/catalog"
	"storefront/internal/params"

	"github.com/shopspring/decimal"
)

const (
	maxProductFormBytes = 64 << 20 // 64MB
	maxFormMemory       = 16 << 20
)

type VariantPayload struct {
	SKU        string          `json:"sku" validate:"max=64"`
	NewPrice   decimal.Decimal `json:"newPrice" swaggertype:"number"`
	OldPrice   decimal.Decimal `json:"oldPrice" swaggertype:"number"`
	Quantity   int             `json:"quantity" validate:"gte=0"`
	Attributes map[string]any  `json:"attributes"`
}

func (v VariantPayload) input() catalog.VariantInput {
	return catalog.VariantInput{
		SKU:        v.SKU,
		NewPrice:   v.NewPrice,
		OldPrice:   v.OldPrice,
		Quantity:   v.Quantity,
		Attributes: v.Attributes,
	}
}

// productForm is the text part of the multipart product form.
type productForm struct {
	BusinessID       int64  `validate:"required,gt=0"`
	ItemName         string `validate:"required,max=200"`
	NewPrice         decimal.Decimal
	OldPrice         decimal.Decimal
	ShortDescription string `validate:"max=500"`
	FullDescription  string
	Category         int64  `validate:"required,gt=0"`
	StockStatus      string `validate:"max=50"`
	Tag              string `validate:"max=50"`
	IsPopular        bool
	Variants         []VariantPayload `validate:"dive"`
}

func parseProductForm(values url.Values) (*productForm, error) {
	f := &productForm{
		ItemName:         strings.TrimSpace(values.Get("itemName")),
		ShortDescription: values.Get("shortDescription"),
		FullDescription:  values.Get("fullDescription"),
		StockStatus:      values.Get("stockStatus"),
		Tag:              values.Get("tag"),
	}

	var err error
	if f.BusinessID, err = parseFormInt(values, "id"); err != nil {
		return nil, err
	}
	if f.Category, err = parseFormInt(values, "category"); err != nil {
		return nil, err
	}
	if f.NewPrice, err = parseFormDecimal(values, "newPrice"); err != nil {
		return nil, err
	}
	if f.OldPrice, err = parseFormDecimal(values, "oldPrice"); err != nil {
		return nil, err
	}
	if v := values.Get("isPopular"); v != "" {
		if f.IsPopular, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("isPopular must be a boolean")
		}
	}
	if v := strings.TrimSpace(values.Get("variants")); v != "" {
		if err := json.Unmarshal([]byte(v), &f.Variants); err != nil {
			return nil, fmt.Errorf("variants must be a JSON array: %w", err)
		}
	}

	if err := Validate.Struct(f); err != nil {
		return nil, err
	}
	return f, nil
}

func parseFormInt(values url.Values, key string) (int64, error) {
	v := strings.TrimSpace(values.Get(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return n, nil
}

func parseFormDecimal(values url.Values, key string) (decimal.Decimal, error) {
	v := strings.TrimSpace(values.Get(key))
	if v == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be a number", key)
	}
	return d, nil
}

// addProductHandler godoc
//
//	@Summary		Add a product
//	@Description	Multipart form. featuredImage (max 1) and galleryImages (max 10) are jpeg/jpg/png/webp/gif up to 5MB each.
//	@Description	variants is a JSON array; variant images go in variants[i][variantFeaturedImage] and variants[i][variantGalleryImages].
//	@Tags			products
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id				formData	int		true	"Product business id"
//	@Param			itemName		formData	string	true	"Name"
//	@Param			category		formData	int		true	"Child category id"
//	@Param			newPrice		formData	number	false	"Price"
//	@Param			oldPrice		formData	number	false	"Previous price"
//	@Param			variants		formData	string	false	"Variants as JSON"
//	@Param			featuredImage	formData	file	false	"Featured image"
//	@Param			galleryImages	formData	file	false	"Gallery images"
//	@Success		201				{object}	map[string]any
//	@Failure		400				{object}	error
//	@Failure		404				{object}	error	"category not found"
//	@Security		ApiKeyAuth
//	@Router			/products/add [post]
func (app *application) addProductHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxProductFormBytes)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("failed to parse form: %w", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	form, err := parseProductForm(r.MultipartForm.Value)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	variants := make([]catalog.VariantInput, len(form.Variants))
	for i, v := range form.Variants {
		variants[i] = v.input()
	}

	product, err := app.catalog.AddProduct(r.Context(), catalog.ProductInput{
		BusinessID:       form.BusinessID,
		ItemName:         form.ItemName,
		NewPrice:         form.NewPrice,
		OldPrice:         form.OldPrice,
		ShortDescription: form.ShortDescription,
		FullDescription:  form.FullDescription,
		CategoryID:       &form.Category,
		StockStatus:      form.StockStatus,
		Tag:              form.Tag,
		IsPopular:        form.IsPopular,
		Variants:         variants,
	}, r.MultipartForm.File)
	if err != nil {
		app.catalogError(w, r, err)
		return
	}

	app.metrics.CatalogChanged("product", "create")
	app.respond(w, r, http.StatusCreated, map[string]any{
		"message": "Product added successfully",
		"product": product,
	})
}

type UpdateProductPayload struct {
	ItemName         *string          `json:"itemName" validate:"omitempty,max=200"`
	NewPrice         *decimal.Decimal `json:"newPrice" swaggertype:"number"`
	OldPrice         *decimal.Decimal `json:"oldPrice" swaggertype:"number"`
	ShortDescription *string          `json:"shortDescription" validate:"omitempty,max=500"`
	FullDescription  *string          `json:"fullDescription"`
	Category         *int64           `json:"category" validate:"omitempty,gt=0"`
	StockStatus      *string          `json:"stockStatus" validate:"omitempty,max=50"`
	Tag              *string          `json:"tag" validate:"omitempty,max=50"`
	IsPopular        *bool            `json:"isPopular"`
}

func (app *application) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := app.idParam(w, r, "id")
	if !ok {
		return
	}
	var payload UpdateProductPayload
	if !app.decodePayload(w, r, &payload) {
		return
	}

	product, err := app.catalog.UpdateProduct(r.Context(), id, catalog.ProductUpdate{
		ItemName:         payload.ItemName,
		NewPrice:         payload.NewPrice,
		OldPrice:         payload.OldPrice,
		ShortDescription: payload.ShortDescription,
		FullDescription:  payload.FullDescription,
		CategoryID:       payload.Category,
		StockStatus:      payload.StockStatus,
		Tag:              payload.Tag,
		IsPopular:        payload.IsPopular,
	})
	if err != nil {
		app.catalogError(w, r, err)
		return
	}
	app.metrics.CatalogChanged("product", "update")
	app.respond(w, r, http.StatusOK, product)
}

// deleteProductHandler godoc
//
//	@Summary		Delete a product
//	@Description	Also removes the featured, gallery and variant images.
//	@Tags			products
//	@Produce		json
//	@Param			id	path		int	true	"Product ID"
//	@Success		200	{object}	map[string]string
//	@Failure		404	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/products/{id} [delete]
func (app *application) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := app.idParam(w, r, "id")
	if !ok {
		return
	}
	if err := app.catalog.DeleteProduct(r.Context(), id); err != nil {
		app.catalogError(w, r, err)
		return
	}
	app.metrics.CatalogChanged("product", "delete")
	app.respondMessage(w, r, "Product and associated images deleted successfully")
}

// listProductsHandler godoc
//
//	@Summary		List products
//	@Description	Without page or limit every product is returned. The total is sent in X-Total-Count.
//	@Tags			products
//	@Produce		json
//	@Param			page	query		int	false	"Page number"
//	@Param			limit	query		int	false	"Items per page (max 100)"
//	@Success		200		{array}		products.Product
//	@Router			/products [get]
func (app *application) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	limit, offset := 0, 0
	p, paged := params.ParsePagination(r.URL.Query())
	if paged {
		limit, offset = p.Limit, p.Offset
	}

	list, total, err := app.catalog.ListProducts(r.Context(), limit, offset)
	if err != nil {
		app.catalogError(w, r, err)
		return
	}

	if paged {
		p.ComputeMeta(total)
		if link := p.Link(r.URL); link != "" {
			w.Header().Set("Link", link)
		}
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	app.respond(w, r, http.StatusOK, list)
}

func (app *application) getProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := app.idParam(w, r, "id")
	if !ok {
		return
	}
	product, err := app.catalog.GetProduct(r.Context(), id)
	if err != nil {
		app.catalogError(w, r, err)
		return
	}
	app.respond(w, r, http.StatusOK, product)
}

// listProductsByParentHandler returns the products under every child of a
// parent category.
func (app *application) listProductsByParentHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := app.idParam(w, r, "categoryId")
	if !ok {
		return
	}
	list, err := app.catalog.ListProductsByParent(r.Context(), id)
	if err != nil {
		app.catalogError(w, r, err)
		return
	}
	app.respond(w, r, http.StatusOK, list)
}

func (app *application) addVariantHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := app.idParam(w, r, "id")
	if !ok {
		return
	}
	var payload VariantPayload
	if !app.decodePayload(w, r, &payload) {
		return
	}

	product, err := app.catalog.AddVariant(r.Context(), id, payload.input())
	if err != nil {
		app.catalogError(w, r, err)
		return
	}
	app.metrics.CatalogChanged("variant", "create")
	app.respond(w, r, http.StatusCreated, product)
}
