package catalog

import (
	"context"
	"fmt"
	"mime/multipart"

	"storefront/internal/domain/products"
	"storefront/internal/domain/sizes"
	"storefront/internal/domain/storage"
	"storefront/internal/upload"

	"github.com/shopspring/decimal"
)

type VariantInput struct {
	SKU        string
	NewPrice   decimal.Decimal
	OldPrice   decimal.Decimal
	Quantity   int
	Attributes map[string]any
}

type ProductInput struct {
	BusinessID       int64
	ItemName         string
	NewPrice         decimal.Decimal
	OldPrice         decimal.Decimal
	ShortDescription string
	FullDescription  string
	CategoryID       *int64
	StockStatus      string
	Tag              string
	IsPopular        bool
	Variants         []VariantInput
}

// ProductUpdate changes only the non-nil fields. Images and variants are not
// touched.
type ProductUpdate struct {
	ItemName         *string
	NewPrice         *decimal.Decimal
	OldPrice         *decimal.Decimal
	ShortDescription *string
	FullDescription  *string
	CategoryID       *int64
	StockStatus      *string
	Tag              *string
	IsPopular        *bool
}

type storedFile struct {
	field string
	name  string
}

// AddProduct validates and stores the uploaded images, then creates the
// product under an existing child category. Uploaded files are removed again
// if the product cannot be persisted.
func (s *Service) AddProduct(ctx context.Context, in ProductInput, form map[string][]*multipart.FileHeader) (*products.Product, error) {
	if in.BusinessID <= 0 {
		return nil, validationError("product id is required")
	}
	if in.ItemName == "" {
		return nil, validationError("itemName is required")
	}
	if in.CategoryID == nil {
		return nil, validationError("category is required")
	}

	files, err := upload.Group(form)
	if err != nil {
		return nil, uploadError(err)
	}
	for idx := range files.Variants {
		if idx < 0 || idx >= len(in.Variants) {
			return nil, uploadError(fmt.Errorf("images sent for missing variant %d", idx))
		}
	}

	if err := s.checkNewProduct(ctx, s.store.Repos(), in); err != nil {
		return nil, translate(err)
	}

	variants, err := s.buildVariants(ctx, s.store.Repos().Sizes, in.BusinessID, in.Variants)
	if err != nil {
		return nil, translate(err)
	}

	p := &products.Product{
		BusinessID:       in.BusinessID,
		ItemName:         in.ItemName,
		NewPrice:         in.NewPrice,
		OldPrice:         in.OldPrice,
		ShortDescription: in.ShortDescription,
		FullDescription:  in.FullDescription,
		CategoryID:       in.CategoryID,
		GalleryImages:    []string{},
		Variants:         variants,
		StockStatus:      in.StockStatus,
		Tag:              in.Tag,
		IsPopular:        in.IsPopular,
	}

	saved, err := s.saveImages(ctx, p, files)
	if err != nil {
		s.removeFiles(ctx, saved)
		return nil, err
	}

	err = s.inTx(ctx, func(tx *storage.Repositories) error {
		if err := s.checkNewProduct(ctx, *tx, in); err != nil {
			return err
		}
		return tx.Products.Create(ctx, p)
	})
	if err != nil {
		s.removeFiles(ctx, saved)
		return nil, err
	}
	return p, nil
}

func (s *Service) checkNewProduct(ctx context.Context, repos storage.Repositories, in ProductInput) error {
	exists, err := repos.Products.ExistsByBusinessID(ctx, in.BusinessID)
	if err != nil {
		return err
	}
	if exists {
		return conflict("product with id %d already exists", in.BusinessID)
	}
	_, err = repos.Categories.GetChildByID(ctx, *in.CategoryID)
	return err
}

func (s *Service) saveImages(ctx context.Context, p *products.Product, files *upload.Files) ([]storedFile, error) {
	saved := []storedFile{}
	save := func(field string, fh *multipart.FileHeader) (string, error) {
		name, err := s.files.Save(ctx, field, fh)
		if err != nil {
			return "", err
		}
		saved = append(saved, storedFile{field: field, name: name})
		return name, nil
	}

	for _, fh := range files.Featured {
		name, err := save(upload.FieldFeatured, fh)
		if err != nil {
			return saved, err
		}
		p.FeaturedImage = &name
	}
	for _, fh := range files.Gallery {
		name, err := save(upload.FieldGallery, fh)
		if err != nil {
			return saved, err
		}
		p.GalleryImages = append(p.GalleryImages, name)
	}
	for idx, vf := range files.Variants {
		v := &p.Variants[idx]
		for _, fh := range vf.Featured {
			name, err := save(upload.FieldVariantFeatured, fh)
			if err != nil {
				return saved, err
			}
			v.VariantFeaturedImage = &name
		}
		for _, fh := range vf.Gallery {
			name, err := save(upload.FieldVariantGallery, fh)
			if err != nil {
				return saved, err
			}
			v.VariantGalleryImages = append(v.VariantGalleryImages, name)
		}
	}
	return saved, nil
}

// removeFiles is best effort. Failures are logged and never returned.
func (s *Service) removeFiles(ctx context.Context, files []storedFile) {
	ctx = context.WithoutCancel(ctx)
	for _, f := range files {
		if err := s.files.Delete(ctx, f.field, f.name); err != nil {
			s.logger.Errorw("failed to delete image", "field", f.field, "file", f.name, "error", err)
		}
	}
}

func productFiles(p *products.Product) []storedFile {
	files := []storedFile{}
	if p.FeaturedImage != nil && *p.FeaturedImage != "" {
		files = append(files, storedFile{upload.FieldFeatured, *p.FeaturedImage})
	}
	for _, name := range p.GalleryImages {
		files = append(files, storedFile{upload.FieldGallery, name})
	}
	for _, v := range p.Variants {
		if v.VariantFeaturedImage != nil && *v.VariantFeaturedImage != "" {
			files = append(files, storedFile{upload.FieldVariantFeatured, *v.VariantFeaturedImage})
		}
		for _, name := range v.VariantGalleryImages {
			files = append(files, storedFile{upload.FieldVariantGallery, name})
		}
	}
	return files
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, in ProductUpdate) (*products.Product, error) {
	if in.ItemName != nil && *in.ItemName == "" {
		return nil, validationError("itemName cannot be empty")
	}

	var updated *products.Product
	err := s.inTx(ctx, func(tx *storage.Repositories) error {
		p, err := tx.Products.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if in.CategoryID != nil {
			if _, err := tx.Categories.GetChildByID(ctx, *in.CategoryID); err != nil {
				return err
			}
			p.CategoryID = in.CategoryID
		}
		if in.ItemName != nil {
			p.ItemName = *in.ItemName
		}
		if in.NewPrice != nil {
			p.NewPrice = *in.NewPrice
		}
		if in.OldPrice != nil {
			p.OldPrice = *in.OldPrice
		}
		if in.ShortDescription != nil {
			p.ShortDescription = *in.ShortDescription
		}
		if in.FullDescription != nil {
			p.FullDescription = *in.FullDescription
		}
		if in.StockStatus != nil {
			p.StockStatus = *in.StockStatus
		}
		if in.Tag != nil {
			p.Tag = *in.Tag
		}
		if in.IsPopular != nil {
			p.IsPopular = *in.IsPopular
		}
		if err := tx.Products.Update(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AddVariant appends a variant to an existing product. SKUs are unique within
// a product.
func (s *Service) AddVariant(ctx context.Context, productID int64, in VariantInput) (*products.Product, error) {
	var updated *products.Product
	err := s.inTx(ctx, func(tx *storage.Repositories) error {
		p, err := tx.Products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		variants, err := s.buildVariants(ctx, tx.Sizes, p.BusinessID, []VariantInput{in})
		if err != nil {
			return err
		}
		if in.SKU != "" {
			for _, v := range p.Variants {
				if v.SKU == in.SKU {
					return conflict("variant with sku %q already exists", in.SKU)
				}
			}
		}
		p.Variants = append(p.Variants, variants...)
		if err := tx.Products.Update(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteProduct removes the product and then, outside the transaction, every
// image it referenced.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	var deleted *products.Product
	err := s.inTx(ctx, func(tx *storage.Repositories) error {
		p, err := tx.Products.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Products.Delete(ctx, id); err != nil {
			return err
		}
		deleted = p
		return nil
	})
	if err != nil {
		return err
	}
	s.removeFiles(ctx, productFiles(deleted))
	return nil
}

func (s *Service) ListProducts(ctx context.Context, limit, offset int) ([]*products.Product, int, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	list, total, err := s.store.Repos().Products.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, translate(err)
	}
	return list, total, nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*products.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	p, err := s.store.Repos().Products.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return p, nil
}

// ListProductsByParent returns the products of every child category linked
// to the parent.
func (s *Service) ListProductsByParent(ctx context.Context, parentID int64) ([]*products.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	repos := s.store.Repos()
	if _, err := repos.Categories.GetParentByID(ctx, parentID); err != nil {
		return nil, translate(err)
	}
	list, err := repos.Products.ListByParentCategory(ctx, parentID)
	if err != nil {
		return nil, translate(err)
	}
	return list, nil
}

func (s *Service) buildVariants(ctx context.Context, repo sizes.Store, businessID int64, in []VariantInput) ([]products.Variant, error) {
	variants := make([]products.Variant, 0, len(in))
	for _, v := range in {
		attrs := make(map[string]any, len(v.Attributes))
		for k, a := range v.Attributes {
			attrs[k] = a
		}
		if raw, ok := attrs["size"]; ok {
			ids, err := s.resolveSizes(ctx, repo, businessID, raw)
			if err != nil {
				return nil, err
			}
			attrs["size"] = ids
		}
		variants = append(variants, products.Variant{
			SKU:        v.SKU,
			NewPrice:   v.NewPrice,
			OldPrice:   v.OldPrice,
			Quantity:   v.Quantity,
			Attributes: attrs,
		})
	}
	return variants, nil
}
