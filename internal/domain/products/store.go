package products

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"storefront/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrDuplicateProduct = errors.New("product with this id already exists")
)

// Store is the data access abstraction for the products domain.
type Store interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id int64) (*Product, error)
	ExistsByBusinessID(ctx context.Context, businessID int64) (bool, error)
	// List returns a page of products and the total count; limit <= 0 returns all.
	List(ctx context.Context, limit, offset int) ([]*Product, int, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]*Product, error)
	ListByParentCategory(ctx context.Context, parentID int64) ([]*Product, error)
	// ListBySize returns the products with a variant whose attributes.size
	// holds sizeID.
	ListBySize(ctx context.Context, sizeID int64) ([]*Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error
	DetachCategory(ctx context.Context, categoryID int64) error
}

type Repository struct {
	db dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository {
	return &Repository{db: q}
}

const productColumns = `
	p.id, p.business_id, p.item_name, p.new_price, p.old_price, p.short_description,
	p.full_description, p.category_id, p.featured_image, p.gallery_images, p.variants,
	p.stock_status, p.tag, p.is_popular, p.created_at, p.updated_at`

func scanProduct(row pgx.Row, extra ...any) (*Product, error) {
	p := &Product{}
	var variantData []byte
	dest := []any{
		&p.ID, &p.BusinessID, &p.ItemName, &p.NewPrice, &p.OldPrice, &p.ShortDescription,
		&p.FullDescription, &p.CategoryID, &p.FeaturedImage, &p.GalleryImages, &variantData,
		&p.StockStatus, &p.Tag, &p.IsPopular, &p.CreatedAt, &p.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(variantData, &p.Variants); err != nil {
		return nil, fmt.Errorf("unmarshal variants: %w", err)
	}
	if p.Variants == nil {
		p.Variants = []Variant{}
	}
	if p.GalleryImages == nil {
		p.GalleryImages = []string{}
	}
	return p, nil
}

func marshalVariants(v []Variant) ([]byte, error) {
	if v == nil {
		v = []Variant{}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal variants: %w", err)
	}
	return data, nil
}

func (r *Repository) queryProducts(ctx context.Context, query string, args ...any) ([]*Product, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	list := []*Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *Repository) Create(ctx context.Context, p *Product) error {
	variants, err := marshalVariants(p.Variants)
	if err != nil {
		return err
	}
	if p.GalleryImages == nil {
		p.GalleryImages = []string{}
	}

	query := `
		INSERT INTO products (
			business_id, item_name, new_price, old_price, short_description, full_description,
			category_id, featured_image, gallery_images, variants, stock_status, tag, is_popular
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at;
	`
	err = r.db.QueryRow(ctx, query,
		p.BusinessID, p.ItemName, p.NewPrice, p.OldPrice, p.ShortDescription, p.FullDescription,
		p.CategoryID, p.FeaturedImage, p.GalleryImages, variants, p.StockStatus, p.Tag, p.IsPopular,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return ErrDuplicateProduct
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.id = $1;`
	p, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *Repository) ExistsByBusinessID(ctx context.Context, businessID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE business_id = $1)`, businessID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check product id: %w", err)
	}
	return exists, nil
}

func (r *Repository) List(ctx context.Context, limit, offset int) ([]*Product, int, error) {
	if offset < 0 {
		offset = 0
	}
	// LIMIT NULL means no limit
	var lim *int
	if limit > 0 {
		lim = &limit
	}

	query := `
		SELECT ` + productColumns + `, COUNT(*) OVER() AS total_count
		FROM products p
		ORDER BY p.id
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.db.Query(ctx, query, lim, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var (
		list  = []*Product{}
		total int
	)
	for rows.Next() {
		var t int
		p, err := scanProduct(rows, &t)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		total = t
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration: %w", err)
	}

	// paged past the end: no rows, but the total may be > 0
	if len(list) == 0 && offset > 0 {
		if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products;`).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count products: %w", err)
		}
	}
	return list, total, nil
}

func (r *Repository) ListByCategory(ctx context.Context, categoryID int64) ([]*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.category_id = $1 ORDER BY p.id;`
	return r.queryProducts(ctx, query, categoryID)
}

func (r *Repository) ListByParentCategory(ctx context.Context, parentID int64) ([]*Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		JOIN child_category_parents e ON e.child_id = p.category_id
		WHERE e.parent_id = $1
		ORDER BY p.id;
	`
	return r.queryProducts(ctx, query, parentID)
}

func (r *Repository) ListBySize(ctx context.Context, sizeID int64) ([]*Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		WHERE p.variants @> jsonb_build_array(
			jsonb_build_object('attributes', jsonb_build_object('size', jsonb_build_array($1::bigint)))
		)
		ORDER BY p.id
		FOR UPDATE;
	`
	return r.queryProducts(ctx, query, sizeID)
}

func (r *Repository) Update(ctx context.Context, p *Product) error {
	variants, err := marshalVariants(p.Variants)
	if err != nil {
		return err
	}

	query := `
		UPDATE products
		SET item_name = $1, new_price = $2, old_price = $3, short_description = $4,
		    full_description = $5, category_id = $6, featured_image = $7, gallery_images = $8,
		    variants = $9, stock_status = $10, tag = $11, is_popular = $12, updated_at = now()
		WHERE id = $13
		RETURNING updated_at;
	`
	err = r.db.QueryRow(ctx, query,
		p.ItemName, p.NewPrice, p.OldPrice, p.ShortDescription, p.FullDescription,
		p.CategoryID, p.FeaturedImage, p.GalleryImages, variants, p.StockStatus, p.Tag, p.IsPopular,
		p.ID,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProductNotFound
		}
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *Repository) DetachCategory(ctx context.Context, categoryID int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE products SET category_id = NULL, updated_at = now() WHERE category_id = $1;`, categoryID)
	if err != nil {
		return fmt.Errorf("detach products: %w", err)
	}
	return nil
}
