package memory

import (
	"context"

	"storefront/internal/domain/products"
)

type productRepo struct {
	s source
}

func (r *productRepo) Create(ctx context.Context, p *products.Product) error {
	d := r.s.lock()
	defer r.s.unlock()

	for _, existing := range d.products {
		if existing.BusinessID == p.BusinessID {
			return products.ErrDuplicateProduct
		}
	}
	if p.GalleryImages == nil {
		p.GalleryImages = []string{}
	}
	if p.Variants == nil {
		p.Variants = []products.Variant{}
	}
	p.ID = d.nextID()
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt
	d.products[p.ID] = cloneProduct(*p)
	return nil
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*products.Product, error) {
	d := r.s.lock()
	defer r.s.unlock()

	p, ok := d.products[id]
	if !ok {
		return nil, products.ErrProductNotFound
	}
	out := cloneProduct(p)
	return &out, nil
}

func (r *productRepo) ExistsByBusinessID(ctx context.Context, businessID int64) (bool, error) {
	d := r.s.lock()
	defer r.s.unlock()

	for _, p := range d.products {
		if p.BusinessID == businessID {
			return true, nil
		}
	}
	return false, nil
}

func (r *productRepo) List(ctx context.Context, limit, offset int) ([]*products.Product, int, error) {
	all := r.filter(func(*state, products.Product) bool { return true })
	total := len(all)
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []*products.Product{}, total, nil
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return all[offset:end], total, nil
}

func (r *productRepo) ListByCategory(ctx context.Context, categoryID int64) ([]*products.Product, error) {
	return r.filter(func(_ *state, p products.Product) bool {
		return p.CategoryID != nil && *p.CategoryID == categoryID
	}), nil
}

func (r *productRepo) ListByParentCategory(ctx context.Context, parentID int64) ([]*products.Product, error) {
	return r.filter(func(d *state, p products.Product) bool {
		if p.CategoryID == nil {
			return false
		}
		_, ok := d.edges[edge{child: *p.CategoryID, parent: parentID}]
		return ok
	}), nil
}

func (r *productRepo) filter(keep func(*state, products.Product) bool) []*products.Product {
	d := r.s.lock()
	defer r.s.unlock()

	ids := []int64{}
	for id, p := range d.products {
		if keep(d, p) {
			ids = append(ids, id)
		}
	}
	list := make([]*products.Product, 0, len(ids))
	for _, id := range sortedIDs(ids) {
		p := cloneProduct(d.products[id])
		list = append(list, &p)
	}
	return list
}

func (r *productRepo) Update(ctx context.Context, p *products.Product) error {
	d := r.s.lock()
	defer r.s.unlock()

	existing, ok := d.products[p.ID]
	if !ok {
		return products.ErrProductNotFound
	}
	updated := cloneProduct(*p)
	updated.BusinessID = existing.BusinessID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = now()
	d.products[p.ID] = updated
	p.UpdatedAt = updated.UpdatedAt
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id int64) error {
	d := r.s.lock()
	defer r.s.unlock()

	if _, ok := d.products[id]; !ok {
		return products.ErrProductNotFound
	}
	delete(d.products, id)
	return nil
}

func (r *productRepo) ListBySize(ctx context.Context, sizeID int64) ([]*products.Product, error) {
	return r.filter(func(_ *state, p products.Product) bool {
		return p.UsesSize(sizeID)
	}), nil
}

func (r *productRepo) DetachCategory(ctx context.Context, categoryID int64) error {
	d := r.s.lock()
	defer r.s.unlock()

	for id, p := range d.products {
		if p.CategoryID != nil && *p.CategoryID == categoryID {
			p.CategoryID = nil
			p.UpdatedAt = now()
			d.products[id] = p
		}
	}
	return nil
}
