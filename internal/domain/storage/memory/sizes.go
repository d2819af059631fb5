package memory

import (
	"context"

	"storefront/internal/domain/sizes"
)

type sizeRepo struct {
	s source
}

func (r *sizeRepo) Create(ctx context.Context, sz *sizes.Size) error {
	d := r.s.lock()
	defer r.s.unlock()

	for _, existing := range d.sizes {
		if existing.SizeName == sz.SizeName {
			return sizes.ErrDuplicateSize
		}
	}
	sz.ID = d.nextID()
	sz.CreatedAt = now()
	d.sizes[sz.ID] = *sz
	return nil
}

func (r *sizeRepo) List(ctx context.Context) ([]*sizes.Size, error) {
	return r.filter(func(sizes.Size) bool { return true }), nil
}

func (r *sizeRepo) FindByNames(ctx context.Context, names []string) ([]*sizes.Size, error) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	return r.filter(func(sz sizes.Size) bool { return want[sz.SizeName] }), nil
}

func (r *sizeRepo) Delete(ctx context.Context, id int64) error {
	d := r.s.lock()
	defer r.s.unlock()

	if _, ok := d.sizes[id]; !ok {
		return sizes.ErrSizeNotFound
	}
	delete(d.sizes, id)
	return nil
}

func (r *sizeRepo) filter(keep func(sizes.Size) bool) []*sizes.Size {
	d := r.s.lock()
	defer r.s.unlock()

	ids := []int64{}
	for id, sz := range d.sizes {
		if keep(sz) {
			ids = append(ids, id)
		}
	}
	list := make([]*sizes.Size, 0, len(ids))
	for _, id := range sortedIDs(ids) {
		sz := d.sizes[id]
		list = append(list, &sz)
	}
	return list
}
