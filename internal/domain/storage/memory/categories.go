package memory

import (
	"context"

	"storefront/internal/domain/categories"
)

type categoryRepo struct {
	s source
}

func (d *state) topView(t categories.TopCategory) *categories.TopCategory {
	t.ParentIDs = []int64{}
	for id, p := range d.parents {
		if p.TopID != nil && *p.TopID == t.ID {
			t.ParentIDs = append(t.ParentIDs, id)
		}
	}
	sortedIDs(t.ParentIDs)
	return &t
}

func (d *state) parentView(p categories.ParentCategory) *categories.ParentCategory {
	if p.TopID != nil {
		id := *p.TopID
		p.TopID = &id
	}
	p.ChildIDs = []int64{}
	for e := range d.edges {
		if e.parent == p.ID {
			p.ChildIDs = append(p.ChildIDs, e.child)
		}
	}
	sortedIDs(p.ChildIDs)
	return &p
}

func (d *state) childView(c categories.ChildCategory) *categories.ChildCategory {
	c.ParentIDs = []int64{}
	for e := range d.edges {
		if e.child == c.ID {
			c.ParentIDs = append(c.ParentIDs, e.parent)
		}
	}
	sortedIDs(c.ParentIDs)
	c.ProductIDs = []int64{}
	for id, p := range d.products {
		if p.CategoryID != nil && *p.CategoryID == c.ID {
			c.ProductIDs = append(c.ProductIDs, id)
		}
	}
	sortedIDs(c.ProductIDs)
	return &c
}

// ------------------------------------
// Top categories
// ------------------------------------

func (r *categoryRepo) CreateTop(ctx context.Context, t *categories.TopCategory) error {
	d := r.s.lock()
	defer r.s.unlock()

	for _, existing := range d.tops {
		if existing.Name == t.Name {
			return categories.ErrDuplicateName
		}
	}
	t.ID = d.nextID()
	t.CreatedAt = now()
	t.UpdatedAt = t.CreatedAt
	t.ParentIDs = []int64{}
	d.tops[t.ID] = *t
	return nil
}

func (r *categoryRepo) GetTopByID(ctx context.Context, id int64) (*categories.TopCategory, error) {
	d := r.s.lock()
	defer r.s.unlock()

	t, ok := d.tops[id]
	if !ok {
		return nil, categories.ErrTopNotFound
	}
	return d.topView(t), nil
}

func (r *categoryRepo) GetTopByName(ctx context.Context, name string) (*categories.TopCategory, error) {
	d := r.s.lock()
	defer r.s.unlock()

	for _, t := range d.tops {
		if t.Name == name {
			return d.topView(t), nil
		}
	}
	return nil, categories.ErrTopNotFound
}

func (r *categoryRepo) ListTops(ctx context.Context) ([]*categories.TopCategory, error) {
	d := r.s.lock()
	defer r.s.unlock()

	ids := make([]int64, 0, len(d.tops))
	for id := range d.tops {
		ids = append(ids, id)
	}
	list := make([]*categories.TopCategory, 0, len(ids))
	for _, id := range sortedIDs(ids) {
		list = append(list, d.topView(d.tops[id]))
	}
	return list, nil
}

func (r *categoryRepo) UpdateTop(ctx context.Context, t *categories.TopCategory) error {
	d := r.s.lock()
	defer r.s.unlock()

	existing, ok := d.tops[t.ID]
	if !ok {
		return categories.ErrTopNotFound
	}
	for id, other := range d.tops {
		if id != t.ID && other.Name == t.Name {
			return categories.ErrDuplicateName
		}
	}
	existing.Name = t.Name
	existing.IsActive = t.IsActive
	existing.ShowInNavbar = t.ShowInNavbar
	existing.UpdatedAt = now()
	d.tops[t.ID] = existing
	t.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *categoryRepo) DeleteTop(ctx context.Context, id int64) error {
	d := r.s.lock()
	defer r.s.unlock()

	if _, ok := d.tops[id]; !ok {
		return categories.ErrTopNotFound
	}
	delete(d.tops, id)
	return nil
}

// ------------------------------------
// Parent categories
// ------------------------------------

func (r *categoryRepo) CreateParent(ctx context.Context, p *categories.ParentCategory) error {
	d := r.s.lock()
	defer r.s.unlock()

	for _, existing := range d.parents {
		if existing.Name == p.Name {
			return categories.ErrDuplicateName
		}
	}
	p.ID = d.nextID()
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt
	p.ChildIDs = []int64{}
	stored := *p
	if p.TopID != nil {
		top := *p.TopID
		stored.TopID = &top
	}
	d.parents[p.ID] = stored
	return nil
}

func (r *categoryRepo) GetParentByID(ctx context.Context, id int64) (*categories.ParentCategory, error) {
	d := r.s.lock()
	defer r.s.unlock()

	p, ok := d.parents[id]
	if !ok {
		return nil, categories.ErrParentNotFound
	}
	return d.parentView(p), nil
}

func (r *categoryRepo) GetParentsByIDs(ctx context.Context, ids []int64) ([]*categories.ParentCategory, error) {
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return r.filterParents(func(p categories.ParentCategory) bool { return want[p.ID] }), nil
}

func (r *categoryRepo) FindParentsByNames(ctx context.Context, names []string) ([]*categories.ParentCategory, error) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	return r.filterParents(func(p categories.ParentCategory) bool { return want[p.Name] }), nil
}

func (r *categoryRepo) ListParents(ctx context.Context) ([]*categories.ParentCategory, error) {
	return r.filterParents(func(categories.ParentCategory) bool { return true }), nil
}

func (r *categoryRepo) ListParentsByTop(ctx context.Context, topID int64) ([]*categories.ParentCategory, error) {
	return r.filterParents(func(p categories.ParentCategory) bool {
		return p.TopID != nil && *p.TopID == topID
	}), nil
}

func (r *categoryRepo) filterParents(keep func(categories.ParentCategory) bool) []*categories.ParentCategory {
	d := r.s.lock()
	defer r.s.unlock()

	ids := []int64{}
	for id, p := range d.parents {
		if keep(p) {
			ids = append(ids, id)
		}
	}
	list := make([]*categories.ParentCategory, 0, len(ids))
	for _, id := range sortedIDs(ids) {
		list = append(list, d.parentView(d.parents[id]))
	}
	return list
}

func (r *categoryRepo) UpdateParent(ctx context.Context, p *categories.ParentCategory) error {
	d := r.s.lock()
	defer r.s.unlock()

	existing, ok := d.parents[p.ID]
	if !ok {
		return categories.ErrParentNotFound
	}
	for id, other := range d.parents {
		if id != p.ID && other.Name == p.Name {
			return categories.ErrDuplicateName
		}
	}
	existing.Name = p.Name
	existing.TopID = nil
	if p.TopID != nil {
		top := *p.TopID
		existing.TopID = &top
	}
	existing.IsActive = p.IsActive
	existing.ShowInNavbar = p.ShowInNavbar
	existing.UpdatedAt = now()
	d.parents[p.ID] = existing
	p.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *categoryRepo) ClearTop(ctx context.Context, topID int64) error {
	d := r.s.lock()
	defer r.s.unlock()

	for id, p := range d.parents {
		if p.TopID != nil && *p.TopID == topID {
			p.TopID = nil
			p.UpdatedAt = now()
			d.parents[id] = p
		}
	}
	return nil
}

func (r *categoryRepo) DeleteParent(ctx context.Context, id int64) error {
	d := r.s.lock()
	defer r.s.unlock()

	if _, ok := d.parents[id]; !ok {
		return categories.ErrParentNotFound
	}
	delete(d.parents, id)
	return nil
}

// ------------------------------------
// Child categories
// ------------------------------------

func (r *categoryRepo) CreateChild(ctx context.Context, c *categories.ChildCategory) error {
	d := r.s.lock()
	defer r.s.unlock()

	c.ID = d.nextID()
	c.CreatedAt = now()
	c.UpdatedAt = c.CreatedAt
	c.ParentIDs = []int64{}
	c.ProductIDs = []int64{}
	d.children[c.ID] = *c
	return nil
}

func (r *categoryRepo) GetChildByID(ctx context.Context, id int64) (*categories.ChildCategory, error) {
	d := r.s.lock()
	defer r.s.unlock()

	c, ok := d.children[id]
	if !ok {
		return nil, categories.ErrChildNotFound
	}
	return d.childView(c), nil
}

func (r *categoryRepo) FindChildrenByName(ctx context.Context, name string) ([]*categories.ChildCategory, error) {
	return r.filterChildren(func(d *state, c categories.ChildCategory) bool { return c.Name == name }), nil
}

func (r *categoryRepo) ListChildren(ctx context.Context) ([]*categories.ChildCategory, error) {
	return r.filterChildren(func(*state, categories.ChildCategory) bool { return true }), nil
}

func (r *categoryRepo) ListChildrenByParent(ctx context.Context, parentID int64) ([]*categories.ChildCategory, error) {
	return r.filterChildren(func(d *state, c categories.ChildCategory) bool {
		_, ok := d.edges[edge{child: c.ID, parent: parentID}]
		return ok
	}), nil
}

func (r *categoryRepo) filterChildren(keep func(*state, categories.ChildCategory) bool) []*categories.ChildCategory {
	d := r.s.lock()
	defer r.s.unlock()

	ids := []int64{}
	for id, c := range d.children {
		if keep(d, c) {
			ids = append(ids, id)
		}
	}
	list := make([]*categories.ChildCategory, 0, len(ids))
	for _, id := range sortedIDs(ids) {
		list = append(list, d.childView(d.children[id]))
	}
	return list
}

func (r *categoryRepo) UpdateChild(ctx context.Context, c *categories.ChildCategory) error {
	d := r.s.lock()
	defer r.s.unlock()

	existing, ok := d.children[c.ID]
	if !ok {
		return categories.ErrChildNotFound
	}
	existing.Name = c.Name
	existing.IsActive = c.IsActive
	existing.ShowInNavbar = c.ShowInNavbar
	existing.UpdatedAt = now()
	d.children[c.ID] = existing
	c.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *categoryRepo) DeleteChild(ctx context.Context, id int64) error {
	d := r.s.lock()
	defer r.s.unlock()

	if _, ok := d.children[id]; !ok {
		return categories.ErrChildNotFound
	}
	delete(d.children, id)
	return nil
}

// ------------------------------------
// Edges
// ------------------------------------

func (r *categoryRepo) AddEdges(ctx context.Context, childID int64, parentIDs []int64) error {
	d := r.s.lock()
	defer r.s.unlock()

	for _, pid := range parentIDs {
		d.edges[edge{child: childID, parent: pid}] = struct{}{}
	}
	return nil
}

func (r *categoryRepo) RemoveEdges(ctx context.Context, childID int64, parentIDs []int64) error {
	d := r.s.lock()
	defer r.s.unlock()

	for _, pid := range parentIDs {
		delete(d.edges, edge{child: childID, parent: pid})
	}
	return nil
}

func (r *categoryRepo) RemoveChildEdges(ctx context.Context, childID int64) error {
	d := r.s.lock()
	defer r.s.unlock()

	for e := range d.edges {
		if e.child == childID {
			delete(d.edges, e)
		}
	}
	return nil
}

func (r *categoryRepo) RemoveParentEdges(ctx context.Context, parentID int64) error {
	d := r.s.lock()
	defer r.s.unlock()

	for e := range d.edges {
		if e.parent == parentID {
			delete(d.edges, e)
		}
	}
	return nil
}

// LockChildName is a no-op: memory transactions are already serialized.
func (r *categoryRepo) LockChildName(ctx context.Context, name string) error {
	return nil
}
