package catalog

import (
	"context"
	"strings"

	"storefront/internal/domain/categories"
	"storefront/internal/domain/products"
	"storefront/internal/domain/storage"
)

// Flags left nil take their default (true on create, unchanged on update).
type TopInput struct {
	Name         string
	IsActive     *bool
	ShowInNavbar *bool
}

type TopUpdate struct {
	Name         *string
	IsActive     *bool
	ShowInNavbar *bool
}

// ParentInput links the parent to the top category named Top, if any.
type ParentInput struct {
	Name         string
	Top          string
	IsActive     *bool
	ShowInNavbar *bool
}

// ParentUpdate.Top set to "" unlinks the parent from its top category.
type ParentUpdate struct {
	Name         *string
	Top          *string
	IsActive     *bool
	ShowInNavbar *bool
}

type ChildInput struct {
	Name         string
	Parents      []string
	IsActive     *bool
	ShowInNavbar *bool
}

// ChildUpdate.Parents nil leaves the edges alone; otherwise it is the full new
// parent set.
type ChildUpdate struct {
	Name         *string
	Parents      []string
	IsActive     *bool
	ShowInNavbar *bool
}

type TopCategoryDetail struct {
	*categories.TopCategory
	Parents []*categories.ParentCategory `json:"parents"`
}

type ParentCategoryDetail struct {
	*categories.ParentCategory
	Children []*categories.ChildCategory `json:"children"`
}

type ChildCategoryDetail struct {
	*categories.ChildCategory
	Parents  []*categories.ParentCategory `json:"parents"`
	Products []*products.Product          `json:"products"`
}

// ------------------------------------
// Top categories
// ------------------------------------

func (s *Service) CreateTopCategory(ctx context.Context, in TopInput) (*categories.TopCategory, error) {
	t := &categories.TopCategory{
		Name:         Normalize(in.Name),
		IsActive:     boolOr(in.IsActive, true),
		ShowInNavbar: boolOr(in.ShowInNavbar, true),
	}
	if err := validateName("top category", t.Name); err != nil {
		return nil, err
	}

	err := s.inTx(ctx, func(tx *storage.Repositories) error {
		return tx.Categories.CreateTop(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) UpdateTopCategory(ctx context.Context, id int64, in TopUpdate) (*categories.TopCategory, error) {
	var name string
	if in.Name != nil {
		name = Normalize(*in.Name)
		if err := validateName("top category", name); err != nil {
			return nil, err
		}
	}

	var updated *categories.TopCategory
	err := s.inTx(ctx, func(tx *storage.Repositories) error {
		t, err := tx.Categories.GetTopByID(ctx, id)
		if err != nil {
			return err
		}
		if in.Name != nil {
			t.Name = name
		}
		t.IsActive = boolOr(in.IsActive, t.IsActive)
		t.ShowInNavbar = boolOr(in.ShowInNavbar, t.ShowInNavbar)
		if err := tx.Categories.UpdateTop(ctx, t); err != nil {
			return err
		}
		updated, err = tx.Categories.GetTopByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteTopCategory removes the top category and clears the link on its
// parents. The parents themselves are kept.
func (s *Service) DeleteTopCategory(ctx context.Context, id int64) error {
	return s.inTx(ctx, func(tx *storage.Repositories) error {
		if _, err := tx.Categories.GetTopByID(ctx, id); err != nil {
			return err
		}
		if err := tx.Categories.ClearTop(ctx, id); err != nil {
			return err
		}
		return tx.Categories.DeleteTop(ctx, id)
	})
}

func (s *Service) ListTopCategories(ctx context.Context) ([]*TopCategoryDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	repo := s.store.Repos().Categories
	tops, err := repo.ListTops(ctx)
	if err != nil {
		return nil, translate(err)
	}
	list := make([]*TopCategoryDetail, 0, len(tops))
	for _, t := range tops {
		d, err := s.topDetail(ctx, repo, t)
		if err != nil {
			return nil, translate(err)
		}
		list = append(list, d)
	}
	return list, nil
}

func (s *Service) GetTopCategory(ctx context.Context, id int64) (*TopCategoryDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	repo := s.store.Repos().Categories
	t, err := repo.GetTopByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	d, err := s.topDetail(ctx, repo, t)
	return d, translate(err)
}

func (s *Service) ListTopParents(ctx context.Context, id int64) ([]*categories.ParentCategory, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	repo := s.store.Repos().Categories
	if _, err := repo.GetTopByID(ctx, id); err != nil {
		return nil, translate(err)
	}
	list, err := repo.ListParentsByTop(ctx, id)
	return list, translate(err)
}

func (s *Service) topDetail(ctx context.Context, repo categories.Store, t *categories.TopCategory) (*TopCategoryDetail, error) {
	parents, err := repo.ListParentsByTop(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	return &TopCategoryDetail{TopCategory: t, Parents: parents}, nil
}

// ------------------------------------
// Parent categories
// ------------------------------------

func (s *Service) CreateParentCategory(ctx context.Context, in ParentInput) (*categories.ParentCategory, error) {
	p := &categories.ParentCategory{
		Name:         Normalize(in.Name),
		IsActive:     boolOr(in.IsActive, true),
		ShowInNavbar: boolOr(in.ShowInNavbar, true),
	}
	if err := validateName("parent category", p.Name); err != nil {
		return nil, err
	}

	var created *categories.ParentCategory
	err := s.inTx(ctx, func(tx *storage.Repositories) error {
		if top := Normalize(in.Top); top != "" {
			t, err := tx.Categories.GetTopByName(ctx, top)
			if err != nil {
				return err
			}
			p.TopID = &t.ID
		}
		if err := tx.Categories.CreateParent(ctx, p); err != nil {
			return err
		}
		var err error
		created, err = tx.Categories.GetParentByID(ctx, p.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Service) UpdateParentCategory(ctx context.Context, id int64, in ParentUpdate) (*categories.ParentCategory, error) {
	var name string
	if in.Name != nil {
		name = Normalize(*in.Name)
		if err := validateName("parent category", name); err != nil {
			return nil, err
		}
	}

	var updated *categories.ParentCategory
	err := s.inTx(ctx, func(tx *storage.Repositories) error {
		p, err := tx.Categories.GetParentByID(ctx, id)
		if err != nil {
			return err
		}
		if in.Name != nil {
			p.Name = name
		}
		if in.Top != nil {
			p.TopID = nil
			if top := Normalize(*in.Top); top != "" {
				t, err := tx.Categories.GetTopByName(ctx, top)
				if err != nil {
					return err
				}
				p.TopID = &t.ID
			}
		}
		p.IsActive = boolOr(in.IsActive, p.IsActive)
		p.ShowInNavbar = boolOr(in.ShowInNavbar, p.ShowInNavbar)
		if err := tx.Categories.UpdateParent(ctx, p); err != nil {
			return err
		}
		updated, err = tx.Categories.GetParentByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteParentCategory removes the parent and every edge to it. Children
// survive, possibly with an empty parent set.
func (s *Service) DeleteParentCategory(ctx context.Context, id int64) error {
	return s.inTx(ctx, func(tx *storage.Repositories) error {
		if _, err := tx.Categories.GetParentByID(ctx, id); err != nil {
			return err
		}
		if err := tx.Categories.RemoveParentEdges(ctx, id); err != nil {
			return err
		}
		return tx.Categories.DeleteParent(ctx, id)
	})
}

func (s *Service) ListParentCategories(ctx context.Context) ([]*ParentCategoryDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	repo := s.store.Repos().Categories
	parents, err := repo.ListParents(ctx)
	if err != nil {
		return nil, translate(err)
	}
	list := make([]*ParentCategoryDetail, 0, len(parents))
	for _, p := range parents {
		children, err := repo.ListChildrenByParent(ctx, p.ID)
		if err != nil {
			return nil, translate(err)
		}
		list = append(list, &ParentCategoryDetail{ParentCategory: p, Children: children})
	}
	return list, nil
}

func (s *Service) GetParentCategory(ctx context.Context, id int64) (*ParentCategoryDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	repo := s.store.Repos().Categories
	p, err := repo.GetParentByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	children, err := repo.ListChildrenByParent(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return &ParentCategoryDetail{ParentCategory: p, Children: children}, nil
}

func (s *Service) ListParentChildren(ctx context.Context, id int64) ([]*categories.ChildCategory, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	repo := s.store.Repos().Categories
	if _, err := repo.GetParentByID(ctx, id); err != nil {
		return nil, translate(err)
	}
	list, err := repo.ListChildrenByParent(ctx, id)
	return list, translate(err)
}

// ------------------------------------
// Child categories
// ------------------------------------

func (s *Service) CreateChildCategory(ctx context.Context, in ChildInput) (*ChildCategoryDetail, error) {
	c := &categories.ChildCategory{
		Name:         Normalize(in.Name),
		IsActive:     boolOr(in.IsActive, true),
		ShowInNavbar: boolOr(in.ShowInNavbar, true),
	}
	if err := validateName("child category", c.Name); err != nil {
		return nil, err
	}
	parentNames := normalizeNames(in.Parents)
	if len(parentNames) == 0 {
		return nil, validationError("at least one parent category is required")
	}

	err := s.inTx(ctx, func(tx *storage.Repositories) error {
		if err := tx.Categories.LockChildName(ctx, c.Name); err != nil {
			return err
		}
		parentIDs, err := resolveParents(ctx, tx.Categories, parentNames)
		if err != nil {
			return err
		}
		if err := checkChildUnique(ctx, tx.Categories, c.Name, parentIDs, 0); err != nil {
			return err
		}
		if err := tx.Categories.CreateChild(ctx, c); err != nil {
			return err
		}
		return tx.Categories.AddEdges(ctx, c.ID, parentIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.GetChildCategory(ctx, c.ID)
}

// UpdateChildCategory applies a partial update. A new parent set is resolved
// before any write, then the new edges are added and the stale ones removed.
func (s *Service) UpdateChildCategory(ctx context.Context, id int64, in ChildUpdate) (*ChildCategoryDetail, error) {
	var name string
	if in.Name != nil {
		name = Normalize(*in.Name)
		if err := validateName("child category", name); err != nil {
			return nil, err
		}
	}
	var parentNames []string
	if in.Parents != nil {
		parentNames = normalizeNames(in.Parents)
		if len(parentNames) == 0 {
			return nil, validationError("at least one parent category is required")
		}
	}

	err := s.inTx(ctx, func(tx *storage.Repositories) error {
		c, err := tx.Categories.GetChildByID(ctx, id)
		if err != nil {
			return err
		}
		current := c.ParentIDs
		next := current
		if in.Parents != nil {
			next, err = resolveParents(ctx, tx.Categories, parentNames)
			if err != nil {
				return err
			}
		}
		if in.Name != nil {
			c.Name = name
		}
		if in.Name != nil || in.Parents != nil {
			if err := tx.Categories.LockChildName(ctx, c.Name); err != nil {
				return err
			}
			if err := checkChildUnique(ctx, tx.Categories, c.Name, next, id); err != nil {
				return err
			}
		}

		c.IsActive = boolOr(in.IsActive, c.IsActive)
		c.ShowInNavbar = boolOr(in.ShowInNavbar, c.ShowInNavbar)
		if err := tx.Categories.UpdateChild(ctx, c); err != nil {
			return err
		}

		if in.Parents == nil {
			return nil
		}
		if added := minus(next, current); len(added) > 0 {
			if err := tx.Categories.AddEdges(ctx, id, added); err != nil {
				return err
			}
		}
		if removed := minus(current, next); len(removed) > 0 {
			if err := tx.Categories.RemoveEdges(ctx, id, removed); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetChildCategory(ctx, id)
}

// DeleteChildCategory removes the child, its edges, and detaches its products.
func (s *Service) DeleteChildCategory(ctx context.Context, id int64) error {
	return s.inTx(ctx, func(tx *storage.Repositories) error {
		if _, err := tx.Categories.GetChildByID(ctx, id); err != nil {
			return err
		}
		if err := tx.Categories.RemoveChildEdges(ctx, id); err != nil {
			return err
		}
		if err := tx.Products.DetachCategory(ctx, id); err != nil {
			return err
		}
		return tx.Categories.DeleteChild(ctx, id)
	})
}

func (s *Service) ListChildCategories(ctx context.Context) ([]*ChildCategoryDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	repos := s.store.Repos()
	children, err := repos.Categories.ListChildren(ctx)
	if err != nil {
		return nil, translate(err)
	}
	list := make([]*ChildCategoryDetail, 0, len(children))
	for _, c := range children {
		d, err := childDetail(ctx, repos, c)
		if err != nil {
			return nil, translate(err)
		}
		list = append(list, d)
	}
	return list, nil
}

func (s *Service) GetChildCategory(ctx context.Context, id int64) (*ChildCategoryDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	repos := s.store.Repos()
	c, err := repos.Categories.GetChildByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	d, err := childDetail(ctx, repos, c)
	return d, translate(err)
}

func childDetail(ctx context.Context, repos storage.Repositories, c *categories.ChildCategory) (*ChildCategoryDetail, error) {
	parents, err := repos.Categories.GetParentsByIDs(ctx, c.ParentIDs)
	if err != nil {
		return nil, err
	}
	prods, err := repos.Products.ListByCategory(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return &ChildCategoryDetail{ChildCategory: c, Parents: parents, Products: prods}, nil
}

// resolveParents maps normalized, distinct names to parent ids. Every name
// must resolve.
func resolveParents(ctx context.Context, repo categories.Store, names []string) ([]int64, error) {
	found, err := repo.FindParentsByNames(ctx, names)
	if err != nil {
		return nil, err
	}
	if len(found) == len(names) {
		ids := make([]int64, len(found))
		for i, p := range found {
			ids[i] = p.ID
		}
		return ids, nil
	}

	have := make(map[string]bool, len(found))
	for _, p := range found {
		have[p.Name] = true
	}
	missing := []string{}
	for _, n := range names {
		if !have[n] {
			missing = append(missing, n)
		}
	}
	return nil, notFound("parent categories not found: %s", strings.Join(missing, ", "))
}

// checkChildUnique rejects a child name already used under the exact same
// parent set. exclude skips the child being updated.
func checkChildUnique(ctx context.Context, repo categories.Store, name string, parentIDs []int64, exclude int64) error {
	existing, err := repo.FindChildrenByName(ctx, name)
	if err != nil {
		return err
	}
	for _, c := range existing {
		if c.ID != exclude && sameSet(c.ParentIDs, parentIDs) {
			return conflict("child category %q already exists under the same parent categories", name)
		}
	}
	return nil
}
