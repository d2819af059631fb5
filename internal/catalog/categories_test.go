package catalog

import (
	"context"
	"testing"

	"storefront/internal/domain/products"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTopCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	top, err := f.svc.CreateTopCategory(ctx, TopInput{Name: "  Clothing  "})
	require.NoError(t, err)
	assert.Equal(t, "clothing", top.Name)

	_, err = f.svc.CreateTopCategory(ctx, TopInput{Name: "CLOTHING"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.svc.CreateTopCategory(ctx, TopInput{Name: " ab "})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParentTopLink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	top, err := f.svc.CreateTopCategory(ctx, TopInput{Name: "Clothing"})
	require.NoError(t, err)

	_, err = f.svc.CreateParentCategory(ctx, ParentInput{Name: "Men", Top: "Shoes"})
	assert.ErrorIs(t, err, ErrNotFound)

	p, err := f.svc.CreateParentCategory(ctx, ParentInput{Name: "Men", Top: " clothing"})
	require.NoError(t, err)
	require.NotNil(t, p.TopID)
	assert.Equal(t, top.ID, *p.TopID)

	parents, err := f.svc.ListTopParents(ctx, top.ID)
	require.NoError(t, err)
	require.Len(t, parents, 1)
	assert.Equal(t, p.ID, parents[0].ID)

	p, err = f.svc.UpdateParentCategory(ctx, p.ID, ParentUpdate{Top: ptr("")})
	require.NoError(t, err)
	assert.Nil(t, p.TopID)

	_, err = f.svc.UpdateParentCategory(ctx, p.ID, ParentUpdate{Top: ptr("Clothing")})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteTopCategory(ctx, top.ID))
	got, err := f.svc.GetParentCategory(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.TopID)

	assert.ErrorIs(t, f.svc.DeleteTopCategory(ctx, top.ID), ErrNotFound)
}

func TestUpdateTopCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.CreateTopCategory(ctx, TopInput{Name: "Clothing"})
	require.NoError(t, err)
	_, err = f.svc.CreateTopCategory(ctx, TopInput{Name: "Shoes"})
	require.NoError(t, err)

	_, err = f.svc.UpdateTopCategory(ctx, a.ID, TopUpdate{Name: ptr("shoes")})
	assert.ErrorIs(t, err, ErrConflict)

	updated, err := f.svc.UpdateTopCategory(ctx, a.ID, TopUpdate{ShowInNavbar: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, "clothing", updated.Name)
	assert.False(t, updated.ShowInNavbar)
	assert.True(t, updated.IsActive)

	_, err = f.svc.UpdateTopCategory(ctx, 999, TopUpdate{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateChildLinksParents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	men := f.parent(t, "Men")
	women := f.parent(t, "Women")

	c := f.child(t, "Shirts", "men", " WOMEN ", "Men")
	assert.Equal(t, "shirts", c.Name)
	assert.ElementsMatch(t, []int64{men, women}, c.ParentIDs)
	assert.Len(t, c.Parents, 2)

	for _, id := range []int64{men, women} {
		p, err := f.svc.GetParentCategory(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, []int64{c.ID}, p.ChildIDs)
		require.Len(t, p.Children, 1)
		assert.Equal(t, "shirts", p.Children[0].Name)
	}
}

func TestCreateChildValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.parent(t, "Men")

	_, err := f.svc.CreateChildCategory(ctx, ChildInput{Name: "Shirts"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.CreateChildCategory(ctx, ChildInput{Name: "Shirts", Parents: []string{"men", "kids"}})
	assert.ErrorIs(t, err, ErrNotFound)

	children, err := f.svc.ListChildCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, children)
}

func TestChildNameUniquePerParentSet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.parent(t, "Men")
	f.parent(t, "Women")

	f.child(t, "Shirts", "Men")

	_, err := f.svc.CreateChildCategory(ctx, ChildInput{Name: "shirts", Parents: []string{"men"}})
	assert.ErrorIs(t, err, ErrConflict)

	// disjoint and overlapping-but-different parent sets are fine
	f.child(t, "Shirts", "Women")
	f.child(t, "Shirts", "Men", "Women")

	_, err = f.svc.CreateChildCategory(ctx, ChildInput{Name: "Shirts", Parents: []string{"women", "men"}})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestReparentChild(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.parent(t, "Alpha")
	b := f.parent(t, "Beta")
	c := f.parent(t, "Gamma")

	child := f.child(t, "Shirts", "Alpha", "Beta")

	updated, err := f.svc.UpdateChildCategory(ctx, child.ID, ChildUpdate{Parents: []string{"beta", "gamma"}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{b, c}, updated.ParentIDs)

	pa, err := f.svc.GetParentCategory(ctx, a)
	require.NoError(t, err)
	assert.NotContains(t, pa.ChildIDs, child.ID)

	pb, err := f.svc.GetParentCategory(ctx, b)
	require.NoError(t, err)
	assert.Contains(t, pb.ChildIDs, child.ID)

	pc, err := f.svc.GetParentCategory(ctx, c)
	require.NoError(t, err)
	assert.Contains(t, pc.ChildIDs, child.ID)
}

func TestReparentFailureLeavesEdges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.parent(t, "Alpha")
	b := f.parent(t, "Beta")

	child := f.child(t, "Shirts", "Alpha", "Beta")

	_, err := f.svc.UpdateChildCategory(ctx, child.ID, ChildUpdate{
		Name:    ptr("Tees"),
		Parents: []string{"beta", "missing"},
	})
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := f.svc.GetChildCategory(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, "shirts", got.Name)
	assert.ElementsMatch(t, []int64{a, b}, got.ParentIDs)

	_, err = f.svc.UpdateChildCategory(ctx, child.ID, ChildUpdate{Parents: []string{}})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRenameChildConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.parent(t, "Men")

	f.child(t, "Shirts", "Men")
	tees := f.child(t, "Tees", "Men")

	_, err := f.svc.UpdateChildCategory(ctx, tees.ID, ChildUpdate{Name: ptr("SHIRTS")})
	assert.ErrorIs(t, err, ErrConflict)

	// renaming to its own name is not a conflict
	_, err = f.svc.UpdateChildCategory(ctx, tees.ID, ChildUpdate{Name: ptr("tees"), IsActive: ptr(false)})
	assert.NoError(t, err)
}

func TestDeleteParentKeepsChildren(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	men := f.parent(t, "Men")
	women := f.parent(t, "Women")

	shirts := f.child(t, "Shirts", "Men", "Women")
	ties := f.child(t, "Ties", "Men")

	require.NoError(t, f.svc.DeleteParentCategory(ctx, men))

	got, err := f.svc.GetChildCategory(ctx, shirts.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{women}, got.ParentIDs)

	got, err = f.svc.GetChildCategory(ctx, ties.ID)
	require.NoError(t, err)
	assert.Empty(t, got.ParentIDs)

	_, err = f.svc.GetParentCategory(ctx, men)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.svc.DeleteParentCategory(ctx, men), ErrNotFound)
}

func TestDeleteChildDetachesProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	men := f.parent(t, "Men")
	shirts := f.child(t, "Shirts", "Men")

	p := &products.Product{BusinessID: 1, ItemName: "oxford", NewPrice: decimal.NewFromInt(10), CategoryID: &shirts.ID}
	require.NoError(t, f.store.Repos().Products.Create(ctx, p))

	got, err := f.svc.GetChildCategory(ctx, shirts.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{p.ID}, got.ProductIDs)

	require.NoError(t, f.svc.DeleteChildCategory(ctx, shirts.ID))

	parent, err := f.svc.GetParentCategory(ctx, men)
	require.NoError(t, err)
	assert.Empty(t, parent.ChildIDs)

	prod, err := f.svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, prod.CategoryID)

	assert.ErrorIs(t, f.svc.DeleteChildCategory(ctx, shirts.ID), ErrNotFound)
}
