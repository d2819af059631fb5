package memory

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain/categories"
	"storefront/internal/domain/products"
	"storefront/internal/domain/sizes"
	"storefront/internal/domain/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithCatalogTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := New()

	boom := errors.New("boom")
	err := s.WithCatalogTx(ctx, func(tx *storage.Repositories) error {
		require.NoError(t, tx.Categories.CreateTop(ctx, &categories.TopCategory{Name: "clothing"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	tops, err := s.Repos().Categories.ListTops(ctx)
	require.NoError(t, err)
	assert.Empty(t, tops)
}

func TestWithCatalogTxCommits(t *testing.T) {
	ctx := context.Background()
	s := New()

	err := s.WithCatalogTx(ctx, func(tx *storage.Repositories) error {
		return tx.Categories.CreateTop(ctx, &categories.TopCategory{Name: "clothing"})
	})
	require.NoError(t, err)

	top, err := s.Repos().Categories.GetTopByName(ctx, "clothing")
	require.NoError(t, err)
	assert.Equal(t, "clothing", top.Name)
}

func TestWithCatalogTxHidesUncommittedWrites(t *testing.T) {
	ctx := context.Background()

	for _, fail := range []bool{false, true} {
		s := New()
		var seenInside int
		err := s.WithCatalogTx(ctx, func(tx *storage.Repositories) error {
			p := &categories.ParentCategory{Name: "men"}
			require.NoError(t, tx.Categories.CreateParent(ctx, p))
			c := &categories.ChildCategory{Name: "shirts"}
			require.NoError(t, tx.Categories.CreateChild(ctx, c))
			require.NoError(t, tx.Categories.AddEdges(ctx, c.ID, []int64{p.ID}))

			mine, err := tx.Categories.ListChildren(ctx)
			require.NoError(t, err)
			require.Len(t, mine, 1)

			others, err := s.Repos().Categories.ListChildren(ctx)
			require.NoError(t, err)
			seenInside = len(others)
			if fail {
				return errors.New("boom")
			}
			return nil
		})
		assert.Zero(t, seenInside, "uncommitted child visible outside the transaction")

		children, listErr := s.Repos().Categories.ListChildren(ctx)
		require.NoError(t, listErr)
		if fail {
			require.Error(t, err)
			assert.Empty(t, children)
		} else {
			require.NoError(t, err)
			require.Len(t, children, 1)
			assert.Len(t, children[0].ParentIDs, 1)
		}
	}
}

func TestEdgesAreVisibleFromBothSides(t *testing.T) {
	ctx := context.Background()
	repo := New().Repos().Categories

	men := &categories.ParentCategory{Name: "men"}
	women := &categories.ParentCategory{Name: "women"}
	require.NoError(t, repo.CreateParent(ctx, men))
	require.NoError(t, repo.CreateParent(ctx, women))

	shirts := &categories.ChildCategory{Name: "shirts"}
	require.NoError(t, repo.CreateChild(ctx, shirts))
	require.NoError(t, repo.AddEdges(ctx, shirts.ID, []int64{men.ID, women.ID}))
	// adding an existing edge is a no-op
	require.NoError(t, repo.AddEdges(ctx, shirts.ID, []int64{men.ID}))

	got, err := repo.GetChildByID(ctx, shirts.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{men.ID, women.ID}, got.ParentIDs)

	p, err := repo.GetParentByID(ctx, men.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{shirts.ID}, p.ChildIDs)

	require.NoError(t, repo.RemoveParentEdges(ctx, men.ID))
	got, err = repo.GetChildByID(ctx, shirts.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{women.ID}, got.ParentIDs)
}

func TestDuplicateNames(t *testing.T) {
	ctx := context.Background()
	repos := New().Repos()

	require.NoError(t, repos.Categories.CreateTop(ctx, &categories.TopCategory{Name: "clothing"}))
	err := repos.Categories.CreateTop(ctx, &categories.TopCategory{Name: "clothing"})
	assert.ErrorIs(t, err, categories.ErrDuplicateName)

	require.NoError(t, repos.Sizes.Create(ctx, &sizes.Size{SizeName: "xl"}))
	err = repos.Sizes.Create(ctx, &sizes.Size{SizeName: "xl"})
	assert.ErrorIs(t, err, sizes.ErrDuplicateSize)
}

func TestProductsByParentAndDetach(t *testing.T) {
	ctx := context.Background()
	repos := New().Repos()

	men := &categories.ParentCategory{Name: "men"}
	require.NoError(t, repos.Categories.CreateParent(ctx, men))
	shirts := &categories.ChildCategory{Name: "shirts"}
	require.NoError(t, repos.Categories.CreateChild(ctx, shirts))
	require.NoError(t, repos.Categories.AddEdges(ctx, shirts.ID, []int64{men.ID}))

	p := &products.Product{BusinessID: 7, ItemName: "oxford", NewPrice: decimal.NewFromInt(20), CategoryID: &shirts.ID}
	require.NoError(t, repos.Products.Create(ctx, p))

	err := repos.Products.Create(ctx, &products.Product{BusinessID: 7})
	assert.ErrorIs(t, err, products.ErrDuplicateProduct)

	list, err := repos.Products.ListByParentCategory(ctx, men.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, p.ID, list[0].ID)

	child, err := repos.Categories.GetChildByID(ctx, shirts.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{p.ID}, child.ProductIDs)

	require.NoError(t, repos.Products.DetachCategory(ctx, shirts.ID))
	got, err := repos.Products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)
}

func TestListPaging(t *testing.T) {
	ctx := context.Background()
	repo := New().Repos().Products

	for i := int64(1); i <= 5; i++ {
		require.NoError(t, repo.Create(ctx, &products.Product{BusinessID: i}))
	}

	page, total, err := repo.List(ctx, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, int64(3), page[0].BusinessID)

	page, total, err = repo.List(ctx, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Empty(t, page)

	all, _, err := repo.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}
